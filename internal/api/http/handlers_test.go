package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentDesk/backend/internal/domain/branch"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/domain/chat"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/domain/drag"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/domain/session"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/domain/workspace"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/infrastructure/storage"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/providers/llm"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/providers/markdown"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/providers/settings"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/shared/types"
)

type echoProvider struct{}

func (echoProvider) Name() string { return llm.FamilyAnthropic }

func (echoProvider) Complete(_ context.Context, req llm.Request) (string, error) {
	return "echo: " + req.Messages[len(req.Messages)-1].Content, nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter(t *testing.T) (*gin.Engine, *workspace.Manager) {
	t.Helper()
	ctx := context.Background()

	kv := storage.NewMemory()
	creds, err := settings.Open(ctx, kv, "", zap.NewNop())
	require.NoError(t, err)

	windows := workspace.NewManager(session.DefaultState(time.Now()), nil).
		WithPayloadDefaults(chat.DefaultPayload)

	router := llm.NewRouter(creds)
	router.Register(echoProvider{})

	renderer := markdown.NewRenderer(zap.NewNop())
	h := NewHandlers(Deps{
		Windows:  windows,
		Chat:     chat.NewService(windows, router),
		Branches: branch.NewEngine(windows, branch.NewGuard(0, nil), renderer),
		Drags:    drag.NewTracker(windows, 0),
		Settings: creds,
		Renderer: renderer,
		Metrics:  monitoring.NewMetrics(),
	})

	r := gin.New()
	h.Register(r)
	return r, windows
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func openChat(t *testing.T, r http.Handler) *types.Window {
	t.Helper()
	w := do(t, r, http.MethodPost, "/windows", gin.H{"type": "chat"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[*types.Window](t, w)
}

func TestRootAndHealth(t *testing.T) {
	r, _ := setupRouter(t)

	w := do(t, r, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "AgentDesk")

	w = do(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Contains(t, body, "desktop")
}

func TestWorkspaceRoutes(t *testing.T) {
	r, windows := setupRouter(t)

	w := do(t, r, http.MethodPost, "/workspaces", gin.H{"name": "Research"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	ws := decode[types.Workspace](t, w)
	assert.Equal(t, "Research", ws.Name)
	assert.Equal(t, ws.ID, windows.ActiveWorkspaceID())

	w = do(t, r, http.MethodPost, "/workspaces", gin.H{"name": "research"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodPost, "/workspaces", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, fmt.Sprintf("/workspaces/%d/activate", types.HomeWorkspaceID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, types.HomeWorkspaceID, windows.ActiveWorkspaceID())

	w = do(t, r, http.MethodDelete, fmt.Sprintf("/workspaces/%d", types.HomeWorkspaceID), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, r, http.MethodDelete, "/workspaces/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodDelete, "/workspaces/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodDelete, fmt.Sprintf("/workspaces/%d", ws.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/workspaces", nil)
	body := decode[map[string]any](t, w)
	assert.Len(t, body["workspaces"], 1)
}

func TestWindowRoutes(t *testing.T) {
	r, _ := setupRouter(t)

	first := openChat(t, r)
	second := openChat(t, r)
	assert.Greater(t, second.ZIndex, first.ZIndex)

	w := do(t, r, http.MethodGet, "/windows", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[map[string]any](t, w)
	assert.Len(t, list["windows"], 2)
	assert.EqualValues(t, second.ID, list["focused_window_id"])

	w = do(t, r, http.MethodPost, fmt.Sprintf("/windows/%d/focus", first.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	focused := decode[*types.Window](t, w)
	assert.Greater(t, focused.ZIndex, second.ZIndex)

	w = do(t, r, http.MethodPatch, fmt.Sprintf("/windows/%d/geometry", first.ID),
		gin.H{"position": gin.H{"x": 40, "y": 50}})
	require.Equal(t, http.StatusOK, w.Code)
	moved := decode[*types.Window](t, w)
	assert.Equal(t, types.Position{X: 40, Y: 50}, moved.Position)

	w = do(t, r, http.MethodPost, "/windows", gin.H{"type": "terminal"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodDelete, fmt.Sprintf("/windows/%d", first.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, fmt.Sprintf("/windows/%d", first.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodDelete, fmt.Sprintf("/windows/%d", first.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodGet, "/state", nil)
	require.Equal(t, http.StatusOK, w.Code)
	state := decode[types.State](t, w)
	assert.Len(t, state.WindowsByWorkspace[types.HomeWorkspaceID], 1)
}

func TestStateETag(t *testing.T) {
	r, _ := setupRouter(t)

	w := do(t, r, http.MethodGet, "/state", nil)
	require.Equal(t, http.StatusOK, w.Code)
	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/state", nil)
	req.Header.Set("If-None-Match", etag)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)

	openChat(t, r)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, etag, rec.Header().Get("ETag"))
}

func TestSubmitWorkspaceForm(t *testing.T) {
	r, windows := setupRouter(t)

	w := do(t, r, http.MethodPost, "/windows", gin.H{
		"type":    "workspace-creation",
		"payload": gin.H{"form": gin.H{"name": "Drafts"}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	form := decode[*types.Window](t, w)

	w = do(t, r, http.MethodPost, fmt.Sprintf("/windows/%d/submit", form.ID), nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	ws := decode[types.Workspace](t, w)
	assert.Equal(t, "Drafts", ws.Name)
	assert.Equal(t, ws.ID, windows.ActiveWorkspaceID())
}

func TestChatRoutes(t *testing.T) {
	r, _ := setupRouter(t)
	win := openChat(t, r)
	base := fmt.Sprintf("/windows/%d", win.ID)

	// No key yet: the reply is the fallback message
	w := do(t, r, http.MethodPost, base+"/messages", gin.H{"text": "hi"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[*types.Window](t, w)
	require.Len(t, got.Data.Chat.Messages, 3)
	assert.Equal(t, chat.FallbackReply, got.Data.Chat.Messages[2].Content)

	w = do(t, r, http.MethodPut, "/settings/credentials/anthropic", gin.H{"key": "sk-ant-test"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, r, http.MethodPost, base+"/messages", gin.H{"text": "hello"})
	require.Equal(t, http.StatusOK, w.Code)
	got = decode[*types.Window](t, w)
	require.Len(t, got.Data.Chat.Messages, 5)
	assert.Equal(t, "echo: hello", got.Data.Chat.Messages[4].Content)

	w = do(t, r, http.MethodPost, base+"/messages", gin.H{"text": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, base+"/messages/0/blocks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), chat.Greeting)

	w = do(t, r, http.MethodGet, base+"/messages/42/blocks", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodGet, base+"/operators", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), llm.DefaultOperatorID)

	w = do(t, r, http.MethodPut, base+"/operator", gin.H{"operatorId": "gpt-4"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, r, http.MethodPut, base+"/operator", gin.H{"operatorId": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, base+"/export?format=json", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "json")
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".json")

	w = do(t, r, http.MethodGet, base+"/export?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodDelete, base+"/messages?scope=user", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got = decode[*types.Window](t, w)
	for _, m := range got.Data.Chat.Messages {
		assert.Equal(t, types.RoleAssistant, m.Role)
	}

	w = do(t, r, http.MethodDelete, base+"/messages?scope=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBranchRoute(t *testing.T) {
	r, _ := setupRouter(t)
	win := openChat(t, r)
	path := fmt.Sprintf("/windows/%d/branch", win.ID)

	w := do(t, r, http.MethodPost, path, gin.H{"messageIndex": 0, "blockIndex": 0})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	res := decode[branch.Result](t, w)
	assert.Equal(t, branch.OutcomeCreated, res.Outcome)
	require.NotNil(t, res.Window)
	assert.NotEqual(t, win.ID, res.Window.ID)

	w = do(t, r, http.MethodPost, path, gin.H{"messageIndex": 0, "blockIndex": 9})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, path, gin.H{"messageIndex": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, path, gin.H{"messageIndex": 0, "block": gin.H{"kind": "text", "text": "not in there"}})
	require.Equal(t, http.StatusOK, w.Code)
	res = decode[branch.Result](t, w)
	assert.Equal(t, branch.OutcomeNotFound, res.Outcome)
}

func TestDragRoutes(t *testing.T) {
	r, windows := setupRouter(t)
	win := openChat(t, r)

	w := do(t, r, http.MethodPost, "/drags", gin.H{"windowId": win.ID, "kind": "spin"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/drags", gin.H{
		"windowId": win.ID,
		"kind":     "move",
		"pointer":  gin.H{"x": 100, "y": 100},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sid := decode[map[string]string](t, w)["session_id"]
	require.NotEmpty(t, sid)

	w = do(t, r, http.MethodPost, "/drags/"+sid+"/end", gin.H{"pointer": gin.H{"x": 130, "y": 120}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	moved, ok := windows.Window(win.ID)
	require.True(t, ok)
	assert.Equal(t, win.Position.X+30, moved.Position.X)
	assert.Equal(t, win.Position.Y+20, moved.Position.Y)

	w = do(t, r, http.MethodPatch, "/drags/"+sid, gin.H{"pointer": gin.H{"x": 1, "y": 1}})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSettingsRoutes(t *testing.T) {
	r, _ := setupRouter(t)

	w := do(t, r, http.MethodPut, "/settings/credentials/anthropic", gin.H{"key": "sk-ant-0123456789"})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "sk-ant-0123456789")
	body := decode[map[string]map[string]any](t, w)
	assert.Equal(t, true, body["providers"]["anthropic"])

	w = do(t, r, http.MethodPut, "/settings/credentials/acme", gin.H{"key": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodDelete, "/settings/credentials/anthropic", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode[map[string]map[string]any](t, w)
	assert.Equal(t, false, body["providers"]["anthropic"])
}

func TestSettingsWindowKeepsKeysOutOfState(t *testing.T) {
	r, _ := setupRouter(t)

	w := do(t, r, http.MethodPost, "/windows", gin.H{"type": "settings"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	win := decode[*types.Window](t, w)

	draft := gin.H{"settings": gin.H{"credentials": gin.H{"groq": "gsk-live-abcd1234"}}}
	w = do(t, r, http.MethodPut, fmt.Sprintf("/windows/%d/data", win.ID), draft)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "gsk-live-abcd1234")
	assert.Contains(t, w.Body.String(), "1234")

	w = do(t, r, http.MethodGet, "/state", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "gsk-live")
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("wrap: %w", workspace.ErrUnknownWindow), http.StatusNotFound},
		{workspace.ErrProtectedWorkspace, http.StatusForbidden},
		{workspace.ErrDuplicateName, http.StatusConflict},
		{chat.ErrAwaitingResponse, http.StatusConflict},
		{drag.ErrInvalidKind, http.StatusBadRequest},
		{llm.ErrCredentialMissing, http.StatusUnprocessableEntity},
		{&llm.RequestError{Provider: "openai", StatusCode: 500}, http.StatusBadGateway},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
