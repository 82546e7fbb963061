package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentDesk/backend/internal/infrastructure/storage"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/shared/types"
)

// Storage keys
const (
	KeyWorkspaces         = "workspaces"
	KeyWindowsByWorkspace = "windowsByWorkspace"
	KeyActiveWorkspaceID  = "activeWorkspaceId"
	KeyCounters           = "counters"
)

// ErrStorageCorrupt marks stored state that could not be used
var ErrStorageCorrupt = errors.New("session: storage corrupt")

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Outcome describes how Load produced its state
type Outcome struct {
	// Fresh is true when the default state was returned
	Fresh bool
	// Corrupt wraps ErrStorageCorrupt when stored state was discarded
	Corrupt error
}

// Bridge reads and writes the desktop state
type Bridge struct {
	kv       storage.KV
	compress bool
	encoder  *zstd.Encoder
	decoder  *zstd.Decoder
	logger   *zap.Logger
	clock    func() time.Time
}

// Option configures a Bridge
type Option func(*Bridge)

// WithCompression enables zstd compression of written values. Compressed
// and plain values are both readable regardless of this setting.
func WithCompression(enabled bool) Option {
	return func(b *Bridge) { b.compress = enabled }
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(b *Bridge) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithClock sets the time source used for the default Home workspace
func WithClock(clock func() time.Time) Option {
	return func(b *Bridge) {
		if clock != nil {
			b.clock = clock
		}
	}
}

// NewBridge creates a bridge over kv
func NewBridge(kv storage.KV, opts ...Option) *Bridge {
	b := &Bridge{
		kv:     kv,
		logger: zap.NewNop(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}

	// nil writers and readers only fail on invalid options
	b.encoder, _ = zstd.NewWriter(nil)
	b.decoder, _ = zstd.NewReader(nil)
	return b
}

// Default returns the first-run state: Home and no windows
func (b *Bridge) Default() types.State {
	return DefaultState(b.clock())
}

// DefaultState returns a state holding only the Home workspace
func DefaultState(now time.Time) types.State {
	return types.State{
		Workspaces: []types.Workspace{{
			ID:        types.HomeWorkspaceID,
			Name:      types.HomeWorkspaceName,
			CreatedAt: now.UTC(),
		}},
		WindowsByWorkspace: map[int64][]types.Window{types.HomeWorkspaceID: {}},
		ActiveWorkspaceID:  types.HomeWorkspaceID,
		Counters: types.Counters{
			NextWindowID:    1,
			NextWorkspaceID: types.HomeWorkspaceID + 1,
		},
	}
}

// Save writes the complete state
func (b *Bridge) Save(ctx context.Context, state types.State) error {
	windows := make(map[string][]types.Window, len(state.WindowsByWorkspace))
	for wsID, list := range state.WindowsByWorkspace {
		if list == nil {
			list = []types.Window{}
		}
		windows[strconv.FormatInt(wsID, 10)] = list
	}

	values := map[string]any{
		KeyWorkspaces:         state.Workspaces,
		KeyWindowsByWorkspace: windows,
		KeyActiveWorkspaceID:  state.ActiveWorkspaceID,
		KeyCounters:           state.Counters,
	}

	entries := make(map[string][]byte, len(values))
	for key, v := range values {
		data, err := sonic.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", key, err)
		}
		if b.compress {
			data = b.encoder.EncodeAll(data, make([]byte, 0, len(data)))
		}
		entries[key] = data
	}

	if err := b.kv.SetMany(ctx, entries); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	return nil
}

// Load reads the stored state. The returned error is reserved for store
// I/O failures; bad data is reported through Outcome and replaced by the
// default state.
func (b *Bridge) Load(ctx context.Context) (types.State, Outcome, error) {
	raw := make(map[string][]byte, 4)
	for _, key := range []string{KeyWorkspaces, KeyWindowsByWorkspace, KeyActiveWorkspaceID, KeyCounters} {
		data, ok, err := b.kv.Get(ctx, key)
		if err != nil {
			return types.State{}, Outcome{}, fmt.Errorf("failed to read %s: %w", key, err)
		}
		if ok {
			raw[key] = data
		}
	}

	if _, ok := raw[KeyWorkspaces]; !ok {
		b.logger.Info("No stored desktop state, starting fresh")
		return b.Default(), Outcome{Fresh: true}, nil
	}

	state, err := b.decode(raw)
	if err == nil {
		err = normalize(&state)
	}
	if err != nil {
		corrupt := fmt.Errorf("%w: %v", ErrStorageCorrupt, err)
		b.logger.Warn("Discarding stored desktop state", zap.Error(corrupt))
		return b.Default(), Outcome{Fresh: true, Corrupt: corrupt}, nil
	}

	b.logger.Debug("Loaded desktop state",
		zap.Int("workspaces", len(state.Workspaces)),
		zap.Int("windows", state.WindowCount()),
		zap.Int64("active", state.ActiveWorkspaceID))
	return state, Outcome{}, nil
}

func (b *Bridge) decode(raw map[string][]byte) (types.State, error) {
	var state types.State

	if err := b.unmarshal(raw[KeyWorkspaces], &state.Workspaces); err != nil {
		return state, fmt.Errorf("%s: %w", KeyWorkspaces, err)
	}

	state.WindowsByWorkspace = make(map[int64][]types.Window)
	if data, ok := raw[KeyWindowsByWorkspace]; ok {
		var wire map[string][]types.Window
		if err := b.unmarshal(data, &wire); err != nil {
			return state, fmt.Errorf("%s: %w", KeyWindowsByWorkspace, err)
		}
		for key, list := range wire {
			wsID, err := strconv.ParseInt(key, 10, 64)
			if err != nil {
				return state, fmt.Errorf("%s: bad workspace key %q", KeyWindowsByWorkspace, key)
			}
			if list == nil {
				list = []types.Window{}
			}
			state.WindowsByWorkspace[wsID] = list
		}
	}

	if data, ok := raw[KeyActiveWorkspaceID]; ok {
		if err := b.unmarshal(data, &state.ActiveWorkspaceID); err != nil {
			return state, fmt.Errorf("%s: %w", KeyActiveWorkspaceID, err)
		}
	}

	if data, ok := raw[KeyCounters]; ok {
		if err := b.unmarshal(data, &state.Counters); err != nil {
			return state, fmt.Errorf("%s: %w", KeyCounters, err)
		}
	}

	return state, nil
}

func (b *Bridge) unmarshal(data []byte, v any) error {
	if bytes.HasPrefix(data, zstdMagic) {
		plain, err := b.decoder.DecodeAll(data, nil)
		if err != nil {
			return fmt.Errorf("decompress: %w", err)
		}
		data = plain
	}
	return sonic.Unmarshal(data, v)
}

// normalize checks structural invariants and fills in derivable fields
func normalize(state *types.State) error {
	home, ok := state.Workspace(types.HomeWorkspaceID)
	if !ok || home.Name != types.HomeWorkspaceName {
		return errors.New("home workspace missing")
	}

	names := make(map[string]bool, len(state.Workspaces))
	known := make(map[int64]bool, len(state.Workspaces))
	var maxWorkspace int64
	for _, ws := range state.Workspaces {
		if ws.ID <= 0 || known[ws.ID] {
			return fmt.Errorf("bad workspace id %d", ws.ID)
		}
		if names[ws.Name] {
			return fmt.Errorf("duplicate workspace name %q", ws.Name)
		}
		known[ws.ID] = true
		names[ws.Name] = true
		maxWorkspace = max(maxWorkspace, ws.ID)
	}

	seen := make(map[int64]bool)
	var maxWindow int64
	for wsID, list := range state.WindowsByWorkspace {
		if !known[wsID] {
			return fmt.Errorf("windows stored for unknown workspace %d", wsID)
		}
		for _, w := range list {
			if w.ID <= 0 || seen[w.ID] {
				return fmt.Errorf("bad window id %d", w.ID)
			}
			if w.WorkspaceID != wsID {
				return fmt.Errorf("window %d filed under workspace %d", w.ID, wsID)
			}
			if !w.Type.Valid() || !w.Data.Matches(w.Type) {
				return fmt.Errorf("window %d has invalid type or payload", w.ID)
			}
			if w.Data.Settings != nil {
				w.Data.Settings.MaskCredentials()
			}
			seen[w.ID] = true
			maxWindow = max(maxWindow, w.ID)
		}
		rankZ(list)
	}

	for wsID := range known {
		if _, ok := state.WindowsByWorkspace[wsID]; !ok {
			state.WindowsByWorkspace[wsID] = []types.Window{}
		}
	}

	if !known[state.ActiveWorkspaceID] {
		state.ActiveWorkspaceID = types.HomeWorkspaceID
	}

	state.Counters.NextWindowID = max(state.Counters.NextWindowID, maxWindow+1)
	state.Counters.NextWorkspaceID = max(state.Counters.NextWorkspaceID, maxWorkspace+1)
	return nil
}

// rankZ renumbers a workspace's z-indices to 1..n when two windows share
// one. Ties go to the higher window id, the one opened later.
func rankZ(list []types.Window) {
	used := make(map[int64]bool, len(list))
	unique := true
	for _, w := range list {
		if used[w.ZIndex] {
			unique = false
			break
		}
		used[w.ZIndex] = true
	}
	if unique {
		return
	}

	order := make([]int, len(list))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		wa, wb := list[order[a]], list[order[b]]
		if wa.ZIndex != wb.ZIndex {
			return wa.ZIndex < wb.ZIndex
		}
		return wa.ID < wb.ID
	})
	for rank, i := range order {
		list[i].ZIndex = int64(rank + 1)
	}
}
