package markdown

import (
	"strings"
	"testing"

	"github.com/GriffinCanCode/AgentDesk/backend/internal/domain/branch"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reply = "Intro paragraph\n\n" +
	"## Title\n\n" +
	"- one\n" +
	"- two **bold** end\n\n" +
	"```go\nfmt.Println(1)\n```\n\n" +
	"| a | b |\n|---|---|\n| x | y |\n\n" +
	"> quoted text\n"

func TestRenderKinds(t *testing.T) {
	blocks := NewRenderer(nil).Render(reply)
	require.Len(t, blocks, 7)

	kinds := make([]types.BlockKind, len(blocks))
	for i, b := range blocks {
		kinds[i] = b.Kind
	}
	assert.Equal(t, []types.BlockKind{
		types.BlockParagraph,
		types.BlockHeading,
		types.BlockListItem,
		types.BlockListItem,
		types.BlockCode,
		types.BlockTable,
		types.BlockQuote,
	}, kinds)
}

func TestRenderAnchors(t *testing.T) {
	blocks := NewRenderer(nil).Render(reply)

	tests := []struct {
		index  int
		anchor string
	}{
		{0, "Intro paragraph"},
		{1, "Title"},
		{2, "one"},
		{3, "end"},
		{4, "fmt.Println(1)"},
		{5, "y"},
		{6, "quoted text"},
	}

	for _, tt := range tests {
		got := branch.ExtractText(blocks[tt.index])
		assert.Equal(t, tt.anchor, got, "block %d", tt.index)
		assert.True(t, strings.Contains(reply, got))
	}
}

func TestRenderHTMLIsSanitized(t *testing.T) {
	blocks := NewRenderer(nil).Render("## Title\n\n<script>alert(1)</script>\n\nsafe [link](javascript:alert(1))")
	require.NotEmpty(t, blocks)

	assert.Equal(t, "<h2>Title</h2>", blocks[0].HTML)
	for _, b := range blocks {
		assert.NotContains(t, b.HTML, "<script>")
		assert.NotContains(t, b.HTML, "javascript:")
	}
}

func TestBlock(t *testing.T) {
	r := NewRenderer(nil)

	b, ok := r.Block(reply, 1)
	require.True(t, ok)
	assert.Equal(t, types.BlockHeading, b.Kind)

	_, ok = r.Block(reply, 7)
	assert.False(t, ok)
	_, ok = r.Block(reply, -1)
	assert.False(t, ok)
}

func TestRenderEmpty(t *testing.T) {
	assert.Empty(t, NewRenderer(nil).Render(""))
}
