// Package markdown turns assistant replies into clickable blocks.
//
// Each top-level construct of a reply (paragraph, heading, list item, code
// block, table, blockquote) becomes one types.Block. Leaves hold literal
// slices of the source so that a leaf's text can always be found again in
// the original message content.
package markdown

import (
	"bytes"
	"strings"

	"github.com/GriffinCanCode/AgentDesk/backend/internal/shared/types"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"go.uber.org/zap"
)

// Renderer parses markdown into blocks. Safe for concurrent use.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	logger *zap.Logger
}

// NewRenderer creates a renderer with GitHub flavored markdown enabled
func NewRenderer(logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy: bluemonday.UGCPolicy(),
		logger: logger,
	}
}

// Render returns the top-level blocks of content
func (r *Renderer) Render(content string) []types.Block {
	src := []byte(content)
	doc := r.md.Parser().Parse(text.NewReader(src))

	var blocks []types.Block
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if list, ok := n.(*ast.List); ok {
			for item := list.FirstChild(); item != nil; item = item.NextSibling() {
				b := r.convert(item, src)
				b.HTML = r.html(item, src)
				blocks = append(blocks, b)
			}
			continue
		}
		if !clickable(n) {
			continue
		}
		b := r.convert(n, src)
		b.HTML = r.html(n, src)
		blocks = append(blocks, b)
	}
	return blocks
}

// Block returns the index-th top-level block of content
func (r *Renderer) Block(content string, index int) (types.Block, bool) {
	blocks := r.Render(content)
	if index < 0 || index >= len(blocks) {
		return types.Block{}, false
	}
	return blocks[index], true
}

func clickable(n ast.Node) bool {
	switch n.Kind() {
	case ast.KindParagraph, ast.KindHeading, ast.KindFencedCodeBlock,
		ast.KindCodeBlock, ast.KindBlockquote, east.KindTable:
		return true
	}
	return false
}

func (r *Renderer) convert(n ast.Node, src []byte) types.Block {
	switch n.Kind() {
	case ast.KindParagraph, ast.KindTextBlock:
		return types.Block{Kind: types.BlockParagraph, Children: inlines(n, src)}
	case ast.KindHeading:
		return types.Block{Kind: types.BlockHeading, Children: inlines(n, src)}
	case ast.KindListItem:
		return types.Block{Kind: types.BlockListItem, Children: r.children(n, src)}
	case ast.KindList:
		return types.Block{Kind: types.BlockInline, Children: r.children(n, src)}
	case ast.KindFencedCodeBlock, ast.KindCodeBlock:
		return types.Block{Kind: types.BlockCode, Children: []types.Block{types.TextBlock(lines(n, src))}}
	case ast.KindBlockquote:
		return types.Block{Kind: types.BlockQuote, Children: r.children(n, src)}
	case east.KindTable:
		return types.Block{Kind: types.BlockTable, Children: r.children(n, src)}
	case east.KindTableHeader, east.KindTableRow:
		return types.Block{Kind: types.BlockInline, Children: r.children(n, src)}
	case east.KindTableCell:
		return types.Block{Kind: types.BlockInline, Children: inlines(n, src)}
	}
	if n.Type() == ast.TypeInline {
		return types.Block{Kind: types.BlockInline, Children: inlines(n, src)}
	}
	return types.Block{Kind: types.BlockInline, Children: r.children(n, src)}
}

func (r *Renderer) children(n ast.Node, src []byte) []types.Block {
	var out []types.Block
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		out = append(out, r.convert(c, src))
	}
	return out
}

// inlines flattens the inline content of n into text leaves
func inlines(n ast.Node, src []byte) []types.Block {
	var out []types.Block
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || c == n {
			return ast.WalkContinue, nil
		}
		switch v := c.(type) {
		case *ast.Text:
			out = append(out, types.TextBlock(string(v.Segment.Value(src))))
		case *ast.String:
			out = append(out, types.TextBlock(string(v.Value)))
		case *ast.AutoLink:
			out = append(out, types.TextBlock(string(v.Label(src))))
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return out
}

func lines(n ast.Node, src []byte) string {
	var sb strings.Builder
	segs := n.Lines()
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		sb.Write(seg.Value(src))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (r *Renderer) html(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, src, n); err != nil {
		r.logger.Debug("render block html", zap.Error(err))
		return ""
	}
	return strings.TrimSpace(r.policy.Sanitize(buf.String()))
}
