package types

// Role identifies the author of a chat message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a chat message. Timestamp is unix milliseconds.
type Message struct {
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

// BlockKind names the markdown construct a block was rendered from
type BlockKind string

const (
	BlockParagraph BlockKind = "paragraph"
	BlockHeading   BlockKind = "heading"
	BlockListItem  BlockKind = "list_item"
	BlockCode      BlockKind = "code_block"
	BlockTable     BlockKind = "table"
	BlockQuote     BlockKind = "blockquote"
	BlockInline    BlockKind = "inline"
	BlockText      BlockKind = "text"
)

// Block is a node of rendered message content. A leaf carries Text; an
// inner node carries Children. HTML is only set on top-level blocks.
type Block struct {
	Kind     BlockKind `json:"kind"`
	Text     string    `json:"text,omitempty"`
	Children []Block   `json:"children,omitempty"`
	HTML     string    `json:"html,omitempty"`
}

// TextBlock builds a leaf block
func TextBlock(text string) Block {
	return Block{Kind: BlockText, Text: text}
}

// IsLeaf reports whether the block has no children
func (b Block) IsLeaf() bool {
	return len(b.Children) == 0
}
