package types

// ChatRequest represents a chat message sent to a window
type ChatRequest struct {
	Text string `json:"text" binding:"required"`
}

// CreateWindowRequest represents a new-window request
type CreateWindowRequest struct {
	Type        WindowType `json:"type" binding:"required"`
	WorkspaceID *int64     `json:"workspaceId,omitempty"`
	Payload     *Payload   `json:"payload,omitempty"`
	Position    *Position  `json:"position,omitempty"`
	Size        *Size      `json:"size,omitempty"`
}

// BranchRequest identifies the clicked block inside a past message.
// Either BlockIndex (into the rendered blocks) or Block must be set.
type BranchRequest struct {
	MessageIndex int    `json:"messageIndex"`
	BlockIndex   *int   `json:"blockIndex,omitempty"`
	Block        *Block `json:"block,omitempty"`
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string                 `json:"type"`
	Message string                 `json:"message,omitempty"`
	Context map[string]interface{} `json:"context,omitempty"`
}
