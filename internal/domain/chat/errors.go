package chat

import "errors"

var (
	ErrNotChatWindow       = errors.New("window is not a chat window")
	ErrEmptyMessage        = errors.New("message is empty")
	ErrMessageTooLong      = errors.New("message is too long")
	ErrAwaitingResponse    = errors.New("window is awaiting a response")
	ErrUnknownOperator     = errors.New("unknown operator")
	ErrOperatorUnavailable = errors.New("operator has no credential")
	ErrUnsupportedFormat   = errors.New("unsupported export format")
	ErrInvalidScope        = errors.New("invalid clear scope")
)
