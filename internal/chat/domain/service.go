package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"

	authdomain "github.com/vivendahq/vivenda/internal/auth/domain"
)

// Publisher hands a persisted message to the delivery relay. Implementations
// must not block the request path on delivery.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

type SendMessageRequest struct {
	ConversationID snowflake.ID
	Body           string
}

type Service interface {
	Open(ctx context.Context, principal authdomain.Principal, counterpartID snowflake.ID) (Conversation, error)
	ListConversations(ctx context.Context, principal authdomain.Principal) ([]Conversation, error)
	ListMessages(ctx context.Context, principal authdomain.Principal, conversationID snowflake.ID) ([]Message, error)
	SendMessage(ctx context.Context, principal authdomain.Principal, req SendMessageRequest) (Message, error)
}

var (
	ErrNotFound           = errors.New("conversation_not_found")
	ErrInvalidID          = errors.New("invalid_conversation_id")
	ErrInvalidCounterpart = errors.New("invalid_counterpart")
	ErrInvalidBody        = errors.New("invalid_message_body")
	ErrNotMember          = errors.New("not_conversation_member")
)
