package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertConversation(ctx context.Context, db *gorm.DB, conversation *Conversation) error
	// FindConversationBetween matches the pair in either orientation.
	FindConversationBetween(ctx context.Context, db *gorm.DB, a, b snowflake.ID) (*Conversation, error)
	FindConversationByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Conversation, error)
	ListConversationsForUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]*Conversation, error)

	InsertMessage(ctx context.Context, db *gorm.DB, message *Message) error
	ListMessages(ctx context.Context, db *gorm.DB, conversationID snowflake.ID) ([]*Message, error)
}
