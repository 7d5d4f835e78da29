package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/vivendahq/vivenda/internal/chat/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertConversation(ctx context.Context, db *gorm.DB, conversation *domain.Conversation) error {
	return db.WithContext(ctx).Omit("Tenant", "Landlord").Create(conversation).Error
}

func (r *repo) FindConversationBetween(ctx context.Context, db *gorm.DB, a, b snowflake.ID) (*domain.Conversation, error) {
	var conversation domain.Conversation
	err := db.WithContext(ctx).
		Where("(tenant_id = ? AND landlord_id = ?) OR (tenant_id = ? AND landlord_id = ?)", a, b, b, a).
		First(&conversation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conversation, nil
}

func (r *repo) FindConversationByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Conversation, error) {
	var conversation domain.Conversation
	err := db.WithContext(ctx).
		Preload("Tenant").
		Preload("Landlord").
		First(&conversation, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conversation, nil
}

func (r *repo) ListConversationsForUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]*domain.Conversation, error) {
	var conversations []*domain.Conversation
	err := db.WithContext(ctx).
		Preload("Tenant").
		Preload("Landlord").
		Where("tenant_id = ? OR landlord_id = ?", userID, userID).
		Order("updated_at desc, id desc").
		Find(&conversations).Error
	if err != nil {
		return nil, err
	}
	return conversations, nil
}

func (r *repo) InsertMessage(ctx context.Context, db *gorm.DB, message *domain.Message) error {
	return db.WithContext(ctx).Omit("Sender").Create(message).Error
}

func (r *repo) ListMessages(ctx context.Context, db *gorm.DB, conversationID snowflake.ID) ([]*domain.Message, error) {
	var messages []*domain.Message
	err := db.WithContext(ctx).
		Preload("Sender").
		Where("conversation_id = ?", conversationID).
		Order("created_at asc, id asc").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}
