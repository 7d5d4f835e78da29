package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	authdomain "github.com/vivendahq/vivenda/internal/auth/domain"
	"github.com/vivendahq/vivenda/internal/chat/domain"
	userdomain "github.com/vivendahq/vivenda/internal/user/domain"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Repo      domain.Repository
	UserRepo  userdomain.Repository
	Publisher domain.Publisher
	GenID     *snowflake.Node
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	repo      domain.Repository
	userRepo  userdomain.Repository
	publisher domain.Publisher
	genID     *snowflake.Node
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("chat.service"),
		repo:      p.Repo,
		userRepo:  p.UserRepo,
		publisher: p.Publisher,
		genID:     p.GenID,
	}
}

func (s *Service) Open(ctx context.Context, principal authdomain.Principal, counterpartID snowflake.ID) (domain.Conversation, error) {
	if counterpartID == 0 || counterpartID == principal.UserID {
		return domain.Conversation{}, domain.ErrInvalidCounterpart
	}
	counterpart, err := s.userRepo.FindByID(ctx, s.db, counterpartID)
	if err != nil {
		return domain.Conversation{}, err
	}
	if counterpart == nil {
		return domain.Conversation{}, domain.ErrInvalidCounterpart
	}

	existing, err := s.repo.FindConversationBetween(ctx, s.db, principal.UserID, counterpartID)
	if err != nil {
		return domain.Conversation{}, err
	}
	if existing != nil {
		full, err := s.repo.FindConversationByID(ctx, s.db, existing.ID)
		if err != nil {
			return domain.Conversation{}, err
		}
		return *full, nil
	}

	// New conversations put the owner on the landlord side when one of the
	// participants is an owner; otherwise the principal opens as tenant.
	tenantID, landlordID := principal.UserID, counterpartID
	if counterpart.Role != userdomain.RoleOwner && principal.Role == userdomain.RoleOwner {
		tenantID, landlordID = counterpartID, principal.UserID
	}

	now := time.Now().UTC()
	conversation := domain.Conversation{
		ID:         s.genID.Generate(),
		TenantID:   tenantID,
		LandlordID: landlordID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.InsertConversation(ctx, s.db, &conversation); err != nil {
		return domain.Conversation{}, err
	}

	full, err := s.repo.FindConversationByID(ctx, s.db, conversation.ID)
	if err != nil {
		return domain.Conversation{}, err
	}
	s.log.Info("conversation opened",
		zap.Int64("conversation_id", conversation.ID.Int64()),
		zap.Int64("tenant_id", tenantID.Int64()),
		zap.Int64("landlord_id", landlordID.Int64()),
	)
	return *full, nil
}

func (s *Service) ListConversations(ctx context.Context, principal authdomain.Principal) ([]domain.Conversation, error) {
	items, err := s.repo.ListConversationsForUser(ctx, s.db, principal.UserID)
	if err != nil {
		return nil, err
	}
	conversations := make([]domain.Conversation, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		conversations = append(conversations, *item)
	}
	return conversations, nil
}

func (s *Service) ListMessages(ctx context.Context, principal authdomain.Principal, conversationID snowflake.ID) ([]domain.Message, error) {
	if conversationID == 0 {
		return nil, domain.ErrInvalidID
	}
	conversation, err := s.repo.FindConversationByID(ctx, s.db, conversationID)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, domain.ErrNotFound
	}
	if !conversation.HasMember(principal.UserID) {
		return nil, domain.ErrNotMember
	}

	items, err := s.repo.ListMessages(ctx, s.db, conversationID)
	if err != nil {
		return nil, err
	}
	messages := make([]domain.Message, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		messages = append(messages, *item)
	}
	return messages, nil
}

// SendMessage persists the message, then hands it to the relay. Publishing
// is fire and forget: a relay failure is logged and the request succeeds.
func (s *Service) SendMessage(ctx context.Context, principal authdomain.Principal, req domain.SendMessageRequest) (domain.Message, error) {
	if req.ConversationID == 0 {
		return domain.Message{}, domain.ErrInvalidID
	}
	if strings.TrimSpace(req.Body) == "" {
		return domain.Message{}, domain.ErrInvalidBody
	}
	conversation, err := s.repo.FindConversationByID(ctx, s.db, req.ConversationID)
	if err != nil {
		return domain.Message{}, err
	}
	if conversation == nil {
		return domain.Message{}, domain.ErrNotFound
	}
	if !conversation.HasMember(principal.UserID) {
		return domain.Message{}, domain.ErrNotMember
	}

	message := domain.Message{
		ID:             s.genID.Generate(),
		ConversationID: conversation.ID,
		SenderID:       principal.UserID,
		Body:           req.Body,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.repo.InsertMessage(ctx, s.db, &message); err != nil {
		return domain.Message{}, err
	}

	s.publish(ctx, message)
	return message, nil
}

func (s *Service) publish(ctx context.Context, message domain.Message) {
	payload, err := json.Marshal(message)
	if err != nil {
		s.log.Error("marshal relay payload", zap.Error(err))
		return
	}
	channel := fmt.Sprintf("chat.conversation.%d", message.ConversationID.Int64())
	if err := s.publisher.Publish(ctx, channel, payload); err != nil {
		s.log.Warn("relay publish failed",
			zap.String("channel", channel),
			zap.Int64("message_id", message.ID.Int64()),
			zap.Error(err),
		)
	}
}
