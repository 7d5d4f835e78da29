// Package domain models direct conversations between a tenant and a
// landlord. Delivery beyond persistence is delegated to an external relay.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"

	userdomain "github.com/vivendahq/vivenda/internal/user/domain"
)

type Conversation struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID   snowflake.ID `gorm:"not null;index:idx_conversations_pair" json:"tenant_id"`
	LandlordID snowflake.ID `gorm:"not null;index:idx_conversations_pair" json:"landlord_id"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Tenant   *userdomain.User `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
	Landlord *userdomain.User `gorm:"foreignKey:LandlordID" json:"landlord,omitempty"`
}

func (Conversation) TableName() string { return "conversations" }

// HasMember reports whether the user sits on either side of the conversation.
func (c Conversation) HasMember(userID snowflake.ID) bool {
	return c.TenantID == userID || c.LandlordID == userID
}

type Message struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	ConversationID snowflake.ID `gorm:"not null;index" json:"conversation_id"`
	SenderID       snowflake.ID `gorm:"not null" json:"sender_id"`
	Body           string       `gorm:"type:text;not null" json:"body"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	Sender *userdomain.User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}

func (Message) TableName() string { return "messages" }
