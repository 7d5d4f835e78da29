package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	chatdomain "github.com/vivendahq/vivenda/internal/chat/domain"
)

type openConversationRequest struct {
	CounterpartID string `json:"counterpart_id"`
}

func (s *Server) OpenConversation(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req openConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	counterpartID, err := parseSnowflakeID(req.CounterpartID)
	if err != nil {
		AbortWithError(c, newValidationError("counterpart_id", "invalid_counterpart", "invalid counterpart_id"))
		return
	}

	conversation, err := s.chatSvc.Open(c.Request.Context(), principal, counterpartID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": conversation})
}

func (s *Server) ListConversations(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	conversations, err := s.chatSvc.ListConversations(c.Request.Context(), principal)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": conversations})
}

func (s *Server) ListConversationMessages(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	conversationID, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_conversation_id", "invalid conversation id"))
		return
	}

	messages, err := s.chatSvc.ListMessages(c.Request.Context(), principal, conversationID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": messages})
}

type sendMessageRequest struct {
	ConversationID string `json:"conversation_id"`
	Body           string `json:"body"`
}

func (s *Server) SendMessage(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	conversationID, err := parseSnowflakeID(req.ConversationID)
	if err != nil {
		AbortWithError(c, newValidationError("conversation_id", "invalid_conversation_id", "invalid conversation_id"))
		return
	}

	message, err := s.chatSvc.SendMessage(c.Request.Context(), principal, chatdomain.SendMessageRequest{
		ConversationID: conversationID,
		Body:           req.Body,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": message})
}
