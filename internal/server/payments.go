package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	billingdomain "github.com/vivendahq/vivenda/internal/billing/domain"
)

func (s *Server) ListPayments(c *gin.Context) {
	payments, err := s.billingSvc.ListPayments(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": payments})
}

type recordPaymentRequest struct {
	BillID        string `json:"bill_id"`
	PaymentDate   string `json:"payment_date"`
	Amount        int64  `json:"amount"`
	PaymentMethod string `json:"payment_method"`
	Notes         string `json:"notes"`
}

func (s *Server) RecordPayment(c *gin.Context) {
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	billID, err := parseSnowflakeID(req.BillID)
	if err != nil {
		AbortWithError(c, newValidationError("bill_id", "invalid_bill_id", "invalid bill_id"))
		return
	}
	paymentDate, err := parseDate(req.PaymentDate)
	if err != nil {
		AbortWithError(c, newValidationError("payment_date", "invalid_payment_date", "invalid payment_date"))
		return
	}

	payment, err := s.billingSvc.RecordPayment(c.Request.Context(), billingdomain.RecordPaymentRequest{
		BillID:        billID,
		PaymentDate:   paymentDate,
		Amount:        req.Amount,
		PaymentMethod: strings.TrimSpace(req.PaymentMethod),
		Notes:         req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": payment})
}
