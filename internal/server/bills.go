package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	billingdomain "github.com/vivendahq/vivenda/internal/billing/domain"
	"github.com/vivendahq/vivenda/pkg/db/pagination"
)

func (s *Server) ListBills(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Query        string `form:"q"`
		Status       string `form:"status"`
		DueMonth     string `form:"due_month"`
		BillableType string `form:"billable_type"`
		BillableID   string `form:"billable_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	filter := billingdomain.ListBillsFilter{Query: strings.TrimSpace(query.Query)}

	if value := strings.TrimSpace(query.Status); value != "" {
		status, ok := billingdomain.ParseBillStatus(value)
		if !ok {
			AbortWithError(c, newValidationError("status", "invalid_status", "invalid status"))
			return
		}
		filter.Status = &status
	}
	if value := strings.TrimSpace(query.BillableType); value != "" {
		billableType, ok := billingdomain.ParseBillableType(value)
		if !ok {
			AbortWithError(c, newValidationError("billable_type", "invalid_billable", "invalid billable_type"))
			return
		}
		filter.BillableType = &billableType
	}
	billableID, err := parseOptionalSnowflakeID(query.BillableID)
	if err != nil {
		AbortWithError(c, newValidationError("billable_id", "invalid_billable", "invalid billable_id"))
		return
	}
	filter.BillableID = billableID

	dueMonth, err := parseMonth(query.DueMonth)
	if err != nil {
		AbortWithError(c, newValidationError("due_month", "invalid_due_date", "invalid due_month"))
		return
	}
	filter.DueMonth = dueMonth

	resp, err := s.billingSvc.ListBills(c.Request.Context(), billingdomain.ListBillsRequest{
		Filter: filter,
		Page:   query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetBillByID(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_bill_id", "invalid bill id"))
		return
	}

	bill, err := s.billingSvc.GetBill(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": bill})
}

type createBillRequest struct {
	BillableType string `json:"billable_type"`
	BillableID   string `json:"billable_id"`
	DueDate      string `json:"due_date"`
	Amount       int64  `json:"amount"`
	Description  string `json:"description"`
}

func (s *Server) CreateBill(c *gin.Context) {
	var req createBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	billableType, ok := billingdomain.ParseBillableType(strings.TrimSpace(req.BillableType))
	if !ok {
		AbortWithError(c, newValidationError("billable_type", "invalid_billable", "invalid billable_type"))
		return
	}
	billableID, err := parseSnowflakeID(req.BillableID)
	if err != nil {
		AbortWithError(c, newValidationError("billable_id", "invalid_billable", "invalid billable_id"))
		return
	}
	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		AbortWithError(c, newValidationError("due_date", "invalid_due_date", "invalid due_date"))
		return
	}

	bill, err := s.billingSvc.CreateBill(c.Request.Context(), billingdomain.CreateBillRequest{
		Billable:    billingdomain.BillableRef{Type: billableType, ID: billableID},
		DueDate:     dueDate,
		Amount:      req.Amount,
		Description: strings.TrimSpace(req.Description),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": bill})
}
