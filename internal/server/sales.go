package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	saledomain "github.com/vivendahq/vivenda/internal/sale/domain"
)

func (s *Server) ListSales(c *gin.Context) {
	sales, err := s.saleSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sales})
}

func (s *Server) GetSaleByID(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_sale_id", "invalid sale id"))
		return
	}

	sale, err := s.saleSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sale})
}

type createSaleRequest struct {
	PropertyID        string `json:"property_id"`
	BuyerID           string `json:"buyer_id"`
	TotalAmount       int64  `json:"total_amount"`
	SaleType          string `json:"sale_type"`
	Installments      int    `json:"installments"`
	InstallmentAmount int64  `json:"installment_amount"`
	SaleDate          string `json:"sale_date"`
}

func (s *Server) CreateSale(c *gin.Context) {
	var req createSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	propertyID, err := parseSnowflakeID(req.PropertyID)
	if err != nil {
		AbortWithError(c, newValidationError("property_id", "invalid_property", "invalid property_id"))
		return
	}
	buyerID, err := parseSnowflakeID(req.BuyerID)
	if err != nil {
		AbortWithError(c, newValidationError("buyer_id", "invalid_buyer", "invalid buyer_id"))
		return
	}
	saleDate, err := parseDate(req.SaleDate)
	if err != nil {
		AbortWithError(c, newValidationError("sale_date", "invalid_sale_date", "invalid sale_date"))
		return
	}

	sale, err := s.saleSvc.Create(c.Request.Context(), saledomain.CreateSaleRequest{
		PropertyID:        propertyID,
		BuyerID:           buyerID,
		TotalAmount:       req.TotalAmount,
		SaleType:          strings.TrimSpace(req.SaleType),
		Installments:      req.Installments,
		InstallmentAmount: req.InstallmentAmount,
		SaleDate:          saleDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": sale})
}

func (s *Server) DeleteSale(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_sale_id", "invalid sale id"))
		return
	}

	if err := s.saleSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}
