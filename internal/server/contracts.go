package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	contractdomain "github.com/vivendahq/vivenda/internal/contract/domain"
)

func (s *Server) ListContracts(c *gin.Context) {
	contracts, err := s.contractSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": contracts})
}

func (s *Server) ListContractsByProperty(c *gin.Context) {
	propertyID, err := parseSnowflakeID(c.Param("propertyId"))
	if err != nil {
		AbortWithError(c, newValidationError("propertyId", "invalid_property", "invalid property id"))
		return
	}

	contracts, err := s.contractSvc.ListByProperty(c.Request.Context(), propertyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": contracts})
}

func (s *Server) GetContractByID(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_contract_id", "invalid contract id"))
		return
	}

	contract, err := s.contractSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": contract})
}

type createContractRequest struct {
	PropertyID      string `json:"property_id"`
	TenantID        string `json:"tenant_id"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	MonthlyRent     int64  `json:"monthly_rent"`
	SecurityDeposit int64  `json:"security_deposit"`
	Terms           string `json:"terms"`
	FilePath        string `json:"file_path"`
}

func (s *Server) CreateContract(c *gin.Context) {
	var req createContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	propertyID, err := parseSnowflakeID(req.PropertyID)
	if err != nil {
		AbortWithError(c, newValidationError("property_id", "invalid_property", "invalid property_id"))
		return
	}
	tenantID, err := parseSnowflakeID(req.TenantID)
	if err != nil {
		AbortWithError(c, newValidationError("tenant_id", "invalid_tenant", "invalid tenant_id"))
		return
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		AbortWithError(c, newValidationError("start_date", "invalid_contract_dates", "invalid start_date"))
		return
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		AbortWithError(c, newValidationError("end_date", "invalid_contract_dates", "invalid end_date"))
		return
	}

	contract, err := s.contractSvc.Create(c.Request.Context(), contractdomain.CreateContractRequest{
		PropertyID:      propertyID,
		TenantID:        tenantID,
		StartDate:       startDate,
		EndDate:         endDate,
		MonthlyRent:     req.MonthlyRent,
		SecurityDeposit: req.SecurityDeposit,
		Terms:           req.Terms,
		FilePath:        strings.TrimSpace(req.FilePath),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": contract})
}

type updateContractRequest struct {
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
	MonthlyRent *int64  `json:"monthly_rent"`
	Status      *string `json:"status"`
}

func (s *Server) UpdateContract(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_contract_id", "invalid contract id"))
		return
	}

	var req updateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	update := contractdomain.UpdateContractRequest{
		MonthlyRent: req.MonthlyRent,
		Status:      req.Status,
	}
	if req.StartDate != nil {
		parsed, err := parseDate(*req.StartDate)
		if err != nil {
			AbortWithError(c, newValidationError("start_date", "invalid_contract_dates", "invalid start_date"))
			return
		}
		update.StartDate = &parsed
	}
	if req.EndDate != nil {
		parsed, err := parseDate(*req.EndDate)
		if err != nil {
			AbortWithError(c, newValidationError("end_date", "invalid_contract_dates", "invalid end_date"))
			return
		}
		update.EndDate = &parsed
	}

	contract, err := s.contractSvc.Update(c.Request.Context(), id, update)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": contract})
}

func (s *Server) DeleteContract(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_contract_id", "invalid contract id"))
		return
	}

	if err := s.contractSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}
