package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	categorydomain "github.com/vivendahq/vivenda/internal/category/domain"
)

type createCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) CreateCategory(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	category, err := s.categorySvc.Create(c.Request.Context(), categorydomain.CreateCategoryRequest{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": category})
}

func (s *Server) ListCategories(c *gin.Context) {
	categories, err := s.categorySvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": categories})
}
