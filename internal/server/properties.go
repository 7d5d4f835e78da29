package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	propertydomain "github.com/vivendahq/vivenda/internal/property/domain"
	"github.com/vivendahq/vivenda/pkg/db/pagination"
)

type propertyListQuery struct {
	pagination.Pagination
	Query           string `form:"q"`
	City            string `form:"city"`
	CategoryID      string `form:"category_id"`
	TransactionType string `form:"transaction_type"`
	ListingStatus   string `form:"listing_status"`
	Featured        string `form:"featured"`
	MinPrice        string `form:"min_price"`
	MaxPrice        string `form:"max_price"`
	Latitude        string `form:"lat"`
	Longitude       string `form:"lng"`
	RadiusKm        string `form:"radius_km"`
}

func (q propertyListQuery) toFilter() (propertydomain.ListFilter, error) {
	filter := propertydomain.ListFilter{
		Query: strings.TrimSpace(q.Query),
		City:  strings.TrimSpace(q.City),
	}

	categoryID, err := parseOptionalSnowflakeID(q.CategoryID)
	if err != nil {
		return filter, newValidationError("category_id", "invalid_category", "invalid category_id")
	}
	filter.CategoryID = categoryID

	if value := strings.TrimSpace(q.TransactionType); value != "" {
		parsed, ok := propertydomain.ParseTransactionType(value)
		if !ok {
			return filter, newValidationError("transaction_type", "invalid_transaction_type", "invalid transaction_type")
		}
		filter.TransactionType = parsed
	}
	if value := strings.TrimSpace(q.ListingStatus); value != "" {
		parsed, ok := propertydomain.ParseListingStatus(value)
		if !ok {
			return filter, newValidationError("listing_status", "invalid_listing_status", "invalid listing_status")
		}
		filter.ListingStatus = &parsed
	}

	featured, err := parseOptionalBool(q.Featured)
	if err != nil {
		return filter, newValidationError("featured", "invalid_featured", "invalid featured")
	}
	filter.Featured = featured

	if filter.MinPrice, err = parseOptionalInt64(q.MinPrice); err != nil {
		return filter, newValidationError("min_price", "invalid_price", "invalid min_price")
	}
	if filter.MaxPrice, err = parseOptionalInt64(q.MaxPrice); err != nil {
		return filter, newValidationError("max_price", "invalid_price", "invalid max_price")
	}

	if filter.Latitude, err = parseOptionalFloat(q.Latitude); err != nil {
		return filter, newValidationError("lat", "invalid_latitude", "invalid lat")
	}
	if filter.Longitude, err = parseOptionalFloat(q.Longitude); err != nil {
		return filter, newValidationError("lng", "invalid_longitude", "invalid lng")
	}
	if radius, err := parseOptionalFloat(q.RadiusKm); err != nil {
		return filter, newValidationError("radius_km", "invalid_radius", "invalid radius_km")
	} else if radius != nil {
		filter.RadiusKm = *radius
	}

	return filter, nil
}

func (s *Server) ListProperties(c *gin.Context) {
	var query propertyListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	filter, err := query.toFilter()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.propertySvc.List(c.Request.Context(), propertydomain.ListPropertiesRequest{
		Filter: filter,
		Page:   query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListFeaturedProperties(c *gin.Context) {
	properties, err := s.propertySvc.Featured(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": properties})
}

func (s *Server) ListPropertiesByOwner(c *gin.Context) {
	ownerID, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_owner_id", "invalid owner id"))
		return
	}

	var query propertyListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	filter, err := query.toFilter()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.propertySvc.ByOwner(c.Request.Context(), ownerID, propertydomain.ListPropertiesRequest{
		Filter: filter,
		Page:   query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPropertyByID(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_property_id", "invalid property id"))
		return
	}

	property, err := s.propertySvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": property})
}

type createPropertyRequest struct {
	CategoryID      string   `json:"category_id"`
	Address         string   `json:"address"`
	City            string   `json:"city"`
	Area            int64    `json:"area"`
	Price           int64    `json:"price"`
	Description     string   `json:"description"`
	Bedrooms        int      `json:"bedrooms"`
	Bathrooms       int      `json:"bathrooms"`
	IsFeatured      bool     `json:"is_featured"`
	TransactionType string   `json:"transaction_type"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	ImageURLs       []string `json:"image_urls"`
}

func (s *Server) CreateProperty(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req createPropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	categoryID, err := parseOptionalSnowflakeID(req.CategoryID)
	if err != nil {
		AbortWithError(c, newValidationError("category_id", "invalid_category", "invalid category_id"))
		return
	}

	property, err := s.propertySvc.Create(c.Request.Context(), principal, propertydomain.CreatePropertyRequest{
		CategoryID:      categoryID,
		Address:         strings.TrimSpace(req.Address),
		City:            strings.TrimSpace(req.City),
		Area:            req.Area,
		Price:           req.Price,
		Description:     req.Description,
		Bedrooms:        req.Bedrooms,
		Bathrooms:       req.Bathrooms,
		IsFeatured:      req.IsFeatured,
		TransactionType: strings.TrimSpace(req.TransactionType),
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		ImageURLs:       req.ImageURLs,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": property})
}

type updatePropertyRequest struct {
	CategoryID    *string  `json:"category_id"`
	Address       *string  `json:"address"`
	City          *string  `json:"city"`
	Area          *int64   `json:"area"`
	Price         *int64   `json:"price"`
	Description   *string  `json:"description"`
	Bedrooms      *int     `json:"bedrooms"`
	Bathrooms     *int     `json:"bathrooms"`
	IsFeatured    *bool    `json:"is_featured"`
	ListingStatus *string  `json:"listing_status"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
}

func (s *Server) UpdateProperty(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_property_id", "invalid property id"))
		return
	}

	var req updatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	update := propertydomain.UpdatePropertyRequest{
		Address:       req.Address,
		City:          req.City,
		Area:          req.Area,
		Price:         req.Price,
		Description:   req.Description,
		Bedrooms:      req.Bedrooms,
		Bathrooms:     req.Bathrooms,
		IsFeatured:    req.IsFeatured,
		ListingStatus: req.ListingStatus,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
	}
	if req.CategoryID != nil {
		categoryID, err := parseSnowflakeID(*req.CategoryID)
		if err != nil {
			AbortWithError(c, newValidationError("category_id", "invalid_category", "invalid category_id"))
			return
		}
		update.CategoryID = &categoryID
	}

	property, err := s.propertySvc.Update(c.Request.Context(), principal, id, update)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": property})
}

func (s *Server) DeleteProperty(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_property_id", "invalid property id"))
		return
	}

	if err := s.propertySvc.Delete(c.Request.Context(), principal, id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

type addPropertyImageRequest struct {
	ImageURL string `json:"image_url"`
}

func (s *Server) AddPropertyImage(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	propertyID, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_property_id", "invalid property id"))
		return
	}

	var req addPropertyImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	image, err := s.propertySvc.AddImage(c.Request.Context(), principal, propertydomain.AddImageRequest{
		PropertyID: propertyID,
		ImageURL:   strings.TrimSpace(req.ImageURL),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": image})
}

func (s *Server) ListPropertyImages(c *gin.Context) {
	propertyID, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_property_id", "invalid property id"))
		return
	}

	images, err := s.propertySvc.ListImages(c.Request.Context(), propertyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": images})
}

func (s *Server) DeletePropertyImage(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_image_id", "invalid image id"))
		return
	}

	if err := s.propertySvc.DeleteImage(c.Request.Context(), principal, id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}
