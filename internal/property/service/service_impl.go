package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/vivendahq/vivenda/internal/auth/domain"
	categorydomain "github.com/vivendahq/vivenda/internal/category/domain"
	"github.com/vivendahq/vivenda/internal/property/domain"
	"github.com/vivendahq/vivenda/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 12
	ownerPageSize   = 8
	featuredLimit   = 6
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       domain.Repository
	Categories categorydomain.Repository
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       domain.Repository
	categories categorydomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("property.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		categories: p.Categories,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListPropertiesRequest) (domain.ListPropertiesResponse, error) {
	return s.list(ctx, req.Filter, req.Page.Normalize(defaultPageSize))
}

func (s *Service) ByOwner(ctx context.Context, ownerID snowflake.ID, req domain.ListPropertiesRequest) (domain.ListPropertiesResponse, error) {
	if ownerID == 0 {
		return domain.ListPropertiesResponse{}, domain.ErrInvalidID
	}
	filter := req.Filter
	filter.OwnerID = ownerID
	return s.list(ctx, filter, req.Page.Normalize(ownerPageSize))
}

func (s *Service) list(ctx context.Context, filter domain.ListFilter, page pagination.Pagination) (domain.ListPropertiesResponse, error) {
	if filter.Latitude != nil && filter.Longitude != nil && filter.RadiusKm > 0 {
		return s.listWithinRadius(ctx, filter, page)
	}

	items, total, err := s.repo.List(ctx, s.db, filter, page)
	if err != nil {
		return domain.ListPropertiesResponse{}, err
	}

	properties := make([]domain.Property, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		properties = append(properties, *item)
	}

	return domain.ListPropertiesResponse{
		PageInfo:   pagination.BuildPageInfo(page, total),
		Properties: properties,
	}, nil
}

// listWithinRadius pulls the bounding-box candidates unpaged, applies the
// exact distance check, and pages the surviving rows. Counting before the
// distance check would include bounding-box corner rows the circle
// excludes, overstating totals and shorting pages.
func (s *Service) listWithinRadius(ctx context.Context, filter domain.ListFilter, page pagination.Pagination) (domain.ListPropertiesResponse, error) {
	items, err := s.repo.ListWithinBounds(ctx, s.db, filter)
	if err != nil {
		return domain.ListPropertiesResponse{}, err
	}

	matched := make([]domain.Property, 0, len(items))
	for _, item := range items {
		if item == nil || item.Latitude == nil || item.Longitude == nil {
			continue
		}
		distance := domain.DistanceKm(*filter.Latitude, *filter.Longitude, *item.Latitude, *item.Longitude)
		if distance <= filter.RadiusKm {
			matched = append(matched, *item)
		}
	}

	total := int64(len(matched))
	start := page.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + page.PageSize
	if end > len(matched) {
		end = len(matched)
	}

	return domain.ListPropertiesResponse{
		PageInfo:   pagination.BuildPageInfo(page, total),
		Properties: matched[start:end],
	}, nil
}

func (s *Service) Featured(ctx context.Context) ([]domain.Property, error) {
	items, err := s.repo.Featured(ctx, s.db, featuredLimit)
	if err != nil {
		return nil, err
	}
	properties := make([]domain.Property, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		properties = append(properties, *item)
	}
	return properties, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Property, error) {
	if id == 0 {
		return domain.Property{}, domain.ErrInvalidID
	}
	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Property{}, err
	}
	if item == nil {
		return domain.Property{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Create(ctx context.Context, actor authdomain.Principal, req domain.CreatePropertyRequest) (domain.Property, error) {
	address := strings.TrimSpace(req.Address)
	if address == "" {
		return domain.Property{}, domain.ErrInvalidAddress
	}
	city := strings.TrimSpace(req.City)
	if city == "" {
		return domain.Property{}, domain.ErrInvalidCity
	}
	if req.Price < 0 {
		return domain.Property{}, domain.ErrInvalidPrice
	}

	transactionType := domain.TransactionRent
	if req.TransactionType != "" {
		parsed, ok := domain.ParseTransactionType(req.TransactionType)
		if !ok {
			return domain.Property{}, domain.ErrInvalidTransactionType
		}
		transactionType = parsed
	}

	ok, err := s.categories.Exists(ctx, s.db, req.CategoryID)
	if err != nil {
		return domain.Property{}, err
	}
	if !ok {
		return domain.Property{}, domain.ErrInvalidCategory
	}

	now := time.Now().UTC()
	property := domain.Property{
		ID:              s.genID.Generate(),
		OwnerID:         actor.UserID,
		CategoryID:      req.CategoryID,
		Address:         address,
		City:            city,
		Area:            req.Area,
		Price:           req.Price,
		Description:     strings.TrimSpace(req.Description),
		Bedrooms:        req.Bedrooms,
		Bathrooms:       req.Bathrooms,
		IsFeatured:      req.IsFeatured,
		TransactionType: transactionType,
		ListingStatus:   domain.ListingAvailable,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &property); err != nil {
			return err
		}
		for _, url := range req.ImageURLs {
			url = strings.TrimSpace(url)
			if url == "" {
				continue
			}
			image := domain.PropertyImage{
				ID:         s.genID.Generate(),
				PropertyID: property.ID,
				ImageURL:   url,
				CreatedAt:  now,
			}
			if err := s.repo.InsertImage(ctx, tx, &image); err != nil {
				return err
			}
			property.Images = append(property.Images, image)
		}
		return nil
	})
	if err != nil {
		return domain.Property{}, err
	}

	return property, nil
}

func (s *Service) Update(ctx context.Context, actor authdomain.Principal, id snowflake.ID, req domain.UpdatePropertyRequest) (domain.Property, error) {
	property, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return domain.Property{}, err
	}

	if req.CategoryID != nil {
		ok, err := s.categories.Exists(ctx, s.db, *req.CategoryID)
		if err != nil {
			return domain.Property{}, err
		}
		if !ok {
			return domain.Property{}, domain.ErrInvalidCategory
		}
		property.CategoryID = *req.CategoryID
	}
	if req.Address != nil {
		address := strings.TrimSpace(*req.Address)
		if address == "" {
			return domain.Property{}, domain.ErrInvalidAddress
		}
		property.Address = address
	}
	if req.City != nil {
		city := strings.TrimSpace(*req.City)
		if city == "" {
			return domain.Property{}, domain.ErrInvalidCity
		}
		property.City = city
	}
	if req.Area != nil {
		property.Area = *req.Area
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return domain.Property{}, domain.ErrInvalidPrice
		}
		property.Price = *req.Price
	}
	if req.Description != nil {
		property.Description = strings.TrimSpace(*req.Description)
	}
	if req.Bedrooms != nil {
		property.Bedrooms = *req.Bedrooms
	}
	if req.Bathrooms != nil {
		property.Bathrooms = *req.Bathrooms
	}
	if req.IsFeatured != nil {
		property.IsFeatured = *req.IsFeatured
	}
	if req.ListingStatus != nil {
		status, ok := domain.ParseListingStatus(*req.ListingStatus)
		if !ok {
			return domain.Property{}, domain.ErrInvalidListingStatus
		}
		property.ListingStatus = status
	}
	if req.Latitude != nil {
		property.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		property.Longitude = req.Longitude
	}
	property.UpdatedAt = time.Now().UTC()

	// Save only the base row; preloaded relations stay untouched.
	persisted := *property
	persisted.Images = nil
	persisted.Category = nil
	persisted.Owner = nil
	if err := s.repo.Update(ctx, s.db, &persisted); err != nil {
		return domain.Property{}, err
	}

	return *property, nil
}

func (s *Service) Delete(ctx context.Context, actor authdomain.Principal, id snowflake.ID) error {
	if _, err := s.loadOwned(ctx, actor, id); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.DeleteImagesForProperty(ctx, tx, id); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, id)
	})
}

func (s *Service) AddImage(ctx context.Context, actor authdomain.Principal, req domain.AddImageRequest) (domain.PropertyImage, error) {
	url := strings.TrimSpace(req.ImageURL)
	if url == "" {
		return domain.PropertyImage{}, domain.ErrInvalidImageURL
	}
	if _, err := s.loadOwned(ctx, actor, req.PropertyID); err != nil {
		return domain.PropertyImage{}, err
	}

	image := domain.PropertyImage{
		ID:         s.genID.Generate(),
		PropertyID: req.PropertyID,
		ImageURL:   url,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.InsertImage(ctx, s.db, &image); err != nil {
		return domain.PropertyImage{}, err
	}
	return image, nil
}

func (s *Service) ListImages(ctx context.Context, propertyID snowflake.ID) ([]domain.PropertyImage, error) {
	if propertyID == 0 {
		return nil, domain.ErrInvalidID
	}
	return s.repo.ListImages(ctx, s.db, propertyID)
}

func (s *Service) DeleteImage(ctx context.Context, actor authdomain.Principal, id snowflake.ID) error {
	image, err := s.repo.FindImageByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if image == nil {
		return domain.ErrImageNotFound
	}
	if _, err := s.loadOwned(ctx, actor, image.PropertyID); err != nil {
		return err
	}
	return s.repo.DeleteImage(ctx, s.db, id)
}

// loadOwned fetches a property and enforces that the actor owns it or is an
// admin.
func (s *Service) loadOwned(ctx context.Context, actor authdomain.Principal, id snowflake.ID) (*domain.Property, error) {
	if id == 0 {
		return nil, domain.ErrInvalidID
	}
	property, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, domain.ErrNotFound
	}
	if property.OwnerID != actor.UserID && !actor.IsAdmin() {
		return nil, domain.ErrNotOwner
	}
	return property, nil
}
