package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/vivendahq/vivenda/internal/property/domain"
	"github.com/vivendahq/vivenda/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, property *domain.Property) error {
	return db.WithContext(ctx).Create(property).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, property *domain.Property) error {
	return db.WithContext(ctx).Save(property).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.Property{}, "id = ?", id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Property, error) {
	var property domain.Property
	err := db.WithContext(ctx).
		Preload("Images").
		Preload("Category").
		Preload("Owner").
		First(&property, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &property, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Pagination) ([]*domain.Property, int64, error) {
	stmt := r.applyFilter(db.WithContext(ctx).Model(&domain.Property{}), filter)

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var properties []*domain.Property
	err := page.Apply(stmt).
		Preload("Images").
		Preload("Category").
		Preload("Owner").
		Order("created_at desc, id desc").
		Find(&properties).Error
	if err != nil {
		return nil, 0, err
	}
	return properties, total, nil
}

// ListWithinBounds returns every row inside the filter's bounding box,
// unpaged. The service applies the exact distance check and pages the
// result, so radius totals only count rows that actually fall inside the
// circle.
func (r *repo) ListWithinBounds(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.Property, error) {
	stmt := r.applyFilter(db.WithContext(ctx).Model(&domain.Property{}), filter)

	var properties []*domain.Property
	err := stmt.
		Preload("Images").
		Preload("Category").
		Preload("Owner").
		Order("created_at desc, id desc").
		Find(&properties).Error
	if err != nil {
		return nil, err
	}
	return properties, nil
}

func (r *repo) applyFilter(stmt *gorm.DB, filter domain.ListFilter) *gorm.DB {
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		stmt = stmt.Where("city LIKE ? OR address LIKE ? OR description LIKE ?", like, like, like)
	}
	if filter.City != "" {
		stmt = stmt.Where("city LIKE ?", "%"+filter.City+"%")
	}
	if filter.CategoryID != 0 {
		stmt = stmt.Where("category_id = ?", filter.CategoryID)
	}
	if filter.OwnerID != 0 {
		stmt = stmt.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.TransactionType != "" {
		stmt = stmt.Where("transaction_type = ?", filter.TransactionType)
	}
	if filter.ListingStatus != nil {
		stmt = stmt.Where("listing_status = ?", *filter.ListingStatus)
	}
	if filter.Featured != nil {
		stmt = stmt.Where("is_featured = ?", *filter.Featured)
	}
	if filter.MinPrice != nil {
		stmt = stmt.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		stmt = stmt.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.Latitude != nil && filter.Longitude != nil && filter.RadiusKm > 0 {
		// Bounding-box prefilter; the service re-checks exact distance.
		minLat, maxLat, minLng, maxLng := domain.BoundingBox(*filter.Latitude, *filter.Longitude, filter.RadiusKm)
		stmt = stmt.Where("latitude BETWEEN ? AND ?", minLat, maxLat).
			Where("longitude BETWEEN ? AND ?", minLng, maxLng)
	}
	return stmt
}

func (r *repo) Featured(ctx context.Context, db *gorm.DB, limit int) ([]*domain.Property, error) {
	var properties []*domain.Property
	err := db.WithContext(ctx).
		Preload("Images").
		Where("is_featured = ?", true).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&properties).Error
	if err != nil {
		return nil, err
	}
	return properties, nil
}

func (r *repo) Exists(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Property{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) SetListingStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.ListingStatus) error {
	return db.WithContext(ctx).
		Model(&domain.Property{}).
		Where("id = ?", id).
		Update("listing_status", status).Error
}

func (r *repo) InsertImage(ctx context.Context, db *gorm.DB, image *domain.PropertyImage) error {
	return db.WithContext(ctx).Create(image).Error
}

func (r *repo) ListImages(ctx context.Context, db *gorm.DB, propertyID snowflake.ID) ([]domain.PropertyImage, error) {
	var images []domain.PropertyImage
	err := db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("created_at asc, id asc").
		Find(&images).Error
	if err != nil {
		return nil, err
	}
	return images, nil
}

func (r *repo) DeleteImage(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.PropertyImage{}, "id = ?", id).Error
}

func (r *repo) DeleteImagesForProperty(ctx context.Context, db *gorm.DB, propertyID snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.PropertyImage{}, "property_id = ?", propertyID).Error
}

func (r *repo) FindImageByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.PropertyImage, error) {
	var image domain.PropertyImage
	err := db.WithContext(ctx).First(&image, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &image, nil
}
