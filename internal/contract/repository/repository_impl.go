package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/vivendahq/vivenda/internal/contract/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, contract *domain.Contract) error {
	return db.WithContext(ctx).Create(contract).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, contract *domain.Contract) error {
	return db.WithContext(ctx).
		Omit("Property", "Tenant").
		Save(contract).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.Contract{}, "id = ?", id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Contract, error) {
	var contract domain.Contract
	err := db.WithContext(ctx).
		Preload("Property").
		Preload("Tenant").
		First(&contract, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &contract, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]*domain.Contract, error) {
	var contracts []*domain.Contract
	err := db.WithContext(ctx).
		Preload("Property").
		Preload("Tenant").
		Order("start_date desc, id desc").
		Find(&contracts).Error
	if err != nil {
		return nil, err
	}
	return contracts, nil
}

func (r *repo) ListByProperty(ctx context.Context, db *gorm.DB, propertyID snowflake.ID) ([]*domain.Contract, error) {
	var contracts []*domain.Contract
	err := db.WithContext(ctx).
		Preload("Tenant").
		Where("property_id = ?", propertyID).
		Order("start_date desc, id desc").
		Find(&contracts).Error
	if err != nil {
		return nil, err
	}
	return contracts, nil
}

func (r *repo) Exists(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Contract{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
