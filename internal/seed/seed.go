// Package seed bootstraps the records a fresh install needs: the base
// property categories and a local admin user. Every helper is idempotent.
package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/vivendahq/vivenda/internal/auth/password"
	categorydomain "github.com/vivendahq/vivenda/internal/category/domain"
	propertydomain "github.com/vivendahq/vivenda/internal/property/domain"
	userdomain "github.com/vivendahq/vivenda/internal/user/domain"
)

const (
	defaultAdminName     = "Vivenda Admin"
	defaultAdminEmail    = "admin@vivenda.local"
	defaultAdminPassword = "admin"

	demoOwnerEmail  = "owner@vivenda.local"
	demoTenantEmail = "tenant@vivenda.local"
	demoPassword    = "vivenda"
)

var baseCategories = []categorydomain.Category{
	{Name: "Casa", Description: "Single family houses"},
	{Name: "Apartamento", Description: "Apartments and flats"},
	{Name: "Local", Description: "Commercial spaces"},
}

// EnsureBaseData seeds the base categories and the default admin user.
func EnsureBaseData(db *gorm.DB, node *snowflake.Node) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureCategoriesTx(ctx, tx, node); err != nil {
			return err
		}
		return ensureAdminTx(ctx, tx, node)
	})
}

// EnsureDemoData seeds a demo owner, a demo tenant and a pair of listings so
// a fresh local install has something to browse. Keyed on the demo owner's
// email, so reruns are no-ops.
func EnsureDemoData(db *gorm.DB, node *snowflake.Node) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing userdomain.User
		err := tx.WithContext(ctx).Where("email = ?", demoOwnerEmail).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := password.Hash(demoPassword)
		if err != nil {
			return err
		}
		now := time.Now().UTC()

		owner := userdomain.User{
			ID: node.Generate(), Name: "Marta Ruiz", Email: demoOwnerEmail,
			PasswordHash: hashed, Role: userdomain.RoleOwner,
			CreatedAt: now, UpdatedAt: now,
		}
		tenant := userdomain.User{
			ID: node.Generate(), Name: "Diego Castro", Email: demoTenantEmail,
			PasswordHash: hashed, Role: userdomain.RoleTenant,
			CreatedAt: now, UpdatedAt: now,
		}
		if err := tx.WithContext(ctx).Create(&owner).Error; err != nil {
			return err
		}
		if err := tx.WithContext(ctx).Create(&tenant).Error; err != nil {
			return err
		}

		var house, flat categorydomain.Category
		if err := tx.WithContext(ctx).Where("name = ?", "Casa").First(&house).Error; err != nil {
			return err
		}
		if err := tx.WithContext(ctx).Where("name = ?", "Apartamento").First(&flat).Error; err != nil {
			return err
		}

		lat, lng := 6.2442, -75.5812
		listings := []propertydomain.Property{
			{
				ID: node.Generate(), OwnerID: owner.ID, CategoryID: flat.ID,
				Address: "Carrera 43 #10-15", City: "Medellin",
				Area: 78, Price: 1_800_000_00, Bedrooms: 2, Bathrooms: 2,
				IsFeatured:      true,
				TransactionType: propertydomain.TransactionRent,
				ListingStatus:   propertydomain.ListingAvailable,
				Latitude:        &lat, Longitude: &lng,
				CreatedAt: now, UpdatedAt: now,
			},
			{
				ID: node.Generate(), OwnerID: owner.ID, CategoryID: house.ID,
				Address: "Calle 127 #15-32", City: "Bogota",
				Area: 145, Price: 520_000_000_00, Bedrooms: 4, Bathrooms: 3,
				TransactionType: propertydomain.TransactionSale,
				ListingStatus:   propertydomain.ListingAvailable,
				CreatedAt:       now, UpdatedAt: now,
			},
		}
		for i := range listings {
			if err := tx.WithContext(ctx).Create(&listings[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func ensureCategoriesTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	for _, base := range baseCategories {
		var category categorydomain.Category
		err := tx.WithContext(ctx).Where("name = ?", base.Name).First(&category).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		now := time.Now().UTC()
		category = categorydomain.Category{
			ID:          node.Generate(),
			Name:        base.Name,
			Description: base.Description,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.WithContext(ctx).Create(&category).Error; err != nil {
			return err
		}
	}
	return nil
}

func ensureAdminTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var user userdomain.User
	err := tx.WithContext(ctx).Where("email = ?", defaultAdminEmail).First(&user).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := password.Hash(defaultAdminPassword)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	user = userdomain.User{
		ID:           node.Generate(),
		Name:         defaultAdminName,
		Email:        strings.ToLower(defaultAdminEmail),
		PasswordHash: hashed,
		Role:         userdomain.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return tx.WithContext(ctx).Create(&user).Error
}
