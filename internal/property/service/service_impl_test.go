package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	authdomain "github.com/vivendahq/vivenda/internal/auth/domain"
	categorydomain "github.com/vivendahq/vivenda/internal/category/domain"
	categoryrepo "github.com/vivendahq/vivenda/internal/category/repository"
	"github.com/vivendahq/vivenda/internal/property/domain"
	propertyrepo "github.com/vivendahq/vivenda/internal/property/repository"
	userdomain "github.com/vivendahq/vivenda/internal/user/domain"
	"github.com/vivendahq/vivenda/pkg/db/pagination"
)

type testEnv struct {
	svc      domain.Service
	db       *gorm.DB
	node     *snowflake.Node
	owner    userdomain.User
	stranger userdomain.User
	category categorydomain.Category
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&userdomain.User{},
		&categorydomain.Category{},
		&domain.Property{},
		&domain.PropertyImage{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Repo:       propertyrepo.Provide(),
		Categories: categoryrepo.Provide(),
	})

	env := &testEnv{svc: svc, db: db, node: node}
	env.owner = userdomain.User{
		ID: node.Generate(), Name: "Marta Ruiz", Email: "marta@example.com",
		PasswordHash: "x", Role: userdomain.RoleOwner,
	}
	env.stranger = userdomain.User{
		ID: node.Generate(), Name: "Diego Castro", Email: "diego@example.com",
		PasswordHash: "x", Role: userdomain.RoleTenant,
	}
	require.NoError(t, db.Create(&env.owner).Error)
	require.NoError(t, db.Create(&env.stranger).Error)

	env.category = categorydomain.Category{ID: node.Generate(), Name: "Casa"}
	require.NoError(t, db.Create(&env.category).Error)
	return env
}

func (e *testEnv) asOwner() authdomain.Principal {
	return authdomain.Principal{UserID: e.owner.ID, Role: userdomain.RoleOwner}
}

func (e *testEnv) asStranger() authdomain.Principal {
	return authdomain.Principal{UserID: e.stranger.ID, Role: userdomain.RoleTenant}
}

func TestCreateProperty(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	property, err := env.svc.Create(ctx, env.asOwner(), domain.CreatePropertyRequest{
		CategoryID:  env.category.ID,
		Address:     "Calle 80 #12-34",
		City:        "Medellin",
		Price:       1_200_00,
		Bedrooms:    3,
		Bathrooms:   2,
		ImageURLs:   []string{"https://img.example.com/1.jpg", " "},
		Description: "  Casa con patio  ",
	})
	require.NoError(t, err)
	require.Equal(t, env.owner.ID, property.OwnerID)
	require.Equal(t, domain.TransactionRent, property.TransactionType)
	require.Equal(t, domain.ListingAvailable, property.ListingStatus)
	require.Equal(t, "Casa con patio", property.Description)
	require.Len(t, property.Images, 1)

	loaded, err := env.svc.GetByID(ctx, property.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Images, 1)
	require.NotNil(t, loaded.Category)
	require.NotNil(t, loaded.Owner)
}

func TestCreatePropertyValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Create(ctx, env.asOwner(), domain.CreatePropertyRequest{
		CategoryID: env.category.ID, Address: "  ", City: "Medellin",
	})
	require.ErrorIs(t, err, domain.ErrInvalidAddress)

	_, err = env.svc.Create(ctx, env.asOwner(), domain.CreatePropertyRequest{
		CategoryID: env.category.ID, Address: "Calle 80", City: "Medellin", Price: -1,
	})
	require.ErrorIs(t, err, domain.ErrInvalidPrice)

	_, err = env.svc.Create(ctx, env.asOwner(), domain.CreatePropertyRequest{
		CategoryID: env.category.ID, Address: "Calle 80", City: "Medellin",
		TransactionType: "lease",
	})
	require.ErrorIs(t, err, domain.ErrInvalidTransactionType)

	_, err = env.svc.Create(ctx, env.asOwner(), domain.CreatePropertyRequest{
		CategoryID: env.node.Generate(), Address: "Calle 80", City: "Medellin",
	})
	require.ErrorIs(t, err, domain.ErrInvalidCategory)
}

func TestUpdatePropertyOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	property, err := env.svc.Create(ctx, env.asOwner(), domain.CreatePropertyRequest{
		CategoryID: env.category.ID, Address: "Calle 80", City: "Medellin", Price: 100,
	})
	require.NoError(t, err)

	newPrice := int64(200)
	_, err = env.svc.Update(ctx, env.asStranger(), property.ID, domain.UpdatePropertyRequest{Price: &newPrice})
	require.ErrorIs(t, err, domain.ErrNotOwner)

	updated, err := env.svc.Update(ctx, env.asOwner(), property.ID, domain.UpdatePropertyRequest{Price: &newPrice})
	require.NoError(t, err)
	require.Equal(t, int64(200), updated.Price)

	// Admins may edit listings they do not own.
	admin := authdomain.Principal{UserID: env.node.Generate(), Role: userdomain.RoleAdmin}
	status := string(domain.ListingInactive)
	updated, err = env.svc.Update(ctx, admin, property.ID, domain.UpdatePropertyRequest{ListingStatus: &status})
	require.NoError(t, err)
	require.Equal(t, domain.ListingInactive, updated.ListingStatus)

	bad := "archived"
	_, err = env.svc.Update(ctx, env.asOwner(), property.ID, domain.UpdatePropertyRequest{ListingStatus: &bad})
	require.ErrorIs(t, err, domain.ErrInvalidListingStatus)
}

func TestListPropertiesFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Create(ctx, env.asOwner(), domain.CreatePropertyRequest{
		CategoryID: env.category.ID, Address: "Calle 80", City: "Medellin", Price: 100,
	})
	require.NoError(t, err)
	featured, err := env.svc.Create(ctx, env.asOwner(), domain.CreatePropertyRequest{
		CategoryID: env.category.ID, Address: "Carrera 7", City: "Bogota", Price: 500,
		IsFeatured: true, TransactionType: "sale",
	})
	require.NoError(t, err)

	resp, err := env.svc.List(ctx, domain.ListPropertiesRequest{
		Filter: domain.ListFilter{City: "Bogota"},
	})
	require.NoError(t, err)
	require.Len(t, resp.Properties, 1)
	require.Equal(t, featured.ID, resp.Properties[0].ID)
	require.EqualValues(t, 1, resp.TotalItems)

	minPrice := int64(200)
	resp, err = env.svc.List(ctx, domain.ListPropertiesRequest{
		Filter: domain.ListFilter{MinPrice: &minPrice},
	})
	require.NoError(t, err)
	require.Len(t, resp.Properties, 1)

	resp, err = env.svc.List(ctx, domain.ListPropertiesRequest{
		Filter: domain.ListFilter{TransactionType: domain.TransactionRent},
	})
	require.NoError(t, err)
	require.Len(t, resp.Properties, 1)

	resp, err = env.svc.List(ctx, domain.ListPropertiesRequest{
		Filter: domain.ListFilter{Query: "Carrera"},
	})
	require.NoError(t, err)
	require.Len(t, resp.Properties, 1)

	list, err := env.svc.Featured(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, featured.ID, list[0].ID)
}

func TestListPropertiesRadiusFilter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	medellinLat, medellinLng := 6.2442, -75.5812
	bogotaLat, bogotaLng := 4.7110, -74.0721

	near, err := env.svc.Create(ctx, env.asOwner(), domain.CreatePropertyRequest{
		CategoryID: env.category.ID, Address: "Calle 80", City: "Medellin",
		Latitude: &medellinLat, Longitude: &medellinLng,
	})
	require.NoError(t, err)
	_, err = env.svc.Create(ctx, env.asOwner(), domain.CreatePropertyRequest{
		CategoryID: env.category.ID, Address: "Carrera 7", City: "Bogota",
		Latitude: &bogotaLat, Longitude: &bogotaLng,
	})
	require.NoError(t, err)
	// No coordinates: excluded from radius searches.
	_, err = env.svc.Create(ctx, env.asOwner(), domain.CreatePropertyRequest{
		CategoryID: env.category.ID, Address: "Calle 10", City: "Medellin",
	})
	require.NoError(t, err)
	// Inside the bounding box but ~13km from the center, so the exact
	// distance check must drop it from results and totals alike.
	cornerLat, cornerLng := 6.335, -75.485
	_, err = env.svc.Create(ctx, env.asOwner(), domain.CreatePropertyRequest{
		CategoryID: env.category.ID, Address: "Vereda El Alto", City: "Bello",
		Latitude: &cornerLat, Longitude: &cornerLng,
	})
	require.NoError(t, err)

	lat, lng := 6.25, -75.57
	resp, err := env.svc.List(ctx, domain.ListPropertiesRequest{
		Filter: domain.ListFilter{Latitude: &lat, Longitude: &lng, RadiusKm: 10},
	})
	require.NoError(t, err)
	require.Len(t, resp.Properties, 1)
	require.Equal(t, near.ID, resp.Properties[0].ID)
	require.EqualValues(t, 1, resp.TotalItems)
	require.Equal(t, 1, resp.TotalPages)
	require.False(t, resp.HasMore)
}

func TestListPropertiesPagination(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := env.svc.Create(ctx, env.asOwner(), domain.CreatePropertyRequest{
			CategoryID: env.category.ID, Address: "Calle 80", City: "Medellin",
		})
		require.NoError(t, err)
	}

	resp, err := env.svc.List(ctx, domain.ListPropertiesRequest{
		Page: pagination.Pagination{Page: 1, PageSize: 2},
	})
	require.NoError(t, err)
	require.Len(t, resp.Properties, 2)
	require.EqualValues(t, 3, resp.TotalItems)
	require.Equal(t, 2, resp.TotalPages)
	require.True(t, resp.HasMore)

	resp, err = env.svc.List(ctx, domain.ListPropertiesRequest{
		Page: pagination.Pagination{Page: 2, PageSize: 2},
	})
	require.NoError(t, err)
	require.Len(t, resp.Properties, 1)
	require.False(t, resp.HasMore)
}

func TestDeletePropertyRemovesImages(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	property, err := env.svc.Create(ctx, env.asOwner(), domain.CreatePropertyRequest{
		CategoryID: env.category.ID, Address: "Calle 80", City: "Medellin",
		ImageURLs: []string{"https://img.example.com/1.jpg", "https://img.example.com/2.jpg"},
	})
	require.NoError(t, err)

	require.ErrorIs(t, env.svc.Delete(ctx, env.asStranger(), property.ID), domain.ErrNotOwner)
	require.NoError(t, env.svc.Delete(ctx, env.asOwner(), property.ID))

	var properties, images int64
	require.NoError(t, env.db.Model(&domain.Property{}).Count(&properties).Error)
	require.NoError(t, env.db.Model(&domain.PropertyImage{}).Count(&images).Error)
	require.Zero(t, properties)
	require.Zero(t, images)

	_, err = env.svc.GetByID(ctx, property.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestImageOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	property, err := env.svc.Create(ctx, env.asOwner(), domain.CreatePropertyRequest{
		CategoryID: env.category.ID, Address: "Calle 80", City: "Medellin",
	})
	require.NoError(t, err)

	_, err = env.svc.AddImage(ctx, env.asStranger(), domain.AddImageRequest{
		PropertyID: property.ID, ImageURL: "https://img.example.com/1.jpg",
	})
	require.ErrorIs(t, err, domain.ErrNotOwner)

	image, err := env.svc.AddImage(ctx, env.asOwner(), domain.AddImageRequest{
		PropertyID: property.ID, ImageURL: "https://img.example.com/1.jpg",
	})
	require.NoError(t, err)

	images, err := env.svc.ListImages(ctx, property.ID)
	require.NoError(t, err)
	require.Len(t, images, 1)

	require.ErrorIs(t, env.svc.DeleteImage(ctx, env.asStranger(), image.ID), domain.ErrNotOwner)
	require.NoError(t, env.svc.DeleteImage(ctx, env.asOwner(), image.ID))
	require.ErrorIs(t, env.svc.DeleteImage(ctx, env.asOwner(), image.ID), domain.ErrImageNotFound)
}
