package seed

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	categorydomain "github.com/vivendahq/vivenda/internal/category/domain"
	propertydomain "github.com/vivendahq/vivenda/internal/property/domain"
	userdomain "github.com/vivendahq/vivenda/internal/user/domain"
)

func newTestDB(t *testing.T) (*gorm.DB, *snowflake.Node) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&userdomain.User{},
		&categorydomain.Category{},
		&propertydomain.Property{},
		&propertydomain.PropertyImage{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return db, node
}

func TestEnsureBaseDataIdempotent(t *testing.T) {
	db, node := newTestDB(t)

	require.NoError(t, EnsureBaseData(db, node))
	require.NoError(t, EnsureBaseData(db, node))

	var categories int64
	require.NoError(t, db.Model(&categorydomain.Category{}).Count(&categories).Error)
	require.EqualValues(t, len(baseCategories), categories)

	var admin userdomain.User
	require.NoError(t, db.Where("email = ?", defaultAdminEmail).First(&admin).Error)
	require.Equal(t, userdomain.RoleAdmin, admin.Role)
	require.NotEqual(t, defaultAdminPassword, admin.PasswordHash)
}

func TestEnsureDemoDataIdempotent(t *testing.T) {
	db, node := newTestDB(t)
	require.NoError(t, EnsureBaseData(db, node))

	require.NoError(t, EnsureDemoData(db, node))
	require.NoError(t, EnsureDemoData(db, node))

	var owner userdomain.User
	require.NoError(t, db.Where("email = ?", demoOwnerEmail).First(&owner).Error)
	require.Equal(t, userdomain.RoleOwner, owner.Role)

	var tenant userdomain.User
	require.NoError(t, db.Where("email = ?", demoTenantEmail).First(&tenant).Error)
	require.Equal(t, userdomain.RoleTenant, tenant.Role)

	var listings int64
	require.NoError(t, db.Model(&propertydomain.Property{}).
		Where("owner_id = ?", owner.ID).
		Count(&listings).Error)
	require.EqualValues(t, 2, listings)
}
