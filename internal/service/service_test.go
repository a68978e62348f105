package service

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hsliukangle/gate/internal/model"
	"github.com/hsliukangle/gate/internal/pkg/database"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Order{},
		&model.EnterLog{},
		&model.Device{},
	))

	database.DB = db
	return db
}

func createTestUser(t *testing.T, openid string) *model.User {
	t.Helper()

	user := &model.User{
		OpenID:   openid,
		Nickname: "测试用户",
		Phone:    "13800000000",
	}
	require.NoError(t, database.DB.Create(user).Error)
	return user
}
