package persistent

import (
	"testing"
	"time"

	"estate-market/services/auth/internal/entity"
	"estate-market/services/auth/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestToUserEntity(t *testing.T) {
	now := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	m := &model.UserModel{
		ID:        "user-1",
		Email:     "seller@example.com",
		Name:      "Sam Seller",
		Phone:     "+44 113 000",
		Password:  "hash",
		Role:      "seller",
		Status:    "suspended",
		Verified:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	u := ToUserEntity(m)

	assert.Equal(t, entity.RoleSeller, u.Role)
	assert.Equal(t, entity.StatusSuspended, u.Status)
	assert.True(t, u.Verified)
	assert.Equal(t, "hash", u.Password)
	assert.Equal(t, m, ToUserModel(u))
}

func TestMappers_Nil(t *testing.T) {
	assert.Nil(t, ToUserEntity(nil))
	assert.Nil(t, ToUserModel(nil))
}
