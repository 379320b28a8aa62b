package persistent

import (
	"estate-market/services/auth/internal/entity"
	"estate-market/services/auth/internal/model"
)

func ToUserEntity(m *model.UserModel) *entity.User {
	if m == nil {
		return nil
	}

	return &entity.User{
		ID:        m.ID,
		Email:     m.Email,
		Name:      m.Name,
		Phone:     m.Phone,
		Password:  m.Password,
		Role:      entity.UserRole(m.Role),
		Status:    entity.AccountStatus(m.Status),
		Verified:  m.Verified,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func ToUserModel(e *entity.User) *model.UserModel {
	if e == nil {
		return nil
	}

	return &model.UserModel{
		ID:        e.ID,
		Email:     e.Email,
		Name:      e.Name,
		Phone:     e.Phone,
		Password:  e.Password,
		Role:      string(e.Role),
		Status:    string(e.Status),
		Verified:  e.Verified,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}
