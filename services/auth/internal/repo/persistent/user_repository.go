package persistent

import (
	"context"
	"errors"
	"strings"

	"estate-market/services/auth/internal/entity"
	"estate-market/services/auth/internal/model"

	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByID(ctx context.Context, id string) (*entity.User, error)
	UpdateProfile(ctx context.Context, id string, patch entity.ProfilePatch) error
	UpdateStatus(ctx context.Context, id string, status entity.AccountStatus) error
	SetVerified(ctx context.Context, id string, verified bool) error
	List(ctx context.Context, filter entity.UserFilter, limit, offset int) ([]*entity.User, int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "SQLSTATE 23505")
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	userModel := ToUserModel(user)
	if err := r.db.WithContext(ctx).Create(userModel).Error; err != nil {
		if isUniqueViolation(err) {
			return entity.ErrEmailTaken
		}
		return err
	}
	*user = *ToUserEntity(userModel)
	return nil
}

func (r *userRepository) first(ctx context.Context, query string, arg interface{}) (*entity.User, error) {
	var userModel model.UserModel
	err := r.db.WithContext(ctx).Where(query, arg).First(&userModel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return ToUserEntity(&userModel), nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *userRepository) updates(ctx context.Context, id string, values map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&model.UserModel{}).Where("id = ?", id).Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id string, patch entity.ProfilePatch) error {
	values := map[string]interface{}{}
	if patch.Name != nil {
		values["name"] = *patch.Name
	}
	if patch.Phone != nil {
		values["phone"] = *patch.Phone
	}
	if len(values) == 0 {
		_, err := r.GetByID(ctx, id)
		return err
	}
	return r.updates(ctx, id, values)
}

func (r *userRepository) UpdateStatus(ctx context.Context, id string, status entity.AccountStatus) error {
	return r.updates(ctx, id, map[string]interface{}{"status": string(status)})
}

func (r *userRepository) SetVerified(ctx context.Context, id string, verified bool) error {
	return r.updates(ctx, id, map[string]interface{}{"verified": verified})
}

func (r *userRepository) List(ctx context.Context, filter entity.UserFilter, limit, offset int) ([]*entity.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.UserModel{})
	if filter.Role != "" {
		query = query.Where("role = ?", string(filter.Role))
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(name) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var userModels []model.UserModel
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&userModels).Error; err != nil {
		return nil, 0, err
	}

	users := make([]*entity.User, len(userModels))
	for i := range userModels {
		users[i] = ToUserEntity(&userModels[i])
	}
	return users, total, nil
}
