package postgres

import (
	"github.com/yakey01/dokterku-sub009/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.Repository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(userID int64) (*user.User, error) {
	var u user.User
	err := r.db.Where("id = ?", userID).First(&u).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetPermissions(userID int64) ([]string, error) {
	var permissions []string
	err := r.db.
		Table("permissions").
		Select("permissions.name").
		Joins("JOIN user_permissions ON user_permissions.permission_id = permissions.id").
		Where("user_permissions.user_id = ?", userID).
		Scan(&permissions).Error
	return permissions, err
}
