package repo

import (
	"flowcore"
	"flowcore/internal/api/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	Db *gorm.DB
}

func NewUserRepository() *UserRepository {
	return &UserRepository{Db: flowcore.DB}
}

func (slf *UserRepository) FindByEmail(email string) (models.User, error) {
	var user models.User
	err := slf.Db.Where("email = ?", email).First(&user).Error
	return user, err
}

func (slf *UserRepository) FindByID(id uint) (models.User, error) {
	var user models.User
	err := slf.Db.First(&user, id).Error
	return user, err
}

func (slf *UserRepository) Create(user *models.User) error {
	return slf.Db.Create(user).Error
}

// SetRefreshToken rotates the stored refresh token; an empty token logs the user out.
func (slf *UserRepository) SetRefreshToken(id uint, token string) error {
	return slf.Db.Model(&models.User{}).Where("id = ?", id).Update("refresh_token", token).Error
}

func (slf *UserRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := slf.Db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}
