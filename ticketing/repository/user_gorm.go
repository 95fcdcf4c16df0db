package repository

import (
	"context"

	"github.com/projeto-rodrigo/chatia/ticketing/domain"
	"gorm.io/gorm"
)

type userModel struct {
	ID              uint   `gorm:"primaryKey;autoIncrement"`
	TenantID        uint   `gorm:"index:idx_users_tenant;not null"`
	Name            string `gorm:"not null"`
	FarewellMessage string
}

func (userModel) TableName() string {
	return "users"
}

type UserGormRepository struct {
	db *gorm.DB
}

func NewUserGormRepository(db *gorm.DB) *UserGormRepository {
	return &UserGormRepository{db: db}
}

func (r *UserGormRepository) InitSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&userModel{})
}

func (r *UserGormRepository) FindByID(ctx context.Context, tenantID, id uint) (*domain.User, error) {
	var m userModel
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&m, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &domain.User{
		ID:              m.ID,
		TenantID:        m.TenantID,
		Name:            m.Name,
		FarewellMessage: m.FarewellMessage,
	}, nil
}
