package repository

import (
	"context"

	"github.com/projeto-rodrigo/chatia/ticketing/domain"
	"gorm.io/gorm"
)

type tenantSettingsModel struct {
	TenantID uint `gorm:"primaryKey;autoIncrement:false"`

	EnableLGPD          bool `gorm:"default:false"`
	LgpdMessage         string
	LgpdConsentRequired bool `gorm:"default:false"`

	DirectTicketsToWallets    bool `gorm:"default:false"`
	UserRating                bool `gorm:"default:false"`
	SendSignMessage           bool `gorm:"default:false"`
	SendFarewellWaitingTicket bool `gorm:"default:false"`
}

func (tenantSettingsModel) TableName() string {
	return "tenant_settings"
}

type channelAccountModel struct {
	ID       uint   `gorm:"primaryKey;autoIncrement"`
	TenantID uint   `gorm:"index:idx_channels_tenant;not null"`
	Name     string `gorm:"not null"`

	TimeCreateNewTicket int  `gorm:"default:0"`
	GroupAsTicket       bool `gorm:"default:false"`

	RatingMessage     string
	ComplationMessage string

	Connected bool `gorm:"default:false"`
}

func (channelAccountModel) TableName() string {
	return "channel_accounts"
}

type SettingsGormRepository struct {
	db *gorm.DB
}

func NewSettingsGormRepository(db *gorm.DB) *SettingsGormRepository {
	return &SettingsGormRepository{db: db}
}

func (r *SettingsGormRepository) InitSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&tenantSettingsModel{}, &channelAccountModel{})
}

// TenantSettings returns the tenant's routing settings. Tenants without a
// row get the zero-value defaults (everything disabled).
func (r *SettingsGormRepository) TenantSettings(ctx context.Context, tenantID uint) (*domain.TenantSettings, error) {
	var m tenantSettingsModel
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return &domain.TenantSettings{TenantID: tenantID}, nil
		}
		return nil, err
	}
	return &domain.TenantSettings{
		TenantID:                  m.TenantID,
		EnableLGPD:                m.EnableLGPD,
		LgpdMessage:               m.LgpdMessage,
		LgpdConsentRequired:       m.LgpdConsentRequired,
		DirectTicketsToWallets:    m.DirectTicketsToWallets,
		UserRating:                m.UserRating,
		SendSignMessage:           m.SendSignMessage,
		SendFarewellWaitingTicket: m.SendFarewellWaitingTicket,
	}, nil
}

func (r *SettingsGormRepository) ChannelAccount(ctx context.Context, tenantID, channelID uint) (*domain.ChannelAccount, error) {
	var m channelAccountModel
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&m, channelID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrChannelNotFound
		}
		return nil, err
	}
	return &domain.ChannelAccount{
		ID:                  m.ID,
		TenantID:            m.TenantID,
		Name:                m.Name,
		TimeCreateNewTicket: m.TimeCreateNewTicket,
		GroupAsTicket:       m.GroupAsTicket,
		RatingMessage:       m.RatingMessage,
		ComplationMessage:   m.ComplationMessage,
		Connected:           m.Connected,
	}, nil
}
