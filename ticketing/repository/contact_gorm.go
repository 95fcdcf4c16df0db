package repository

import (
	"context"
	"strings"
	"time"

	"github.com/projeto-rodrigo/chatia/ticketing/domain"
	"gorm.io/gorm"
)

type contactModel struct {
	ID       uint   `gorm:"primaryKey;autoIncrement"`
	TenantID uint   `gorm:"index:idx_contacts_tenant_number,priority:1;not null"`
	Name     string `gorm:"index:idx_contacts_name"`
	Number   string `gorm:"index:idx_contacts_tenant_number,priority:2"`

	Lid string `gorm:"index:idx_contacts_lid"`
	Jid string `gorm:"index:idx_contacts_jid"`

	IsGroup        bool `gorm:"default:false"`
	LgpdAcceptedAt *time.Time
	WalletUserID   *uint

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (contactModel) TableName() string {
	return "contacts"
}

func toContactModel(c *domain.Contact) contactModel {
	return contactModel{
		ID:             c.ID,
		TenantID:       c.TenantID,
		Name:           c.Name,
		Number:         c.Number,
		Lid:            strings.ToLower(c.Lid),
		Jid:            strings.ToLower(c.Jid),
		IsGroup:        c.IsGroup,
		LgpdAcceptedAt: c.LgpdAcceptedAt,
		WalletUserID:   c.WalletUserID,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func fromContactModel(m contactModel) *domain.Contact {
	return &domain.Contact{
		ID:             m.ID,
		TenantID:       m.TenantID,
		Name:           m.Name,
		Number:         m.Number,
		Lid:            m.Lid,
		Jid:            m.Jid,
		IsGroup:        m.IsGroup,
		LgpdAcceptedAt: m.LgpdAcceptedAt,
		WalletUserID:   m.WalletUserID,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

type ContactGormRepository struct {
	db *gorm.DB
}

func NewContactGormRepository(db *gorm.DB) *ContactGormRepository {
	return &ContactGormRepository{db: db}
}

func (r *ContactGormRepository) InitSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&contactModel{})
}

func (r *ContactGormRepository) FindByID(ctx context.Context, tenantID, id uint) (*domain.Contact, error) {
	var m contactModel
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&m, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrContactNotFound
		}
		return nil, err
	}
	return fromContactModel(m), nil
}

func (r *ContactGormRepository) FindByKeys(ctx context.Context, tenantID uint, number, lid, jid string) (*domain.Contact, error) {
	var cond *gorm.DB
	add := func(query string, arg string) {
		if arg == "" {
			return
		}
		if cond == nil {
			cond = r.db.Where(query, arg)
		} else {
			cond = cond.Or(query, arg)
		}
	}
	add("number = ?", number)
	add("lid = ?", strings.ToLower(lid))
	add("jid = ?", strings.ToLower(jid))
	if cond == nil {
		return nil, nil
	}

	var m contactModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where(cond).
		Order("id ASC").
		First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return fromContactModel(m), nil
}

func (r *ContactGormRepository) Create(ctx context.Context, contact *domain.Contact) error {
	now := time.Now().UTC()
	if contact.CreatedAt.IsZero() {
		contact.CreatedAt = now
	}
	contact.UpdatedAt = now

	m := toContactModel(contact)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	contact.ID = m.ID
	return nil
}

func (r *ContactGormRepository) Update(ctx context.Context, contact *domain.Contact) error {
	contact.UpdatedAt = time.Now().UTC()
	m := toContactModel(contact)

	result := r.db.WithContext(ctx).
		Model(&contactModel{}).
		Where("id = ? AND tenant_id = ?", contact.ID, contact.TenantID).
		Select("*").Omit("id", "created_at").
		Updates(&m)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrContactNotFound
	}
	return nil
}
