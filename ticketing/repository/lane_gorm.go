package repository

import (
	"context"
	"time"

	"github.com/projeto-rodrigo/chatia/ticketing/domain"
	"gorm.io/gorm"
)

type tagModel struct {
	ID       uint   `gorm:"primaryKey;autoIncrement"`
	TenantID uint   `gorm:"index:idx_tags_tenant;not null"`
	Name     string `gorm:"not null"`
	Color    string
	Kanban   bool `gorm:"index:idx_tags_kanban;default:false"`

	TimeLane            float64 `gorm:"default:0"`
	NextLaneID          *uint
	RollbackLaneID      *uint
	GreetingMessageLane string

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (tagModel) TableName() string {
	return "tags"
}

type ticketTagModel struct {
	TicketID uint `gorm:"primaryKey;autoIncrement:false"`
	TagID    uint `gorm:"primaryKey;autoIncrement:false;index:idx_ticket_tags_tag"`
}

func (ticketTagModel) TableName() string {
	return "ticket_tags"
}

func toTagModel(t *domain.Tag) tagModel {
	return tagModel{
		ID:                  t.ID,
		TenantID:            t.TenantID,
		Name:                t.Name,
		Color:               t.Color,
		Kanban:              t.Kanban,
		TimeLane:            t.TimeLane,
		NextLaneID:          t.NextLaneID,
		RollbackLaneID:      t.RollbackLaneID,
		GreetingMessageLane: t.GreetingMessageLane,
		CreatedAt:           t.CreatedAt,
		UpdatedAt:           t.UpdatedAt,
	}
}

func fromTagModel(m tagModel) *domain.Tag {
	return &domain.Tag{
		ID:                  m.ID,
		TenantID:            m.TenantID,
		Name:                m.Name,
		Color:               m.Color,
		Kanban:              m.Kanban,
		TimeLane:            m.TimeLane,
		NextLaneID:          m.NextLaneID,
		RollbackLaneID:      m.RollbackLaneID,
		GreetingMessageLane: m.GreetingMessageLane,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

type LaneGormRepository struct {
	db *gorm.DB
}

func NewLaneGormRepository(db *gorm.DB) *LaneGormRepository {
	return &LaneGormRepository{db: db}
}

func (r *LaneGormRepository) InitSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&tagModel{}, &ticketTagModel{})
}

func (r *LaneGormRepository) FindKanbanLane(ctx context.Context, tenantID, laneID uint) (*domain.Tag, error) {
	var m tagModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND kanban = ?", tenantID, true).
		First(&m, laneID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrLaneNotFound
		}
		return nil, err
	}
	return fromTagModel(m), nil
}

func (r *LaneGormRepository) CurrentLane(ctx context.Context, tenantID, ticketID uint) (*domain.Tag, error) {
	var m tagModel
	err := r.db.WithContext(ctx).
		Joins("JOIN ticket_tags ON ticket_tags.tag_id = tags.id").
		Where("ticket_tags.ticket_id = ?", ticketID).
		Where("tags.tenant_id = ? AND tags.kanban = ?", tenantID, true).
		First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return fromTagModel(m), nil
}

func (r *LaneGormRepository) ReplaceKanbanLane(ctx context.Context, tenantID, ticketID, laneID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Drop every kanban tag the ticket currently has
		err := tx.
			Where("ticket_id = ?", ticketID).
			Where("tag_id IN (?)", tx.Model(&tagModel{}).
				Select("id").
				Where("tenant_id = ? AND kanban = ?", tenantID, true)).
			Delete(&ticketTagModel{}).Error
		if err != nil {
			return err
		}

		return tx.Create(&ticketTagModel{TicketID: ticketID, TagID: laneID}).Error
	})
}
