package repository

import (
	"context"
	"time"

	"github.com/projeto-rodrigo/chatia/ticketing/domain"
	"gorm.io/gorm"
)

type trackingModel struct {
	ID        uint `gorm:"primaryKey;autoIncrement"`
	TicketID  uint `gorm:"index:idx_trackings_ticket;not null"`
	TenantID  uint `gorm:"index:idx_trackings_tenant;not null"`
	ChannelID uint
	UserID    *uint

	Rated      bool `gorm:"default:false"`
	RatingAt   *time.Time
	ClosedAt   *time.Time
	FinishedAt *time.Time

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (trackingModel) TableName() string {
	return "ticket_trackings"
}

type ratingModel struct {
	ID       uint `gorm:"primaryKey;autoIncrement"`
	TicketID uint `gorm:"index:idx_ratings_ticket;not null"`
	TenantID uint `gorm:"index:idx_ratings_tenant;not null"`
	UserID   *uint
	Rate     int `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
}

func (ratingModel) TableName() string {
	return "user_ratings"
}

func fromTrackingModel(m trackingModel) *domain.TicketTracking {
	return &domain.TicketTracking{
		ID:         m.ID,
		TicketID:   m.TicketID,
		TenantID:   m.TenantID,
		ChannelID:  m.ChannelID,
		UserID:     m.UserID,
		Rated:      m.Rated,
		RatingAt:   m.RatingAt,
		ClosedAt:   m.ClosedAt,
		FinishedAt: m.FinishedAt,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

type TrackingGormRepository struct {
	db *gorm.DB
}

func NewTrackingGormRepository(db *gorm.DB) *TrackingGormRepository {
	return &TrackingGormRepository{db: db}
}

func (r *TrackingGormRepository) InitSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&trackingModel{}, &ratingModel{})
}

// FindOrCreate returns the open tracking (no FinishedAt) for the ticket,
// creating one when the ticket never had a tracking or the last one was
// finished.
func (r *TrackingGormRepository) FindOrCreate(ctx context.Context, tenantID, ticketID, channelID uint) (*domain.TicketTracking, error) {
	var m trackingModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND ticket_id = ? AND finished_at IS NULL", tenantID, ticketID).
		Order("id DESC").
		First(&m).Error
	if err == nil {
		return fromTrackingModel(m), nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	now := time.Now().UTC()
	m = trackingModel{
		TicketID:  ticketID,
		TenantID:  tenantID,
		ChannelID: channelID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, err
	}
	return fromTrackingModel(m), nil
}

// FindLatest devuelve el tracking más reciente del ticket, terminado o
// no; nil cuando nunca hubo uno.
func (r *TrackingGormRepository) FindLatest(ctx context.Context, tenantID, ticketID uint) (*domain.TicketTracking, error) {
	var m trackingModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND ticket_id = ?", tenantID, ticketID).
		Order("id DESC").
		First(&m).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return fromTrackingModel(m), nil
}

func (r *TrackingGormRepository) Update(ctx context.Context, tracking *domain.TicketTracking) error {
	tracking.UpdatedAt = time.Now().UTC()

	result := r.db.WithContext(ctx).
		Model(&trackingModel{}).
		Where("id = ? AND tenant_id = ?", tracking.ID, tracking.TenantID).
		Updates(map[string]any{
			"user_id":     tracking.UserID,
			"rated":       tracking.Rated,
			"rating_at":   tracking.RatingAt,
			"closed_at":   tracking.ClosedAt,
			"finished_at": tracking.FinishedAt,
			"updated_at":  tracking.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrTrackingNotFound
	}
	return nil
}

type RatingGormRepository struct {
	db *gorm.DB
}

func NewRatingGormRepository(db *gorm.DB) *RatingGormRepository {
	return &RatingGormRepository{db: db}
}

func (r *RatingGormRepository) InitSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&ratingModel{})
}

func (r *RatingGormRepository) Create(ctx context.Context, rating *domain.UserRating) error {
	m := ratingModel{
		TicketID:  rating.TicketID,
		TenantID:  rating.TenantID,
		UserID:    rating.UserID,
		Rate:      rating.Rate,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	rating.ID = m.ID
	rating.CreatedAt = m.CreatedAt
	return nil
}
