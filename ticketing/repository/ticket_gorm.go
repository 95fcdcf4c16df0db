package repository

import (
	"context"
	"time"

	"github.com/projeto-rodrigo/chatia/ticketing/domain"
	"gorm.io/gorm"
)

// --- Persistence Model ---

type ticketModel struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	TenantID  uint   `gorm:"index:idx_tickets_tenant_channel,priority:1;not null"`
	ChannelID uint   `gorm:"index:idx_tickets_tenant_channel,priority:2;not null"`
	ContactID uint   `gorm:"index:idx_tickets_contact;not null"`
	Status    string `gorm:"index:idx_tickets_status;not null;default:'pending'"`

	UserID  *uint
	QueueID *uint

	Lid string `gorm:"index:idx_tickets_lid"`
	Jid string `gorm:"index:idx_tickets_jid"`

	IsGroup        bool `gorm:"default:false"`
	IsBot          bool `gorm:"default:false"`
	Channel        string
	UnreadMessages int `gorm:"default:0"`
	Imported       *time.Time

	LaneTimerStartedAt *time.Time
	LaneNextMoveAt     *time.Time `gorm:"index:idx_tickets_lane_move"`
	AllowAutomaticMove bool       `gorm:"default:true"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null;index:idx_tickets_updated"`
	ClosedAt  *time.Time
}

func (ticketModel) TableName() string {
	return "tickets"
}

func toTicketModel(t *domain.Ticket) ticketModel {
	return ticketModel{
		ID:                 t.ID,
		TenantID:           t.TenantID,
		ChannelID:          t.ChannelID,
		ContactID:          t.ContactID,
		Status:             string(t.Status),
		UserID:             t.UserID,
		QueueID:            t.QueueID,
		Lid:                t.Lid,
		Jid:                t.Jid,
		IsGroup:            t.IsGroup,
		IsBot:              t.IsBot,
		Channel:            t.Channel,
		UnreadMessages:     t.UnreadMessages,
		Imported:           t.Imported,
		LaneTimerStartedAt: t.LaneTimerStartedAt,
		LaneNextMoveAt:     t.LaneNextMoveAt,
		AllowAutomaticMove: t.AllowAutomaticMove,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
		ClosedAt:           t.ClosedAt,
	}
}

func fromTicketModel(m ticketModel) *domain.Ticket {
	return &domain.Ticket{
		ID:                 m.ID,
		TenantID:           m.TenantID,
		ChannelID:          m.ChannelID,
		ContactID:          m.ContactID,
		Status:             domain.Status(m.Status),
		UserID:             m.UserID,
		QueueID:            m.QueueID,
		Lid:                m.Lid,
		Jid:                m.Jid,
		IsGroup:            m.IsGroup,
		IsBot:              m.IsBot,
		Channel:            m.Channel,
		UnreadMessages:     m.UnreadMessages,
		Imported:           m.Imported,
		LaneTimerStartedAt: m.LaneTimerStartedAt,
		LaneNextMoveAt:     m.LaneNextMoveAt,
		AllowAutomaticMove: m.AllowAutomaticMove,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
		ClosedAt:           m.ClosedAt,
	}
}

// --- Repository Implementation ---

type TicketGormRepository struct {
	db *gorm.DB
}

func NewTicketGormRepository(db *gorm.DB) *TicketGormRepository {
	return &TicketGormRepository{db: db}
}

func (r *TicketGormRepository) InitSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&ticketModel{})
}

func liveStatusStrings() []string {
	out := make([]string, len(domain.LiveStatuses))
	for i, s := range domain.LiveStatuses {
		out[i] = string(s)
	}
	return out
}

// identityClause builds the OR group over all present candidate keys.
func (r *TicketGormRepository) identityClause(keys domain.IdentityKeys) *gorm.DB {
	var cond *gorm.DB
	add := func(query string, arg any) {
		if cond == nil {
			cond = r.db.Where(query, arg)
		} else {
			cond = cond.Or(query, arg)
		}
	}
	if keys.ContactID != 0 {
		add("contact_id = ?", keys.ContactID)
	}
	if keys.Lid != "" {
		add("lid = ?", keys.Lid)
	}
	if keys.Jid != "" {
		add("jid = ?", keys.Jid)
	}
	return cond
}

func (r *TicketGormRepository) FindLiveByKeys(ctx context.Context, tenantID, channelID uint, keys domain.IdentityKeys) (*domain.Ticket, error) {
	cond := r.identityClause(keys)
	if cond == nil {
		return nil, domain.ErrNoIdentity
	}

	var m ticketModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND channel_id = ?", tenantID, channelID).
		Where("status IN ?", liveStatusStrings()).
		Where(cond).
		Order("id DESC").
		First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return fromTicketModel(m), nil
}

func (r *TicketGormRepository) FindLiveDuplicates(ctx context.Context, tenantID, channelID uint, keys domain.IdentityKeys) ([]*domain.Ticket, error) {
	cond := r.identityClause(keys)
	if cond == nil {
		return nil, domain.ErrNoIdentity
	}

	var models []ticketModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND channel_id = ?", tenantID, channelID).
		Where("status IN ?", liveStatusStrings()).
		Where(cond).
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Ticket, 0, len(models))
	for _, m := range models {
		out = append(out, fromTicketModel(m))
	}
	return out, nil
}

func (r *TicketGormRepository) FindRecentByKeys(ctx context.Context, tenantID, channelID uint, keys domain.IdentityKeys, window time.Duration) (*domain.Ticket, error) {
	cond := r.identityClause(keys)
	if cond == nil {
		return nil, domain.ErrNoIdentity
	}

	now := time.Now().UTC()
	var m ticketModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND channel_id = ?", tenantID, channelID).
		Where("updated_at BETWEEN ? AND ?", now.Add(-window), now).
		Where(cond).
		Order("updated_at DESC").
		First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return fromTicketModel(m), nil
}

func (r *TicketGormRepository) FindByID(ctx context.Context, tenantID, id uint) (*domain.Ticket, error) {
	var m ticketModel
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&m, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrTicketNotFound
		}
		return nil, err
	}
	return fromTicketModel(m), nil
}

func (r *TicketGormRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	now := time.Now().UTC()
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = now
	}
	ticket.UpdatedAt = now

	m := toTicketModel(ticket)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	ticket.ID = m.ID
	return nil
}

func (r *TicketGormRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	ticket.UpdatedAt = time.Now().UTC()
	m := toTicketModel(ticket)

	result := r.db.WithContext(ctx).
		Model(&ticketModel{}).
		Where("id = ? AND tenant_id = ?", ticket.ID, ticket.TenantID).
		Select("*").Omit("id", "created_at").
		Updates(&m)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}

func (r *TicketGormRepository) Delete(ctx context.Context, tenantID, id uint) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Delete(&ticketModel{}, id).Error
}

func (r *TicketGormRepository) SetLaneTimer(ctx context.Context, tenantID, ticketID uint, startedAt, moveAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&ticketModel{}).
		Where("id = ? AND tenant_id = ?", ticketID, tenantID).
		Updates(map[string]any{
			"lane_timer_started_at": startedAt,
			"lane_next_move_at":     moveAt,
		}).Error
}

func (r *TicketGormRepository) ClearLaneTimer(ctx context.Context, tenantID, ticketID uint) error {
	return r.db.WithContext(ctx).
		Model(&ticketModel{}).
		Where("id = ? AND tenant_id = ?", ticketID, tenantID).
		Updates(map[string]any{
			"lane_timer_started_at": nil,
			"lane_next_move_at":     nil,
		}).Error
}

func (r *TicketGormRepository) FindExpiredLaneTimers(ctx context.Context, now time.Time) ([]*domain.Ticket, error) {
	var models []ticketModel
	err := r.db.WithContext(ctx).
		Where("lane_next_move_at IS NOT NULL AND lane_next_move_at <= ?", now).
		Where("lane_timer_started_at IS NOT NULL").
		Where("allow_automatic_move = ?", true).
		Where("status IN ?", liveStatusStrings()).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Ticket, 0, len(models))
	for _, m := range models {
		out = append(out, fromTicketModel(m))
	}
	return out, nil
}
