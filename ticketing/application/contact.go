package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/projeto-rodrigo/chatia/pkg/phone"
	"github.com/projeto-rodrigo/chatia/ticketing/domain"
)

// ContactService resuelve el payload de un mensaje entrante contra el
// almacén de contactos: encuentra la fila existente por cualquier clave
// de identidad o crea una nueva, para que el resolver siempre reciba un
// contacto persistido.
type ContactService struct {
	contacts domain.ContactRepository
}

func NewContactService(contacts domain.ContactRepository) *ContactService {
	return &ContactService{contacts: contacts}
}

// Upsert returns the persisted contact for the payload. A known ID wins;
// otherwise the canonical number / lid / jid keys are matched, merging
// missing keys onto the existing row. A payload with no usable key comes
// back un-persisted (ID 0) and the resolver rejects it downstream.
func (s *ContactService) Upsert(ctx context.Context, tenantID uint, payload domain.ContactPayload) (*domain.Contact, error) {
	if payload.ID != 0 {
		return s.contacts.FindByID(ctx, tenantID, payload.ID)
	}

	// An unparseable number is "no number candidate", never an error.
	number, _ := phone.Normalize(payload.Number)
	lid := phone.NormalizeKey(payload.Lid)
	jid := phone.NormalizeKey(payload.Jid)

	if number == "" && lid == "" && jid == "" {
		return &domain.Contact{
			TenantID: tenantID,
			Name:     payload.Name,
			IsGroup:  payload.IsGroup,
		}, nil
	}

	existing, err := s.contacts.FindByKeys(ctx, tenantID, number, lid, jid)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		changed := false
		if existing.Number == "" && number != "" {
			existing.Number = number
			changed = true
		}
		if existing.Lid == "" && lid != "" {
			existing.Lid = lid
			changed = true
		}
		if existing.Jid == "" && jid != "" {
			existing.Jid = jid
			changed = true
		}
		if payload.Name != "" && payload.Name != existing.Name {
			existing.Name = payload.Name
			changed = true
		}
		if changed {
			if err := s.contacts.Update(ctx, existing); err != nil {
				return nil, err
			}
		}
		return existing, nil
	}

	contact := &domain.Contact{
		TenantID: tenantID,
		Name:     payload.Name,
		Number:   number,
		Lid:      lid,
		Jid:      jid,
		IsGroup:  payload.IsGroup,
	}
	if err := s.contacts.Create(ctx, contact); err != nil {
		return nil, err
	}

	logrus.Infof("[CONTACT] Created contact %d (tenant %d)", contact.ID, tenantID)
	return contact, nil
}
