package domain

import "context"

// User es el agente humano. Solo los campos que el ruteo consulta
// (firma de mensajes y despedida) viven aquí.
type User struct {
	ID              uint   `json:"id"`
	TenantID        uint   `json:"tenant_id"`
	Name            string `json:"name"`
	FarewellMessage string `json:"farewell_message,omitempty"`
}

type UserRepository interface {
	FindByID(ctx context.Context, tenantID, id uint) (*User, error)
}
