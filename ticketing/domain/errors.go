package domain

import "errors"

var (
	// ErrTicketNotFound se retorna cuando no se encuentra un ticket
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrContactNotFound se retorna cuando no se encuentra un contacto
	ErrContactNotFound = errors.New("contact not found")

	// ErrLaneNotFound se retorna cuando la lane destino no existe o no es kanban
	ErrLaneNotFound = errors.New("lane not found")

	// ErrTrackingNotFound se retorna cuando no hay tracking para el ticket
	ErrTrackingNotFound = errors.New("ticket tracking not found")

	// ErrChannelNotFound se retorna cuando la cuenta del canal no existe
	ErrChannelNotFound = errors.New("channel account not found")

	// ErrInvalidTransition se retorna ante un cambio de estado ilegal
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNoIdentity se retorna cuando no hay ninguna clave de identidad utilizable
	ErrNoIdentity = errors.New("no usable identity key for contact")
)
