package validations

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	pkgError "github.com/projeto-rodrigo/chatia/pkg/error"
	"github.com/projeto-rodrigo/chatia/ticketing/domain"
)

func ValidateResolveTicket(ctx context.Context, request domain.ResolveTicketRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.TenantID, validation.Required),
		validation.Field(&request.ChannelID, validation.Required),
		validation.Field(&request.Contact, validation.Required),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateUpdateTicket(ctx context.Context, request domain.UpdateTicketRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.TenantID, validation.Required),
		validation.Field(&request.Status, validation.Required, validation.In(
			string(domain.StatusLgpd),
			string(domain.StatusPending),
			string(domain.StatusGroup),
			string(domain.StatusOpen),
			string(domain.StatusNps),
			string(domain.StatusClosed),
		)),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateMoveLane(ctx context.Context, request domain.MoveLaneRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.TenantID, validation.Required),
		validation.Field(&request.LaneID, validation.Required),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateNpsReply(ctx context.Context, request domain.NpsReplyRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.TenantID, validation.Required),
		validation.Field(&request.Body, validation.Required),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateWelcomeMenu(ctx context.Context, request domain.WelcomeMenuRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.TenantID, validation.Required),
		validation.Field(&request.Body, validation.Required),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
