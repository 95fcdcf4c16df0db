package rest

import (
	"context"

	"github.com/gofiber/fiber/v2"
	pkgError "github.com/projeto-rodrigo/chatia/pkg/error"
	"github.com/projeto-rodrigo/chatia/pkg/utils"
	"github.com/projeto-rodrigo/chatia/ticketing/application"
	"github.com/projeto-rodrigo/chatia/ticketing/domain"
	"github.com/projeto-rodrigo/chatia/validations"
)

type Ticket struct {
	Resolver *application.TicketResolver
	Updater  *application.TicketUpdater
	Mover    *application.LaneMover
	Nps      *application.NpsReplyHandler
	Welcome  *application.WelcomeService
	Timers   *application.LaneTimerEngine
	Tickets  domain.TicketRepository
	Contacts *application.ContactService
}

func InitRestTicket(app fiber.Router, handler Ticket) Ticket {
	app.Post("/tickets/resolve", handler.Resolve)
	app.Put("/tickets/:id/status", handler.UpdateStatus)
	app.Post("/tickets/:id/move-lane", handler.MoveLane)
	app.Post("/tickets/:id/nps-reply", handler.NpsReply)
	app.Post("/tickets/:id/welcome-menu", handler.WelcomeMenu)
	app.Post("/tickets/:id/agent-message", handler.AgentMessage)
	app.Get("/tickets/:id", handler.Show)

	return handler
}

func (handler *Ticket) Resolve(c *fiber.Ctx) error {
	var request domain.ResolveTicketRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	err = validations.ValidateResolveTicket(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	contact, err := handler.loadContact(c.UserContext(), request.TenantID, request.Contact)
	utils.PanicIfNeeded(err)
	groupContact, err := handler.loadContact(c.UserContext(), request.TenantID, request.GroupContact)
	utils.PanicIfNeeded(err)

	ticket, err := handler.Resolver.Resolve(c.UserContext(), application.ResolveInput{
		TenantID:       request.TenantID,
		ChannelID:      request.ChannelID,
		Contact:        contact,
		GroupContact:   groupContact,
		UnreadMessages: request.UnreadMessages,
		QueueID:        request.QueueID,
		UserID:         request.UserID,
		Channel:        request.Channel,
		IsImported:     request.IsImported,
		IsForward:      request.IsForward,
		IsTransfer:     request.IsTransfer,
		IsCampaign:     request.IsCampaign,
	})
	utils.PanicIfNeeded(err)

	// Un mensaje entrante cancela el timer de lane y aplica el rollback.
	if handler.Timers != nil && !request.IsCampaign {
		handler.Timers.OnCustomerMessage(c.UserContext(), request.TenantID, ticket.ID)
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Ticket resolved",
		Results: ticket,
	})
}

// AgentMessage notifies the routing core that an agent wrote on the
// ticket, which may start the lane auto-advance countdown.
func (handler *Ticket) AgentMessage(c *fiber.Ctx) error {
	ticketID, err := c.ParamsInt("id")
	if err != nil || ticketID <= 0 {
		utils.PanicIfNeeded(pkgError.ValidationError("id: must be a positive integer."))
	}

	tenantID := c.QueryInt("tenant_id")
	if tenantID <= 0 {
		utils.PanicIfNeeded(pkgError.ValidationError("tenant_id: cannot be blank."))
	}

	if handler.Timers != nil {
		handler.Timers.OnAgentMessage(c.UserContext(), uint(tenantID), uint(ticketID))
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Agent activity recorded",
		Results: nil,
	})
}

func (handler *Ticket) UpdateStatus(c *fiber.Ctx) error {
	ticketID, err := c.ParamsInt("id")
	if err != nil || ticketID <= 0 {
		utils.PanicIfNeeded(pkgError.ValidationError("id: must be a positive integer."))
	}

	var request domain.UpdateTicketRequest
	err = c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	err = validations.ValidateUpdateTicket(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	// La despedida sale por defecto; el caller la apaga explícitamente.
	sendFarewell := true
	if request.SendFarewellMessage != nil {
		sendFarewell = *request.SendFarewellMessage
	}

	ticket, err := handler.Updater.Update(c.UserContext(), application.UpdateInput{
		TenantID:            request.TenantID,
		TicketID:            uint(ticketID),
		Status:              domain.Status(request.Status),
		UserID:              request.UserID,
		QueueID:             request.QueueID,
		SendFarewellMessage: sendFarewell,
	})
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Ticket updated",
		Results: ticket,
	})
}

func (handler *Ticket) MoveLane(c *fiber.Ctx) error {
	ticketID, err := c.ParamsInt("id")
	if err != nil || ticketID <= 0 {
		utils.PanicIfNeeded(pkgError.ValidationError("id: must be a positive integer."))
	}

	var request domain.MoveLaneRequest
	err = c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	err = validations.ValidateMoveLane(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	ticket, err := handler.Mover.Move(c.UserContext(), request.TenantID, uint(ticketID), request.LaneID, request.SendGreeting)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Ticket moved",
		Results: ticket,
	})
}

func (handler *Ticket) NpsReply(c *fiber.Ctx) error {
	ticketID, err := c.ParamsInt("id")
	if err != nil || ticketID <= 0 {
		utils.PanicIfNeeded(pkgError.ValidationError("id: must be a positive integer."))
	}

	var request domain.NpsReplyRequest
	err = c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	err = validations.ValidateNpsReply(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	ticket, err := handler.Tickets.FindByID(c.UserContext(), request.TenantID, uint(ticketID))
	utils.PanicIfNeeded(err)

	consumed, err := handler.Nps.HandleReply(c.UserContext(), ticket, request.Body)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Reply processed",
		Results: map[string]any{
			"consumed": consumed,
		},
	})
}

// WelcomeMenu sends the greeting menu to the ticket's contact at most
// once per cooldown window; concurrent bursts collapse into one send.
func (handler *Ticket) WelcomeMenu(c *fiber.Ctx) error {
	ticketID, err := c.ParamsInt("id")
	if err != nil || ticketID <= 0 {
		utils.PanicIfNeeded(pkgError.ValidationError("id: must be a positive integer."))
	}

	var request domain.WelcomeMenuRequest
	err = c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	err = validations.ValidateWelcomeMenu(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	ticket, err := handler.Tickets.FindByID(c.UserContext(), request.TenantID, uint(ticketID))
	utils.PanicIfNeeded(err)

	sent := handler.Welcome.SendMenu(c.UserContext(), ticket, request.Body)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Welcome menu processed",
		Results: map[string]any{
			"sent": sent,
		},
	})
}

func (handler *Ticket) Show(c *fiber.Ctx) error {
	ticketID, err := c.ParamsInt("id")
	if err != nil || ticketID <= 0 {
		utils.PanicIfNeeded(pkgError.ValidationError("id: must be a positive integer."))
	}

	tenantID := c.QueryInt("tenant_id")
	if tenantID <= 0 {
		utils.PanicIfNeeded(pkgError.ValidationError("tenant_id: cannot be blank."))
	}

	ticket, err := handler.Tickets.FindByID(c.UserContext(), uint(tenantID), uint(ticketID))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Ticket found",
		Results: ticket,
	})
}

// loadContact resolves the payload against the contact store: a known ID
// brings the persisted row (wallet owner, LGPD consent), any other
// payload is found-or-created by its identity keys.
func (handler *Ticket) loadContact(ctx context.Context, tenantID uint, payload *domain.ContactPayload) (*domain.Contact, error) {
	if payload == nil {
		return nil, nil
	}
	return handler.Contacts.Upsert(ctx, tenantID, *payload)
}
