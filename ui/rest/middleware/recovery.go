package middleware

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	pkgError "github.com/projeto-rodrigo/chatia/pkg/error"
	"github.com/projeto-rodrigo/chatia/pkg/utils"
	"github.com/projeto-rodrigo/chatia/ticketing/domain"
	"github.com/sirupsen/logrus"
)

func Recovery() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		defer func() {
			err := recover()
			if err != nil {
				var res utils.ResponseData
				res.Status = 500
				res.Code = "INTERNAL_SERVER_ERROR"
				res.Message = fmt.Sprintf("%v", err)

				// Log the panic using logrus
				logrus.Errorf("Panic recovered in middleware: %v", err)

				if genericErr, ok := err.(pkgError.GenericError); ok {
					res.Status = genericErr.StatusCode()
					res.Code = genericErr.ErrCode()
					res.Message = genericErr.Error()
				} else if plainErr, ok := err.(error); ok && isNotFound(plainErr) {
					res.Status = 404
					res.Code = "NOT_FOUND_ERROR"
					res.Message = plainErr.Error()
				}

				_ = ctx.Status(res.Status).JSON(res)
			}
		}()

		return ctx.Next()
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrTicketNotFound) ||
		errors.Is(err, domain.ErrContactNotFound) ||
		errors.Is(err, domain.ErrLaneNotFound) ||
		errors.Is(err, domain.ErrTrackingNotFound) ||
		errors.Is(err, domain.ErrChannelNotFound)
}
