package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/projeto-rodrigo/chatia/core/config"
	"github.com/projeto-rodrigo/chatia/core/database"
	"github.com/projeto-rodrigo/chatia/infrastructure/valkey"
	"github.com/projeto-rodrigo/chatia/pkg/utils"
)

type Health struct {
	Valkey *valkey.Client
}

func InitRestHealth(app fiber.Router, handler Health) Health {
	app.Get("/health", handler.Status)

	return handler
}

func (h *Health) Status(c *fiber.Ctx) error {
	dbOK := false
	if sqlDB, err := database.GetSQLDB(); err == nil {
		dbOK = sqlDB.PingContext(c.UserContext()) == nil
	}

	valkeyStatus := "disabled"
	if h.Valkey != nil {
		valkeyStatus = "down"
		if h.Valkey.IsConnected() {
			valkeyStatus = "up"
		}
	}

	status := 200
	code := "SUCCESS"
	if !dbOK {
		status = 503
		code = "UNAVAILABLE"
	}

	return c.Status(status).JSON(utils.ResponseData{
		Status:  status,
		Code:    code,
		Message: "Health status retrieved",
		Results: map[string]any{
			"database": dbOK,
			"valkey":   valkeyStatus,
			"settings": config.GetAllSettings(),
		},
	})
}
