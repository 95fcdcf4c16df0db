package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	coreconfig "github.com/projeto-rodrigo/chatia/core/config"
	coreDB "github.com/projeto-rodrigo/chatia/core/database"
	"github.com/projeto-rodrigo/chatia/infrastructure/messaging"
	"github.com/projeto-rodrigo/chatia/ticketing/application"
	"github.com/projeto-rodrigo/chatia/ticketing/domain"
	"github.com/projeto-rodrigo/chatia/ticketing/repository"
	"github.com/projeto-rodrigo/chatia/ui/rest"
	"github.com/projeto-rodrigo/chatia/ui/rest/middleware"
	"github.com/projeto-rodrigo/chatia/ui/websocket"
)

var restCmd = &cobra.Command{
	Use:   "rest",
	Short: "Serve the ticket routing API over http",
	Run:   restServer,
}

func init() {
	restCmd.Flags().String("basic-auth", "", "Basic auth for API (format: user:pass,user2:pass2)")
	rootCmd.AddCommand(restCmd)
}

func restServer(cmd *cobra.Command, _ []string) {
	cfg := coreconfig.Global

	// Override basic auth if flag is provided
	if baFlag, _ := cmd.Flags().GetString("basic-auth"); baFlag != "" {
		cfg.App.BasicAuth = strings.Split(baFlag, ",")
	}

	fiberConfig := fiber.Config{
		EnableTrustedProxyCheck: true,
		Network:                 "tcp",
		AppName:                 "ChatIA Routing Core",
		DisableStartupMessage:   false,
		ServerHeader:            "Hidden",
	}
	if len(cfg.App.TrustedProxies) > 0 {
		fiberConfig.TrustedProxies = cfg.App.TrustedProxies
		fiberConfig.ProxyHeader = fiber.HeaderXForwardedHost
	}

	app := fiber.New(fiberConfig)

	app.Use(requestid.New())

	origins := strings.Join(cfg.App.CorsAllowedOrigins, ", ")
	if origins == "" {
		origins = cfg.App.BaseUrl
	} else if !strings.Contains(origins, cfg.App.BaseUrl) {
		origins += ", " + cfg.App.BaseUrl
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.Recovery())
	app.Use(helmet.New(helmet.Config{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
		HSTSMaxAge:         31536000,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        1000,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}))

	if cfg.App.Debug {
		app.Use(logger.New())
	}

	if len(cfg.App.BasicAuth) == 0 {
		logrus.Fatalln("APP_BASIC_AUTH is required. Nothing should be public; please set APP_BASIC_AUTH=<user>:<secret>[,<user2>:<secret2>] and restart.")
	}
	account := make(map[string]string)
	for _, basicAuth := range cfg.App.BasicAuth {
		ba := strings.Split(basicAuth, ":")
		if len(ba) != 2 {
			logrus.Fatalln("Basic auth is not valid, please this following format <user>:<secret>")
		}
		account[ba[0]] = ba[1]
	}

	apiGroup := app.Group(cfg.App.BasePath + "/api")
	apiGroup.Use(basicauth.New(basicauth.Config{
		Users: account,
		Next: func(c *fiber.Ctx) bool {
			// Allow CORS preflight without credentials.
			return c.Method() == fiber.MethodOptions
		},
	}))

	// Repositories
	db := coreDB.GlobalDB
	ticketRepo := repository.NewTicketGormRepository(db)
	contactRepo := repository.NewContactGormRepository(db)
	laneRepo := repository.NewLaneGormRepository(db)
	trackingRepo := repository.NewTrackingGormRepository(db)
	ratingRepo := repository.NewRatingGormRepository(db)
	settingsRepo := repository.NewSettingsGormRepository(db)
	userRepo := repository.NewUserGormRepository(db)

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelMigrate()
	for _, m := range []interface {
		InitSchema(ctx context.Context) error
	}{ticketRepo, contactRepo, laneRepo, trackingRepo, ratingRepo, settingsRepo, userRepo} {
		if err := m.InitSchema(migrateCtx); err != nil {
			logrus.Fatalf("failed to migrate schema: %v", err)
		}
	}

	// Collaborators
	hub := websocket.NewHub(vkClient, serverID)
	go hub.Run()

	gateway := messaging.FromConfig(cfg.Routing.OutboundWebhookURL, cfg.Routing.OutboundWebhookSecret)

	var welcomeLock domain.WelcomeLock
	if vkClient != nil {
		welcomeLock = repository.NewValkeyWelcomeLock(vkClient)
	} else {
		welcomeLock = repository.NewMemoryWelcomeLock()
	}

	// Services
	contacts := application.NewContactService(contactRepo)
	resolver := application.NewTicketResolver(ticketRepo, settingsRepo, hub, cfg.Routing.ResolverStripes)
	updater := application.NewTicketUpdater(ticketRepo, trackingRepo, settingsRepo, userRepo, gateway, hub)
	mover := application.NewLaneMover(ticketRepo, laneRepo, settingsRepo, userRepo, gateway, hub)
	npsHandler := application.NewNpsReplyHandler(trackingRepo, ratingRepo, updater, gateway, cfg.Routing.ThankYouMessage)
	welcome := application.NewWelcomeService(welcomeLock, gateway, cfg.Routing.WelcomeLockTTL)
	timers := application.NewLaneTimerEngine(ticketRepo, laneRepo, mover)
	sweeper := application.NewLaneSweeper(ticketRepo, laneRepo, mover, cfg.Routing.LaneSweepInterval)
	sweeper.Start()

	rest.InitRestTicket(apiGroup, rest.Ticket{
		Resolver: resolver,
		Updater:  updater,
		Mover:    mover,
		Nps:      npsHandler,
		Welcome:  welcome,
		Timers:   timers,
		Tickets:  ticketRepo,
		Contacts: contacts,
	})
	rest.InitRestHealth(apiGroup, rest.Health{Valkey: vkClient})

	hub.RegisterRoutes(apiGroup)

	// 404 for anything else under the API group
	apiGroup.All("/*", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "API Endpoint not found",
			"path":  c.Path(),
		})
	})

	// Graceful shutdown handler
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logrus.Info("[REST] Reception of termination signal, shutting down gracefully...")
		if err := app.Shutdown(); err != nil {
			logrus.Errorf("[REST] Error during Fiber shutdown: %v", err)
		}

		sweeper.Stop()
		timers.Stop()
		StopApp()
	}()

	if err := app.Listen(":" + cfg.App.Port); err != nil {
		logrus.Fatalln("Failed to start: ", err.Error())
	}
}
