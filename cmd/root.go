package cmd

import (
	"os"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/projeto-rodrigo/chatia/core/config"
	"github.com/projeto-rodrigo/chatia/core/database"
	"github.com/projeto-rodrigo/chatia/infrastructure/valkey"
	"github.com/projeto-rodrigo/chatia/pkg/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	vkClient *valkey.Client
	serverID string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chatia",
	Short: "Multi-tenant ticket routing core for WhatsApp customer support",
	Long: `ChatIA maps inbound chat messages to support tickets: find-or-create
resolution with per-identity uniqueness, the ticket lifecycle state
machine, kanban lane timers and NPS collection, exposed over an HTTP API
with per-tenant websocket events.`,
}

func init() {
	// Load environment variables first
	utils.LoadConfig(".")

	time.Local = time.UTC

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	initFlags()

	cobra.OnInitialize(initApp)
}

func initFlags() {
	rootCmd.PersistentFlags().StringP("port", "p", "", "change port number with --port <number> | example: --port=8080")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "displaying debug log with --debug <true/false> | example: --debug=true")

	_ = viper.BindPFlag("app_port", rootCmd.PersistentFlags().Lookup("port"))
	_ = viper.BindPFlag("app_debug", rootCmd.PersistentFlags().Lookup("debug"))
}

func initApp() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("failed to load configuration: %v", err)
	}

	// Flags override the environment
	if p := viper.GetString("app_port"); p != "" {
		cfg.App.Port = p
	}
	if viper.GetBool("app_debug") {
		cfg.App.Debug = true
	}

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if _, err := database.NewDatabase(cfg); err != nil {
		logrus.Fatalf("failed to open database: %v", err)
	}

	serverID = utils.GetPersistentServerID(cfg.App.ServerID, cfg.Paths.Storages)
	logrus.Infof("[APP] Server ID: %s", serverID)

	if cfg.Database.ValkeyEnabled {
		client, err := valkey.NewClient(valkey.Config{
			Address:   cfg.Database.ValkeyAddress,
			Password:  cfg.Database.ValkeyPassword,
			DB:        cfg.Database.ValkeyDB,
			KeyPrefix: cfg.Database.ValkeyKeyPrefix,
		})
		if err != nil {
			// Lock and pub/sub degrade to in-process when Valkey is down.
			logrus.Warnf("[APP] Valkey unavailable, running single-node: %v", err)
		} else {
			vkClient = client
		}
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Errorln(err)
		os.Exit(1)
	}
}

// StopApp releases shared resources on shutdown.
func StopApp() {
	logrus.Info("[APP] Stopping application...")

	if vkClient != nil {
		vkClient.Close()
	}

	if sqlDB, err := database.GetSQLDB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logrus.Errorf("[APP] Error closing database: %v", err)
		}
	}

	logrus.Info("[APP] Application stopped cleanly.")
}
