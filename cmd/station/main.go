package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"

	"weighstation/internal/api"
	"weighstation/internal/handlers"
	"weighstation/internal/logger"
	"weighstation/internal/metrics"
	"weighstation/internal/repository"
	"weighstation/internal/repository/db"
	"weighstation/internal/server"
	"weighstation/internal/station"
	"weighstation/internal/subscribe"
)

func main() {
	// init logger first so config errors are visible
	if err := loadConfig(); err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(viper.GetString("log.level"))

	metrics.Init()

	// local history archive
	archive, err := openArchive(log)
	if err != nil {
		log.Fatalw("failed to init sqlite archive", "err", err)
	}
	defer func() {
		if cerr := archive.Close(); cerr != nil {
			log.Errorw("failed to close sqlite archive", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(archive)
	client := newAPIClient()
	history := station.NewHistoryService(client, repos.History, log, viper.GetInt("api.history_size"))
	controller := station.NewController(client, history, station.NewLogNotifier(log), log, viper.GetString("station.scale_id"))
	apiHandler := handlers.NewHandler(controller, history, log, viper.GetString("station.name"))

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// start broker subscription
	sub := subscribe.New(
		viper.GetString("broker.url"),
		controller,
		log,
		viper.GetDuration("broker.reconnect_delay"),
	)
	go sub.Run(ctx)

	// start console server
	srv := &server.Server{}
	go func() {
		port := viper.GetString("console.port")
		if port == "" {
			port = "8081"
		}
		if err := srv.Run(port, apiHandler.InitRoutes()); err != nil && err != http.ErrServerClosed {
			log.Fatalw("error starting console server", "err", err)
		}
	}()

	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs")
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

// openArchive initializes the local weighing-history archive.
func openArchive(log *logger.Logger) (*sql.DB, error) {
	path := viper.GetString("archive.path")
	if path == "" {
		log.Infow("archive.path not set in config; using default file", "default", "station.db")
		path = "station.db"
	}
	return db.Init(path)
}

func newAPIClient() *api.Client {
	tokens := api.NewRefreshingTokenSource(
		viper.GetString("api.refresh_url"),
		viper.GetString("api.access_token"),
		viper.GetString("api.refresh_token"),
		nil,
	)
	httpClient := &http.Client{Timeout: viper.GetDuration("api.timeout")}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 15 * time.Second
	}
	return api.NewClient(viper.GetString("api.base_url"), tokens, httpClient)
}

// waitForShutdown blocks on termination signals, then stops background
// goroutines and drains the console server.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down station console...")
	cancel()

	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("console server forced to shutdown", "err", err)
	}
}
