package main

import (
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"github.com/sjperalta/fintera-assurance/internal/config"
	"github.com/sjperalta/fintera-assurance/internal/database"
	"github.com/sjperalta/fintera-assurance/internal/jobs"
	"github.com/sjperalta/fintera-assurance/internal/repository"
	"github.com/sjperalta/fintera-assurance/internal/services"
	"github.com/sjperalta/fintera-assurance/internal/storage"
	"github.com/sjperalta/fintera-assurance/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:           "ledgerctl",
	Short:         "Maintenance commands for the assurance ledger",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// app is the wiring shared by the commands that touch the database
type app struct {
	cfg    *config.Config
	svcs   *services.Services
	worker *jobs.Worker
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Setup(cfg.Environment)
	return cfg, nil
}

// newApp connects to the database and builds the services. Agents are not loaded.
func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		return nil, err
	}

	worker := jobs.NewWorker(1)
	svcs := services.NewServices(repository.NewRepositories(db), worker, store, services.NoopLocker{}, nil, cfg)
	return &app{cfg: cfg, svcs: svcs, worker: worker}, nil
}

func (a *app) Close() {
	a.worker.Shutdown()
}
