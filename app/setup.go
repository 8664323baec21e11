package app

import (
	"fmt"
	"os"

	"github.com/coursehunt/api/api"
	"github.com/coursehunt/api/config"
	"github.com/coursehunt/api/database"
	"github.com/coursehunt/api/router"
	"github.com/coursehunt/api/services/cron"
)

func SetupAndRunServer() error {
	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	// Initialize GORM database connection
	store, err := database.StartGORM()
	if err != nil {
		print("Check whether Postgres is running or not\n")
		return err
	}

	if err := store.Init(); err != nil {
		print("Failed to initialize database tables\n")
		return err
	}

	// Init API
	server := api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT))
	app := server.GetEngine()

	// Setup routes; cron jobs share the payment service wiring
	var cronManager *cron.CronManager = router.SetupRoutes(app, store, getEnv)

	if os.Getenv("CRON_ENABLED") != "false" {
		if err := cronManager.Start(); err != nil {
			print("Warning: Failed to start cron jobs\n")
			print("Error: ", err.Error(), "\n")
		}
	} else {
		cronManager = nil
	}

	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		store.Close()
	}()

	return server.Run()
}
