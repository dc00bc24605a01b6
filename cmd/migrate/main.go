package main

import (
	"os"

	"github.com/geocoder89/storefront/internal/config"
	"github.com/geocoder89/storefront/internal/db"
	"github.com/geocoder89/storefront/internal/observability"
)

func main() {
	cfg := config.Load()
	log := observability.NewLogger(cfg.Env)

	version, err := db.RunMigrations(cfg.DBURL)
	if err != nil {
		log.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	log.Info("migrations applied", "version", version)
}
