package main

import (
	"log"

	"github.com/ngochuy-hya/uteshop-storefront/internal/apitest"
	"github.com/ngochuy-hya/uteshop-storefront/internal/config"
)

// main runs the seeded fake storefront API standalone, for poking at the
// client without a real backend.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	srv := apitest.New()
	log.Printf("fake storefront API listening on %s (login %s / %s)",
		cfg.FakeAPIAddr, apitest.SeedEmail, apitest.SeedPassword)
	if err := srv.StartOn(cfg.FakeAPIAddr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
