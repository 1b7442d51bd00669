package main

import (
	"log"

	"lexfund_crm_go/config"
	"lexfund_crm_go/db"
	"lexfund_crm_go/services"
)

// Re-sends every failed or stranded outbound communication. Run from cron after an
// email or SMS provider outage.
func main() {
	cfg := config.Load()

	if err := db.Initialize(cfg.DBPath, cfg.Environment); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	services.InitializeSMS(cfg)

	ctx := services.AuditContext{UserName: "cli", UserRole: "admin"}
	retried, failed, err := services.RetryFailedCommunications(db.DB, cfg, ctx)
	if err != nil {
		log.Fatalf("Retry run failed: %v", err)
	}

	log.Printf("Retry complete: %d sent, %d still failing", retried, failed)
}
