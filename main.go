package main

import (
	"log"
	"net/http"
)

func main() {
	cfg := LoadConfig()

	db, err := InitAuditDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to init audit database: %v", err)
	}
	defer db.Close()

	store, err := NewStore(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to init transaction store: %v", err)
	}

	classifier := NewClassifier()
	if cfg.KeywordsPath != "" {
		kf, err := LoadKeywordFile(cfg.KeywordsPath)
		if err != nil {
			log.Fatalf("Failed to load keyword file: %v", err)
		}
		ApplyKeywordFile(classifier, kf)
		log.Printf("Loaded %d keyword overrides from %s", len(kf.Patterns), cfg.KeywordsPath)
	}

	publisher := NewWebhookPublisher(cfg.WebhookURL, cfg.WebhookToken)
	manager := NewManager(store, classifier, publisher, db)

	StartCleanupScheduler(cfg, manager)

	log.Printf("Starting Receipt Bot on %s...", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, NewRouter(manager, cfg.APIToken)); err != nil {
		log.Fatalf("HTTP server error: %v", err)
	}
}
