package main

import (
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// StartCleanupScheduler runs the pending-record expiry sweep on a cron
// schedule. The schedule is a standard 5-field cron expression
// (minute hour day-of-month month day-of-week), e.g. "0 * * * *" hourly.
func StartCleanupScheduler(cfg Config, m *Manager) {
	schedule := strings.TrimSpace(cfg.CleanupSchedule)
	if schedule == "" {
		log.Println("Cleanup disabled (cleanup_schedule not set)")
		return
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		log.Printf("Invalid cleanup_schedule '%s': %v, cleanup disabled", schedule, err)
		return
	}

	ttl := time.Duration(cfg.PendingTTLHours) * time.Hour
	log.Printf("Cleanup scheduled (cron: %s), pending TTL %s", schedule, ttl)

	go func() {
		for {
			now := time.Now().In(cfg.Location)
			next := sched.Next(now)
			wait := next.Sub(now)
			log.Printf("Next cleanup at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Minute))

			time.Sleep(wait)

			removed, err := m.ExpirePending(ttl)
			if err != nil {
				log.Printf("Cleanup error: %v", err)
			} else if removed > 0 {
				log.Printf("Cleanup complete: removed %d expired pending transactions", removed)
			}
		}
	}()
}
