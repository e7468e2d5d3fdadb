// services/scheduler.go
package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartRetentionScheduler prunes old gift notification records once a day.
// Gifts themselves are delivered instantly; the records are only the "you
// received a gift" feed, which players can also dismiss one by one.
func (s *GiftService) StartRetentionScheduler(retention time.Duration) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		log.Printf("[Scheduler] ❌ Failed to create gift retention scheduler: %v", err)
		return
	}
	sched.Start()

	if _, err := sched.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(func() {
			removed, err := s.CleanupOldGifts(retention)
			if err != nil {
				log.Printf("[Scheduler] Gift cleanup failed: %v", err)
				return
			}
			if removed > 0 {
				log.Printf("🧹 Pruned %d gift record(s) older than %s", removed, retention)
			}
		}),
	); err != nil {
		log.Printf("[Scheduler] ❌ Failed to register gift cleanup job: %v", err)
	}
}
