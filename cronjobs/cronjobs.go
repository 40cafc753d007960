package cronjobs

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"go-medalert/store"
	"go-medalert/types"
)

const sweepTimeout = 30 * time.Second

// InitCronJobs starts the background schedules: the fleet sweeper that
// releases units still marked busy after their mission reached a
// terminal phase (possible when the process died mid-mission).
func InitCronJobs(st store.Store) *cron.Cron {
	log.Println("Starting Cron Jobs -------------------------------------------------------")
	c := cron.New()

	// Fleet reconciliation: every 5 minutes
	_, err := c.AddFunc("*/5 * * * *", func() {
		log.Println("CronJob: Fleet Reconciliation Running")
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()
		if err := SweepFleet(ctx, st); err != nil {
			log.Println("Error sweeping fleet:", err)
		}
	})
	if err != nil {
		log.Println("Error scheduling Fleet Reconciliation:", err)
	}

	c.Start()
	return c
}

// SweepFleet releases every busy unit whose mission is missing or
// already terminal.
func SweepFleet(ctx context.Context, st store.Store) error {
	docs, err := st.GetAll(ctx, store.CollectionAmbulances)
	if err != nil {
		return err
	}

	for _, doc := range docs {
		unit, err := store.DecodeFleetUnit(doc)
		if err != nil {
			log.Printf("sweep: skipping malformed unit: %v", err)
			continue
		}
		if unit.Status == types.StatusAvailable {
			continue
		}
		if !missionOver(ctx, st, unit.CurrentAlertID) {
			continue
		}

		log.Printf("sweep: releasing unit %s (mission %s over)", unit.ID, unit.CurrentAlertID)
		if err := st.Update(ctx, store.CollectionAmbulances, unit.ID, store.Document{
			"status":           string(types.StatusAvailable),
			"current_alert_id": "",
		}); err != nil {
			log.Printf("sweep: releasing unit %s: %v", unit.ID, err)
		}
	}
	return nil
}

func missionOver(ctx context.Context, st store.Store, alertID string) bool {
	if alertID == "" {
		return true
	}
	doc, err := st.GetByID(ctx, store.CollectionAlerts, alertID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return true
		}
		log.Printf("sweep: loading alert %s: %v", alertID, err)
		return false
	}
	phase, _ := doc["phase"].(string)
	return types.Phase(phase).Terminal()
}
