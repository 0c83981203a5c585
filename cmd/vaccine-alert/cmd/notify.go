package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/donaldgifford/vaccine-alert/internal/notify"
	"github.com/donaldgifford/vaccine-alert/pkg/logger"
	domain "github.com/donaldgifford/vaccine-alert/pkg/types"
)

func notifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Notification channel utilities",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "test",
		Short: "Send a sample alert through every enabled channel",
		RunE:  runNotifyTest,
	})
	return cmd
}

func runNotifyTest(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newApp(cfg, logger.New(cfg.Logging.Level, cfg.Logging.Format))
	if err != nil {
		return err
	}

	event := sampleEvent(a.poller.Query(), time.Now())
	results := a.dispatcher.Dispatch(cmd.Context(), event)

	if outputFormat() == "json" {
		if err := outputJSON(cmd.OutOrStdout(), resultsJSON(results)); err != nil {
			return err
		}
	} else if err := printResultsTable(cmd.OutOrStdout(), results); err != nil {
		return err
	}

	if !notify.Delivered(results) {
		return fmt.Errorf("no channel delivered the test alert")
	}
	return nil
}

// sampleEvent builds a recognisable test alert for q.
func sampleEvent(q domain.LocationQuery, now time.Time) domain.AlertEvent {
	center := domain.Center{
		Name:    "Test Center",
		FeeType: "Free",
		Sessions: []domain.Session{{
			Date:              q.DateParam(),
			AvailableCapacity: 1,
			MinAgeLimit:       18,
			Vaccine:           "TEST",
		}},
	}
	if q.Kind == domain.LocationPincode {
		center.Pincode, _ = strconv.Atoi(q.Code)
	}
	res := domain.Result{Available: true, OpenCenters: []domain.Center{center}}

	return domain.AlertEvent{
		ID:          uuid.NewString(),
		Message:     notify.FormatMessage(q, res, now) + "\n(test alert, ignore)",
		Location:    q,
		OpenCenters: res.OpenCenters,
		Timestamp:   now,
	}
}
