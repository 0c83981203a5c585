package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/vaccine-alert/pkg/logger"
	domain "github.com/donaldgifford/vaccine-alert/pkg/types"
)

// checkReport is the JSON form of a one-shot check.
type checkReport struct {
	Location  domain.LocationQuery `json:"location"`
	Available bool                 `json:"available"`
	Capacity  int                  `json:"open_capacity"`
	Centers   []domain.Center      `json:"open_centers"`
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Fetch and evaluate once without sending alerts",
		Long: "check runs a single availability lookup for the configured location and\n" +
			"prints the open centers. No alert state is kept and nothing is sent.",
		RunE: runCheck,
	}
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newApp(cfg, logger.New(cfg.Logging.Level, cfg.Logging.Format))
	if err != nil {
		return err
	}

	q, res, err := a.poller.Check(cmd.Context())
	if err != nil {
		return fmt.Errorf("checking %s: %w", q, err)
	}

	if outputFormat() == "json" {
		centers := res.OpenCenters
		if centers == nil {
			centers = []domain.Center{}
		}
		return outputJSON(cmd.OutOrStdout(), checkReport{
			Location:  q,
			Available: res.Available,
			Capacity:  res.OpenCapacity(),
			Centers:   centers,
		})
	}
	return printCheckTable(cmd.OutOrStdout(), q, res)
}
