package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"tiermover/internal/deps"
	"tiermover/internal/diskusage"
	"tiermover/internal/preflight"
	"tiermover/internal/schedule"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show environment checks, cache usage, and schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			results := preflight.RunAll(cmd.Context(), cfg)
			rows := make([][]string, 0, len(results)+1)
			for _, result := range results {
				rows = append(rows, []string{result.Name, passFail(result.Passed), result.Detail})
			}
			busy := preflight.MoverBusy(cfg.Mover.MoverPIDFile)
			busyDetail := ""
			if busy {
				busyDetail = "relocation passes will skip while the mover runs"
			}
			rows = append(rows, []string{"Storage-pool mover idle", passFail(!busy), busyDetail})
			fmt.Fprintln(out, renderTable(
				[]string{"Check", "Result", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))

			if usage, err := diskusage.Measure(cfg.Tiers.CacheRoot, nil); err == nil {
				used := usage.TotalBytes - usage.FreeBytes
				fmt.Fprintf(out, "\nCache tier: %d%% used (%s of %s, threshold %d%%)\n",
					usage.UsedPercent(),
					humanize.IBytes(used),
					humanize.IBytes(usage.TotalBytes),
					cfg.Mover.ThresholdPercent,
				)
			} else {
				fmt.Fprintf(out, "\nCache tier usage unavailable: %v\n", err)
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, renderDeps())

			if cfg.Schedule.Enabled {
				next, err := schedule.NextRun(cfg.Schedule.Cron, time.Now())
				if err != nil {
					fmt.Fprintf(out, "\nSchedule: invalid cron expression %q: %v\n", cfg.Schedule.Cron, err)
				} else {
					fmt.Fprintf(out, "\nNext scheduled pass: %s (in %s)\n",
						next.At.Local().Format("2006-01-02 15:04"),
						schedule.FormatCountdown(next.Countdown(time.Now())),
					)
				}
			}
			return nil
		},
	}
}

func renderDeps() string {
	statuses := deps.CheckBinaries(deps.Requirements())
	rows := make([][]string, 0, len(statuses))
	for _, status := range statuses {
		detail := status.Detail
		if detail == "" {
			detail = status.Description
		}
		rows = append(rows, []string{
			status.Name,
			yesNo(status.Available),
			yesNo(status.Optional),
			detail,
		})
	}
	return renderTable(
		[]string{"Tool", "Available", "Optional", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
	)
}

func passFail(passed bool) string {
	if passed {
		return "ok"
	}
	return "FAIL"
}
