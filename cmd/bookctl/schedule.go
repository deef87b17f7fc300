package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Shivanand-hulikatti/resource-reservations/internal/model"
	"github.com/Shivanand-hulikatti/resource-reservations/internal/schedule"
	"github.com/Shivanand-hulikatti/resource-reservations/internal/timeline"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const defaultColumns = 72

func trackColumns() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 40 {
		return w - 8
	}
	return defaultColumns
}

// printSchedule writes the text timeline of the view's current schedule, or
// the banner when it could not be loaded.
func printSchedule(w io.Writer, st schedule.State) error {
	s := st.Schedule
	if s.Unavailable {
		return errors.New(st.Banner)
	}
	fmt.Fprintf(w, "Resource %d, %s (%s)\n", s.ResourceID, s.Date, s.Timezone)
	return timeline.RenderText(w, s.Timeline, trackColumns())
}

func newScheduleCmd(a *app) *cobra.Command {
	var (
		resourceID int64
		date       string
		svgPath    string
		stylePath  string
	)
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Show the day schedule of a resource as a timeline",
		Example: `bookctl schedule --resource 3 --date 2025-03-14
bookctl schedule --resource 3 --svg day.svg --style style.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if date == "" {
				date = time.Now().In(a.loc).Format(model.DateLayout)
			}
			a.view.Select(cmd.Context(), resourceID, date)
			st := a.view.State()

			if svgPath == "" {
				if err := printSchedule(cmd.OutOrStdout(), st); err != nil {
					return err
				}
				if len(st.Schedule.Reservations) > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
					printReservations(cmd.OutOrStdout(), st.Schedule.Reservations)
				}
				return nil
			}

			if st.Schedule.Unavailable {
				return errors.New(st.Banner)
			}
			style, err := timeline.LoadStyle(stylePath)
			if err != nil {
				return err
			}
			f, err := os.Create(svgPath)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", svgPath, err)
			}
			if err := timeline.RenderSVG(f, st.Schedule.Timeline, style); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			cmd.Printf("Wrote %s (%d reservations)\n", svgPath, len(st.Schedule.Reservations))
			return nil
		},
	}
	fl := cmd.Flags()
	fl.Int64Var(&resourceID, "resource", 0, "resource id")
	fl.StringVar(&date, "date", "", "day to show, YYYY-MM-DD (default today)")
	fl.StringVar(&svgPath, "svg", "", "write an SVG timeline to this file instead of printing")
	fl.StringVar(&stylePath, "style", "", "YAML style for the SVG timeline")
	_ = cmd.MarkFlagRequired("resource")
	return cmd
}
