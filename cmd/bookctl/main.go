// bookctl is the command-line booking client.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/Shivanand-hulikatti/resource-reservations/internal/client"
	"github.com/Shivanand-hulikatti/resource-reservations/internal/schedule"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	CliName        = "bookctl"
	defaultAPI     = "http://localhost:8080/api"
	envAPI         = "BOOKCTL_API"
	envTimezone    = "BOOKCTL_TIMEZONE"
	defaultTimeout = 10 * time.Second
)

// app is built once per invocation from the global flags.
type app struct {
	api      string
	timezone string
	yes      bool
	timeout  time.Duration

	loc     *time.Location
	client  *client.Client
	view    *schedule.View
	confirm func(prompt string) bool
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   CliName,
		Short: "bookctl books resources and shows their day schedules",
		Long: `bookctl talks to the reservations API: organizations, resources, reservations
and the day-schedule timeline of a resource.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.api, "api", envOr(envAPI, defaultAPI), "base URL of the reservations API")
	pf.StringVar(&a.timezone, "timezone", envOr(envTimezone, "UTC"), "IANA zone timestamps and days are read in")
	pf.BoolVarP(&a.yes, "yes", "y", false, "skip confirmation of destructive actions")
	pf.DurationVar(&a.timeout, "timeout", defaultTimeout, "request timeout")

	rootCmd.AddCommand(
		newOrgCmd(a),
		newResourceCmd(a),
		newReservationCmd(a),
		newScheduleCmd(a),
	)
	return rootCmd
}

func (a *app) init() error {
	loc, err := time.LoadLocation(a.timezone)
	if err != nil {
		return fmt.Errorf("invalid --timezone: %w", err)
	}
	a.loc = loc
	a.client = client.New(a.api, a.timeout, loc)
	c := &confirmer{
		yes:         a.yes,
		interactive: term.IsTerminal(int(os.Stdin.Fd())),
		in:          os.Stdin,
		out:         os.Stderr,
	}
	a.confirm = c.Confirm
	a.view = schedule.NewView(a.client, c, loc)
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
