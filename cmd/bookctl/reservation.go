package main

import (
	"fmt"
	"time"

	"github.com/Shivanand-hulikatti/resource-reservations/internal/model"
	"github.com/spf13/cobra"
)

// Defaults of the booking form.
const (
	defaultFrom = "18:00"
	defaultTo   = "20:00"
)

// at combines a calendar date and an HH:MM clock reading in loc.
func at(date, clock string, loc *time.Location) (model.LocalTime, error) {
	d, err := model.ParseDate(date, loc)
	if err != nil {
		return model.LocalTime{}, err
	}
	c, err := time.Parse("15:04", clock)
	if err != nil {
		return model.LocalTime{}, fmt.Errorf("invalid time %q: want HH:MM", clock)
	}
	return model.NewLocalTime(time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), 0, 0, loc)), nil
}

func optional(cmd *cobra.Command, name, value string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &value
}

func timestampFlag(cmd *cobra.Command, name, raw string, loc *time.Location) (*model.LocalTime, error) {
	if !cmd.Flags().Changed(name) {
		return nil, nil
	}
	lt, err := model.ParseLocalTime(raw)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", name, err)
	}
	lt = lt.In(loc)
	return &lt, nil
}

func newReservationCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reservation",
		Aliases: []string{"reservations", "resv"},
		Short:   "Book, list, cancel and delete reservations",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}
	cmd.AddCommand(
		newReservationListCmd(a),
		newReservationBookCmd(a),
		newReservationUpdateCmd(a),
		newReservationCancelCmd(a),
		newReservationDeleteCmd(a),
	)
	return cmd
}

func newReservationListCmd(a *app) *cobra.Command {
	var (
		f          model.ReservationFilter
		status     string
		start, end string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reservations",
		Example: `bookctl reservation list --resource 3 --last-name smith
bookctl reservation list --start 2025-03-14T00:00:00 --end 2025-03-15T00:00:00`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if status != "" {
				f.Status = model.Status(status)
			}
			if start != "" {
				if f.Start, err = model.ParseTimestamp(start, a.loc); err != nil {
					return err
				}
			}
			if end != "" {
				if f.End, err = model.ParseTimestamp(end, a.loc); err != nil {
					return err
				}
			}

			list, err := a.view.Search(cmd.Context(), f)
			if err != nil {
				return err
			}
			printReservations(cmd.OutOrStdout(), list)
			return nil
		},
	}
	fl := cmd.Flags()
	fl.Int64Var(&f.ResourceID, "resource", 0, "resource id")
	fl.Int64Var(&f.UserID, "user", 0, "user id")
	fl.StringVar(&f.GuestLastName, "last-name", "", "guest last name (substring)")
	fl.StringVar(&status, "status", "", "pending, confirmed or cancelled")
	fl.StringVar(&start, "start", "", "keep reservations ending after this timestamp")
	fl.StringVar(&end, "end", "", "keep reservations starting before this timestamp")
	return cmd
}

func newReservationBookCmd(a *app) *cobra.Command {
	var (
		req                model.CreateReservationRequest
		date, from, to     string
		firstName, contact string
		notes              string
		userID             int64
	)
	cmd := &cobra.Command{
		Use:     "book",
		Short:   "Book a resource",
		Example: `bookctl reservation book --resource 3 --date 2025-03-14 --from 19:30 --to 21:00 --last-name Smith`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if date == "" {
				date = time.Now().In(a.loc).Format(model.DateLayout)
			}
			var err error
			if req.StartTime, err = at(date, from, a.loc); err != nil {
				return err
			}
			if req.EndTime, err = at(date, to, a.loc); err != nil {
				return err
			}
			req.GuestFirstName = optional(cmd, "first-name", firstName)
			req.GuestContact = optional(cmd, "contact", contact)
			req.Notes = optional(cmd, "notes", notes)
			if cmd.Flags().Changed("user") {
				req.UserID = &userID
			}

			res, err := a.view.Book(cmd.Context(), req)
			if err != nil {
				return err
			}
			cmd.Printf("Booked reservation %d: %s to %s, %s (%s)\n",
				res.ID, res.StartTime, res.EndTime, res.GuestLastName, res.Status)

			a.view.Select(cmd.Context(), req.ResourceID, date)
			return printSchedule(cmd.OutOrStdout(), a.view.State())
		},
	}
	fl := cmd.Flags()
	fl.Int64Var(&req.ResourceID, "resource", 0, "resource id")
	fl.StringVar(&date, "date", "", "day to book, YYYY-MM-DD (default today)")
	fl.StringVar(&from, "from", defaultFrom, "start time HH:MM")
	fl.StringVar(&to, "to", defaultTo, "end time HH:MM")
	fl.StringVar(&req.GuestLastName, "last-name", "", "guest last name")
	fl.StringVar(&firstName, "first-name", "", "guest first name")
	fl.StringVar(&contact, "contact", "", "guest email or phone")
	fl.StringVar(&notes, "notes", "", "free-form notes")
	fl.Int64Var(&userID, "user", 0, "user id")
	_ = cmd.MarkFlagRequired("resource")
	_ = cmd.MarkFlagRequired("last-name")
	return cmd
}

func newReservationUpdateCmd(a *app) *cobra.Command {
	var (
		status, notes, lastName, firstName, contact string
		start, end                                  string
	)
	cmd := &cobra.Command{
		Use:     "update ID",
		Short:   "Change fields of a reservation",
		Example: `bookctl reservation update 12 --status pending --notes "window seat"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var req model.UpdateReservationRequest
			if cmd.Flags().Changed("status") {
				st := model.Status(status)
				req.Status = &st
			}
			if req.StartTime, err = timestampFlag(cmd, "start", start, a.loc); err != nil {
				return err
			}
			if req.EndTime, err = timestampFlag(cmd, "end", end, a.loc); err != nil {
				return err
			}
			req.Notes = optional(cmd, "notes", notes)
			req.GuestLastName = optional(cmd, "last-name", lastName)
			req.GuestFirstName = optional(cmd, "first-name", firstName)
			req.GuestContact = optional(cmd, "contact", contact)

			res, err := a.client.UpdateReservation(cmd.Context(), id, req)
			if err != nil {
				return fmt.Errorf("failed to update reservation: %w", err)
			}
			printReservations(cmd.OutOrStdout(), []model.Reservation{*res})
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&status, "status", "", "pending, confirmed or cancelled")
	fl.StringVar(&start, "start", "", "new start timestamp")
	fl.StringVar(&end, "end", "", "new end timestamp")
	fl.StringVar(&notes, "notes", "", "notes")
	fl.StringVar(&lastName, "last-name", "", "guest last name")
	fl.StringVar(&firstName, "first-name", "", "guest first name")
	fl.StringVar(&contact, "contact", "", "guest email or phone")
	return cmd
}

func newReservationCancelCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel ID",
		Short: "Cancel a reservation; it stays on record with status cancelled",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			done, err := a.view.Cancel(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !done {
				cmd.Println("Aborted")
				return nil
			}
			cmd.Printf("Cancelled reservation %d\n", id)
			return nil
		},
	}
}

func newReservationDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Permanently delete a reservation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			done, err := a.view.Delete(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !done {
				cmd.Println("Aborted")
				return nil
			}
			cmd.Printf("Deleted reservation %d\n", id)
			return nil
		},
	}
}
