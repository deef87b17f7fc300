package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/Shivanand-hulikatti/resource-reservations/internal/model"
)

// printTable draws rows under headers with ASCII borders. Short rows are padded.
func printTable(w io.Writer, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, r := range rows {
		for i := 0; i < len(widths) && i < len(r); i++ {
			widths[i] = max(widths[i], len(r[i]))
		}
	}

	var sep strings.Builder
	sep.WriteString("+")
	for _, n := range widths {
		sep.WriteString(strings.Repeat("-", n+2) + "+")
	}

	line := func(cells []string) string {
		var b strings.Builder
		b.WriteString("|")
		for i, n := range widths {
			var cell string
			if i < len(cells) {
				cell = cells[i]
			}
			b.WriteString(" " + cell + strings.Repeat(" ", n-len(cell)) + " |")
		}
		return b.String()
	}

	fmt.Fprintln(w, sep.String())
	fmt.Fprintln(w, line(headers))
	fmt.Fprintln(w, sep.String())
	for _, r := range rows {
		fmt.Fprintln(w, line(r))
	}
	fmt.Fprintln(w, sep.String())
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func guestName(r model.Reservation) string {
	if r.GuestFirstName != nil && *r.GuestFirstName != "" {
		return *r.GuestFirstName + " " + r.GuestLastName
	}
	return r.GuestLastName
}

func printReservations(w io.Writer, list []model.Reservation) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No reservations found")
		return
	}
	rows := make([][]string, 0, len(list))
	for _, r := range list {
		rows = append(rows, []string{
			fmt.Sprint(r.ID),
			fmt.Sprint(r.ResourceID),
			r.StartTime.String(),
			r.EndTime.String(),
			string(r.Status),
			guestName(r),
			orDash(r.GuestContact),
			orDash(r.Notes),
		})
	}
	printTable(w, []string{"ID", "RESOURCE", "START", "END", "STATUS", "GUEST", "CONTACT", "NOTES"}, rows)
}
