package main

import (
	"bytes"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/term"

	"github.com/Shivanand-hulikatti/resource-reservations/internal/cache"
	"github.com/Shivanand-hulikatti/resource-reservations/internal/events"
	"github.com/Shivanand-hulikatti/resource-reservations/internal/handler"
	"github.com/Shivanand-hulikatti/resource-reservations/internal/repository/memory"
	"github.com/Shivanand-hulikatti/resource-reservations/internal/service"
)

func TestConfirmer(t *testing.T) {
	tests := []struct {
		name        string
		yes         bool
		interactive bool
		input       string
		want        bool
	}{
		{name: "yes flag", yes: true, want: true},
		{name: "no terminal", interactive: false, input: "y\n", want: false},
		{name: "answer y", interactive: true, input: "y\n", want: true},
		{name: "answer YES", interactive: true, input: " YES \n", want: true},
		{name: "answer without newline", interactive: true, input: "yes", want: true},
		{name: "empty answer", interactive: true, input: "\n", want: false},
		{name: "eof", interactive: true, input: "", want: false},
		{name: "anything else", interactive: true, input: "sure\n", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			c := &confirmer{yes: tt.yes, interactive: tt.interactive, in: strings.NewReader(tt.input), out: &out}

			assert.Equal(t, tt.want, c.Confirm("Delete reservation 3?"))
			if tt.interactive && !tt.yes {
				assert.Contains(t, out.String(), "Delete reservation 3? [y/N]")
			}
		})
	}
}

func TestAt(t *testing.T) {
	zone := time.FixedZone("UTC+1", 60*60)

	lt, err := at("2025-03-14", "19:30", zone)
	require.NoError(t, err)
	assert.True(t, time.Date(2025, time.March, 14, 19, 30, 0, 0, zone).Equal(lt.Time))

	_, err = at("2025-03-14", "7pm", zone)
	assert.Error(t, err)
	_, err = at("tomorrow", "19:30", zone)
	assert.Error(t, err)
}

func newAPI(t *testing.T) string {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.New()

	h := handler.New(log,
		service.NewOrganizationService(log, store),
		service.NewResourceService(log, store, cache.Noop{}),
		service.NewReservationService(log, store,
			service.ReservationOptions{Location: time.UTC, RejectOverlaps: true},
			cache.Noop{}, events.Noop{}, nil),
	)
	r := chi.NewRouter()
	r.Route("/api", h.Routes)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv.URL + "/api"
}

func run(t *testing.T, api string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--api", api, "--timezone", "UTC"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	api := newAPI(t)

	out, err := run(t, api, "org", "create", "Bistro")
	require.NoError(t, err)
	assert.Contains(t, out, "Created organization 1 (Bistro)")

	out, err = run(t, api, "resource", "create", "--org", "1", "--name", "Table 1", "--capacity", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "Created resource 1 (Table 1)")

	out, err = run(t, api, "resource", "list", "--org", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Table 1")

	out, err = run(t, api, "reservation", "book",
		"--resource", "1", "--date", "2025-03-14", "--last-name", "Smith")
	require.NoError(t, err)
	assert.Contains(t, out, "Booked reservation 1: 2025-03-14T18:00:00 to 2025-03-14T20:00:00, Smith (confirmed)")
	assert.Contains(t, out, "Resource 1, 2025-03-14 (UTC)")
	assert.Contains(t, out, "18:00-20:00 Smith (confirmed)")

	_, err = run(t, api, "reservation", "book",
		"--resource", "1", "--date", "2025-03-14", "--from", "19:00", "--to", "21:00", "--last-name", "Jones")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "409")

	out, err = run(t, api, "reservation", "list", "--last-name", "smi")
	require.NoError(t, err)
	assert.Contains(t, out, "Smith")

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		out, err = run(t, api, "reservation", "cancel", "1")
		require.NoError(t, err)
		assert.Contains(t, out, "Aborted")
	}

	out, err = run(t, api, "--yes", "reservation", "cancel", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled reservation 1")

	out, err = run(t, api, "schedule", "--resource", "1", "--date", "2025-03-14")
	require.NoError(t, err)
	assert.Contains(t, out, "18:00-20:00 Smith (cancelled)")

	out, err = run(t, api, "-y", "reservation", "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted reservation 1")

	out, err = run(t, api, "reservation", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No reservations found")
}

func TestScheduleSVG(t *testing.T) {
	api := newAPI(t)
	_, err := run(t, api, "org", "create", "Bistro")
	require.NoError(t, err)
	_, err = run(t, api, "resource", "create", "--org", "1", "--name", "Room")
	require.NoError(t, err)
	_, err = run(t, api, "reservation", "book", "--resource", "1", "--date", "2025-03-14", "--last-name", "Smith")
	require.NoError(t, err)

	path := t.TempDir() + "/day.svg"
	out, err := run(t, api, "schedule", "--resource", "1", "--date", "2025-03-14", "--svg", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path+" (1 reservations)")
}

func TestScheduleUnavailable(t *testing.T) {
	_, err := run(t, "http://127.0.0.1:1/api", "--timeout", "1s", "schedule", "--resource", "1", "--date", "2025-03-14")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schedule unavailable")
}
