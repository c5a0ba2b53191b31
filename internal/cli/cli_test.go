package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/fixture-sync/internal/calendar"
	"github.com/pfrederiksen/fixture-sync/internal/config"
	"github.com/pfrederiksen/fixture-sync/internal/storage"
	"github.com/pfrederiksen/fixture-sync/internal/syncer"
)

// sourceServer serves a schedule table with fixtures one and two weeks ahead.
func sourceServer(t *testing.T) (url, competition string) {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	first := time.Now().In(loc).AddDate(0, 0, 7)
	second := time.Now().In(loc).AddDate(0, 0, 14)
	competition = fmt.Sprintf("Brasileirao %d", first.Year())

	page := fmt.Sprintf(`<html><body><table>
	  <tr><th>Data</th><th>Adversário</th><th>Local</th><th>Transmissão</th></tr>
	  <tr><td>%d/%d – 20h30</td><td>Santos</td><td>Vila Belmiro</td><td>sportv</td></tr>
	  <tr><td>%d/%d – 19h00</td><td>Corinthians</td><td>Allianz Parque</td><td>Globo</td></tr>
	</table></body></html>`,
		first.Day(), int(first.Month()), second.Day(), int(second.Month()))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	t.Cleanup(server.Close)
	return server.URL, competition
}

func setupConfig(t *testing.T) string {
	t.Helper()
	for _, key := range []string{"GOOGLE_CREDENTIALS", "GOOGLE_CALENDAR_ID", "SYNC_SCHEDULE", "ALERT_WEBHOOK_URL", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "STATUS_FILE", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	url, competition := sourceServer(t)
	dir := t.TempDir()
	body := fmt.Sprintf(`
sources:
  - url: %s
    competition: %s
fetch:
  max_attempts: 1
  base_delay: 1ms
calendar:
  write_delay: 1ms
status_file: %s
`, url, competition, filepath.Join(dir, "status.json"))

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func execute(t *testing.T, opts *rootOptions, args ...string) (string, error) {
	t.Helper()
	stdout, _, err := executeWithStderr(t, opts, args...)
	return stdout, err
}

func executeWithStderr(t *testing.T, opts *rootOptions, args ...string) (string, string, error) {
	t.Helper()
	if opts == nil {
		opts = &rootOptions{newSyncer: syncer.New}
	}
	cmd := newRootCmd(opts)

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

type memoryCalendar struct {
	inserted []*calendar.Event
}

func (c *memoryCalendar) List(ctx context.Context, calendarID string, from, to time.Time) ([]calendar.RemoteEvent, error) {
	return nil, nil
}

func (c *memoryCalendar) Insert(ctx context.Context, calendarID string, evt *calendar.Event) (string, error) {
	c.inserted = append(c.inserted, evt)
	return fmt.Sprintf("evt-%d", len(c.inserted)), nil
}

func (c *memoryCalendar) Update(ctx context.Context, calendarID, eventID string, evt *calendar.Event) error {
	return nil
}

func TestSyncCmd(t *testing.T) {
	path := setupConfig(t)
	t.Setenv("GOOGLE_CREDENTIALS", "creds")

	cal := &memoryCalendar{}
	opts := &rootOptions{newSyncer: func(cfg *config.Config, extra ...syncer.Option) (*syncer.Syncer, error) {
		extra = append(extra, syncer.WithCalendarOpener(func(ctx context.Context, credentials string) (calendar.Service, error) {
			return cal, nil
		}))
		return syncer.New(cfg, extra...)
	}}

	out, err := execute(t, opts, "--config", path, "--format", "json", "sync")
	require.NoError(t, err)

	var run storage.Run
	require.NoError(t, json.Unmarshal([]byte(out), &run))
	assert.Equal(t, storage.StatusSuccess, run.Status)
	assert.Equal(t, 2, run.Found)
	assert.Equal(t, 2, run.Created)
	assert.Len(t, cal.inserted, 2)

	out, err = execute(t, opts, "--config", path, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Run:      "+run.ID)
	assert.Contains(t, out, "Status:   success")
}

func TestSyncCmd_MissingCredentials(t *testing.T) {
	path := setupConfig(t)

	out, err := execute(t, nil, "--config", path, "sync")

	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrConfig))
	assert.Contains(t, out, "Status:   error")
	assert.Contains(t, out, "GOOGLE_CREDENTIALS")

	out, err = execute(t, nil, "--config", path, "--format", "json", "status")
	require.NoError(t, err)
	var run storage.Run
	require.NoError(t, json.Unmarshal([]byte(out), &run))
	assert.Equal(t, storage.StatusError, run.Status)
}

func TestSyncCmd_DryRunAlerts(t *testing.T) {
	path := setupConfig(t)
	t.Setenv("ALERT_WEBHOOK_URL", "http://127.0.0.1:1/unreachable")

	out, stderr, err := executeWithStderr(t, nil, "--config", path, "--format", "json", "sync", "--dry-run-alerts")
	require.Error(t, err)

	var run storage.Run
	require.NoError(t, json.Unmarshal([]byte(out), &run))
	assert.Equal(t, storage.StatusError, run.Status)

	assert.Contains(t, stderr, "--- Alert ---")
	assert.Contains(t, stderr, run.ID)
	assert.Contains(t, stderr, "GOOGLE_CREDENTIALS")
}

func TestStatusCmd_NoRun(t *testing.T) {
	path := setupConfig(t)

	out, err := execute(t, nil, "--config", path, "status")
	require.NoError(t, err)
	assert.Equal(t, "No sync run recorded yet.\n", out)
}

func TestFixturesCmd(t *testing.T) {
	path := setupConfig(t)

	out, err := execute(t, nil, "--config", path, "--format", "json", "fixtures", "--sort", "opponent")
	require.NoError(t, err)

	var result FixturesResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Equal(t, 2, result.Count)
	assert.Equal(t, "Corinthians", result.Fixtures[0].Opponent)
	assert.True(t, result.Fixtures[0].IsHome)
	assert.Equal(t, "Santos", result.Fixtures[1].Opponent)

	out, err = execute(t, nil, "--config", path, "fixtures")
	require.NoError(t, err)
	assert.Contains(t, out, "Palmeiras x Santos (away)")
	assert.Contains(t, out, "Total: 2 fixtures")
}

func TestExportCmd(t *testing.T) {
	path := setupConfig(t)
	out := filepath.Join(t.TempDir(), "palmeiras.ics")

	_, err := execute(t, nil, "--config", path, "export", "--output", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	ics := string(data)
	assert.True(t, strings.HasPrefix(ics, "BEGIN:VCALENDAR\r\n"))
	assert.Equal(t, 2, strings.Count(ics, "BEGIN:VEVENT"))
	assert.Contains(t, ics, "X-WR-CALNAME:Palmeiras")
}

func TestExportCmd_Stdout(t *testing.T) {
	path := setupConfig(t)

	out, err := execute(t, nil, "--config", path, "export", "-o", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "BEGIN:VCALENDAR")
}

func TestScheduleCmd_InvalidSchedule(t *testing.T) {
	path := setupConfig(t)

	_, err := execute(t, nil, "--config", path, "schedule", "--schedule", "every now and then")
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrConfig))
}

func TestInvalidFlags(t *testing.T) {
	path := setupConfig(t)

	_, err := execute(t, nil, "--config", path, "--format", "xml", "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")

	_, err = execute(t, nil, "--config", path, "fixtures", "--sort", "stadium")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid sort order")
}
