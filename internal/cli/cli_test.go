package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"umrahtransfer/internal/jobs"
	"umrahtransfer/internal/utils"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "migrate", "seed", "export-bookings", "jobs"} {
		assert.True(t, names[want], want)
	}
}

func TestJobsList(t *testing.T) {
	out, err := run(t, "jobs", "list")
	require.NoError(t, err)
	assert.Contains(t, out, jobs.PurgeDrafts)
	assert.Contains(t, out, jobs.CompletePast)
	assert.Contains(t, out, "*/30 * * * *")
}

func TestMigrateRejectsUnknownDirection(t *testing.T) {
	_, err := run(t, "migrate", "sideways")
	require.Error(t, err)

	_, err = run(t, "migrate")
	require.Error(t, err)
}

func TestExportFilterMakesToInclusive(t *testing.T) {
	loc := utils.ServiceLocation("Asia/Riyadh")
	a := &app{loc: loc}

	exportOpts.status = "Confirmed"
	exportOpts.from = "2025-03-01"
	exportOpts.to = "2025-03-03"
	exportOpts.query = "UMR"
	t.Cleanup(func() { exportOpts.status, exportOpts.from, exportOpts.to, exportOpts.query = "", "", "", "" })

	f, err := exportFilter(a)
	require.NoError(t, err)
	assert.EqualValues(t, "confirmed", f.Status)
	assert.Equal(t, "UMR", f.Query)
	require.NotNil(t, f.From)
	require.NotNil(t, f.To)
	assert.True(t, f.From.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, loc)))
	assert.True(t, f.To.Equal(time.Date(2025, 3, 4, 0, 0, 0, 0, loc)))

	exportOpts.from = "01/03/2025"
	_, err = exportFilter(a)
	assert.Error(t, err)
}
