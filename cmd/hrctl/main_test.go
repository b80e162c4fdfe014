package main

import (
	"bytes"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCompute(t *testing.T) {
	out, err := execute(t, "compute", "--in", "08:40", "--out", "17:00")
	require.NoError(t, err)

	var got attendance.Computation
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, attendance.StatusLate, got.Status)
	assert.Equal(t, 8.33, got.HoursWorked)
	assert.Zero(t, got.OvertimeHours)
}

func TestCompute_CustomWindow(t *testing.T) {
	out, err := execute(t, "compute", "--in", "07:50", "--out", "16:30", "--work-start", "07:30", "--late-minutes", "15", "--overtime-start", "16")
	require.NoError(t, err)

	var got attendance.Computation
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, attendance.StatusLate, got.Status)
	assert.Equal(t, 0.5, got.OvertimeHours)
}

func TestCompute_RejectsMalformedTime(t *testing.T) {
	_, err := execute(t, "compute", "--in", "8h40")
	assert.ErrorIs(t, err, attendance.ErrInvalidTimeFormat)
}

func TestBadge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "badge.png")

	out, err := execute(t, "badge", "--matricule", "emp-001", "--out", path, "--size", "128")
	require.NoError(t, err)
	assert.Contains(t, out, path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())
}
