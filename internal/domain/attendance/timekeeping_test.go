package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tod(h, m int) *TimeOfDay {
	return &TimeOfDay{Hour: h, Minute: m}
}

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		input   string
		want    TimeOfDay
		wantErr bool
	}{
		{"08:00", TimeOfDay{8, 0}, false},
		{"8:05", TimeOfDay{8, 5}, false},
		{"17:30:59", TimeOfDay{17, 30}, false},
		{" 23:59 ", TimeOfDay{23, 59}, false},
		{"00:00", TimeOfDay{0, 0}, false},
		{"", TimeOfDay{}, true},
		{"8", TimeOfDay{}, true},
		{"ab:cd", TimeOfDay{}, true},
		{"24:00", TimeOfDay{}, true},
		{"12:60", TimeOfDay{}, true},
		{"-1:30", TimeOfDay{}, true},
		{"10:30:99", TimeOfDay{}, true},
		{"10:30:00:00", TimeOfDay{}, true},
	}
	for _, c := range cases {
		got, err := ParseTimeOfDay(c.input)
		if c.wantErr {
			assert.ErrorIs(t, err, ErrInvalidTimeFormat, "input %q", c.input)
			continue
		}
		require.NoError(t, err, "input %q", c.input)
		assert.Equal(t, c.want, got, "input %q", c.input)
	}
}

func TestCompute_Scenarios(t *testing.T) {
	w := DefaultTimeWindow()

	t.Run("on time without checkout", func(t *testing.T) {
		got, err := ComputeAttendance("08:00", "", w)
		require.NoError(t, err)
		assert.Equal(t, Computation{Status: StatusPresent}, got)
	})

	t.Run("late with checkout", func(t *testing.T) {
		got, err := ComputeAttendance("08:40", "17:00", w)
		require.NoError(t, err)
		assert.Equal(t, StatusLate, got.Status)
		assert.Equal(t, 8.33, got.HoursWorked)
		assert.Zero(t, got.OvertimeHours)
	})

	t.Run("absent after threshold", func(t *testing.T) {
		got, err := ComputeAttendance("09:15", "", w)
		require.NoError(t, err)
		assert.Equal(t, StatusAbsent, got.Status)
		assert.Zero(t, got.HoursWorked)
	})

	t.Run("overtime overlaps hours worked", func(t *testing.T) {
		got, err := ComputeAttendance("08:00", "19:30", w)
		require.NoError(t, err)
		assert.Equal(t, StatusPresent, got.Status)
		assert.Equal(t, 11.5, got.HoursWorked)
		assert.Equal(t, 1.5, got.OvertimeHours)
	})
}

func TestCompute_NoCheckIn(t *testing.T) {
	got := Compute(nil, tod(17, 0), DefaultTimeWindow())
	assert.Equal(t, Computation{}, got)

	got2, err := ComputeAttendance("", "17:00", DefaultTimeWindow())
	require.NoError(t, err)
	assert.Equal(t, Computation{}, got2)
}

func TestCompute_MalformedTimeIsNotDefaulted(t *testing.T) {
	_, err := ComputeAttendance("8h00", "", DefaultTimeWindow())
	assert.ErrorIs(t, err, ErrInvalidTimeFormat)

	_, err = ComputeAttendance("08:00", "five pm", DefaultTimeWindow())
	assert.ErrorIs(t, err, ErrInvalidTimeFormat)
}

func TestStatusAt_Boundaries(t *testing.T) {
	w := DefaultTimeWindow()

	// Every minute of the day falls into exactly one band.
	for h := 0; h < 24; h++ {
		for m := 0; m < 60; m++ {
			in := TimeOfDay{h, m}
			got := StatusAt(in, w)
			frac := in.Hours()
			switch {
			case frac <= w.LateCutoff():
				assert.Equal(t, StatusPresent, got, in.String())
			case frac <= w.AbsentThresholdHour:
				assert.Equal(t, StatusLate, got, in.String())
			default:
				assert.Equal(t, StatusAbsent, got, in.String())
			}
		}
	}

	assert.Equal(t, StatusPresent, StatusAt(TimeOfDay{8, 30}, w), "cutoff itself is on time")
	assert.Equal(t, StatusLate, StatusAt(TimeOfDay{8, 31}, w))
	assert.Equal(t, StatusLate, StatusAt(TimeOfDay{9, 0}, w), "absent hour itself is late")
	assert.Equal(t, StatusAbsent, StatusAt(TimeOfDay{9, 1}, w))
}

func TestCompute_NeverNegative(t *testing.T) {
	w := DefaultTimeWindow()
	for inH := 0; inH < 24; inH += 3 {
		for outH := 0; outH < 24; outH += 2 {
			got := Compute(tod(inH, 15), tod(outH, 45), w)
			assert.GreaterOrEqual(t, got.HoursWorked, 0.0)
			assert.GreaterOrEqual(t, got.OvertimeHours, 0.0)
			if float64(outH)+0.75 <= w.OvertimeStartHour {
				assert.Zero(t, got.OvertimeHours)
			}
		}
	}

	reversed := Compute(tod(17, 0), tod(8, 0), w)
	assert.Zero(t, reversed.HoursWorked)
}

func TestCompute_OvertimeBoundary(t *testing.T) {
	w := DefaultTimeWindow()
	assert.Zero(t, Compute(tod(8, 0), tod(18, 0), w).OvertimeHours)
	assert.Equal(t, 0.02, Compute(tod(8, 0), tod(18, 1), w).OvertimeHours)
}

func TestCompute_Idempotent(t *testing.T) {
	w := TimeWindow{StandardStart: TimeOfDay{7, 45}, LateThresholdMinutes: 10, AbsentThresholdHour: 10, OvertimeStartHour: 17.5}
	first := Compute(tod(7, 56), tod(19, 10), w)
	second := Compute(tod(7, 56), tod(19, 10), w)
	assert.Equal(t, first, second)
	assert.Equal(t, StatusLate, first.Status)
	assert.Equal(t, 1.67, first.OvertimeHours)
}

func TestTimeWindow_Validate(t *testing.T) {
	assert.NoError(t, DefaultTimeWindow().Validate())

	bad := DefaultTimeWindow()
	bad.LateThresholdMinutes = -5
	assert.ErrorIs(t, bad.Validate(), ErrInvalidTimeWindow)

	bad = DefaultTimeWindow()
	bad.OvertimeStartHour = 25
	assert.ErrorIs(t, bad.Validate(), ErrInvalidTimeWindow)
}
