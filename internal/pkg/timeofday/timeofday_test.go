package timeofday

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		input   string
		want    TimeOfDay
		wantErr bool
	}{
		{"00:00", 0, false},
		{"06:30", 390, false},
		{"09:00", 540, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"9:00", 0, true},
		{"09-00", 0, true},
		{"ab:cd", 0, true},
		{"", 0, true},
	}
	for _, c := range cases {
		got, err := Parse(c.input)
		if c.wantErr {
			assert.ErrorIs(t, err, ErrInvalidFormat, "Parse(%q)", c.input)
			continue
		}
		require.NoError(t, err, "Parse(%q)", c.input)
		assert.Equal(t, c.want, got, "Parse(%q)", c.input)
	}
}

func TestTimeOfDay_StringRoundTrip(t *testing.T) {
	for _, s := range []string{"00:00", "06:30", "15:00", "23:59"} {
		assert.Equal(t, s, MustParse(s).String())
	}
}

func TestOf_DropsSeconds(t *testing.T) {
	loc := time.FixedZone("WITA", 8*3600)
	instant := time.Date(2025, 3, 10, 8, 59, 59, 999, loc)
	assert.Equal(t, MustParse("08:59"), Of(instant))
}

func TestOf_UsesInstantLocation(t *testing.T) {
	utc := time.Date(2025, 3, 10, 1, 0, 0, 0, time.UTC)
	wita := utc.In(time.FixedZone("WITA", 8*3600))
	assert.Equal(t, MustParse("01:00"), Of(utc))
	assert.Equal(t, MustParse("09:00"), Of(wita))
}

func TestWindow_InclusiveBounds(t *testing.T) {
	windows := []Window{
		{Start: MustParse("06:30"), End: MustParse("09:00")},
		{Start: MustParse("15:00"), End: MustParse("23:59")},
		{Start: MustParse("00:01"), End: MustParse("00:02")},
	}
	for _, w := range windows {
		assert.True(t, w.Contains(w.Start), "%s start", w)
		assert.True(t, w.Contains(w.End), "%s end", w)
		assert.False(t, w.Contains(w.Start-1), "%s start-1", w)
		if w.End < LastMinute {
			assert.False(t, w.Contains(w.End+1), "%s end+1", w)
		}
	}
}

func TestNewWindow(t *testing.T) {
	w, err := NewWindow("06:30", "09:00")
	require.NoError(t, err)
	assert.Equal(t, "06:30 - 09:00", w.String())

	_, err = NewWindow("10:00", "09:00")
	assert.Error(t, err)

	_, err = NewWindow("6:30", "09:00")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestTimeOfDay_On(t *testing.T) {
	loc := time.FixedZone("WITA", 8*3600)
	day := time.Date(2025, 3, 10, 17, 45, 12, 0, loc)
	got := MustParse("06:30").On(day)
	assert.Equal(t, time.Date(2025, 3, 10, 6, 30, 0, 0, loc), got)
}

func TestTimeOfDay_TextMarshal(t *testing.T) {
	var tod TimeOfDay
	require.NoError(t, tod.UnmarshalText([]byte("15:00")))
	b, err := tod.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "15:00", string(b))
	assert.Error(t, tod.UnmarshalText([]byte("3pm")))
}
