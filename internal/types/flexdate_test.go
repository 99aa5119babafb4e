package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexDate_UnmarshalShapes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantOK   bool
		wantYear int
	}{
		{"raw number year", `2019`, true, 2019},
		{"iso date", `"2019-03-01"`, true, 2019},
		{"iso year-month", `"2019-03"`, true, 2019},
		{"bare year string", `"2019"`, true, 2019},
		{"free text with year", `"since March 2019"`, true, 2019},
		{"year object", `{"year": 2020, "month": 6}`, true, 2020},
		{"year object no month", `{"year": 2020}`, true, 2020},
		{"nested date string", `{"date": "2018-05-01"}`, true, 2018},
		{"nested date number", `{"date": 2018}`, true, 2018},
		{"null", `null`, false, 0},
		{"empty string", `""`, false, 0},
		{"garbage text", `"present"`, false, 0},
		{"implausible year", `1492`, false, 0},
		{"unknown object", `{"foo": "bar"}`, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d FlexDate
			err := json.Unmarshal([]byte(tt.input), &d)
			require.NoError(t, err, "heterogeneous dates must never fail decoding")

			got, ok := d.Time()
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantYear, got.Year())
			}
		})
	}
}

func TestFlexDate_RoundTrip(t *testing.T) {
	d := NewFlexDate(time.Date(2021, 7, 1, 0, 0, 0, 0, time.UTC))
	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2021-07-01"`, string(data))

	var back FlexDate
	require.NoError(t, json.Unmarshal(data, &back))
	got, ok := back.Time()
	require.True(t, ok)
	assert.Equal(t, 2021, got.Year())
}

func TestExperience_Duration(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("closed range", func(t *testing.T) {
		e := Experience{
			StartDate: NewFlexDate(time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)),
			EndDate:   NewFlexDate(time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)),
		}
		assert.InDelta(t, 4.0, e.Duration(now), 0.05)
	})

	t.Run("open ended runs to now", func(t *testing.T) {
		e := Experience{StartDate: NewFlexDate(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))}
		assert.InDelta(t, 2.0, e.Duration(now), 0.05)
	})

	t.Run("missing start contributes zero", func(t *testing.T) {
		e := Experience{EndDate: NewFlexDate(time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC))}
		assert.Equal(t, 0.0, e.Duration(now))
	})

	t.Run("inverted range contributes zero", func(t *testing.T) {
		e := Experience{
			StartDate: NewFlexDate(time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)),
			EndDate:   NewFlexDate(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)),
		}
		assert.Equal(t, 0.0, e.Duration(now))
	})
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 1.0, Clamp(1.5, 0, 1))
	assert.Equal(t, 0.0, Clamp(-2, 0, 1))
	assert.Equal(t, 0.5, Clamp(0.5, 0, 1))
}
