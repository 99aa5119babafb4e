package types

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"
)

// FlexDate accepts the date shapes that show up in exported profile data:
//
//   - raw numbers:            2019
//   - ISO strings:            "2019-03-01", "2019-03", "2019"
//   - free text:              "March 2019", "since 2019"
//   - structured objects:     {"year": 2019, "month": 3}
//   - nested date objects:    {"date": "2019-03-01"}
//
// Anything unparseable resolves to "no date", which callers must skip rather
// than treat as zero.
type FlexDate struct {
	t     time.Time
	valid bool
}

// NewFlexDate builds a resolved FlexDate, mainly for tests and fixtures.
func NewFlexDate(t time.Time) FlexDate {
	return FlexDate{t: t, valid: true}
}

// Time returns the resolved date and whether one was resolved at all.
func (d FlexDate) Time() (time.Time, bool) {
	return d.t, d.valid
}

// Year returns the resolved year, or 0 if no date was resolved.
func (d FlexDate) Year() int {
	if !d.valid {
		return 0
	}
	return d.t.Year()
}

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// UnmarshalJSON implements the tolerant decoding described above.
func (d *FlexDate) UnmarshalJSON(data []byte) error {
	*d = FlexDate{}
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return nil
	}

	// Raw number: a bare year.
	var year int
	if err := json.Unmarshal(data, &year); err == nil {
		d.setYear(year)
		return nil
	}

	// Strings: ISO formats first, then a 4-digit year anywhere in the text.
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		d.parseString(s)
		return nil
	}

	// Objects: {"year":..,"month":..} or a nested "date" field of any shape.
	var obj struct {
		Year  int             `json:"year"`
		Month int             `json:"month"`
		Date  json.RawMessage `json:"date"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		if obj.Year > 0 {
			month := time.Month(1)
			if obj.Month >= 1 && obj.Month <= 12 {
				month = time.Month(obj.Month)
			}
			d.t = time.Date(obj.Year, month, 1, 0, 0, 0, 0, time.UTC)
			d.valid = plausibleYear(obj.Year)
			return nil
		}
		if len(obj.Date) > 0 {
			return d.UnmarshalJSON(obj.Date)
		}
	}

	// Unknown shape: skip, don't fail the whole prospect.
	return nil
}

// MarshalJSON emits the canonical ISO form, or null when unresolved.
func (d FlexDate) MarshalJSON() ([]byte, error) {
	if !d.valid {
		return []byte("null"), nil
	}
	return json.Marshal(d.t.Format("2006-01-02"))
}

func (d *FlexDate) parseString(s string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02", "2006-01", "2006"} {
		if t, err := time.Parse(layout, s); err == nil && plausibleYear(t.Year()) {
			d.t = t
			d.valid = true
			return
		}
	}
	if m := yearPattern.FindString(s); m != "" {
		// Free text containing a 4-digit year ("March 2019", "since 2019").
		var y int
		for _, c := range m {
			y = y*10 + int(c-'0')
		}
		d.setYear(y)
	}
}

func (d *FlexDate) setYear(year int) {
	if !plausibleYear(year) {
		return
	}
	d.t = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	d.valid = true
}

func plausibleYear(y int) bool {
	return y >= 1900 && y <= 2100
}
