package event

import (
	"testing"
	"time"

	"github.com/alp54/fastmail-caldav/internal/datetime"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
)

func TestOccurrence_Overlaps(t *testing.T) {
	day := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
	next := day.AddDate(0, 0, 1)
	at := func(h int) datetime.Value {
		return datetime.Instant(day.Add(time.Duration(h) * time.Hour))
	}

	tests := []struct {
		name string
		occ  Occurrence
		want bool
	}{
		{name: "inside", occ: Occurrence{Start: at(9), End: mo.Some(at(10))}, want: true},
		{name: "before", occ: Occurrence{Start: at(-48), End: mo.Some(at(-47))}, want: false},
		{name: "ends at window start", occ: Occurrence{Start: at(-1), End: mo.Some(at(0))}, want: false},
		{name: "spans into window", occ: Occurrence{Start: at(-1), End: mo.Some(at(1))}, want: true},
		{name: "starts at window end", occ: Occurrence{Start: at(24)}, want: false},
		{name: "instant inside", occ: Occurrence{Start: at(23)}, want: true},
		{name: "all-day same date", occ: Occurrence{Start: datetime.Date(2025, 6, 3)}, want: true},
		{name: "all-day previous date", occ: Occurrence{Start: datetime.Date(2025, 6, 2)}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.occ.Overlaps(day, next))
		})
	}
}

func TestOccurrence_AllDayIgnoresLocalOffset(t *testing.T) {
	ny, _ := time.LoadLocation("America/New_York")
	start := time.Date(2025, 5, 31, 0, 0, 0, 0, ny)
	end := start.AddDate(0, 0, 1)

	june1 := Occurrence{Start: datetime.Date(2025, 6, 1)}
	may31 := Occurrence{Start: datetime.Date(2025, 5, 31)}

	assert.False(t, june1.Overlaps(start, end))
	assert.True(t, may31.Overlaps(start, end))
}

func TestRecord_Base(t *testing.T) {
	start := datetime.Date(2025, 6, 1)
	rec := &Record{UID: "x", Start: mo.Some(start)}

	occ, ok := rec.Base()
	assert.True(t, ok)
	assert.Equal(t, start, occ.Start)
	assert.Same(t, rec, occ.Record)
	assert.True(t, rec.Duration().IsAbsent())
}
