package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeDate(t *testing.T) {
	got, ok := ParseTime("2015-01-02")
	if !ok {
		t.Fatalf("expected ok")
	}
	if !got.Equal(time.Date(2015, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestDayRange(t *testing.T) {
	from := time.Date(2024, 3, 1, 15, 4, 5, 0, time.UTC)
	to := time.Date(2024, 3, 5, 1, 0, 0, 0, time.UTC)
	f, e := DayRange(from, to)
	if !f.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected from %v", f)
	}
	if !e.Equal(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected to %v", e)
	}
	if !InDayRange(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), from, to) {
		t.Fatalf("last full day must be inside the range")
	}
	if InDayRange(e, from, to) || InDayRange(f.Add(-time.Second), from, to) {
		t.Fatalf("range must be half-open")
	}
}

func TestSplitSymbols(t *testing.T) {
	got := SplitSymbols(" aapl, msft,,tsla ")
	want := []string{"AAPL", "MSFT", "TSLA"}
	if len(got) != len(want) {
		t.Fatalf("unexpected symbols %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("symbol %d: got %s want %s", i, got[i], want[i])
		}
	}
}
