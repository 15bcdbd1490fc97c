package collect

import (
	"testing"
	"time"

	"github.com/DDMYmia/NEWS-READER-ELITE/internal/globaltime"
)

func TestParsePublishedAt_KnownFormats(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
		want time.Time
	}{
		{name: "rfc3339", raw: "2026-08-20T14:30:00Z", want: time.Date(2026, 8, 20, 14, 30, 0, 0, time.UTC)},
		{name: "rfc3339 with offset", raw: "2026-08-20T16:30:00+02:00", want: time.Date(2026, 8, 20, 14, 30, 0, 0, time.UTC)},
		{name: "space separated", raw: "2026-08-20 14:30:00", want: time.Date(2026, 8, 20, 14, 30, 0, 0, time.UTC)},
		{name: "alpha vantage compact", raw: "20260820T143000", want: time.Date(2026, 8, 20, 14, 30, 0, 0, time.UTC)},
		{name: "rfc1123z", raw: "Thu, 20 Aug 2026 14:30:00 +0000", want: time.Date(2026, 8, 20, 14, 30, 0, 0, time.UTC)},
		{name: "date only", raw: "2026-08-20", want: time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := ParsePublishedAt(tc.raw)
			if got == nil {
				t.Fatalf("expected %q to parse", tc.raw)
			}
			if !got.Equal(tc.want) {
				t.Fatalf("unexpected time: got %v want %v", got, tc.want)
			}
			if got.Location() != time.UTC {
				t.Fatalf("expected UTC, got %v", got.Location())
			}
		})
	}
}

func TestParsePublishedAt_Unparseable(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "  ", "not a date", "tomorrow"} {
		if got := ParsePublishedAt(raw); got != nil {
			t.Fatalf("expected nil for %q, got %v", raw, got)
		}
	}
}

func TestParsePublishedAt_RejectsFarFuture(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	globaltime.SetMockTime(now)
	defer globaltime.ResetTime()

	// Within the one-day skew window: accepted.
	nearFuture := now.Add(6 * time.Hour).Format(time.RFC3339)
	if got := ParsePublishedAt(nearFuture); got == nil {
		t.Fatalf("expected near-future timestamp %q to be accepted", nearFuture)
	}

	farFuture := now.Add(48 * time.Hour).Format(time.RFC3339)
	if got := ParsePublishedAt(farFuture); got != nil {
		t.Fatalf("expected far-future timestamp %q to be rejected, got %v", farFuture, got)
	}
}

func TestFeedFallbackTime(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	globaltime.SetMockTime(now)
	defer globaltime.ResetTime()

	got := feedFallbackTime()
	if got == nil || !got.Equal(now.Add(-time.Hour)) {
		t.Fatalf("unexpected fallback time: %v", got)
	}
}
