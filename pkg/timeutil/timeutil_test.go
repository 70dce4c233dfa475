package timeutil

import (
	"testing"
	"time"
)

func TestLinearBackoffDelay(t *testing.T) {
	tests := []struct {
		name    string
		attempt int
		base    time.Duration
		want    time.Duration
	}{
		{
			name:    "first attempt waits one base unit",
			attempt: 1,
			base:    10 * time.Second,
			want:    10 * time.Second,
		},
		{
			name:    "second attempt waits two base units",
			attempt: 2,
			base:    10 * time.Second,
			want:    20 * time.Second,
		},
		{
			name:    "fifth attempt waits five base units",
			attempt: 5,
			base:    10 * time.Second,
			want:    50 * time.Second,
		},
		{
			name:    "millisecond base",
			attempt: 3,
			base:    10 * time.Millisecond,
			want:    30 * time.Millisecond,
		},
		{
			name:    "zero attempt returns zero",
			attempt: 0,
			base:    10 * time.Second,
			want:    0,
		},
		{
			name:    "negative attempt returns zero",
			attempt: -1,
			base:    10 * time.Second,
			want:    0,
		},
		{
			name:    "zero base returns zero",
			attempt: 4,
			base:    0,
			want:    0,
		},
		{
			name:    "negative base returns zero",
			attempt: 4,
			base:    -time.Second,
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LinearBackoffDelay(tt.attempt, tt.base)
			if got != tt.want {
				t.Errorf("LinearBackoffDelay() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatCrawlDate(t *testing.T) {
	ts := time.Date(2020, time.October, 7, 9, 5, 3, 0, time.UTC)

	got := FormatCrawlDate(ts)
	if got != "07-10-2020 09:05:03" {
		t.Errorf("FormatCrawlDate() = %q, want %q", got, "07-10-2020 09:05:03")
	}
}

func TestDurationPtr(t *testing.T) {
	d := 5 * time.Second
	ptr := DurationPtr(d)

	if ptr == nil {
		t.Fatal("DurationPtr returned nil")
	}

	if *ptr != d {
		t.Errorf("DurationPtr() = %v, want %v", *ptr, d)
	}
}
