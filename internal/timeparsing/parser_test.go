package timeparsing

import (
	"testing"
	"time"
)

func TestParseCompactDuration(t *testing.T) {
	// Fixed reference time for deterministic tests
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		// Explicit future offsets
		{
			name:  "+6h adds 6 hours",
			input: "+6h",
			want:  time.Date(2025, 6, 15, 18, 0, 0, 0, time.UTC),
		},
		{
			name:  "+2w adds 2 weeks",
			input: "+2w",
			want:  time.Date(2025, 6, 29, 12, 0, 0, 0, time.UTC),
		},

		// Explicit past offsets
		{
			name:  "-6h subtracts 6 hours",
			input: "-6h",
			want:  time.Date(2025, 6, 15, 6, 0, 0, 0, time.UTC),
		},
		{
			name:  "-1d subtracts 1 day",
			input: "-1d",
			want:  time.Date(2025, 6, 14, 12, 0, 0, 0, time.UTC),
		},
		{
			name:  "-3m subtracts 3 months",
			input: "-3m",
			want:  time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC),
		},
		{
			name:  "-1y subtracts 1 year",
			input: "-1y",
			want:  time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC),
		},

		// Unsigned offsets look backwards
		{
			name:  "bare 6h means 6 hours ago",
			input: "6h",
			want:  time.Date(2025, 6, 15, 6, 0, 0, 0, time.UTC),
		},
		{
			name:  "bare 2d means 2 days ago",
			input: "2d",
			want:  time.Date(2025, 6, 13, 12, 0, 0, 0, time.UTC),
		},
		{
			name:  "bare 1w means 1 week ago",
			input: "1w",
			want:  time.Date(2025, 6, 8, 12, 0, 0, 0, time.UTC),
		},

		// Invalid inputs
		{
			name:    "missing unit",
			input:   "6",
			wantErr: true,
		},
		{
			name:    "unknown unit",
			input:   "6x",
			wantErr: true,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
		},
		{
			name:    "natural language is not compact",
			input:   "6 hours ago",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCompactDuration(tt.input, now)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseCompactDuration(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCompactDuration(%q) unexpected error: %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseCompactDuration(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsCompactDuration(t *testing.T) {
	valid := []string{"+6h", "-1d", "2w", "3m", "1y"}
	invalid := []string{"", "6", "6x", "tomorrow", "2025-01-01"}

	for _, s := range valid {
		if !IsCompactDuration(s) {
			t.Errorf("IsCompactDuration(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsCompactDuration(s) {
			t.Errorf("IsCompactDuration(%q) = true, want false", s)
		}
	}
}

func TestParseSince(t *testing.T) {
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

	t.Run("compact duration", func(t *testing.T) {
		got, err := ParseSince("-6h", now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := time.Date(2025, 1, 15, 4, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("ParseSince(-6h) = %v, want %v", got, want)
		}
	})

	t.Run("RFC3339", func(t *testing.T) {
		got, err := ParseSince("2025-01-10T08:30:00Z", now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := time.Date(2025, 1, 10, 8, 30, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("ParseSince(RFC3339) = %v, want %v", got, want)
		}
	})

	t.Run("date only", func(t *testing.T) {
		got, err := ParseSince("2025-01-10", now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Year() != 2025 || got.Month() != time.January || got.Day() != 10 {
			t.Errorf("ParseSince(date-only) = %v", got)
		}
	})

	t.Run("natural language", func(t *testing.T) {
		got, err := ParseSince("yesterday", now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Day() != 14 {
			t.Errorf("ParseSince(yesterday) = %v, want day 14", got)
		}
	})

	t.Run("unrecognized", func(t *testing.T) {
		if _, err := ParseSince("not a date at all", now); err == nil {
			t.Error("ParseSince expected error for unrecognizable input")
		}
	})
}
