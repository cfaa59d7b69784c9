package dateutil

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// Fixed time for deterministic tests: 2024-03-15 (令和6年)
var fixedTime = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func TestFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		format  string
		time    time.Time
		want    string
		wantErr error
	}{
		{"iso", "YYYY-MM-DD", fixedTime, "2024-03-15", nil},
		{"japanese", "YYYY年M月D日", fixedTime, "2024年3月15日", nil},
		{"two digit year", "YY/MM/DD", fixedTime, "24/03/15", nil},
		{"month names", "MMMM D, YYYY (MMM)", fixedTime, "March 15, 2024 (Mar)", nil},
		{"no padding", "M/D", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), "1/5", nil},
		{"era reiwa", "GGEE年", fixedTime, "令和6年", nil},
		{"era first year", "GGEE年M月D日", time.Date(2019, 5, 1, 0, 0, 0, 0, time.UTC), "令和元年5月1日", nil},
		{"era heisei last day", "GGEE年", time.Date(2019, 4, 30, 0, 0, 0, 0, time.UTC), "平成31年", nil},
		{"era showa", "GGEE", time.Date(1988, 12, 31, 0, 0, 0, 0, time.UTC), "昭和63", nil},
		{"before showa", "GGEE", time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC), "1900", nil},
		{"bracket literal", "[Date:] YYYY", fixedTime, "Date: 2024", nil},
		{"only literals", "---", fixedTime, "---", nil},
		{"empty", "", fixedTime, "", ErrInvalidDateFormat},
		{"too long", strings.Repeat("-", MaxDateFormatLength+1), fixedTime, "", ErrInvalidDateFormat},
		{"unclosed bracket", "[Date YYYY", fixedTime, "", ErrInvalidDateFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Format(tt.format, tt.time)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Format(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Format(%q) unexpected error: %v", tt.format, err)
			}
			if got != tt.want {
				t.Errorf("Format(%q) = %q, want %q", tt.format, got, tt.want)
			}
		})
	}
}

func TestResolveDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		want    string
		wantErr error
	}{
		{"empty passthrough", "", "", nil},
		{"literal date passthrough", "2024-01-01", "2024-01-01", nil},
		{"free text passthrough", "令和6年4月吉日", "令和6年4月吉日", nil},
		{"auto", "auto", "2024-03-15", nil},
		{"auto is case insensitive", "AUTO", "2024-03-15", nil},
		{"custom format", "auto:YYYY/M/D", "2024/3/15", nil},
		{"preset ja", "auto:ja", "2024年3月15日", nil},
		{"preset wareki", "auto:wareki", "令和6年3月15日", nil},
		{"preset case insensitive", "auto:ISO", "2024-03-15", nil},
		{"missing colon", "automatic", "", ErrInvalidDateFormat},
		{"empty format", "auto:", "", ErrInvalidDateFormat},
		{"bad format", "auto:[YYYY", "", ErrInvalidDateFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ResolveDate(tt.value, fixedTime)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ResolveDate(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveDate(%q) unexpected error: %v", tt.value, err)
			}
			if got != tt.want {
				t.Errorf("ResolveDate(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestPresets(t *testing.T) {
	t.Parallel()

	for name, format := range Presets {
		if _, err := Format(format, fixedTime); err != nil {
			t.Errorf("preset %q (%q) invalid: %v", name, format, err)
		}
	}
}
