package handler

import (
	"strings"
	"testing"
	"time"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{"Ann Lee", "Ann Lee", false},
		{"  Ann Lee  ", "Ann Lee", false},
		{"Al", "Al", false},
		{"A", "", true},
		{"  A  ", "", true},
		{strings.Repeat("x", 51), "", true},
		// Length bounds count characters, not bytes.
		{"Çağla Şen", "Çağla Şen", false},
		{"Ö", "", true},
		{strings.Repeat("Ö", 26), strings.Repeat("Ö", 26), false},
		{strings.Repeat("Ö", 51), "", true},
	}
	for _, tt := range tests {
		got, msg := validateName(tt.raw)
		if (msg != "") != tt.wantErr {
			t.Errorf("validateName(%q) msg = %q, wantErr %v", tt.raw, msg, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("validateName(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{"ann@x.com", "ann@x.com", false},
		{"  ANN@X.COM  ", "ann@x.com", false},
		{"bad-email", "", true},
		{"@x.com", "", true},
		{"ann@x", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, msg := validateEmail(tt.raw)
		if (msg != "") != tt.wantErr {
			t.Errorf("validateEmail(%q) msg = %q, wantErr %v", tt.raw, msg, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("validateEmail(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		raw     string
		wantErr bool
	}{
		{"longenough1", false},
		{"12345678", false},
		{"1234567", true},
		{string(make([]byte, 128)), false},
		{string(make([]byte, 129)), true},
	}
	for _, tt := range tests {
		msg := validatePassword(tt.raw)
		if (msg != "") != tt.wantErr {
			t.Errorf("validatePassword(len=%d) msg = %q, wantErr %v", len(tt.raw), msg, tt.wantErr)
		}
	}
}

func TestValidateHours(t *testing.T) {
	tests := []struct {
		hours   float64
		wantErr bool
	}{
		{0, false},
		{24, false},
		{8.5, false},
		{-1, true},
		{25, true},
		{24.01, true},
	}
	for _, tt := range tests {
		msg := validateHours(tt.hours)
		if (msg != "") != tt.wantErr {
			t.Errorf("validateHours(%v) msg = %q, wantErr %v", tt.hours, msg, tt.wantErr)
		}
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		raw string
		ok  bool
	}{
		{"2026-03-02", true},
		{"2026-03-02T15:04:05Z", true},
		{" 2026-03-02 ", true},
		{"03/02/2026", false},
		{"not-a-date", false},
		{"", false},
	}
	for _, tt := range tests {
		got, ok := parseDate(tt.raw)
		if ok != tt.ok {
			t.Errorf("parseDate(%q) ok = %v, want %v", tt.raw, ok, tt.ok)
			continue
		}
		if ok && !got.Equal(want) {
			t.Errorf("parseDate(%q) = %v, want %v", tt.raw, got, want)
		}
	}
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		page, limit         string
		wantPage, wantLimit int
	}{
		{"", "", 1, 10},
		{"2", "5", 2, 5},
		{"0", "0", 1, 10},
		{"-3", "-1", 1, 10},
		{"abc", "xyz", 1, 10},
		{"99", "25", 99, 25},
	}
	for _, tt := range tests {
		gotPage, gotLimit := parsePagination(tt.page, tt.limit)
		if gotPage != tt.wantPage || gotLimit != tt.wantLimit {
			t.Errorf("parsePagination(%q, %q) = (%d, %d), want (%d, %d)",
				tt.page, tt.limit, gotPage, gotLimit, tt.wantPage, tt.wantLimit)
		}
	}
}

func TestTotalPagesAndClamp(t *testing.T) {
	tests := []struct {
		items, limit int
		want         int
	}{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 10, 3},
	}
	for _, tt := range tests {
		if got := totalPages(tt.items, tt.limit); got != tt.want {
			t.Errorf("totalPages(%d, %d) = %d, want %d", tt.items, tt.limit, got, tt.want)
		}
	}

	// 25 items at limit 10: page 99 clamps to the last page, in-range pages
	// pass through.
	if got := clampPage(99, totalPages(25, 10)); got != 3 {
		t.Errorf("clampPage(99, 3) = %d, want 3", got)
	}
	if got := clampPage(2, totalPages(25, 10)); got != 2 {
		t.Errorf("clampPage(2, 3) = %d, want 2", got)
	}
}
