package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("http.addr = %q, want :8080", cfg.HTTP.Addr)
	}
	if cfg.Quote.ChatThreshold != 10000 {
		t.Errorf("chat_threshold = %d, want 10000", cfg.Quote.ChatThreshold)
	}
	if !cfg.Quote.BranchMode {
		t.Errorf("branch_mode should default to true")
	}
	if cfg.Booking.SubmitDelay != 600*time.Millisecond {
		t.Errorf("submit_delay = %s, want 600ms", cfg.Booking.SubmitDelay)
	}
	if cfg.Booking.SessionTTL != 24*time.Hour {
		t.Errorf("session_ttl = %s, want 24h", cfg.Booking.SessionTTL)
	}
	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("Location: %v", err)
	}
	if loc.String() != "Asia/Bangkok" {
		t.Errorf("location = %s, want Asia/Bangkok", loc)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("RENTAL_HTTP_ADDR", ":9090")
	t.Setenv("RENTAL_QUOTE_CHAT_THRESHOLD", "20000")
	t.Setenv("RENTAL_QUOTE_BRANCH_MODE", "false")
	t.Setenv("RENTAL_BOOKING_CONFIRM_DELAY", "0s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Addr != ":9090" {
		t.Errorf("http.addr = %q, want :9090", cfg.HTTP.Addr)
	}
	if cfg.Quote.ChatThreshold != 20000 {
		t.Errorf("chat_threshold = %d, want 20000", cfg.Quote.ChatThreshold)
	}
	if cfg.Quote.BranchMode {
		t.Errorf("branch_mode should be overridden to false")
	}
	if cfg.Booking.ConfirmDelay != 0 {
		t.Errorf("confirm_delay = %s, want 0", cfg.Booking.ConfirmDelay)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rental.yaml")
	body := "quote:\n  timezone: UTC\n  tiers: \"1:0,5:7\"\nlimits:\n  burst: 3\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Quote.Timezone != "UTC" {
		t.Errorf("timezone = %q, want UTC", cfg.Quote.Timezone)
	}
	if cfg.Limits.Burst != 3 {
		t.Errorf("burst = %d, want 3", cfg.Limits.Burst)
	}
	tiers, err := ParseTiers(cfg.Quote.Tiers)
	if err != nil {
		t.Fatalf("ParseTiers: %v", err)
	}
	if len(tiers) != 2 || tiers[1] != (Tier{MinDays: 5, Percent: 7}) {
		t.Errorf("tiers = %+v", tiers)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		key  string
		val  string
	}{
		{"negative threshold", "RENTAL_QUOTE_CHAT_THRESHOLD", "-1"},
		{"unknown timezone", "RENTAL_QUOTE_TIMEZONE", "Mars/Olympus"},
		{"malformed tiers", "RENTAL_QUOTE_TIERS", "1-0"},
		{"zero session ttl", "RENTAL_BOOKING_SESSION_TTL", "0s"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tc.key, tc.val)
			if _, err := Load(""); err == nil {
				t.Errorf("expected error for %s=%s", tc.key, tc.val)
			}
		})
	}
}

func TestParseTiers(t *testing.T) {
	tiers, err := ParseTiers(" 1:0, 3:5 ,7:10,14:15,30:20")
	if err != nil {
		t.Fatalf("ParseTiers: %v", err)
	}
	want := []Tier{{1, 0}, {3, 5}, {7, 10}, {14, 15}, {30, 20}}
	if len(tiers) != len(want) {
		t.Fatalf("len = %d, want %d", len(tiers), len(want))
	}
	for i := range want {
		if tiers[i] != want[i] {
			t.Errorf("tier[%d] = %+v, want %+v", i, tiers[i], want[i])
		}
	}
	if _, err := ParseTiers(""); err == nil {
		t.Errorf("empty tiers should fail")
	}
	if _, err := ParseTiers("a:1"); err == nil {
		t.Errorf("non-numeric tiers should fail")
	}
}
