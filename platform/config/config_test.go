package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/leadflow")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("CORS_ORIGINS", "http://localhost:5173")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HeartbeatInterval != 4*time.Minute {
		t.Fatalf("expected 4m heartbeat, got %s", cfg.HeartbeatInterval)
	}
	if cfg.PresenceStaleAfter != 5*time.Minute {
		t.Fatalf("expected 5m staleness, got %s", cfg.PresenceStaleAfter)
	}
	if cfg.IdleNotifyAfter != 10*time.Minute || cfg.IdleReassignAfter != 24*time.Hour {
		t.Fatalf("unexpected idle thresholds: %s / %s", cfg.IdleNotifyAfter, cfg.IdleReassignAfter)
	}
	if cfg.Location == nil || cfg.Location.String() != "Asia/Bangkok" {
		t.Fatalf("expected Asia/Bangkok location, got %v", cfg.Location)
	}
	if cfg.IsSMTPEnabled() {
		t.Fatalf("expected smtp disabled without host")
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	setRequired(t)
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when DATABASE_URL is empty")
	}
}

func TestLoadRejectsStalenessShorterThanHeartbeat(t *testing.T) {
	setRequired(t)
	t.Setenv("PRESENCE_HEARTBEAT_INTERVAL", "5m")
	t.Setenv("PRESENCE_STALE_AFTER", "4m")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when staleness threshold is not longer than heartbeat interval")
	}
}

func TestSplitCSV(t *testing.T) {
	got := splitCSV(" a@x.io, ,b@x.io ")
	if len(got) != 2 || got[0] != "a@x.io" || got[1] != "b@x.io" {
		t.Fatalf("unexpected split result: %#v", got)
	}
}
