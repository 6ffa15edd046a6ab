package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	// empty values read as unset
	t.Setenv("PORT", "")
	t.Setenv("DEFAULT_POLL_TIME_LIMIT_SEC", "")
	t.Setenv("MAX_POLL_TIME_LIMIT_SEC", "")
	t.Setenv("MAX_CHAT_MESSAGE_LEN", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Session.DefaultTimeLimitSec != 60 {
		t.Errorf("DefaultTimeLimitSec = %d, want 60", cfg.Session.DefaultTimeLimitSec)
	}
	if cfg.Session.MaxTimeLimitSec != 300 {
		t.Errorf("MaxTimeLimitSec = %d, want 300", cfg.Session.MaxTimeLimitSec)
	}
	if cfg.Chat.MaxMessageLen != 500 {
		t.Errorf("MaxMessageLen = %d, want 500", cfg.Chat.MaxMessageLen)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "5000")
	t.Setenv("DEFAULT_POLL_TIME_LIMIT_SEC", "45")
	t.Setenv("MAX_CHAT_MESSAGE_LEN", "120")
	t.Setenv("READ_TIMEOUT_SEC", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Server.Port != "5000" {
		t.Errorf("Port = %q, want 5000", cfg.Server.Port)
	}
	if cfg.Session.DefaultTimeLimitSec != 45 {
		t.Errorf("DefaultTimeLimitSec = %d, want 45", cfg.Session.DefaultTimeLimitSec)
	}
	if cfg.Chat.MaxMessageLen != 120 {
		t.Errorf("MaxMessageLen = %d, want 120", cfg.Chat.MaxMessageLen)
	}
	if cfg.Server.ReadTimeout != 30 {
		t.Errorf("ReadTimeout = %d, want fallback 30 on bad value", cfg.Server.ReadTimeout)
	}
}
