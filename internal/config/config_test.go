package config

import (
	"testing"
	"time"
)

// setRequired sets the variables Load refuses to start without
func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret-32-characters-long!")
	t.Setenv("DB_PASSWORD", "test")
}

func TestServerConfig_Timeouts(t *testing.T) {
	tests := []struct {
		name              string
		env               map[string]string
		read, write, idle time.Duration
	}{
		{
			name:  "defaults",
			read:  15 * time.Second,
			write: 15 * time.Second,
			idle:  60 * time.Second,
		},
		{
			name:  "custom",
			env:   map[string]string{"SERVER_READ_TIMEOUT": "30s", "SERVER_WRITE_TIMEOUT": "45s", "SERVER_IDLE_TIMEOUT": "2m"},
			read:  30 * time.Second,
			write: 45 * time.Second,
			idle:  2 * time.Minute,
		},
		{
			name:  "partial override keeps other defaults",
			env:   map[string]string{"SERVER_READ_TIMEOUT": "25s"},
			read:  25 * time.Second,
			write: 15 * time.Second,
			idle:  60 * time.Second,
		},
		{
			name:  "invalid duration falls back to default",
			env:   map[string]string{"SERVER_READ_TIMEOUT": "not-a-duration"},
			read:  15 * time.Second,
			write: 15 * time.Second,
			idle:  60 * time.Second,
		},
		{
			name:  "explicit zero disables the timeout",
			env:   map[string]string{"SERVER_READ_TIMEOUT": "0s"},
			read:  0,
			write: 15 * time.Second,
			idle:  60 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() = %v, want nil", err)
			}

			if cfg.Server.ReadTimeout != tt.read {
				t.Errorf("ReadTimeout: got %v, want %v", cfg.Server.ReadTimeout, tt.read)
			}
			if cfg.Server.WriteTimeout != tt.write {
				t.Errorf("WriteTimeout: got %v, want %v", cfg.Server.WriteTimeout, tt.write)
			}
			if cfg.Server.IdleTimeout != tt.idle {
				t.Errorf("IdleTimeout: got %v, want %v", cfg.Server.IdleTimeout, tt.idle)
			}
		})
	}
}

func TestLockoutConfig_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Lockout.MaxAttemptsLevel1 != 3 || cfg.Lockout.MaxAttemptsLevel2 != 6 {
		t.Errorf("attempt thresholds: got %d/%d, want 3/6", cfg.Lockout.MaxAttemptsLevel1, cfg.Lockout.MaxAttemptsLevel2)
	}
	if cfg.Lockout.CooldownLevel1 != 10*time.Minute {
		t.Errorf("CooldownLevel1: got %v, want 10m", cfg.Lockout.CooldownLevel1)
	}
	if cfg.Lockout.CooldownLevel2 != 24*time.Hour {
		t.Errorf("CooldownLevel2: got %v, want 24h", cfg.Lockout.CooldownLevel2)
	}
	if cfg.Lockout.CleanupInterval != time.Hour {
		t.Errorf("CleanupInterval: got %v, want 1h", cfg.Lockout.CleanupInterval)
	}
}

func TestLockoutConfig_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("LOCKOUT_MAX_ATTEMPTS_LEVEL1", "5")
	t.Setenv("LOCKOUT_COOLDOWN_LEVEL1", "15m")
	t.Setenv("LOCKOUT_MAX_ATTEMPTS_LEVEL2", "10")
	t.Setenv("LOCKOUT_COOLDOWN_LEVEL2", "12h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Lockout.MaxAttemptsLevel1 != 5 || cfg.Lockout.MaxAttemptsLevel2 != 10 {
		t.Errorf("attempt thresholds: got %d/%d, want 5/10", cfg.Lockout.MaxAttemptsLevel1, cfg.Lockout.MaxAttemptsLevel2)
	}
	if cfg.Lockout.CooldownLevel1 != 15*time.Minute || cfg.Lockout.CooldownLevel2 != 12*time.Hour {
		t.Errorf("cooldowns: got %v/%v, want 15m/12h", cfg.Lockout.CooldownLevel1, cfg.Lockout.CooldownLevel2)
	}
}

func TestLockoutConfig_RejectsLevel2BelowLevel1(t *testing.T) {
	setRequired(t)
	t.Setenv("LOCKOUT_MAX_ATTEMPTS_LEVEL1", "5")
	t.Setenv("LOCKOUT_MAX_ATTEMPTS_LEVEL2", "4")

	if _, err := Load(); err == nil {
		t.Fatal("Load() = nil, want error for level 2 threshold below level 1")
	}
}

func TestLoad_RequiresSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_PASSWORD", "test")

	if _, err := Load(); err == nil {
		t.Error("Load() without JWT_SECRET = nil, want error")
	}

	t.Setenv("JWT_SECRET", "test-secret-32-characters-long!")
	t.Setenv("DB_PASSWORD", "")

	if _, err := Load(); err == nil {
		t.Error("Load() without DB_PASSWORD = nil, want error")
	}
}

func TestLoad_ProductionRequiresLongSecret(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "only-twenty-chars!!!")
	t.Setenv("DB_PASSWORD", "test")

	if _, err := Load(); err == nil {
		t.Error("Load() with short production secret = nil, want error")
	}
}

func TestLoad_AlertRequiresSender(t *testing.T) {
	setRequired(t)
	t.Setenv("ALERT_TO_ADDRESS", "parent@example.com")
	t.Setenv("ALERT_FROM_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Error("Load() with alert recipient but no sender = nil, want error")
	}
}

func TestLoad_TrustedProxies(t *testing.T) {
	setRequired(t)
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 172.16.0.0/12 ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if len(cfg.Server.TrustedProxies) != 2 {
		t.Fatalf("TrustedProxies: got %v, want 2 entries", cfg.Server.TrustedProxies)
	}
	if cfg.Server.TrustedProxies[1] != "172.16.0.0/12" {
		t.Errorf("TrustedProxies[1]: got %q", cfg.Server.TrustedProxies[1])
	}
}

func TestFamilyConfig(t *testing.T) {
	setRequired(t)
	t.Setenv("FAMILY_VIEWER_PIN", "2468")
	t.Setenv("FAMILY_EDITOR_PIN", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load() with only a viewer PIN = nil, want error")
	}

	t.Setenv("FAMILY_EDITOR_PIN", "13572468")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}
	if !cfg.Family.Enabled() {
		t.Error("expected family seeding to be enabled")
	}
	if cfg.Family.Name != "Family" {
		t.Errorf("Family.Name: got %q, want default", cfg.Family.Name)
	}
}
