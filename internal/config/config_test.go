package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("SESSION_TTL", "45m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("AUTH_RATE_LIMIT", "3")
	t.Setenv("AUTH_RATE_WINDOW_SECONDS", "30")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8 ,127.0.0.1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AppPort != "9090" || cfg.JWTSecret != "s3cret" || cfg.StoreDriver != DriverMemory {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.SessionTTL != 45*time.Minute {
		t.Fatalf("SessionTTL = %v", cfg.SessionTTL)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "http://b.test" {
		t.Fatalf("origins = %#v", cfg.CORSAllowedOrigins)
	}
	if cfg.AuthRateLimit.Max != 3 || cfg.AuthRateLimit.Window != 30*time.Second {
		t.Fatalf("auth rate limit = %+v", cfg.AuthRateLimit)
	}
	if len(cfg.TrustedProxies) != 2 || cfg.TrustedProxies[0] != "10.0.0.0/8" {
		t.Fatalf("trusted proxies = %#v", cfg.TrustedProxies)
	}
	if cfg.CORSAllowAll {
		t.Fatal("allow-all origins must be opt-in")
	}
	if cfg.CookieName != "Task_Manager_Auth" {
		t.Fatalf("cookie name = %q", cfg.CookieName)
	}
}

func TestLoadYAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "tasks.yaml")
	content := "jwt_secret: from-file\nstore_driver: mongo\nmongo_uri: mongodb://localhost:27017\nsession_ttl: 10m\nredis:\n  addr: localhost:6379\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.JWTSecret != "from-env" {
		t.Fatalf("env should win over file, got %q", cfg.JWTSecret)
	}
	if cfg.StoreDriver != DriverMongo || cfg.MongoDatabase != "task_management" {
		t.Fatalf("unexpected store config: %+v", cfg)
	}
	if cfg.SessionTTL != 10*time.Minute {
		t.Fatalf("SessionTTL = %v", cfg.SessionTTL)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("redis addr = %q", cfg.Redis.Addr)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{"memory ok", func(c *Config) { c.JWTSecret = "x"; c.StoreDriver = DriverMemory }, true},
		{"missing secret", func(c *Config) { c.StoreDriver = DriverMemory }, false},
		{"postgres without dsn", func(c *Config) { c.JWTSecret = "x" }, false},
		{"mongo without uri", func(c *Config) { c.JWTSecret = "x"; c.StoreDriver = DriverMongo }, false},
		{"unknown driver", func(c *Config) { c.JWTSecret = "x"; c.StoreDriver = "sqlite" }, false},
		{"proxy cidr", func(c *Config) { c.JWTSecret = "x"; c.StoreDriver = DriverMemory; c.TrustedProxies = []string{"10.0.0.0/8", "::1"} }, true},
		{"bad proxy", func(c *Config) { c.JWTSecret = "x"; c.StoreDriver = DriverMemory; c.TrustedProxies = []string{"proxy.local"} }, false},
		{"zero ttl", func(c *Config) { c.JWTSecret = "x"; c.StoreDriver = DriverMemory; c.SessionTTL = 0 }, false},
	}

	for _, tc := range cases {
		cfg := Default()
		tc.mutate(cfg)
		err := cfg.Validate()
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore Chdir: %v", err)
		}
	})
}
