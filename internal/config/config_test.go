package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func loadDefaults(t *testing.T) *Config {
	t.Helper()
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		t.Fatalf("unmarshal defaults failed: %v", err)
	}
	return &cfg
}

func TestDefaults(t *testing.T) {
	cfg := loadDefaults(t)
	if got := cfg.Server.Addr(); got != "0.0.0.0:8080" {
		t.Fatalf("addr want 0.0.0.0:8080 got %s", got)
	}
	if cfg.Server.IsRelease() {
		t.Fatalf("default mode should not be release")
	}
	if cfg.Promo.RedeemMaxRetries != 3 || cfg.Promo.CacheTTL() != time.Minute {
		t.Fatalf("unexpected promo defaults: %+v", cfg.Promo)
	}
	if cfg.Security.LoginRateLimit.MaxAttempts != 5 || cfg.Security.LoginRateLimit.BlockSeconds != 900 {
		t.Fatalf("unexpected login rate limit defaults: %+v", cfg.Security.LoginRateLimit)
	}
	if cfg.Queue.Queues["critical"] != 10 {
		t.Fatalf("critical queue weight want 10 got %d", cfg.Queue.Queues["critical"])
	}
}

func TestEnvOverridesDefaults(t *testing.T) {
	t.Setenv("PROMO_REDEEM_MAX_RETRIES", "7")
	t.Setenv("SERVER_MODE", "release")
	cfg := loadDefaults(t)
	if cfg.Promo.RedeemMaxRetries != 7 {
		t.Fatalf("retries want 7 got %d", cfg.Promo.RedeemMaxRetries)
	}
	if !cfg.Server.IsRelease() {
		t.Fatalf("env mode should switch to release")
	}
}

func TestPromoConfigLocationAndTTL(t *testing.T) {
	if loc := (PromoConfig{}).Location(); loc != time.UTC {
		t.Fatalf("empty timezone want UTC got %s", loc)
	}
	if loc := (PromoConfig{Timezone: "Not/AZone"}).Location(); loc != time.UTC {
		t.Fatalf("invalid timezone want UTC got %s", loc)
	}
	if ttl := (PromoConfig{CacheTTLSeconds: -1}).CacheTTL(); ttl != 0 {
		t.Fatalf("negative ttl want 0 got %v", ttl)
	}
}
