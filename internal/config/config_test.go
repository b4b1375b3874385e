package config

import (
	"testing"
	"time"
)

func TestLoadClampsTrendingDurations(t *testing.T) {
	tests := []struct {
		name         string
		refresh, ttl string
		wantRefresh  time.Duration
		wantTTL      time.Duration
	}{
		{"defaults", "", "", 60 * time.Second, 300 * time.Second},
		{"explicit", "15", "30", 15 * time.Second, 30 * time.Second},
		{"zero", "0", "0", 60 * time.Second, 300 * time.Second},
		{"negative", "-5", "-1", 60 * time.Second, 300 * time.Second},
		{"garbage", "soon", "never", 60 * time.Second, 300 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TRENDING_REFRESH_SECONDS", tt.refresh)
			t.Setenv("TRENDING_CACHE_TTL_SECONDS", tt.ttl)

			cfg := Load()
			if cfg.TrendingRefreshInterval != tt.wantRefresh {
				t.Errorf("refresh = %v, want %v", cfg.TrendingRefreshInterval, tt.wantRefresh)
			}
			if cfg.TrendingCacheTTL != tt.wantTTL {
				t.Errorf("ttl = %v, want %v", cfg.TrendingCacheTTL, tt.wantTTL)
			}
		})
	}
}

func TestLoadEnforceMinAge(t *testing.T) {
	t.Setenv("ENFORCE_MIN_AGE", "")
	if Load().EnforceMinAge {
		t.Error("min age enforced by default")
	}
	t.Setenv("ENFORCE_MIN_AGE", "true")
	if !Load().EnforceMinAge {
		t.Error("ENFORCE_MIN_AGE=true not honoured")
	}
}

func TestParseOrigins(t *testing.T) {
	if got := parseOrigins(""); got != nil {
		t.Errorf("empty = %v, want nil", got)
	}
	got := parseOrigins(" https://a.example , ,https://b.example")
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Errorf("origins = %q", got)
	}
}
