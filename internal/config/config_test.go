package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/streameval/internal/domain"
)

const minimal = `
models:
  - id: mnb
    name: Multinomial NB
    path: models/mnb.json
`

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(minimal))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Run.BatchSize != 100 || cfg.Run.TotalRecords != 3373 {
		t.Errorf("unexpected run defaults %+v", cfg.Run)
	}
	if cfg.Transport.Kind != "tcp" || cfg.Transport.Addr != "localhost:6100" {
		t.Errorf("unexpected transport defaults %+v", cfg.Transport)
	}
	if cfg.Features.NFeatures != 1<<20 || cfg.Features.Hash != "murmur3" || cfg.Features.Norm != "l2" {
		t.Errorf("unexpected feature defaults %+v", cfg.Features)
	}
	if cfg.Labels.Mode != "global" {
		t.Errorf("expected global label mode, got %q", cfg.Labels.Mode)
	}
	if cfg.Models[0].Alignment != "none" {
		t.Errorf("expected alignment none, got %q", cfg.Models[0].Alignment)
	}
	if cfg.Inference.Workers < 1 {
		t.Errorf("expected positive workers, got %d", cfg.Inference.Workers)
	}
	if cfg.Report.Redis.Enabled() {
		t.Error("redis sink should be disabled by default")
	}
}

func TestParse_EnvExpansion(t *testing.T) {
	t.Setenv("STREAM_ADDR", "producer:7000")
	data := "transport:\n  addr: ${STREAM_ADDR}\n  kind: ${STREAM_KIND:-tcp}\n" + minimal

	cfg, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Transport.Addr != "producer:7000" {
		t.Errorf("expected expanded addr, got %q", cfg.Transport.Addr)
	}
	if cfg.Transport.Kind != "tcp" {
		t.Errorf("expected default kind, got %q", cfg.Transport.Kind)
	}
}

func TestParse_RedisACL(t *testing.T) {
	t.Setenv("REDIS_USERNAME", "evaluator")
	t.Setenv("REDIS_PASSWORD", "")
	data := `
report:
  redis:
    addrs: ["cache:6379"]
    username: ${REDIS_USERNAME:-}
    password: ${REDIS_PASSWORD:-secret}
` + minimal

	cfg, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := cfg.Report.Redis
	if !r.Enabled() || r.Username != "evaluator" || r.Password != "secret" {
		t.Errorf("unexpected redis config %+v", r)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		substr string
	}{
		{"negative batch", func(c *Config) { c.Run.BatchSize = -1 }, "batch size"},
		{"zero total", func(c *Config) { c.Run.TotalRecords = 0 }, "total records"},
		{"total below batch", func(c *Config) { c.Run.TotalRecords = 10; c.Run.BatchSize = 20 }, "smaller than batch size"},
		{"transport kind", func(c *Config) { c.Transport.Kind = "kafka" }, "transport.kind"},
		{"label mode", func(c *Config) { c.Labels.Mode = "sticky" }, "labels.mode"},
		{"no models", func(c *Config) { c.Models = nil }, "at least one model"},
		{"dup model", func(c *Config) { c.Models = append(c.Models, c.Models[0]) }, "duplicated"},
		{"alignment", func(c *Config) { c.Models[0].Alignment = "hungarian" }, "alignment"},
		{"missing path", func(c *Config) { c.Models[0].Path = "" }, "path is required"},
		{"http port", func(c *Config) { c.HTTP.Port = 70000 }, "http.port"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Parse([]byte(minimal))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tc.mutate(&cfg)
			err = cfg.Validate()
			if !errors.Is(err, domain.ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.substr) {
				t.Errorf("expected %q in %q", tc.substr, err.Error())
			}
		})
	}
}

func TestLoad_LocalFile(t *testing.T) {
	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Models) != 4 {
		t.Errorf("expected 4 models in local config, got %d", len(cfg.Models))
	}
}

func TestLoad_MissingEnv(t *testing.T) {
	if _, err := Load("does-not-exist"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if GetEnv() != "local" {
		t.Errorf("expected local default")
	}
	t.Setenv("ENV", "prod")
	if GetEnv() != "prod" {
		t.Errorf("expected prod")
	}
}
