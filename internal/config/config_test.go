package config_test

import (
	"testing"
	"time"

	"github.com/XavierBriggs/fortuna/services/commentary-corpus/internal/config"
	"github.com/XavierBriggs/fortuna/services/commentary-corpus/internal/testutil"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("", true)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Redis.InputStream != "pbp.raw.basketball_nba" {
		t.Errorf("Redis.InputStream = %s, want pbp.raw.basketball_nba", cfg.Redis.InputStream)
	}
	if cfg.Redis.OutputStream != "pbp.commentary.basketball_nba" {
		t.Errorf("Redis.OutputStream = %s, want pbp.commentary.basketball_nba", cfg.Redis.OutputStream)
	}
	if cfg.Redis.BlockTime != 5*time.Second {
		t.Errorf("Redis.BlockTime = %v, want 5s", cfg.Redis.BlockTime)
	}
	if cfg.Corpus.Driver != "sqlite" {
		t.Errorf("Corpus.Driver = %s, want sqlite", cfg.Corpus.Driver)
	}
	if cfg.Pipeline.BatchSize != 100 {
		t.Errorf("Pipeline.BatchSize = %d, want 100", cfg.Pipeline.BatchSize)
	}
	if cfg.Pipeline.Delimiter != "" {
		t.Errorf("Pipeline.Delimiter = %q, want empty", cfg.Pipeline.Delimiter)
	}
	if !cfg.Pipeline.SortLive {
		t.Error("Pipeline.SortLive = false, want true")
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := testutil.WriteFile(t, "config.yaml", `
log:
  level: debug
pipeline:
  inputs:
    - data/playbyplay_0022300001.csv
  seed: 42
  output: s3://corpus/commentary.csv
corpus:
  enabled: true
  driver: postgres
`)
	t.Setenv("PBP_REDIS_ADDR", "redis:6379")

	cfg, err := config.Load(path, false)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %s, want debug", cfg.Log.Level)
	}
	if cfg.Pipeline.Seed != 42 {
		t.Errorf("Pipeline.Seed = %d, want 42", cfg.Pipeline.Seed)
	}
	if len(cfg.Pipeline.Inputs) != 1 {
		t.Errorf("Pipeline.Inputs = %v, want one entry", cfg.Pipeline.Inputs)
	}
	if cfg.Corpus.Driver != "postgres" || !cfg.Corpus.Enabled {
		t.Errorf("Corpus = %+v, want enabled postgres", cfg.Corpus)
	}
	if cfg.Redis.Addr != "redis:6379" {
		t.Errorf("Redis.Addr = %s, want env override redis:6379", cfg.Redis.Addr)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := config.Load("/nonexistent/config.yaml", false); err == nil {
		t.Error("Load() error = nil, want error for missing file")
	}
}
