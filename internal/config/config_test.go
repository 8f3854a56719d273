package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/peterkuimelis/careerpoker/internal/game"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	rules, err := cfg.Rules()
	if err != nil {
		t.Fatal(err)
	}
	if rules != game.DefaultRules() {
		t.Errorf("expected default rules, got %+v", rules)
	}
}

func TestLoadFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte("eight_cut: immediate\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CAREERPOKER_ADDR", "127.0.0.1:9000")
	t.Setenv("CAREERPOKER_RULES", path)
	t.Setenv("CAREERPOKER_REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != "127.0.0.1:9000" || cfg.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("env not applied: %+v", cfg)
	}
	rules, err := cfg.Rules()
	if err != nil {
		t.Fatal(err)
	}
	if rules.EightCut != game.EightCutImmediate {
		t.Errorf("rules file not applied: %+v", rules)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg struct {
		Port int `env:"CAREERPOKER_TEST_PORT"`
	}
	t.Setenv("CAREERPOKER_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestSetupLogging(t *testing.T) {
	logger := logrus.New()
	file := filepath.Join(t.TempDir(), "careerpoker.log")
	if err := SetupLogging(logger, Config{LogLevel: "debug", LogFile: file}); err != nil {
		t.Fatal(err)
	}
	if logger.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %s", logger.GetLevel())
	}
	logger.Info("hello")
	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Errorf("log file missing entry: %q", data)
	}

	if err := SetupLogging(logrus.New(), Config{LogLevel: "loud"}); err == nil {
		t.Error("expected a bad level to fail")
	}
}
