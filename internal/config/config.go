// Package config loads process settings from the environment and sets up
// logging.
package config

import (
	"fmt"
	"io"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/peterkuimelis/careerpoker/internal/game"
)

// Config holds the settings shared by the careerpoker binaries. Command-line
// flags override these after they are parsed.
type Config struct {
	Addr      string `env:"CAREERPOKER_ADDR" envDefault:":8080"`
	RulesPath string `env:"CAREERPOKER_RULES"`
	RedisURL  string `env:"CAREERPOKER_REDIS_URL"`
	LogLevel  string `env:"CAREERPOKER_LOG_LEVEL" envDefault:"info"`
	LogFile   string `env:"CAREERPOKER_LOG_FILE"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads Config from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Rules loads the rules file named by RulesPath, or the default rules.
func (c Config) Rules() (game.RuleConfig, error) {
	if c.RulesPath == "" {
		return game.DefaultRules(), nil
	}
	return game.ParseRuleFile(c.RulesPath)
}

// SetupLogging configures logger's level and output. With a log file set,
// output goes to both stderr and a rotating file.
func SetupLogging(logger *logrus.Logger, cfg Config) error {
	lv, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	logger.SetLevel(lv)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	var out io.Writer = os.Stderr
	if cfg.LogFile != "" {
		out = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    100, // megabytes
			MaxBackups: 4,
			MaxAge:     7, // days
			LocalTime:  true,
		})
	}
	logger.SetOutput(out)
	return nil
}
