package game

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseRulesKeepsDefaults(t *testing.T) {
	cfg, err := ParseRules([]byte("eight_cut: immediate\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.EightCut != EightCutImmediate {
		t.Errorf("eight_cut = %q", cfg.EightCut)
	}
	if cfg.FlushDelay() != 5*time.Second || cfg.Jokers != 2 || !cfg.OneChance {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestParseRulesRejectsBadValues(t *testing.T) {
	for _, doc := range []string{
		"eight_cut: sometimes\n",
		"jokers: 9\n",
		"flush_delay_ms: -1\n",
		"jokers: [\n",
	} {
		if _, err := ParseRules([]byte(doc)); err == nil {
			t.Errorf("expected %q to be rejected", doc)
		}
	}
}

func TestParseRuleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte("flush_delay_ms: 250\none_chance: false\njokers: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := ParseRuleFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.FlushDelay() != 250*time.Millisecond || cfg.OneChance || cfg.Jokers != 0 {
		t.Errorf("unexpected rules %+v", cfg)
	}
	if len(NewDeck(cfg.Jokers)) != 52 {
		t.Error("a jokerless deck has 52 cards")
	}
}

func TestShippedRulesAreDefaults(t *testing.T) {
	cfg, err := ParseRuleFile(filepath.Join("..", "..", "rules.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg != DefaultRules() {
		t.Errorf("rules.yaml drifted from the defaults: %+v", cfg)
	}
}
