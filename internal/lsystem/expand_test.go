package lsystem

import (
	"strings"
	"testing"
)

func TestParseConfigIgnoresUnknownAndMalformed(t *testing.T) {
	src := `
axiom: F+F+F+F
iterations: 2
angle: 90
step: 1.5
start_x: 19.9
start_y: 19.9
rule: F=F+F-F
unknown_key: whatever
this line is garbage
rule: malformed-no-equals
`
	cfg, err := ParseConfig(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.Axiom != "F+F+F+F" || cfg.Iterations != 2 || cfg.AngleDeg != 90 {
		t.Fatalf("got %+v", cfg)
	}
	if cfg.Rules['F'] != "F+F-F" {
		t.Fatalf("rule for F = %q", cfg.Rules['F'])
	}
	if len(cfg.Rules) != 1 {
		t.Fatalf("got %d rules, want 1 (malformed rule line should be ignored)", len(cfg.Rules))
	}
}

func TestExpandAppliesRulesEachIteration(t *testing.T) {
	cfg := Config{
		Axiom:      "F",
		Iterations: 3,
		Rules:      map[byte]string{'F': "F+F"},
	}

	word, truncated := Expand(cfg)
	if truncated {
		t.Fatalf("unexpected truncation")
	}
	// F -> F+F -> F+F+F+F -> F+F+F+F+F+F+F+F
	want := 8
	got := strings.Count(string(word), "F")
	if got != want {
		t.Fatalf("got %d F symbols, want %d", got, want)
	}
}

func TestExpandStopsAtOverflow(t *testing.T) {
	cfg := Config{
		Axiom:      "F",
		Iterations: 100,
		Rules:      map[byte]string{'F': "FF"},
	}

	word, truncated := Expand(cfg)
	if !truncated {
		t.Fatalf("expected truncation for a 2^100-symbol expansion")
	}
	if len(word) > MaxSymbols {
		t.Fatalf("got %d symbols, want <= %d", len(word), MaxSymbols)
	}
}

func TestExpandNoRuleIsNoOp(t *testing.T) {
	cfg := Config{Axiom: "F+F-F", Iterations: 5}

	word, truncated := Expand(cfg)
	if truncated {
		t.Fatalf("unexpected truncation")
	}
	if string(word) != "F+F-F" {
		t.Fatalf("got %q, want unchanged axiom", word)
	}
}
