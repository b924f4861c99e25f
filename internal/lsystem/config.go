// Package lsystem parses the L-system configuration file and expands the
// axiom through its production rules.  Per spec.md 1, this is the external
// collaborator the coordinator depends on but does not own; this package
// keeps it small and bounded rather than reintroducing the original
// program's axiom-length tricks.
package lsystem

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Config holds the subset of an L-system definition the coordinator needs:
// enough to expand the axiom and to seed the turtle's starting state.
type Config struct {
	Axiom      string
	Iterations int
	AngleDeg   int
	Step       float64
	StartX     float64
	StartY     float64
	Rules      map[byte]string
}

// ParseConfigFile reads and parses the L-system configuration at path.
func ParseConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "lsystem: open %s", path)
	}
	defer f.Close()

	return ParseConfig(f)
}

// ParseConfig reads the key: value grammar described in spec.md 6.  Unknown
// keys are ignored; lines that don't match the expected shape for their key
// are ignored rather than rejected.
func ParseConfig(r io.Reader) (Config, error) {
	cfg := Config{Rules: make(map[byte]string)}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "axiom":
			cfg.Axiom = value
		case "iterations":
			if n, err := strconv.Atoi(value); err == nil {
				cfg.Iterations = n
			}
		case "angle":
			if n, err := strconv.Atoi(value); err == nil {
				cfg.AngleDeg = n
			}
		case "step":
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				cfg.Step = v
			}
		case "start_x":
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				cfg.StartX = v
			}
		case "start_y":
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				cfg.StartY = v
			}
		case "rule":
			symbol, replacement, ok := strings.Cut(value, "=")
			if !ok || len(symbol) != 1 {
				continue
			}
			cfg.Rules[symbol[0]] = replacement
		}
	}
	if err := scanner.Err(); err != nil {
		return Config{}, errors.Wrap(err, "lsystem: read config")
	}

	return cfg, nil
}
