package lsystem

// MaxSymbols bounds the generated word, per spec.md 5's resource model: the
// coordinator allocates the word once per run and must refuse or truncate
// iteration beyond this size.
const MaxSymbols = 1_000_000

// Expand rewrites cfg.Axiom through cfg.Rules for cfg.Iterations rounds.
// If an iteration's result would exceed MaxSymbols, expansion stops at the
// last iteration that stayed within budget and truncated reports that the
// caller should log a warning (spec.md 7, Overflow).
func Expand(cfg Config) (word []byte, truncated bool) {
	cur := []byte(cfg.Axiom)

	for i := 0; i < cfg.Iterations; i++ {
		next := make([]byte, 0, len(cur))
		for _, sym := range cur {
			if replacement, ok := cfg.Rules[sym]; ok {
				next = append(next, replacement...)
			} else {
				next = append(next, sym)
			}
		}

		if len(next) > MaxSymbols {
			return cur, true
		}
		cur = next
	}

	return cur, false
}
