package icscheck

import (
	"github.com/ppiankov/icscheck/internal/denylist"
	"github.com/ppiankov/icscheck/internal/validate"
)

// Option configures validation.
type Option func(*validatorConfig)

type validatorConfig struct {
	foldSentinel   bool
	minRestatement int
	phrases        []string
}

// WithFoldedSentinel matches the session CLEAR sentinel case-insensitively.
func WithFoldedSentinel() Option {
	return func(c *validatorConfig) { c.foldSentinel = true }
}

// WithMinRestatement sets the shortest normalized run, in bytes, reported
// as text restated across layers. Values below 1 keep the default.
func WithMinRestatement(n int) Option {
	return func(c *validatorConfig) {
		if n > 0 {
			c.minRestatement = n
		}
	}
}

// WithVariancePhrases adds vague phrases to the built-in list used for the
// output contract's variance field.
func WithVariancePhrases(phrases ...string) Option {
	return func(c *validatorConfig) { c.phrases = append(c.phrases, phrases...) }
}

func (c validatorConfig) options() validate.Options {
	opts := validate.DefaultOptions()
	opts.FoldSentinelCase = c.foldSentinel
	if c.minRestatement > 0 {
		opts.MinRestatementLen = c.minRestatement
	}
	if len(c.phrases) > 0 {
		dl := denylist.NewDefault()
		for _, p := range c.phrases {
			dl.AddPhrase(p)
		}
		opts.VariancePhrases = dl
	}
	return opts
}
