package config

import (
	"fmt"

	"github.com/cognicore/episcan/pkg/episcan"
	"github.com/cognicore/episcan/pkg/episcan/dict"
)

// Loader loads configuration files and constructs pipeline components
type Loader struct {
	DictPath   string
	TuningPath string
}

// Components holds all loaded configuration components
type Components struct {
	Dict   *dict.Dict
	Tuning Tuning
}

// Load reads the configured files. Empty paths select the built-in defaults.
func (l *Loader) Load() (*Components, error) {
	comp := &Components{Tuning: DefaultTuning()}

	tables := dict.Default()
	if l.DictPath != "" {
		loaded, err := LoadDictionaries(l.DictPath)
		if err != nil {
			return nil, fmt.Errorf("load dictionaries: %w", err)
		}
		tables = *loaded
	}
	comp.Dict = dict.New(tables)

	if l.TuningPath != "" {
		t, err := LoadTuning(l.TuningPath)
		if err != nil {
			return nil, fmt.Errorf("load tuning: %w", err)
		}
		comp.Tuning = *t
	}

	return comp, nil
}

// EngineOptions turns the loaded components into engine options
func (c *Components) EngineOptions() episcan.Options {
	t := c.Tuning
	bonus := t.MentionBonus
	return episcan.Options{
		Dict:         c.Dict,
		Weights:      &t.Weights,
		Limits:       &t.Limits,
		Inference:    &t.Inference,
		Thresholds:   t.Selection,
		MentionBonus: &bonus,
		ContextRunes: t.ContextRunes,
	}
}
