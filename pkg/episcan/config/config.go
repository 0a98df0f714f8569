package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/episcan/pkg/episcan/dict"
	"github.com/cognicore/episcan/pkg/episcan/gate"
	"github.com/cognicore/episcan/pkg/episcan/infer"
	"github.com/cognicore/episcan/pkg/episcan/internalerr"
	"github.com/cognicore/episcan/pkg/episcan/score"
	"github.com/cognicore/episcan/pkg/episcan/validate"
)

// Tuning holds the numeric knobs of the pipeline
type Tuning struct {
	Weights      score.Weights   `yaml:"weights" toml:"weights"`
	Limits       validate.Limits `yaml:"limits" toml:"limits"`
	Inference    infer.Policy    `yaml:"inference" toml:"inference"`
	Selection    gate.Thresholds `yaml:"selection" toml:"selection"`
	MentionBonus float64         `yaml:"mention_bonus" toml:"mention_bonus"`
	ContextRunes int             `yaml:"context_runes" toml:"context_runes"`
}

// DefaultTuning returns the stock tuning values
func DefaultTuning() Tuning {
	return Tuning{
		Weights:      score.DefaultWeights(),
		Limits:       validate.DefaultLimits(),
		Inference:    infer.DefaultPolicy(),
		Selection:    gate.DefaultThresholds(),
		MentionBonus: 10,
		ContextRunes: 40,
	}
}

// Validate checks that the thresholds and limits are coherent
func (t Tuning) Validate() error {
	s := t.Selection
	if s.Fallback > s.Primary {
		return fmt.Errorf("%w: fallback threshold %.1f above primary %.1f", internalerr.ErrInvalidConfig, s.Fallback, s.Primary)
	}
	if s.Primary < 0 || s.Primary > 100 || s.Fallback < 0 {
		return fmt.Errorf("%w: thresholds must be within 0-100", internalerr.ErrInvalidConfig)
	}
	for name, b := range map[string]validate.Bounds{
		"item_name":     t.Limits.ItemName,
		"brand":         t.Limits.Brand,
		"location_name": t.Limits.LocationName,
	} {
		if b.Min < 0 || b.Max < b.Min {
			return fmt.Errorf("%w: limits.%s [%d, %d]", internalerr.ErrInvalidConfig, name, b.Min, b.Max)
		}
	}
	if t.MentionBonus < 0 {
		return fmt.Errorf("%w: negative mention_bonus", internalerr.ErrInvalidConfig)
	}
	return nil
}

// LoadDictionaries reads dictionary tables from a YAML or TOML file
func LoadDictionaries(path string) (*dict.Tables, error) {
	var t dict.Tables
	if err := decodeFile(path, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// LoadTuning reads tuning values from a YAML or TOML file. Keys missing from
// the file keep their defaults.
func LoadTuning(path string) (*Tuning, error) {
	t := DefaultTuning()
	if err := decodeFile(path, &t); err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &t, nil
}

// MarshalDictionaries renders tables in the format implied by ext
func MarshalDictionaries(t dict.Tables, ext string) ([]byte, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "toml":
		return toml.Marshal(t)
	case "yaml", "yml", "":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(t); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("%w: %s", internalerr.ErrUnsupportedFile, ext)
}

func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return fmt.Errorf("%w: %s", internalerr.ErrUnsupportedFile, path)
	}
	return nil
}
