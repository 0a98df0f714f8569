package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/episcan/pkg/episcan/dict"
	"github.com/cognicore/episcan/pkg/episcan/internalerr"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestDefaultTuningValid(t *testing.T) {
	if err := DefaultTuning().Validate(); err != nil {
		t.Fatalf("default tuning invalid: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Tuning)
	}{
		{"fallback above primary", func(tu *Tuning) { tu.Selection.Fallback = 90 }},
		{"primary above 100", func(tu *Tuning) { tu.Selection.Primary = 120 }},
		{"inverted bounds", func(tu *Tuning) { tu.Limits.Brand.Max = 1 }},
		{"negative bonus", func(tu *Tuning) { tu.MentionBonus = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tu := DefaultTuning()
			tt.mutate(&tu)
			if err := tu.Validate(); !errors.Is(err, internalerr.ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoadTuningYAMLKeepsDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "tuning.yaml", `
weights:
  known_brand: 40
selection:
  primary: 75
`)
	tu, err := LoadTuning(path)
	if err != nil {
		t.Fatalf("LoadTuning: %v", err)
	}
	if tu.Weights.KnownBrand != 40 || tu.Selection.Primary != 75 {
		t.Errorf("overrides not applied: %+v", tu)
	}
	if tu.Weights.Price != 20 || tu.Selection.Fallback != 50 || tu.MentionBonus != 10 {
		t.Errorf("defaults lost: %+v", tu)
	}
}

func TestLoadTuningTOML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "tuning.toml", `
mention_bonus = 5.0

[inference]
discount = 15.0
floor = 40.0
`)
	tu, err := LoadTuning(path)
	if err != nil {
		t.Fatalf("LoadTuning: %v", err)
	}
	if tu.MentionBonus != 5 || tu.Inference.Discount != 15 || tu.Inference.Floor != 40 {
		t.Errorf("unexpected tuning %+v", tu)
	}
}

func TestLoadTuningInvalid(t *testing.T) {
	path := writeFile(t, t.TempDir(), "tuning.yaml", "selection:\n  primary: 40\n  fallback: 60\n")
	if _, err := LoadTuning(path); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestUnsupportedExtension(t *testing.T) {
	path := writeFile(t, t.TempDir(), "dict.json", "{}")
	if _, err := LoadDictionaries(path); !errors.Is(err, internalerr.ErrUnsupportedFile) {
		t.Fatalf("expected ErrUnsupportedFile, got %v", err)
	}
	if _, err := MarshalDictionaries(dict.Tables{}, ".json"); !errors.Is(err, internalerr.ErrUnsupportedFile) {
		t.Fatalf("expected ErrUnsupportedFile, got %v", err)
	}
}

func TestDictionaryRoundTrip(t *testing.T) {
	dir := t.TempDir()
	for _, ext := range []string{".yaml", ".toml"} {
		data, err := MarshalDictionaries(dict.Default(), ext)
		if err != nil {
			t.Fatalf("marshal %s: %v", ext, err)
		}
		path := writeFile(t, dir, "dict"+ext, string(data))
		tables, err := LoadDictionaries(path)
		if err != nil {
			t.Fatalf("load %s: %v", ext, err)
		}
		d := dict.New(*tables)
		if c, ok := d.CanonicalBrand("ユニクロ"); !ok || c != "UNIQLO" {
			t.Errorf("%s: alias lost after round trip", ext)
		}
		if s, ok := d.StoreFor("ハンバーグ"); !ok || s != "びっくりドンキー" {
			t.Errorf("%s: category lost after round trip", ext)
		}
	}
}
