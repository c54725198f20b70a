// Package knowledge loads the static rule, safety and correction
// knowledge bases at process start. The loaded structures are shared
// by all sessions and read-only for the process lifetime; adaptation
// always operates on copies.
package knowledge

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/asanakit/surya/internal/domain/correction"
	"github.com/asanakit/surya/internal/domain/pose"
	"github.com/asanakit/surya/internal/domain/safety"
)

//go:embed defaults/poses.yaml
var defaultPoses []byte

//go:embed defaults/safety.yaml
var defaultSafety []byte

//go:embed defaults/corrections.yaml
var defaultCorrections []byte

// Base bundles the three loaded knowledge bases.
type Base struct {
	Rules       map[string]pose.RuleSet
	Safety      safety.Tables
	Corrections correction.Library
}

// Option applies a configuration option to the loader.
type Option func(*loader)

// WithPosesPath overrides the embedded pose rules with a YAML file.
func WithPosesPath(path string) Option {
	return func(l *loader) { l.posesPath = path }
}

// WithSafetyPath overrides the embedded safety tables with a YAML file.
func WithSafetyPath(path string) Option {
	return func(l *loader) { l.safetyPath = path }
}

// WithCorrectionsPath overrides the embedded correction library with a
// YAML file.
func WithCorrectionsPath(path string) Option {
	return func(l *loader) { l.correctionsPath = path }
}

type loader struct {
	posesPath       string
	safetyPath      string
	correctionsPath string
}

// Load reads the knowledge bases, preferring configured file paths
// over the embedded defaults. A corrupted or unreadable configured
// file is a fatal initialization error; nothing here is retried.
func Load(_ context.Context, opts ...Option) (*Base, error) {
	l := &loader{}
	for _, opt := range opts {
		opt(l)
	}

	rules, err := l.loadRules()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadRules, err)
	}
	tables, err := l.loadSafety()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadSafety, err)
	}
	lib, err := l.loadCorrections()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadCorrections, err)
	}

	return &Base{Rules: rules, Safety: tables, Corrections: lib}, nil
}

// loadDocument builds a koanf instance from a file path or, when none
// is configured, from the embedded fallback bytes.
func loadDocument(path string, fallback []byte) (*koanf.Koanf, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
		return k, nil
	}
	if err := k.Load(rawbytes.Provider(fallback), yaml.Parser()); err != nil {
		return nil, err
	}
	return k, nil
}

// loadRules splits each pose's flat rule map into numeric thresholds
// and boolean flags, preserving the knowledge base's key vocabulary.
func (l *loader) loadRules() (map[string]pose.RuleSet, error) {
	k, err := loadDocument(l.posesPath, defaultPoses)
	if err != nil {
		return nil, err
	}

	raw, ok := k.Get("poses").(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: missing poses map", ErrMalformed)
	}

	rules := make(map[string]pose.RuleSet, len(raw))
	for name, entry := range raw {
		ruleMap, ok := entry.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: pose %q is not a rule map", ErrMalformed, name)
		}
		rs := pose.NewRuleSet()
		for key, value := range ruleMap {
			switch v := value.(type) {
			case bool:
				rs.Flags[key] = v
			case int:
				rs.Thresholds[key] = float64(v)
			case float64:
				rs.Thresholds[key] = v
			default:
				return nil, fmt.Errorf("%w: rule %s.%s has unsupported type %T", ErrMalformed, name, key, value)
			}
		}
		rules[strings.ToLower(strings.TrimSpace(name))] = rs
	}
	return rules, nil
}

func (l *loader) loadSafety() (safety.Tables, error) {
	k, err := loadDocument(l.safetyPath, defaultSafety)
	if err != nil {
		return safety.Tables{}, err
	}

	var tables safety.Tables
	if err := k.UnmarshalWithConf("", &tables, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return safety.Tables{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	// Condition codes and pose names compare case-insensitively.
	normalized := safety.Tables{
		Contraindications: make(map[string][]string, len(tables.Contraindications)),
		Conditions:        make(map[string]safety.ConditionAdaptation, len(tables.Conditions)),
	}
	for poseName, conditions := range tables.Contraindications {
		lowered := make([]string, len(conditions))
		for i, c := range conditions {
			lowered[i] = strings.ToLower(strings.TrimSpace(c))
		}
		normalized.Contraindications[strings.ToLower(strings.TrimSpace(poseName))] = lowered
	}
	for code, adaptation := range tables.Conditions {
		normalized.Conditions[strings.ToLower(strings.TrimSpace(code))] = adaptation
	}
	return normalized, nil
}

func (l *loader) loadCorrections() (correction.Library, error) {
	k, err := loadDocument(l.correctionsPath, defaultCorrections)
	if err != nil {
		return nil, err
	}

	var doc struct {
		Poses map[string]map[string]string `koanf:"poses"`
	}
	if err := k.UnmarshalWithConf("", &doc, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if doc.Poses == nil {
		return nil, fmt.Errorf("%w: missing poses map", ErrMalformed)
	}

	lib := make(correction.Library, len(doc.Poses))
	for name, phrases := range doc.Poses {
		lib[strings.ToLower(strings.TrimSpace(name))] = phrases
	}
	return lib, nil
}
