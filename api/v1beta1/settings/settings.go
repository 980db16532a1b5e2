// Package settings provides the Settings configuration kind for notemover.
package settings

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/invopop/jsonschema"

	_ "embed"

	"github.com/macropower/notemover/api"
	"github.com/macropower/notemover/api/v1beta1"
	"github.com/macropower/notemover/pkg/config"
	"github.com/macropower/notemover/pkg/engine"
	"github.com/macropower/notemover/pkg/exclusion"
	"github.com/macropower/notemover/pkg/filelock"
	"github.com/macropower/notemover/pkg/migrate"
	"github.com/macropower/notemover/pkg/rule"
	"github.com/macropower/notemover/pkg/scan"
	"github.com/macropower/notemover/pkg/vault"
	"github.com/macropower/notemover/pkg/yaml"
)

//go:generate go run ../../../internal/schemagen -root ../../.. -o api/v1beta1/settings/settings.v1beta1.json

// Kind is the kind of a settings document.
const Kind = "Settings"

// ErrInvalidTriggerMode is returned when setting an unknown trigger mode.
var ErrInvalidTriggerMode = errors.New("invalid trigger mode")

var (
	//go:embed settings.yaml
	defaultSettingsYAML []byte

	//go:embed settings.v1beta1.json
	schemaJSON []byte

	// ValidKinds contains the valid kind values for settings.
	ValidKinds = []string{Kind}

	// DefaultValidator validates settings against the JSON schema.
	DefaultValidator = yaml.MustNewValidator("/settings.v1beta1.json", schemaJSON)

	// Compile-time interface checks.
	_ v1beta1.Object = (*Settings)(nil)
)

// Settings holds the rules, exclusions and flags that drive classification.
//
//nolint:recvcheck // Must satisfy the jsonschema interface.
type Settings struct {
	// ShowStatusIndicator enables the trigger mode indicator. Defaults to true.
	ShowStatusIndicator *bool `json:"show_status_indicator,omitempty" jsonschema:"title=Show Status Indicator"`
	// TriggerMode is "Automatic" (react to file events) or "Manual" (only
	// explicit commands move notes).
	TriggerMode engine.TriggerMode `json:"trigger_mode,omitempty" jsonschema:"title=Trigger Mode,enum=Automatic,enum=Manual"`
	// ConfigDir is the reserved vault folder that is never scanned or moved
	// into. Defaults to ".obsidian".
	ConfigDir string `json:"config_dir,omitempty" jsonschema:"title=Config Dir"`
	// Exclusions lists containers whose notes are never moved.
	Exclusions exclusion.List `json:"exclusions,omitempty" jsonschema:"title=Exclusions"`
	// Rules are evaluated in order; the first match wins.
	Rules rule.RuleSet `json:"rules,omitempty" jsonschema:"title=Rules"`
	// LegacyRules holds single-tag rules awaiting migration.
	LegacyRules []migrate.LegacyRule `json:"legacy_rules,omitempty" jsonschema:"title=Legacy Rules"`
	v1beta1.TypeMeta `json:",inline"`
	// BatchSize is the number of notes scanned between yields.
	BatchSize int `json:"batch_size,omitempty" jsonschema:"title=Batch Size,minimum=1"`
	// UseRegexForTags treats rule tags as regular expressions.
	UseRegexForTags bool `json:"use_regex_for_tags,omitempty" jsonschema:"title=Use Regex For Tags"`
	// UseRegexForExclusions treats exclusions as regular expressions.
	UseRegexForExclusions bool `json:"use_regex_for_exclusions,omitempty" jsonschema:"title=Use Regex For Exclusions"`
	// ExpandNestedTags makes "#a/b" also count as "#a".
	ExpandNestedTags bool `json:"expand_nested_tags,omitempty" jsonschema:"title=Expand Nested Tags"`
}

// New creates new [Settings] with default values.
func New() *Settings {
	s := &Settings{
		TypeMeta: v1beta1.TypeMeta{
			APIVersion: v1beta1.APIVersion,
			Kind:       Kind,
		},
	}
	s.EnsureDefaults()

	return s
}

// EnsureDefaults fills unset fields with their default values.
func (s *Settings) EnsureDefaults() {
	if s.TriggerMode == "" {
		s.TriggerMode = engine.Automatic
	}
	if s.ShowStatusIndicator == nil {
		show := true
		s.ShowStatusIndicator = &show
	}
	if s.ConfigDir == "" {
		s.ConfigDir = vault.DefaultConfigDir
	}
	if s.BatchSize <= 0 {
		s.BatchSize = scan.DefaultBatchSize
	}
}

// Validate checks values the schema cannot express.
func (s *Settings) Validate() error {
	err := s.Check(ValidKinds...)
	if err != nil {
		return fmt.Errorf("validate settings: %w", err)
	}

	_, err = engine.ParseTriggerMode(string(s.TriggerMode))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTriggerMode, err)
	}

	for i, r := range s.Rules {
		_, err := rule.ParseTagMatchMode(string(r.TagMatchMode))
		if err != nil {
			return fmt.Errorf("rules[%d]: %w", i, err)
		}
	}

	return nil
}

func (s Settings) JSONSchemaExtend(jss *jsonschema.Schema) {
	v1beta1.ExtendSchemaWithEnums(jss, v1beta1.ValidAPIVersions, ValidKinds)
}

// MarshalYAML serializes the settings to YAML.
func (s Settings) MarshalYAML() ([]byte, error) {
	type alias Settings

	b, err := api.MarshalYAML(alias(s))
	if err != nil {
		return nil, fmt.Errorf("marshal settings: %w", err)
	}

	return b, nil
}

// Clone returns a deep copy of s.
func (s *Settings) Clone() *Settings {
	c := *s
	c.Rules = s.Rules.Clone()
	c.Exclusions = s.Exclusions.Clone()
	c.LegacyRules = slices.Clone(s.LegacyRules)

	if s.ShowStatusIndicator != nil {
		show := *s.ShowStatusIndicator
		c.ShowStatusIndicator = &show
	}

	return &c
}

// WithRules returns a copy of s holding the normalized rules.
func (s *Settings) WithRules(rules rule.RuleSet) *Settings {
	c := s.Clone()
	c.Rules = rules.Normalize()

	return c
}

// WithExclusions returns a copy of s holding exclusions.
func (s *Settings) WithExclusions(exclusions exclusion.List) *Settings {
	c := s.Clone()
	c.Exclusions = exclusions.Clone()

	return c
}

// SetTriggerMode returns a copy of s using the parsed trigger mode.
func (s *Settings) SetTriggerMode(mode string) (*Settings, error) {
	m, err := engine.ParseTriggerMode(mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTriggerMode, err)
	}

	c := s.Clone()
	c.TriggerMode = m

	return c, nil
}

// ToggleTrigger returns a copy of s with the other trigger mode.
func (s *Settings) ToggleTrigger() *Settings {
	c := s.Clone()
	if c.TriggerMode == engine.Manual {
		c.TriggerMode = engine.Automatic
	} else {
		c.TriggerMode = engine.Manual
	}

	return c
}

// StatusIndicatorEnabled reports whether the trigger indicator is shown.
func (s *Settings) StatusIndicatorEnabled() bool {
	return s.ShowStatusIndicator == nil || *s.ShowStatusIndicator
}

// TriggerIndicator returns "[A]" or "[M]" for the trigger mode, or an empty
// string when the indicator is disabled.
func (s *Settings) TriggerIndicator() string {
	if !s.StatusIndicatorEnabled() {
		return ""
	}
	if s.TriggerMode == engine.Manual {
		return "[M]"
	}

	return "[A]"
}

// Snapshot returns an immutable [engine.Snapshot] of s.
func (s *Settings) Snapshot() engine.Snapshot {
	mode := s.TriggerMode
	if mode == "" {
		mode = engine.Automatic
	}

	return engine.NewSnapshot(s.Rules, s.Exclusions, engine.Options{
		TriggerMode:           mode,
		UseRegexForTags:       s.UseRegexForTags,
		UseRegexForExclusions: s.UseRegexForExclusions,
	})
}

// Migrate returns a copy of s with legacy rules converted and dropped, and
// whether anything changed. Settings that already hold rules are returned
// as is.
func (s *Settings) Migrate() (*Settings, bool) {
	rules, migrated := migrate.Rules(s.Rules, s.LegacyRules)
	if !migrated {
		return s, false
	}

	c := s.Clone()
	c.Rules = rules
	c.LegacyRules = nil

	return c, true
}

// Load reads the settings at path, validates them and migrates legacy
// rules. Settings that were migrated are written back to path.
func Load(path string, opts ...config.LoaderOpt) (*Settings, error) {
	l, err := config.NewLoaderFromFile(path, New, DefaultValidator, opts...)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	s, err := loadFrom(l)
	if err != nil {
		return nil, err
	}

	migrated, changed := s.Migrate()
	if !changed {
		return s, nil
	}

	slog.Info("migrated legacy rules",
		slog.String("path", path),
		slog.Int("rules", len(migrated.Rules)),
	)

	err = migrated.Save(path)
	if err != nil {
		return nil, err
	}

	return migrated, nil
}

// Parse decodes and validates settings from data without migrating them.
func Parse(data []byte, opts ...config.LoaderOpt) (*Settings, error) {
	return loadFrom(config.NewLoaderFromBytes(data, New, DefaultValidator, opts...))
}

func loadFrom(l *config.Loader[*Settings]) (*Settings, error) {
	err := l.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate settings: %w", err)
	}

	s, err := l.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	err = s.Validate()
	if err != nil {
		return nil, err
	}

	return s, nil
}

// Save writes s to path atomically while holding the settings lock.
func (s *Settings) Save(path string) error {
	b, err := s.MarshalYAML()
	if err != nil {
		return err
	}

	err = filelock.LockAndWrite(path, b, 0o600)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	return nil
}

// WriteDefault writes the embedded default settings.yaml to path.
func WriteDefault(path string, force bool) error {
	err := api.WriteDefaultFile(path, defaultSettingsYAML, force, "settings")
	if err != nil {
		return fmt.Errorf("write default settings: %w", err)
	}

	return nil
}

// GetPath returns the path to the user's settings file.
func GetPath() string {
	return api.GetConfigPath("settings.yaml")
}
