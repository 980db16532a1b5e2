package settings_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/notemover/api/v1beta1"
	"github.com/macropower/notemover/api/v1beta1/settings"
	"github.com/macropower/notemover/pkg/engine"
	"github.com/macropower/notemover/pkg/exclusion"
	"github.com/macropower/notemover/pkg/migrate"
	"github.com/macropower/notemover/pkg/rule"
)

func TestNew(t *testing.T) {
	t.Parallel()

	s := settings.New()

	assert.Equal(t, settings.Kind, s.GetKind())
	assert.Equal(t, engine.Automatic, s.TriggerMode)
	assert.Equal(t, ".obsidian", s.ConfigDir)
	assert.Equal(t, 25, s.BatchSize)
	assert.True(t, s.StatusIndicatorEnabled())
	require.NoError(t, s.Validate())
}

func TestSettings_Validate(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		edit    func(s *settings.Settings)
		want    error
		wantErr bool
	}{
		"defaults": {
			edit: func(*settings.Settings) {},
		},
		"bad trigger mode": {
			edit:    func(s *settings.Settings) { s.TriggerMode = "Sometimes" },
			want:    settings.ErrInvalidTriggerMode,
			wantErr: true,
		},
		"bad kind": {
			edit:    func(s *settings.Settings) { s.Kind = "Configuration" },
			want:    v1beta1.ErrUnknownKind,
			wantErr: true,
		},
		"bad tag match mode": {
			edit: func(s *settings.Settings) {
				s.Rules = rule.RuleSet{{Destination: "A", TagMatchMode: "some"}}
			},
			wantErr: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			s := settings.New()
			tc.edit(s)

			err := s.Validate()
			if !tc.wantErr {
				require.NoError(t, err)

				return
			}

			require.Error(t, err)
			if tc.want != nil {
				require.ErrorIs(t, err, tc.want)
			}
		})
	}
}

func TestSettings_Edits(t *testing.T) {
	t.Parallel()

	orig := settings.New()

	withRules := orig.WithRules(rule.RuleSet{
		{Destination: " Meetings/ ", Tags: []string{" #meeting ", ""}},
	})
	assert.Empty(t, orig.Rules, "original must not change")
	require.Len(t, withRules.Rules, 1)
	assert.Equal(t, "Meetings", withRules.Rules[0].Destination)
	assert.Equal(t, []string{"#meeting"}, withRules.Rules[0].Tags)

	withEx := withRules.WithExclusions(exclusion.List{{Container: "Templates"}})
	assert.Empty(t, withRules.Exclusions)
	assert.Equal(t, []string{"Templates"}, withEx.Exclusions.Containers())
	assert.Len(t, withEx.Rules, 1)

	toggled := withEx.ToggleTrigger()
	assert.Equal(t, engine.Manual, toggled.TriggerMode)
	assert.Equal(t, engine.Automatic, withEx.TriggerMode)
	assert.Equal(t, engine.Automatic, toggled.ToggleTrigger().TriggerMode)

	manual, err := withEx.SetTriggerMode("manual")
	require.NoError(t, err)
	assert.Equal(t, engine.Manual, manual.TriggerMode)

	_, err = withEx.SetTriggerMode("never")
	require.ErrorIs(t, err, settings.ErrInvalidTriggerMode)
}

func TestSettings_TriggerIndicator(t *testing.T) {
	t.Parallel()

	s := settings.New()
	assert.Equal(t, "[A]", s.TriggerIndicator())
	assert.Equal(t, "[M]", s.ToggleTrigger().TriggerIndicator())

	hidden := false
	s.ShowStatusIndicator = &hidden
	assert.Empty(t, s.TriggerIndicator())
}

func TestSettings_Snapshot(t *testing.T) {
	t.Parallel()

	s := settings.New().WithRules(rule.RuleSet{
		{Destination: "Meetings", Tags: []string{"#meeting"}},
	})
	s.UseRegexForTags = true

	snap := s.Snapshot()
	assert.True(t, snap.Options.UseRegexForTags)
	assert.Equal(t, engine.Automatic, snap.Options.TriggerMode)

	// The snapshot does not alias the settings.
	s.Rules[0].Tags[0] = "#changed"
	assert.Equal(t, "#meeting", snap.Rules[0].Tags[0])

	out := snap.Classify(engine.Document{
		Path:      "Inbox/standup.md",
		BaseName:  "standup",
		Container: "Inbox",
		Tags:      []string{"#meeting", "#2024"},
	})
	assert.True(t, out.Matched)
	assert.Equal(t, "Meetings", out.Destination)
}

func TestSettings_Migrate(t *testing.T) {
	t.Parallel()

	legacy := settings.New()
	legacy.LegacyRules = []migrate.LegacyRule{
		{Destination: "Meetings", Tag: " #meeting ", Pattern: ""},
		{Destination: "Journal", Pattern: ` ^\d{4}$ `},
	}

	got, changed := legacy.Migrate()
	require.True(t, changed)
	assert.Nil(t, got.LegacyRules)
	assert.Len(t, legacy.LegacyRules, 2, "original must not change")
	assert.Equal(t, rule.RuleSet{
		{Destination: "Meetings", Tags: []string{"#meeting"}, TagMatchMode: rule.MatchAny},
		{Destination: "Journal", Tags: []string{}, TagMatchMode: rule.MatchAny, TitlePattern: `^\d{4}$`},
	}, got.Rules)

	again, changed := got.Migrate()
	assert.False(t, changed)
	assert.Equal(t, got, again)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input       string
		wantTrigger engine.TriggerMode
		wantRules   int
		wantRewrite bool
		wantErr     bool
	}{
		"current format": {
			input: `apiVersion: notemover.macropower.dev/v1beta1
kind: Settings
trigger_mode: Manual
rules:
  - destination: Meetings
    tags: ["#meeting"]
`,
			wantRules:   1,
			wantTrigger: engine.Manual,
		},
		"legacy format is migrated and saved": {
			input: `apiVersion: notemover.macropower.dev/v1beta1
kind: Settings
legacy_rules:
  - destination: Meetings
    tag: "#meeting"
  - destination: Journal
    pattern: ^\d{4}
`,
			wantRules:   2,
			wantRewrite: true,
			wantTrigger: engine.Automatic,
		},
		"schema error": {
			input: `apiVersion: notemover.macropower.dev/v1beta1
kind: Settings
batch_size: many
`,
			wantErr: true,
		},
		"wrong kind": {
			input: `apiVersion: notemover.macropower.dev/v1beta1
kind: Configuration
`,
			wantErr: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "settings.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tc.input), 0o600))

			got, err := settings.Load(path)
			if tc.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Len(t, got.Rules, tc.wantRules)
			assert.Equal(t, tc.wantTrigger, got.TriggerMode)

			onDisk, err := os.ReadFile(path)
			require.NoError(t, err)

			if tc.wantRewrite {
				assert.NotContains(t, string(onDisk), "legacy_rules")
				assert.Contains(t, string(onDisk), "rules:")

				reloaded, err := settings.Load(path)
				require.NoError(t, err)
				assert.Len(t, reloaded.Rules, tc.wantRules)
				assert.Empty(t, reloaded.LegacyRules)
			} else {
				assert.Equal(t, tc.input, string(onDisk))
			}
		})
	}
}

func TestSettings_Save(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")

	s := settings.New().WithRules(rule.RuleSet{
		rule.New("Projects", []string{"#project", "#active"}, rule.MatchAll, ""),
	})
	require.NoError(t, s.Save(path))

	got, err := settings.Load(path)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestWriteDefault(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, settings.WriteDefault(path, false))

	got, err := settings.Load(path)
	require.NoError(t, err)
	assert.NotEmpty(t, got.Rules)
	assert.Equal(t, engine.Automatic, got.TriggerMode)
}
