package settings

import (
	"fmt"
	"strings"

	"github.com/macropower/notemover/pkg/migrate"
	"github.com/macropower/notemover/pkg/rule"
	"github.com/macropower/notemover/pkg/yaml"
)

// pluginData is the data.json layout written by the Obsidian plugin.
type pluginData struct {
	StatusBarTriggerIndicator        *bool              `json:"statusBar_trigger_indicator"`
	TriggerAutoManual                string             `json:"trigger_auto_manual"`
	ExcludedFolder                   []pluginFolder     `json:"excluded_folder"`
	Rules                            []pluginRule       `json:"rules"`
	FolderTagPattern                 []pluginTagPattern `json:"folder_tag_pattern"`
	UseRegexToCheckForTags           bool               `json:"use_regex_to_check_for_tags"`
	UseRegexToCheckForExcludedFolder bool               `json:"use_regex_to_check_for_excluded_folder"`
}

type pluginFolder struct {
	Folder string `json:"folder"`
}

type pluginRule struct {
	Folder       string   `json:"folder"`
	TagMatchMode string   `json:"tagMatchMode"`
	TitlePattern string   `json:"titlePattern"`
	Tags         []string `json:"tags"`
}

type pluginTagPattern struct {
	Folder  string `json:"folder"`
	Tag     string `json:"tag"`
	Pattern string `json:"pattern"`
}

// ImportPluginData converts the plugin's data.json into [Settings] and
// migrates any legacy folder_tag_pattern entries. Blank excluded folders,
// which the plugin keeps as empty form rows, are dropped.
func ImportPluginData(data []byte) (*Settings, error) {
	var pd pluginData

	err := yaml.Unmarshal(data, &pd)
	if err != nil {
		return nil, fmt.Errorf("decode plugin data: %w", err)
	}

	s := New()
	s.UseRegexForTags = pd.UseRegexToCheckForTags
	s.UseRegexForExclusions = pd.UseRegexToCheckForExcludedFolder

	if pd.StatusBarTriggerIndicator != nil {
		show := *pd.StatusBarTriggerIndicator
		s.ShowStatusIndicator = &show
	}

	s, err = s.SetTriggerMode(pd.TriggerAutoManual)
	if err != nil {
		return nil, err
	}

	for _, f := range pd.ExcludedFolder {
		if strings.TrimSpace(f.Folder) == "" {
			continue
		}

		s.Exclusions = s.Exclusions.Append(f.Folder)
	}

	for _, r := range pd.Rules {
		mode, err := rule.ParseTagMatchMode(r.TagMatchMode)
		if err != nil {
			mode = rule.MatchAny
		}

		s.Rules = s.Rules.Append(rule.New(r.Folder, r.Tags, mode, r.TitlePattern))
	}

	for _, p := range pd.FolderTagPattern {
		s.LegacyRules = append(s.LegacyRules, migrate.LegacyRule{
			Destination: p.Folder,
			Tag:         p.Tag,
			Pattern:     p.Pattern,
		})
	}

	migrated, _ := s.Migrate()

	return migrated, nil
}
