package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/macropower/notemover/pkg/scan"
	"github.com/macropower/notemover/pkg/vault/paths"
)

// ListRulesParams has no arguments.
type ListRulesParams struct{}

// RuleInfo describes one rule.
type RuleInfo struct {
	Destination  string   `json:"destination"`
	TagMatchMode string   `json:"tagMatchMode"`
	TitlePattern string   `json:"titlePattern,omitempty"`
	Summary      string   `json:"summary"`
	Tags         []string `json:"tags"`
	Index        int      `json:"index"`
}

// ListRulesResult is the output of list_rules.
type ListRulesResult struct {
	TriggerMode           string     `json:"triggerMode"`
	Rules                 []RuleInfo `json:"rules"`
	Exclusions            []string   `json:"exclusions"`
	UseRegexForTags       bool       `json:"useRegexForTags"`
	UseRegexForExclusions bool       `json:"useRegexForExclusions"`
}

func (s *Server) handleListRules(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ ListRulesParams,
) (*mcp.CallToolResult, ListRulesResult, error) {
	cfg, err := s.settings()
	if err != nil {
		return nil, ListRulesResult{}, fmt.Errorf("load settings: %w", err)
	}

	out := ListRulesResult{
		TriggerMode:           string(cfg.TriggerMode),
		UseRegexForTags:       cfg.UseRegexForTags,
		UseRegexForExclusions: cfg.UseRegexForExclusions,
		Rules:                 make([]RuleInfo, 0, len(cfg.Rules)),
		Exclusions:            cfg.Exclusions.Containers(),
	}
	for i, r := range cfg.Rules {
		tags := r.Tags
		if tags == nil {
			tags = []string{}
		}

		out.Rules = append(out.Rules, RuleInfo{
			Index:        i,
			Destination:  r.Destination,
			Tags:         tags,
			TagMatchMode: string(r.Mode()),
			TitlePattern: r.TitlePattern,
			Summary:      r.String(),
		})
	}

	return nil, out, nil
}

// ClassifyNoteParams are the arguments of classify_note.
type ClassifyNoteParams struct {
	Path string `json:"path" jsonschema:"vault-relative path of the note, e.g. Inbox/standup.md"`
}

// ClassifyNoteResult is the output of classify_note.
type ClassifyNoteResult struct {
	Path        string   `json:"path"`
	Container   string   `json:"container"`
	Destination string   `json:"destination,omitempty"`
	Skip        string   `json:"skip,omitempty"`
	Rule        string   `json:"rule,omitempty"`
	Tags        []string `json:"tags"`
	RuleIndex   int      `json:"ruleIndex"`
	Matched     bool     `json:"matched"`
}

func (s *Server) handleClassifyNote(
	_ context.Context,
	_ *mcp.CallToolRequest,
	in ClassifyNoteParams,
) (*mcp.CallToolResult, ClassifyNoteResult, error) {
	if in.Path == "" {
		return nil, ClassifyNoteResult{}, errors.New("path is required")
	}

	cfg, err := s.settings()
	if err != nil {
		return nil, ClassifyNoteResult{}, fmt.Errorf("load settings: %w", err)
	}

	doc, err := s.host.Load(paths.Normalize(in.Path))
	if err != nil {
		return nil, ClassifyNoteResult{}, fmt.Errorf("load note: %w", err)
	}

	outcome := cfg.Snapshot().Classify(doc)

	tags := doc.Tags
	if tags == nil {
		tags = []string{}
	}

	out := ClassifyNoteResult{
		Path:        doc.Path,
		Container:   doc.Container,
		Tags:        tags,
		Matched:     outcome.Matched,
		Destination: outcome.Destination,
		Skip:        string(outcome.Skip),
		RuleIndex:   outcome.Rule,
	}
	if outcome.Matched {
		out.Rule = cfg.Rules[outcome.Rule].String()
	}

	return nil, out, nil
}

// ScanFolderParams are the arguments of scan_folder.
type ScanFolderParams struct {
	DryRun *bool  `json:"dryRun,omitempty" jsonschema:"report intended moves without moving notes (default true)"`
	Folder string `json:"folder,omitempty" jsonschema:"vault-relative folder to scan, defaults to the vault root"`
}

// MoveInfo is one move, made or intended.
type MoveInfo struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// FailureInfo is one note that could not be processed.
type FailureInfo struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// ScanFolderResult is the output of scan_folder.
type ScanFolderResult struct {
	Folder   string        `json:"folder"`
	Intents  []MoveInfo    `json:"intents"`
	Failures []FailureInfo `json:"failures"`
	Scanned  int           `json:"scanned"`
	Moved    int           `json:"moved"`
	Skipped  int           `json:"skipped"`
	DryRun   bool          `json:"dryRun"`
}

func (s *Server) handleScanFolder(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	in ScanFolderParams,
) (*mcp.CallToolResult, ScanFolderResult, error) {
	dryRun := in.DryRun == nil || *in.DryRun

	cfg, err := s.settings()
	if err != nil {
		return nil, ScanFolderResult{}, fmt.Errorf("load settings: %w", err)
	}

	opts := []scan.Opt{
		scan.WithDryRun(dryRun),
		scan.WithBatchSize(cfg.BatchSize),
	}
	if s.lock != nil {
		opts = append(opts, scan.WithLock(s.lock))
	}

	res, err := scan.New(s.host, opts...).Scan(ctx, paths.Normalize(in.Folder), cfg.Snapshot())
	if err != nil {
		return nil, ScanFolderResult{}, fmt.Errorf("scan %s: %w", paths.Normalize(in.Folder), err)
	}

	out := ScanFolderResult{
		Folder:   res.Root,
		DryRun:   res.DryRun,
		Scanned:  res.Scanned,
		Moved:    res.Moved,
		Skipped:  res.Skipped,
		Intents:  make([]MoveInfo, 0, len(res.Intents)),
		Failures: make([]FailureInfo, 0, len(res.Failures)),
	}
	for _, i := range res.Intents {
		out.Intents = append(out.Intents, MoveInfo{From: i.From, To: i.To})
	}
	for _, f := range res.Failures {
		out.Failures = append(out.Failures, FailureInfo{Path: f.Path, Error: f.Err.Error()})
	}

	return nil, out, nil
}
