package engine

import (
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/macropower/notemover/pkg/log"
	"github.com/macropower/notemover/pkg/vault/paths"
)

// Reason identifies what caused an [Event].
type Reason string

const (
	// ReasonCreate is a newly created document.
	ReasonCreate Reason = "create"
	// ReasonRename is a renamed or moved document.
	ReasonRename Reason = "rename"
	// ReasonMetadataChanged is a document whose content or metadata changed.
	ReasonMetadataChanged Reason = "metadata-changed"
	// ReasonCommand is an explicit user request.
	ReasonCommand Reason = "command"
)

// Event is a request to classify the document at Path.
type Event struct {
	Reason Reason
	// Path is the vault-relative document path.
	Path string
	// OldPath is the previous path of a renamed document.
	OldPath string
}

// Host loads documents and performs moves on behalf of the engine.
type Host interface {
	// Load returns the document at the vault-relative path.
	Load(path string) (Document, error)
	// Move moves doc into the destination container.
	Move(ctx context.Context, doc Document, destination string) error
}

// ShouldHandle decides whether ev is processed under mode.
//
// [Manual] mode only handles [ReasonCommand]. A rename that keeps the file
// name (the document only changed container) is never handled, so moves
// made by the engine do not trigger it again.
func ShouldHandle(mode TriggerMode, ev Event) (bool, SkipReason) {
	if mode == Manual && ev.Reason != ReasonCommand {
		return false, SkipSuppressed
	}

	if ev.Reason == ReasonRename && ev.OldPath != "" &&
		path.Base(paths.Normalize(ev.OldPath)) == path.Base(paths.Normalize(ev.Path)) {
		return false, SkipUnchanged
	}

	return true, SkipNone
}

// Ingest handles ev: it loads the document from host, classifies it with
// snap and moves it when a rule matches.
func Ingest(ctx context.Context, host Host, snap Snapshot, ev Event) (Outcome, error) {
	logger := log.WithContext(ctx).With(
		slog.String("reason", string(ev.Reason)),
		slog.String("path", ev.Path),
	)

	ok, skip := ShouldHandle(snap.Options.TriggerMode, ev)
	if !ok {
		logger.Debug("event ignored", slog.String("skip", string(skip)))
		return noMatch(skip), nil
	}

	doc, err := host.Load(ev.Path)
	if err != nil {
		return noMatch(SkipNone), fmt.Errorf("load document: %w", err)
	}

	out := snap.Classify(doc)
	if !out.Matched {
		logger.Debug("document not moved", slog.String("skip", string(out.Skip)))
		return out, nil
	}

	err = host.Move(ctx, doc, out.Destination)
	if err != nil {
		return out, fmt.Errorf("move %s to %s: %w", doc.Path, out.Destination, err)
	}

	logger.Info("moved document", slog.String("destination", out.Destination))

	return out, nil
}
