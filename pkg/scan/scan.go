// Package scan classifies and moves every document under a container.
//
// Documents are enumerated first, then processed sequentially. Every
// [DefaultBatchSize] documents the scanner calls its yield function, which by
// default hands the processor to other goroutines and checks for
// cancellation. A failure while loading or moving one document is recorded
// and counted as skipped; the scan continues with the next document.
package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/macropower/notemover/pkg/engine"
	"github.com/macropower/notemover/pkg/filelock"
	"github.com/macropower/notemover/pkg/log"
	"github.com/macropower/notemover/pkg/vault/paths"
)

// DefaultBatchSize is the number of documents processed between yields.
const DefaultBatchSize = 25

// ErrScanInProgress is returned when another scan holds the scan lock.
var ErrScanInProgress = errors.New("another scan is in progress")

// Host is the document store a [Scanner] walks.
type Host interface {
	engine.Host
	// ListDocuments returns the documents directly inside container.
	ListDocuments(container string) ([]string, error)
	// ListSubcontainers returns the containers directly inside container.
	ListSubcontainers(container string) ([]string, error)
	// IsReserved reports whether p is inside the reserved configuration
	// container.
	IsReserved(p string) bool
}

// YieldFunc is called between batches. A non-nil error stops the scan.
type YieldFunc func(ctx context.Context) error

// DefaultYield yields the processor and reports cancellation of ctx.
func DefaultYield(ctx context.Context) error {
	runtime.Gosched()
	return ctx.Err()
}

// Progress reports the position of a running scan.
type Progress struct {
	// Path is the document just processed.
	Path  string
	Done  int
	Total int
}

// Intent is a move that a dry-run scan would have made.
type Intent struct {
	// From is the document path.
	From string
	// To is the destination container.
	To string
}

func (i Intent) String() string {
	return fmt.Sprintf("%s → %s", i.From, i.To)
}

// Failure records a document that could not be processed.
type Failure struct {
	Err  error
	Path string
}

// Result summarizes a scan.
type Result struct {
	Root     string
	Intents  []Intent
	Failures []Failure
	Duration time.Duration
	Scanned  int
	Moved    int
	Skipped  int
	DryRun   bool
}

// Opt configures a [Scanner].
type Opt func(*Scanner)

// WithDryRun reports intended moves instead of performing them.
func WithDryRun(dryRun bool) Opt {
	return func(s *Scanner) {
		s.dryRun = dryRun
	}
}

// WithBatchSize sets the number of documents processed between yields.
// Values below one keep the default.
func WithBatchSize(n int) Opt {
	return func(s *Scanner) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithYield replaces [DefaultYield].
func WithYield(fn YieldFunc) Opt {
	return func(s *Scanner) {
		if fn != nil {
			s.yield = fn
		}
	}
}

// WithProgress registers a callback invoked after each document.
func WithProgress(fn func(Progress)) Opt {
	return func(s *Scanner) {
		s.progress = fn
	}
}

// WithLock makes [Scanner.Scan] hold lock for its duration. A scan that
// cannot acquire the lock fails with [ErrScanInProgress].
func WithLock(lock *filelock.Lock) Opt {
	return func(s *Scanner) {
		s.lock = lock
	}
}

// Scanner runs batch scans against a [Host].
type Scanner struct {
	host      Host
	tracer    trace.Tracer
	yield     YieldFunc
	progress  func(Progress)
	lock      *filelock.Lock
	batchSize int
	dryRun    bool
}

// New creates a [Scanner] for host.
func New(host Host, opts ...Opt) *Scanner {
	s := &Scanner{
		host:      host,
		tracer:    otel.Tracer("scanner"),
		yield:     DefaultYield,
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Scan classifies every document under root with snap and moves the matched
// ones. When ctx is cancelled, the partial result is returned with the
// context error.
func (s *Scanner) Scan(ctx context.Context, root string, snap engine.Snapshot) (*Result, error) {
	root = paths.Normalize(root)

	ctx, span := s.tracer.Start(ctx, "scan", trace.WithAttributes(
		attribute.String("root", root),
		attribute.Bool("dry_run", s.dryRun),
	))
	defer span.End()

	logger := log.WithContext(ctx).With(
		slog.String("root", root),
		slog.Bool("dry_run", s.dryRun),
	)

	if s.lock != nil {
		err := s.lock.TryLock()
		if errors.Is(err, filelock.ErrLocked) {
			return nil, fmt.Errorf("%w: %w", ErrScanInProgress, err)
		}
		if err != nil {
			return nil, fmt.Errorf("acquire scan lock: %w", err)
		}

		defer func() {
			err := s.lock.Unlock()
			if err != nil {
				logger.Warn("release scan lock", slog.Any("err", err))
			}
		}()
	}

	start := time.Now()
	res := &Result{Root: root, DryRun: s.dryRun}

	if s.host.IsReserved(root) {
		logger.Debug("root is reserved, nothing to scan")
		return res, nil
	}

	docs, err := s.enumerate(ctx, root)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "enumerate documents")

		return nil, err
	}

	logger.Debug("scan started", slog.Int("documents", len(docs)))

	for i, p := range docs {
		if i > 0 && i%s.batchSize == 0 {
			err := s.yield(ctx)
			if err != nil {
				res.Duration = time.Since(start)
				span.RecordError(err)
				logger.Info("scan interrupted", slog.Int("scanned", res.Scanned))

				return res, fmt.Errorf("scan %s: %w", root, err)
			}
		}

		res.Scanned++

		moved, err := s.process(ctx, p, snap, res)
		switch {
		case err != nil:
			res.Skipped++
			res.Failures = append(res.Failures, Failure{Path: p, Err: err})

			logger.Error("process document",
				slog.String("path", p),
				slog.Any("err", err),
			)

		case moved:
			res.Moved++

		default:
			res.Skipped++
		}

		if s.progress != nil {
			s.progress(Progress{Path: p, Done: i + 1, Total: len(docs)})
		}
	}

	res.Duration = time.Since(start)

	span.SetAttributes(
		attribute.Int("scanned", res.Scanned),
		attribute.Int("moved", res.Moved),
		attribute.Int("skipped", res.Skipped),
	)

	logger.Info("scan complete",
		slog.Int("scanned", res.Scanned),
		slog.Int("moved", res.Moved),
		slog.Int("skipped", res.Skipped),
		slog.Duration("duration", res.Duration),
	)

	return res, nil
}

func (s *Scanner) process(ctx context.Context, p string, snap engine.Snapshot, res *Result) (bool, error) {
	doc, err := s.host.Load(p)
	if err != nil {
		return false, fmt.Errorf("load: %w", err)
	}

	out := snap.Classify(doc)
	if !out.Matched {
		return false, nil
	}

	if s.dryRun {
		res.Intents = append(res.Intents, Intent{From: doc.Path, To: out.Destination})
		return true, nil
	}

	err = s.host.Move(ctx, doc, out.Destination)
	if err != nil {
		return false, fmt.Errorf("move to %s: %w", out.Destination, err)
	}

	return true, nil
}

// enumerate lists every document under root. Subcontainers that cannot be
// listed are logged and skipped; a failure to list root is returned.
func (s *Scanner) enumerate(ctx context.Context, root string) ([]string, error) {
	docs, err := s.host.ListDocuments(root)
	if err != nil {
		return nil, fmt.Errorf("list documents in %s: %w", root, err)
	}

	subs, err := s.host.ListSubcontainers(root)
	if err != nil {
		return nil, fmt.Errorf("list folders in %s: %w", root, err)
	}

	for _, sub := range subs {
		if s.host.IsReserved(sub) {
			continue
		}

		nested, err := s.enumerate(ctx, sub)
		if err != nil {
			log.WithContext(ctx).Warn("skip unreadable folder",
				slog.String("folder", sub),
				slog.Any("err", err),
			)

			continue
		}

		docs = append(docs, nested...)
	}

	return docs, nil
}
