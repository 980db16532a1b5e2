package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/macropower/notemover/api/v1beta1/settings"
	"github.com/macropower/notemover/pkg/filelock"
	"github.com/macropower/notemover/pkg/scan"
	"github.com/macropower/notemover/pkg/version"
)

// SettingsFunc returns the current settings. It is called for every tool
// call, so edits made while the server runs take effect.
type SettingsFunc func() (*settings.Settings, error)

// Opt configures a [Server].
type Opt func(*Server)

// WithScanLock makes scan_folder hold lock while scanning.
func WithScanLock(lock *filelock.Lock) Opt {
	return func(s *Server) {
		s.lock = lock
	}
}

// WithLogRPC writes every JSON-RPC message to stderr when serving stdio.
func WithLogRPC(enabled bool) Opt {
	return func(s *Server) {
		s.logRPC = enabled
	}
}

// Server implements the MCP server for notemover.
type Server struct {
	host     scan.Host
	tracer   trace.Tracer
	settings SettingsFunc
	server   *mcp.Server
	lock     *filelock.Lock
	address  string
	logRPC   bool
}

// NewServer creates a new MCP server for the vault behind host.
func NewServer(address string, host scan.Host, load SettingsFunc, opts ...Opt) *Server {
	impl := &mcp.Implementation{
		Name:    name,
		Version: version.GetVersion(),
	}

	s := &Server{
		address:  address,
		host:     host,
		settings: load,
		tracer:   otel.Tracer("mcp"),
		server:   mcp.NewServer(impl, &mcp.ServerOptions{Instructions: instructions}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.registerTools()

	return s
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_rules",
		Description: "List the move rules in evaluation order, the excluded folders and the trigger mode.",
	}, WithTracing(s.tracer, s.handleListRules))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "classify_note",
		Description: "Report which rule matches a note and where it would be moved. Does not move the note.",
	}, WithTracing(s.tracer, s.handleClassifyNote))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "scan_folder",
		Description: "Classify every note under a folder. Dry run by default; set dryRun to false to move notes.",
	}, WithTracing(s.tracer, s.handleScanFolder))
}

// Server returns the underlying MCP server.
func (s *Server) Server() *mcp.Server {
	return s.server
}

// Serve serves stdio when no address is set, and streamable HTTP otherwise.
// It returns when ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	slog.InfoContext(ctx, "starting MCP server", slog.String("address", s.address))

	if s.address == "" {
		err := s.serveStdio(ctx)
		if err != nil {
			return fmt.Errorf("serve stdio: %w", err)
		}

		return nil
	}

	err := s.serveHTTP(ctx)
	if err != nil {
		return fmt.Errorf("serve HTTP: %w", err)
	}

	return nil
}

func (s *Server) serveHTTP(ctx context.Context) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)

	server := &http.Server{
		Addr:    s.address,
		Handler: handler,

		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			slog.Error("shut down MCP server", slog.Any("err", err))
		}
	}()

	err := server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}

	return nil
}

func (s *Server) serveStdio(ctx context.Context) error {
	var t mcp.Transport = &mcp.StdioTransport{}
	if s.logRPC {
		t = &mcp.LoggingTransport{Transport: t, Writer: os.Stderr}
	}

	err := s.server.Run(ctx, t)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run: %w", err)
	}

	return nil
}
