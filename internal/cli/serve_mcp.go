package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/macropower/notemover/api"
	"github.com/macropower/notemover/pkg/filelock"
	"github.com/macropower/notemover/pkg/mcp"
)

type ServeMCPArgs struct {
	*RootArgs

	Address  string
	LockPath string
	LogRPC   bool
}

func NewServeMCPCmd(rootArgs *RootArgs) *cobra.Command {
	args := &ServeMCPArgs{RootArgs: rootArgs}

	cmd := &cobra.Command{
		Use:   "serve-mcp",
		Short: "Serve the rules and scans to MCP clients",
		Long: `Start a Model Context Protocol server exposing the rules, note
classification and folder scans as tools. Without --address the server
speaks over stdin and stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return args.run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&args.Address, "address", "", "Serve over HTTP at the specified address instead of stdio")
	cmd.Flags().StringVar(&args.LockPath, "lock", api.GetStatePath("scan.lock"), "Lock file preventing concurrent scans")
	cmd.Flags().BoolVar(&args.LogRPC, "log-rpc", false, "Log JSON-RPC messages to stderr")

	return cmd
}

func (sa *ServeMCPArgs) run(ctx context.Context) error {
	s, err := sa.loadSettings()
	if err != nil {
		return err
	}

	v, err := sa.openVault(s)
	if err != nil {
		return err
	}
	defer closeVault(v)

	srv := mcp.NewServer(sa.Address, v, sa.loadSettings,
		mcp.WithScanLock(filelock.New(sa.LockPath)),
		mcp.WithLogRPC(sa.LogRPC),
	)

	slog.Info("serving mcp",
		slog.String("vault", v.Dir()),
		slog.String("address", sa.Address),
	)

	err = srv.Serve(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("serve mcp: %w", err)
	}

	return nil
}
