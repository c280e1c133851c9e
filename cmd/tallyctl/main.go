// Command tallyctl administers the local tally database and prints tally
// sheets from a running server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"

	"github.com/mmynk/tallysheet/internal/config"
	"github.com/mmynk/tallysheet/internal/storage/sqlite"
	"github.com/mmynk/tallysheet/pkg/logging"
	"github.com/mmynk/tallysheet/pkg/tallyrpc"
)

// options are the persistent flags shared by every command.
type options struct {
	configPath string
	dbPath     string
	server     string
	token      string
	logLevel   string

	cfg config.Config
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "tallyctl",
		Short:         "Administer tally sessions and print tally sheets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if opts.dbPath != "" {
				cfg.Store.DBPath = opts.dbPath
			}
			opts.cfg = cfg
			return logging.Setup(opts.logLevel, "text")
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "./config.yaml", "Path to the server config file")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite database path (default: store.db_path from config)")
	root.PersistentFlags().StringVar(&opts.server, "server", "http://localhost:8080", "Tally server URL")
	root.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("TALLY_TOKEN"), "Bearer token for the tally server")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	root.AddCommand(
		newSeedCmd(opts),
		newSessionCmd(opts),
		newSessionsCmd(opts),
		newRequireCmd(opts),
		newTokenCmd(opts),
		newSheetCmd(opts),
		newSummaryCmd(opts),
		newReconcileCmd(opts),
	)
	return root
}

// openStore opens the local database named by --db or the config.
func (o *options) openStore() (*sqlite.SQLiteStore, error) {
	return sqlite.New(o.cfg.Store.DBPath)
}

// client returns a TallyService client for --server.
func (o *options) client() *tallyrpc.TallyServiceClient {
	var opts []connect.ClientOption
	if o.token != "" {
		opts = append(opts, connect.WithInterceptors(bearer(o.token)))
	}
	return tallyrpc.NewTallyServiceClient(http.DefaultClient, o.server, opts...)
}

func bearer(token string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			req.Header().Set("Authorization", "Bearer "+token)
			return next(ctx, req)
		}
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
