package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/tanjirantu/mcp-mongodb/internal/democlient"
	"github.com/tanjirantu/mcp-mongodb/internal/logging"
	"github.com/tanjirantu/mcp-mongodb/internal/query"
)

var (
	serverFlag      string
	collectionFlag  string
	jqFlag          string
	databaseURLFlag string
	logLevelFlag    string
	describeFlag    bool
	maxItemsFlag    int
	maxStringFlag   int
)

var rootCmd = &cobra.Command{
	Use:   "mongodb-mcp-client [-- server args...]",
	Short: "Demonstrate the MongoDB MCP server",
	Long: `Starts the MongoDB MCP server as a subprocess, lists its schema resources,
reads the first one and runs find, findOne and aggregate against a collection.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&serverFlag, "server", "mongodb-mcp", "server executable to spawn")
	rootCmd.Flags().StringVarP(&collectionFlag, "collection", "c", democlient.DefaultCollection, "collection to query")
	rootCmd.Flags().StringVar(&jqFlag, "jq", "", "jq expression applied to each tool output")
	rootCmd.Flags().StringVar(&databaseURLFlag, "database-url", "", "DATABASE_URL passed to the server (default: inherited)")
	rootCmd.Flags().StringVar(&logLevelFlag, "log-level", "warn", "client log level")
	rootCmd.Flags().IntVar(&maxItemsFlag, "max-items", 0, "print at most N elements of each array (0 = all)")
	rootCmd.Flags().IntVar(&maxStringFlag, "max-string", 0, "truncate strings longer than N bytes (0 = no limit)")
	rootCmd.Flags().BoolVar(&describeFlag, "describe", false, "print the field paths, types and formats of each tool output")
}

func run(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	slog.SetDefault(logging.New(cmd.ErrOrStderr(), logLevelFlag))

	var filter *query.Filter
	if jqFlag != "" {
		f, err := query.Compile(jqFlag)
		if err != nil {
			return err
		}
		filter = f
	}

	server := exec.CommandContext(ctx, serverFlag, args...)
	server.Stderr = cmd.ErrOrStderr()
	server.Env = os.Environ()
	if databaseURLFlag != "" {
		server.Env = append(server.Env, "DATABASE_URL="+databaseURLFlag)
	}

	cs, err := democlient.Connect(ctx, &sdkmcp.CommandTransport{Command: server})
	if err != nil {
		return fmt.Errorf("starting %s: %w", serverFlag, err)
	}
	defer cs.Close()

	return democlient.Run(ctx, cs, democlient.Options{
		Collection: collectionFlag,
		Filter:     filter,
		Describe:   describeFlag,
		Limits:     democlient.Limits{MaxItems: maxItemsFlag, MaxString: maxStringFlag},
		Out:        cmd.OutOrStdout(),
	})
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
