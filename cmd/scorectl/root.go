package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/johnquangdev/interview-scoring/internal/bootstrap"
	"github.com/johnquangdev/interview-scoring/pkg/config"
	"github.com/johnquangdev/interview-scoring/pkg/logger"
)

const app = "scorectl"

// Actual version can be specified in build command.
var version = "unknown"

var rootCmd = &cobra.Command{
	Use:           app,
	Short:         "scorectl operates the interview scoring service: migrations, scoring runs, reports and transcript imports",
	SilenceUsage:  true,
	SilenceErrors: false,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("%s version: %s\n", app, version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.AddCommand(versionCmd)
}

func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	debug, _ := cmd.Flags().GetBool("debug")
	asJSON, _ := cmd.Flags().GetBool("json")
	l, err := logger.New(asJSON, debug)
	if err != nil {
		return nil, fmt.Errorf("creating a logger: %w", err)
	}
	return l, nil
}

// withApp wires the full service for commands that run the pipeline
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *bootstrap.App) error) error {
	l, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer l.Sync()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := bootstrap.New(ctx, cfg, l, bootstrap.Options{})
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	return fn(ctx, a)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
