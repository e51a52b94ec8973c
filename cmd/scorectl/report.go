package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/johnquangdev/interview-scoring/internal/bootstrap"
)

var reportCmd = &cobra.Command{
	Use:   "report <interview-id>",
	Short: "Print the assembled report of a scored interview, or publish it to the archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		interviewID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid interview id %q: %w", args[0], err)
		}
		publish, _ := cmd.Flags().GetBool("publish")

		return withApp(cmd, func(ctx context.Context, a *bootstrap.App) error {
			doc, err := a.Reports.Get(ctx, interviewID)
			if err != nil {
				return err
			}
			if !publish {
				return printJSON(doc)
			}

			url, err := a.Reports.Publish(ctx, doc)
			if err != nil {
				return err
			}
			fmt.Println(url)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().Bool("publish", false, "store the report in the archive and print its URL")
}
