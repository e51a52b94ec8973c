package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/johnquangdev/interview-scoring/internal/adapter/presenter"
	"github.com/johnquangdev/interview-scoring/internal/bootstrap"
	"github.com/johnquangdev/interview-scoring/internal/domain/entities"
	"github.com/johnquangdev/interview-scoring/internal/usecase/scoring"
)

var scoreCmd = &cobra.Command{
	Use:   "score <interview-id>",
	Short: "Run the scoring pipeline for one interview and print the result",
	Args:  cobra.ExactArgs(1),
	RunE:  runScore,
}

var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "Probe every configured scoring backend and print its health",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *bootstrap.App) error {
			a.Health.ProbeAll(ctx)
			return printJSON(presenter.ToBackendStatuses(a.Health.Snapshot()))
		})
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd, backendsCmd)

	scoreCmd.Flags().String("context-file", "", "JSON file with the scoring context (job description, resume, rubric, values)")
	scoreCmd.Flags().String("role-title", "", "role title; overrides the context file")
	scoreCmd.Flags().String("seniority", "", "seniority; overrides the context file")
	scoreCmd.Flags().String("org", "", "organisation id the interview must belong to")
	scoreCmd.Flags().StringSlice("backend", nil, "scoring backend to use, in order; repeatable (default: all configured)")
	scoreCmd.Flags().String("actor", "system:scorectl", "actor recorded in audit events")
}

func runScore(cmd *cobra.Command, args []string) error {
	interviewID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid interview id %q: %w", args[0], err)
	}

	sc, err := readScoringContext(cmd)
	if err != nil {
		return err
	}
	backends, _ := cmd.Flags().GetStringSlice("backend")
	actor, _ := cmd.Flags().GetString("actor")

	return withApp(cmd, func(ctx context.Context, a *bootstrap.App) error {
		result, err := a.Orchestrator.Score(ctx, scoring.ScoreRequest{
			InterviewID: interviewID,
			Context:     sc,
			Backends:    backends,
			Actor:       actor,
		})
		if err != nil {
			if result != nil {
				fmt.Fprintf(os.Stderr, "run %s failed in %s: %s\n", result.RunID, result.FailedIn, result.Reason)
			}
			return err
		}
		return printJSON(presenter.ToRunResponse(result))
	})
}

func readScoringContext(cmd *cobra.Command) (entities.ScoringContext, error) {
	var sc entities.ScoringContext

	if path, _ := cmd.Flags().GetString("context-file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return sc, fmt.Errorf("reading context file: %w", err)
		}
		if err := json.Unmarshal(data, &sc); err != nil {
			return sc, fmt.Errorf("parsing context file: %w", err)
		}
	}
	if v, _ := cmd.Flags().GetString("role-title"); v != "" {
		sc.RoleTitle = v
	}
	if v, _ := cmd.Flags().GetString("seniority"); v != "" {
		sc.Seniority = v
	}
	if v, _ := cmd.Flags().GetString("org"); v != "" {
		sc.OrgID = v
	}
	return sc, nil
}
