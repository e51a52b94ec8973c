package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/johnquangdev/interview-scoring/internal/adapter/repository"
	"github.com/johnquangdev/interview-scoring/internal/infrastructure/database"
	"github.com/johnquangdev/interview-scoring/internal/infrastructure/external/assemblyai"
	"github.com/johnquangdev/interview-scoring/pkg/config"
)

var importCmd = &cobra.Command{
	Use:   "import-transcript <interview-id> <assemblyai-transcript-id>",
	Short: "Import the utterances of a finished AssemblyAI transcript as interview segments",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		interviewID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid interview id %q: %w", args[0], err)
		}
		candidate, _ := cmd.Flags().GetString("candidate-speaker")
		complete, _ := cmd.Flags().GetBool("complete")

		l, err := newLogger(cmd)
		if err != nil {
			return err
		}
		defer l.Sync()

		cfg, err := config.Read()
		if err != nil {
			return err
		}
		if candidate == "" {
			candidate = cfg.Assembly.CandidateSpeaker
		}
		if cfg.Assembly.APIKey == "" {
			return fmt.Errorf("ASSEMBLYAI_API_KEY is required")
		}

		db, err := database.NewPostgresDB(cfg, l)
		if err != nil {
			return err
		}
		defer database.CloseDB(db)

		importer := assemblyai.NewImporter(cfg.Assembly.APIKey, repository.NewInterviewRepository(db), l)
		n, err := importer.Import(cmd.Context(), interviewID, args[1], assemblyai.ImportOptions{
			CandidateSpeaker: candidate,
			Complete:         complete,
		})
		if err != nil {
			return err
		}
		fmt.Printf("%d segment(s) imported\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().String("candidate-speaker", "", "AssemblyAI speaker label of the candidate (default: ASSEMBLYAI_CANDIDATE_SPEAKER)")
	importCmd.Flags().Bool("complete", false, "mark the interview completed after the import")
}
