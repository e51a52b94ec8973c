package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/johnquangdev/interview-scoring/pkg/config"
	"github.com/johnquangdev/interview-scoring/pkg/jwt"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an access token for service-to-service calls",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Read()
		if err != nil {
			return err
		}

		role, _ := cmd.Flags().GetString("role")
		org, _ := cmd.Flags().GetString("org")
		ttl, _ := cmd.Flags().GetDuration("ttl")
		subject, _ := cmd.Flags().GetString("user")

		userID := uuid.New()
		if subject != "" {
			if userID, err = uuid.Parse(subject); err != nil {
				return fmt.Errorf("invalid user id %q: %w", subject, err)
			}
		}

		tok, err := jwt.NewManager(cfg.JWT.AccessSecret, cfg.JWT.Issuer).GenerateAccessToken(userID, org, role, ttl)
		if err != nil {
			return err
		}
		fmt.Println(tok)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().String("role", jwt.RoleService, "role claim: recruiter, reviewer, admin or service")
	tokenCmd.Flags().String("org", "", "organisation claim; empty for cross-tenant service tokens")
	tokenCmd.Flags().String("user", "", "user id claim (default: random)")
	tokenCmd.Flags().Duration("ttl", time.Hour, "token lifetime")
}
