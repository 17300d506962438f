package cli

import (
	"fmt"
	"time"

	"github.com/gompdf/claimpacket/internal/auth"
	"github.com/spf13/cobra"
)

var (
	tokenOwner string
	tokenTTL   time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for local testing",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		tok, err := auth.GenerateToken([]byte(cfg.Server.JWTSecret), &auth.Claims{UserID: tokenOwner}, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenOwner, "owner", "", "user id to embed (required)")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "token lifetime")
	_ = tokenCmd.MarkFlagRequired("owner")

	rootCmd.AddCommand(tokenCmd)
}
