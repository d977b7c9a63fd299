package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aibandobast/bandobast/internal/audit"
	"github.com/aibandobast/bandobast/internal/auth"
)

var (
	tokenScope string
	tokenTTL   time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage API tokens",
}

var tokenCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an API token; the token is printed once",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scope, err := auth.ParseScope(tokenScope)
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		ctx := context.Background()
		plaintext, tok, err := auth.NewStore(database).Create(ctx, args[0], scope, tokenTTL)
		if err != nil {
			return err
		}

		if err := audit.Record(ctx, audit.NewStore(database), audit.Entry{
			ActorType: audit.ActorSystem,
			ActorID:   "cli",
			Action:    audit.ActionTokenCreated,
			Scope:     audit.ScopeAuth,
			ScopeID:   tok.ID,
			Summary:   fmt.Sprintf("Created %s token %q", tok.Scope, tok.Name),
		}); err != nil {
			logger.Warn("recording audit entry failed", zap.Error(err))
		}

		fmt.Fprintf(os.Stderr, "Created %s token %q (id %s). Store it now; it is not shown again.\n", tok.Scope, tok.Name, tok.ID)
		fmt.Println(plaintext)
		return nil
	},
}

var tokenListCmd = &cobra.Command{
	Use:   "list",
	Short: "List API tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		tokens, err := auth.NewStore(database).List(context.Background())
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tSCOPE\tEXPIRES\tLAST USED")
		for _, t := range tokens {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Name, t.Scope, formatTime(t.ExpiresAt, "never"), formatTime(t.LastUsed, "-"))
		}
		return tw.Flush()
	},
}

var tokenRevokeCmd = &cobra.Command{
	Use:   "revoke <id>",
	Short: "Revoke an API token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		if err := auth.NewStore(database).Revoke(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Revoked token %s\n", args[0])
		return nil
	},
}

func formatTime(t *time.Time, empty string) string {
	if t == nil {
		return empty
	}
	return t.Local().Format("2006-01-02 15:04")
}

func init() {
	tokenCreateCmd.Flags().StringVar(&tokenScope, "scope", string(auth.ScopeRead), "token scope: read or admin")
	tokenCreateCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime, e.g. 720h (default never expires)")
	tokenCmd.AddCommand(tokenCreateCmd, tokenListCmd, tokenRevokeCmd)
	rootCmd.AddCommand(tokenCmd)
}
