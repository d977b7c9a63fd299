package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aibandobast/bandobast/internal/copilot"
)

var copilotSession string

var copilotCmd = &cobra.Command{
	Use:   "copilot",
	Short: "Talk to the planning copilot",
}

var copilotAskCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Ask the copilot a question and print the answer and map action",
	Args:  cobra.MinimumNArgs(1),
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

		svc := copilot.NewService(copilot.NewStore(database), nil, logger)
		reply, err := svc.Ask(context.Background(), copilotSession, "cli", strings.Join(args, " "))
		if err != nil {
			return err
		}

		fmt.Println(reply.Text)
		if reply.MapAction != nil {
			action, err := json.MarshalIndent(reply.MapAction, "", "  ")
			if err != nil {
				return err
			}
			fmt.Printf("\nMap action:\n%s\n", action)
		}
		fmt.Printf("\nSession: %s\n", reply.SessionID)
		return nil
	},
}

func init() {
	copilotAskCmd.Flags().StringVar(&copilotSession, "session", "", "continue an existing session")
	copilotCmd.AddCommand(copilotAskCmd)
	rootCmd.AddCommand(copilotCmd)
}
