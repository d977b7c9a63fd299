package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aibandobast/bandobast/internal/audit"
	"github.com/aibandobast/bandobast/internal/geo"
	"github.com/aibandobast/bandobast/internal/notes"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the Nashik Ganpati demo data into the database",
	Long: `Replaces every police station, ghat, event unit, route and zone in the
portal database with the built-in Nashik Ganpati demo data, and loads the
demo decision note of every planning stage.`,
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

		ctx := context.Background()
		summary, err := geo.Seed(ctx, geo.NewStore(database), geo.DemoData())
		if err != nil {
			return err
		}

		noteCount, err := notes.Seed(ctx, notes.NewStore(database), notes.DemoNotes())
		if err != nil {
			return err
		}

		msg := fmt.Sprintf("Seeded %d stations, %d ghats, %d units, %d routes, %d zones, %d decision notes",
			summary.Stations, summary.Terminals, summary.Units, summary.Routes, summary.Zones, noteCount)
		if err := audit.Record(ctx, audit.NewStore(database), audit.Entry{
			ActorType: audit.ActorSystem,
			ActorID:   "cli",
			Action:    audit.ActionDataSeeded,
			Scope:     audit.ScopeGeo,
			Summary:   msg,
		}); err != nil {
			logger.Warn("recording audit entry failed", zap.Error(err))
		}

		fmt.Println(msg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
