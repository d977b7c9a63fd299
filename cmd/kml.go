package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aibandobast/bandobast/internal/audit"
	"github.com/aibandobast/bandobast/internal/geo"
	"github.com/aibandobast/bandobast/internal/kml"
)

var (
	kmlGroupBy string
	kmlInclude string
	kmlOut     string
)

var kmlCmd = &cobra.Command{
	Use:   "kml",
	Short: "Export geo layers as KML",
}

var kmlExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write event units, ghats, routes and zones to a KML file",
	Long: `Exports the geo layers stored in the portal database as a KML document.
Entities without coordinates and zones with malformed boundaries are skipped
and reported. Use --out - to write to stdout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if kmlGroupBy == "" {
			kmlGroupBy = cfg.KML.Grouping
		}
		grouping, err := kml.ParseGrouping(kmlGroupBy)
		if err != nil {
			return err
		}
		inc := geo.ParseInclude(kmlInclude)

		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		ctx := context.Background()
		collections, err := geo.NewStore(database).LoadCollections(ctx, inc)
		if err != nil {
			return err
		}
		doc, err := kml.Render(collections, kml.Options{
			Grouping:     grouping,
			Include:      inc,
			DocumentName: cfg.KML.DocumentName,
			Logger:       logger,
		})
		if err != nil {
			return err
		}

		out := kmlOut
		if out == "" {
			out = kml.Filename(grouping, time.Now())
		}
		if out == "-" {
			if _, err := os.Stdout.Write(doc.Data); err != nil {
				return err
			}
		} else {
			if dir := filepath.Dir(out); dir != "." {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return fmt.Errorf("creating output dir: %w", err)
				}
			}
			if err := os.WriteFile(out, doc.Data, 0644); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
		}

		if err := audit.Record(ctx, audit.NewStore(database), audit.Entry{
			ActorType: audit.ActorSystem,
			ActorID:   "cli",
			Action:    audit.ActionKMLExported,
			Scope:     audit.ScopeGeo,
			ScopeID:   string(grouping),
			Summary:   fmt.Sprintf("Exported %d placemarks (%d skipped)", doc.Placemarks, len(doc.Skipped)),
			Detail:    "include=" + inc.String(),
		}); err != nil {
			logger.Warn("recording audit entry failed", zap.Error(err))
		}

		for _, s := range doc.Skipped {
			fmt.Fprintf(os.Stderr, "skipped %s %q: %v\n", s.Kind, s.Name, s.Reason)
		}
		if out != "-" {
			fmt.Fprintf(os.Stderr, "Wrote %d placemark(s) to %s\n", doc.Placemarks, out)
		}
		return nil
	},
}

func init() {
	kmlExportCmd.Flags().StringVar(&kmlGroupBy, "group-by", "", "folder layout: city or ps (default from config)")
	kmlExportCmd.Flags().StringVar(&kmlInclude, "include", "", "comma-separated layers: units,routes,ghats,zones (default all)")
	kmlExportCmd.Flags().StringVarP(&kmlOut, "out", "o", "", "output file (default bandobast_<group>_<date>.kml, - for stdout)")
	kmlCmd.AddCommand(kmlExportCmd)
	rootCmd.AddCommand(kmlCmd)
}
