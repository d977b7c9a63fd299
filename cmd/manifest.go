package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/aibandobast/bandobast/internal/audit"
	"github.com/aibandobast/bandobast/internal/manifest"
	"github.com/aibandobast/bandobast/internal/progress"
)

var (
	manifestInbox string
	manifestOut   string
	manifestQuiet bool
)

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Work with the document manifest",
}

var manifestBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Index the inbox and write manifest.json and metrics.json",
	Long: `Walks the inbox directory, classifies every file by year, police station,
category and planning stage, and writes manifest.json and metrics.json to the
data directory. A missing inbox is created and produces an empty manifest.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if manifestInbox != "" {
			cfg.InboxDir = manifestInbox
		}
		if manifestOut != "" {
			cfg.DataDir = manifestOut
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		var reporter progress.Reporter = progress.Nop{}
		if !manifestQuiet {
			reporter = progress.NewReporter()
		}

		svc, err := newManifestService(cfg, audit.NewStore(database), reporter)
		if err != nil {
			return err
		}
		result, err := svc.Rebuild(context.Background(), "cli")
		if err != nil {
			return err
		}

		printMetrics(result.Metrics)
		fmt.Fprintf(os.Stderr, "Wrote %s and %s\n",
			filepath.Join(cfg.DataDir, manifest.ManifestFile),
			filepath.Join(cfg.DataDir, manifest.MetricsFile),
		)
		return nil
	},
}

func printMetrics(m manifest.Metrics) {
	fmt.Printf("Indexed %d file(s)\n", m.TotalFiles)
	if m.TotalFiles == 0 {
		return
	}

	years := make([]int, 0, len(m.FilesByYear))
	for y := range m.FilesByYear {
		years = append(years, y)
	}
	sort.Ints(years)
	fmt.Println("\nBy year:")
	for _, y := range years {
		fmt.Printf("  %-20d %d\n", y, m.FilesByYear[y])
	}

	printCounts("By police station:", m.FilesByPS)
	printCounts("By category:", m.FilesByCategory)
	printCounts("By stage:", m.FilesByStage)
}

func printCounts(title string, counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Printf("\n%s\n", title)
	for _, k := range keys {
		fmt.Printf("  %-20s %d\n", k, counts[k])
	}
}

func init() {
	manifestBuildCmd.Flags().StringVar(&manifestInbox, "inbox", "", "inbox directory (overrides inbox_dir)")
	manifestBuildCmd.Flags().StringVar(&manifestOut, "out", "", "output directory (overrides data_dir)")
	manifestBuildCmd.Flags().BoolVarP(&manifestQuiet, "quiet", "q", false, "disable the progress bar")
	manifestCmd.AddCommand(manifestBuildCmd)
	rootCmd.AddCommand(manifestCmd)
}
