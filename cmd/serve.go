package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aibandobast/bandobast/internal/copilot"
	"github.com/aibandobast/bandobast/internal/geo"
	mcpserver "github.com/aibandobast/bandobast/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing the document manifest, KML export and copilot as tools for AI agents.`,
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

		// The manifest is read from disk; run `bandobast manifest build` to refresh it.
		manifestSvc, err := newManifestService(cfg, nil, nil)
		if err != nil {
			return err
		}

		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "bandobast MCP server started on stdio (data=%s, documents=%d)\n", cfg.DataDir, manifestSvc.Index.Len())

		srv := mcpserver.NewServer(mcpserver.Deps{
			Index:        manifestSvc.Index,
			Geo:          geo.NewStore(database),
			Copilot:      copilot.NewService(copilot.NewStore(database), nil, logger),
			DocumentName: cfg.KML.DocumentName,
			Logger:       logger,
		})
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
