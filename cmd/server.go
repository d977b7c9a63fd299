package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aibandobast/bandobast/internal/ai"
	"github.com/aibandobast/bandobast/internal/audit"
	"github.com/aibandobast/bandobast/internal/auth"
	"github.com/aibandobast/bandobast/internal/copilot"
	"github.com/aibandobast/bandobast/internal/geo"
	"github.com/aibandobast/bandobast/internal/notes"
	"github.com/aibandobast/bandobast/internal/scheduler"
	"github.com/aibandobast/bandobast/internal/server"
)

var (
	serverPort    int
	serverRebuild bool
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the bandobast portal API server",
	Long: `Starts the portal HTTP API: manifest and file serving, the season
archive and evidence library, decision notes, geo layers, KML export, the
copilot (HTTP and WebSocket), AI drafting and the audit trail.

AI drafting needs an API key in ai.api_key, BANDOBAST_AI__API_KEY or
OPENAI_API_KEY. Without one the drafting endpoints answer 500.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = serverPort
		}

		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		auditStore := audit.NewStore(database)
		manifestSvc, err := newManifestService(cfg, auditStore, nil)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if serverRebuild || manifestSvc.Index.Len() == 0 {
			if _, err := manifestSvc.Rebuild(ctx, "system"); err != nil {
				return err
			}
		}

		provider, err := ai.NewProvider(ai.Settings{
			Provider:          cfg.AI.Provider,
			Model:             cfg.AI.Model,
			BaseURL:           cfg.AI.BaseURL,
			APIKey:            cfg.AI.APIKey,
			RequestsPerMinute: cfg.AI.RequestsPerMinute,
		})
		switch {
		case errors.Is(err, ai.ErrNotConfigured):
			logger.Info("AI drafting disabled: no API key configured")
		case err != nil:
			return err
		}

		srv, err := server.New(server.Config{
			Port:           cfg.Server.Port,
			BaseDir:        cfg.BaseDir,
			AllowAll:       cfg.Server.AllowAllOrigins,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			RequireAuth:    cfg.Server.RequireAuth,
			DocumentName:   cfg.KML.DocumentName,
		}, server.Deps{
			DB:       database,
			Manifest: manifestSvc,
			Geo:      geo.NewStore(database),
			Copilot:  copilot.NewService(copilot.NewStore(database), auditStore, logger),
			Notes:    notes.NewStore(database),
			AI:       ai.NewAssistant(provider, manifestSvc.Index, cfg.AI.Model, logger),
			Audit:    auditStore,
			Tokens:   auth.NewStore(database),
			Logger:   logger,
		})
		if err != nil {
			return err
		}

		if spec := cfg.Server.RebuildSchedule; spec != "" {
			sched, err := scheduler.New(spec, func(ctx context.Context) error {
				_, err := manifestSvc.Rebuild(ctx, "scheduler")
				return err
			}, logger)
			if err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()
		}

		// Graceful shutdown.
		go func() {
			<-ctx.Done()
			logger.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("server shutdown", zap.Error(err))
			}
		}()

		fmt.Fprintf(os.Stderr, "bandobast server %s starting on port %d\n", Version, cfg.Server.Port)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", cfg.DBPath)
		fmt.Fprintf(os.Stderr, "  Inbox: %s\n", cfg.InboxDir)
		fmt.Fprintf(os.Stderr, "  Documents indexed: %d\n", manifestSvc.Index.Len())

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "Port to listen on (overrides server.port)")
	serverCmd.Flags().BoolVar(&serverRebuild, "rebuild", false, "rebuild the manifest before serving")
	rootCmd.AddCommand(serverCmd)
}
