package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/pmboard/internal/api"
	"github.com/sandeepkv93/pmboard/internal/config"
	"github.com/sandeepkv93/pmboard/internal/importer"
	"github.com/sandeepkv93/pmboard/internal/server"
	"github.com/sandeepkv93/pmboard/internal/storage"
	"github.com/sandeepkv93/pmboard/internal/update"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "pmboard",
		Short:         "Terminal project board with gantt charts and task timers",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(flags)
		},
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "YAML config file")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(newTUICmd(flags))
	root.AddCommand(newServeCmd(flags))
	root.AddCommand(newImportCmd(flags))
	root.AddCommand(newMigrateCmd(flags))
	return root
}

func loadConfig(flags *rootFlags) (config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if flags.verbose {
		cfg.Verbose = true
	}
	return cfg, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func newTUICmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the project board terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runTUI(flags)
		},
	}
}

func runTUI(flags *rootFlags) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	// stdout belongs to the renderer.
	logFile, err := os.OpenFile(cfg.UI.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	logger := newLogger(logFile, cfg.Verbose)

	model := update.NewModel(update.Options{
		API:                api.NewClient(cfg.API.BaseURL, cfg.API.Timeout, logger),
		Logger:             logger,
		StatePath:          cfg.UI.StatePath,
		DefaultTheme:       cfg.UI.DefaultTheme,
		ThemeRerenderDelay: cfg.UI.ThemeRerenderDelay,
		RequestTimeout:     cfg.API.Timeout,
	})
	logger.Info("starting tui", slog.String("api", cfg.API.BaseURL))
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("pmboard failed: %w", err)
	}
	return nil
}

func openRepo(ctx context.Context, cfg config.Config) (*storage.SQLRepository, error) {
	return storage.Open(ctx, storage.Dialect(cfg.Database.Driver), cfg.Database.DSN)
}

func newServeCmd(flags *rootFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the project board REST API",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			logger := newLogger(os.Stdout, cfg.Verbose)
			slog.SetDefault(logger)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			repo, err := openRepo(ctx, cfg)
			if err != nil {
				return err
			}
			defer repo.Close()
			if err := repo.Migrate(); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			srv := server.New(repo, logger).HTTPServer(cfg.Server.Addr)
			errCh := make(chan error, 1)
			go func() {
				logger.Info("http server listening", slog.String("addr", cfg.Server.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("http server: %w", err)
				}
				return nil
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			logger.Info("shutting down http server")
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	return cmd
}

func newImportCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import <data-dir>",
		Short: "Import a projects.json data directory into the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			logger := newLogger(os.Stderr, cfg.Verbose)
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			repo, err := openRepo(ctx, cfg)
			if err != nil {
				return err
			}
			defer repo.Close()
			if err := repo.Migrate(); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			res, err := importer.Import(ctx, repo, args[0])
			if err != nil {
				return err
			}
			logger.Info("import complete",
				slog.Int("projects", res.Projects),
				slog.Int("tasks", res.Tasks),
				slog.Int("sessions", res.Sessions),
			)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %d projects, %d tasks, %d sessions\n", res.Projects, res.Tasks, res.Sessions)
			return nil
		},
	}
}

func newMigrateCmd(flags *rootFlags) *cobra.Command {
	migrate := &cobra.Command{Use: "migrate", Short: "Apply or roll back database migrations"}
	run := func(down bool) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			repo, err := openRepo(ctx, cfg)
			if err != nil {
				return err
			}
			defer repo.Close()
			if down {
				err = repo.MigrateDown()
			} else {
				err = repo.Migrate()
			}
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "migrations applied to %s\n", repo.Dialect())
			return nil
		}
	}
	migrate.AddCommand(&cobra.Command{Use: "up", Short: "Apply migrations", RunE: run(false)})
	migrate.AddCommand(&cobra.Command{Use: "down", Short: "Roll back migrations", RunE: run(true)})
	return migrate
}
