package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/watchlog/core/internal/adapters/repository"
	"github.com/watchlog/core/internal/client"
	"github.com/watchlog/core/internal/domain/entities"
	"github.com/watchlog/core/internal/infrastructure/config"
	"github.com/watchlog/core/internal/infrastructure/logger"
	"github.com/watchlog/core/internal/infrastructure/server"
)

// Build information, set with -ldflags at release time
var (
	Version   = "1.0.0"
	BuildDate = "unknown"
	GitCommit = "development"
)

// NewRootCommand builds the watchlog command tree
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "watchlog",
		Short:         "Watchlog series tracker",
		Long:          `Watchlog keeps a list of watched TV series behind a small REST API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewSeriesCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the watchlog API server",
		Long:  "Start the series API with the configured store, middleware and metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

// NewSeriesCommand creates the series command with its CRUD subcommands
func NewSeriesCommand() *cobra.Command {
	seriesCmd := &cobra.Command{
		Use:   "series",
		Short: "Manage watched series through the API",
	}

	seriesCmd.PersistentFlags().String("api-url", "", "API base URL (default from WATCHLOG_API_URL)")
	seriesCmd.PersistentFlags().Duration("timeout", 0, "Request timeout (default from WATCHLOG_API_TIMEOUT)")
	seriesCmd.PersistentFlags().Bool("json", false, "Print JSON instead of a table")

	seriesCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all series",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := newAPIClient(cmd)
			if err != nil {
				return err
			}
			series, err := api.List(cmd.Context())
			if err != nil {
				return err
			}
			if !useTable(cmd) {
				return writeJSON(cmd, series)
			}
			if len(series) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "No series yet")
				return err
			}
			return writeSeries(cmd, series...)
		},
	})

	seriesCmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show one series",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			api, err := newAPIClient(cmd)
			if err != nil {
				return err
			}
			series, err := api.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printSeries(cmd, series)
		},
	})

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Register a watched series",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			var s entities.Series
			s.Titulo, _ = flags.GetString("titulo")
			s.NumeroTemporadas, _ = flags.GetInt("temporadas")
			s.DataLancamentoTemporada, _ = flags.GetString("lancamento")
			s.Diretor, _ = flags.GetString("diretor")
			s.Produtora, _ = flags.GetString("produtora")
			s.Categoria, _ = flags.GetString("categoria")
			s.DataAssistiu, _ = flags.GetString("assistiu")

			api, err := newAPIClient(cmd)
			if err != nil {
				return err
			}
			created, err := api.Create(cmd.Context(), s)
			if err != nil {
				return err
			}
			return printSeries(cmd, created)
		},
	}
	addSeriesFlags(createCmd)
	seriesCmd.AddCommand(createCmd)

	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a series; only the given flags are sent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			patch := patchFromFlags(cmd)
			if patch.IsEmpty() {
				return errors.New("nothing to update: pass at least one field flag")
			}
			api, err := newAPIClient(cmd)
			if err != nil {
				return err
			}
			updated, err := api.Update(cmd.Context(), id, patch)
			if err != nil {
				return err
			}
			return printSeries(cmd, updated)
		},
	}
	addSeriesFlags(updateCmd)
	seriesCmd.AddCommand(updateCmd)

	seriesCmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a series",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			api, err := newAPIClient(cmd)
			if err != nil {
				return err
			}
			if err := api.Delete(cmd.Context(), id); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted series %d\n", id)
			return err
		},
	})

	return seriesCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print watchlog version",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Watchlog v%s\n", Version)
			fmt.Fprintf(out, "Build Date: %s\n", BuildDate)
			fmt.Fprintf(out, "Git Commit: %s\n", GitCommit)
		},
	}
}

func addSeriesFlags(cmd *cobra.Command) {
	cmd.Flags().String("titulo", "", "Series title")
	cmd.Flags().Int("temporadas", 0, "Number of seasons")
	cmd.Flags().String("lancamento", "", "Season release date")
	cmd.Flags().String("diretor", "", "Director")
	cmd.Flags().String("produtora", "", "Production company")
	cmd.Flags().String("categoria", "", "Category")
	cmd.Flags().String("assistiu", "", "Date watched")
}

func patchFromFlags(cmd *cobra.Command) entities.SeriesPatch {
	flags := cmd.Flags()
	var patch entities.SeriesPatch

	str := func(name string) *string {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetString(name)
		return &v
	}

	patch.Titulo = str("titulo")
	patch.DataLancamentoTemporada = str("lancamento")
	patch.Diretor = str("diretor")
	patch.Produtora = str("produtora")
	patch.Categoria = str("categoria")
	patch.DataAssistiu = str("assistiu")
	if flags.Changed("temporadas") {
		v, _ := flags.GetInt("temporadas")
		patch.NumeroTemporadas = &v
	}

	return patch
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid series id %q", arg)
	}
	return id, nil
}

func printSeries(cmd *cobra.Command, series *entities.Series) error {
	if !useTable(cmd) {
		return writeJSON(cmd, series)
	}
	return writeSeries(cmd, *series)
}

// newAPIClient builds a client from configuration, with --api-url and
// --timeout taking precedence.
func newAPIClient(cmd *cobra.Command) (*client.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	clientCfg := cfg.Client
	if url, _ := cmd.Flags().GetString("api-url"); url != "" {
		clientCfg.BaseURL = url
	}
	if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout > 0 {
		clientCfg.Timeout = timeout
	}

	return client.New(clientCfg, nil), nil
}

func runServer(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	store, err := repository.Open(cfg.Storage, appLogger)
	if err != nil {
		appLogger.Errorw("Failed to open series store", "error", err, "driver", cfg.Storage.Driver)
		return err
	}
	defer store.Close()

	srv, err := server.New(cfg, store, appLogger)
	if err != nil {
		appLogger.Errorw("Failed to initialize server", "error", err)
		return err
	}

	appLogger.Infow("Starting watchlog API server",
		"port", cfg.Server.Port,
		"environment", cfg.App.Environment,
		"storage", cfg.Storage.Driver,
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(cfg.Server.Address())
	}()

	select {
	case err := <-errCh:
		if err != nil {
			appLogger.Errorw("Server failed", "error", err)
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(cfg))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Errorw("Graceful shutdown failed", "error", err)
		return err
	}

	appLogger.Infow("Server stopped")
	return <-errCh
}

func shutdownTimeout(cfg *config.Config) time.Duration {
	if cfg.Server.ShutdownTimeout > 0 {
		return cfg.Server.ShutdownTimeout
	}
	return 10 * time.Second
}
