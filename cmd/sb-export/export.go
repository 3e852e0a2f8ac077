package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/tuanvumaihuynh/stockbook/internal/config"
	"github.com/tuanvumaihuynh/stockbook/internal/log"
	"github.com/tuanvumaihuynh/stockbook/internal/repository"
	"github.com/tuanvumaihuynh/stockbook/internal/service"
	"github.com/tuanvumaihuynh/stockbook/internal/storage/db"
)

const outputFlag = "output"

// writeFunc selects one of the export service's CSV writers.
type writeFunc func(svc service.ExportService, ctx context.Context, w io.Writer) error

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "sb-export",
		Short:        "Export the catalogue as CSV",
		SilenceUsage: true,
	}

	root.AddCommand(newExportCommand("products", "Export every product", service.ExportService.WriteProductsCSV))
	root.AddCommand(newExportCommand("customers", "Export every customer", service.ExportService.WriteCustomersCSV))

	return root
}

func newExportCommand(use, short string, write writeFunc) *cobra.Command {
	flags := map[string]cobraflags.Flag{
		outputFlag: &cobraflags.StringFlag{
			Name:  outputFlag,
			Value: "-",
			Usage: "File to write the CSV to, - for stdout",
		},
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd.Context(), flags[outputFlag].GetString(), write)
		},
	}

	cobraflags.RegisterMap(cmd, flags)
	return cmd
}

func runExport(ctx context.Context, output string, write writeFunc) error {
	if ctx == nil {
		ctx = context.Background()
	}

	time.Local = time.UTC

	type Config struct {
		Log      config.Log
		Postgres config.Postgres
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	// logs go to stdout, which may carry the csv
	cfg.Log.Level = max(cfg.Log.Level, slog.LevelError)
	log.NewSlogLogger(cfg.Log)

	pgxPool, err := db.NewPgxPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("error creating pgx pool: %w", err)
	}
	defer pgxPool.Close()

	dbClient := db.NewClient(pgxPool)
	svc := service.NewExportService(
		repository.NewProductRepository(dbClient),
		repository.NewCustomerRepository(dbClient),
	)

	w, closeFn, err := openOutput(output)
	if err != nil {
		return err
	}

	if err := write(svc, ctx, w); err != nil {
		_ = closeFn()
		return fmt.Errorf("error writing csv: %w", err)
	}

	return closeFn()
}

func openOutput(output string) (io.Writer, func() error, error) {
	if output == "" || output == "-" {
		return os.Stdout, func() error { return nil }, nil
	}

	f, err := os.Create(output)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating %s: %w", output, err)
	}

	return f, f.Close, nil
}
