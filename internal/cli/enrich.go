package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rshade/kwvolume/internal/config"
	"github.com/rshade/kwvolume/internal/enrich"
	"github.com/rshade/kwvolume/internal/kwapi"
	"github.com/rshade/kwvolume/internal/metrics"
	"github.com/rshade/kwvolume/internal/table"
)

// runEnrich executes one enrichment run: load the input, fetch volumes batch
// by batch, merge, and write. Nothing is written unless every batch succeeds.
func (a *app) runEnrich(cmd *cobra.Command) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if a.cfgErr != nil {
		return a.cfgErr
	}
	cfg := a.cfg
	apiKey := a.apiKey

	masked := config.MaskKey(apiKey)
	logger.Debug().Ctx(ctx).Str("api_key", masked).Msg("resolved API key")
	_, _ = fmt.Fprintf(out, "Using API key: %s\n", masked)

	inputPath := a.flags.input
	outputPath := a.flags.output
	if outputPath == "" {
		outputPath = inputPath
	}
	if samePath(inputPath, outputPath) {
		logger.Warn().Ctx(ctx).Str("path", outputPath).Msg("output overwrites the input file")
	}

	tbl, err := table.LoadFile(inputPath)
	if err != nil {
		return fmt.Errorf("loading input: %w", err)
	}
	logger.Debug().Ctx(ctx).
		Str("path", inputPath).
		Int("rows", len(tbl.Rows)).
		Bool("has_volume_column", tbl.HasVolumeColumn()).
		Msg("input loaded")
	_, _ = fmt.Fprintf(out, "Fetching search volume data for %d keywords...\n", len(tbl.Rows))

	client := kwapi.NewClient(kwapi.Options{
		Endpoint:   cfg.API.Endpoint,
		APIKey:     apiKey,
		Country:    cfg.API.Country,
		Currency:   cfg.API.Currency,
		DataSource: cfg.API.DataSource,
		UserAgent:  "kwvolume/" + a.version,
		Timeout:    cfg.API.Timeout,
	})

	reporter := newConsoleReporter(out, a.flags.verbose)
	observers := enrich.Observers{reporter}

	var recorder *metrics.Recorder
	if a.flags.metricsFile != "" {
		recorder = metrics.NewRecorder()
		observers = append(observers, recorder)
	}

	enricher, err := enrich.New(client, cfg.Batch.Size, enrich.WithObserver(observers))
	if err != nil {
		return err
	}

	result, err := enricher.Run(ctx, tbl)
	if err != nil {
		return err
	}

	if a.flags.verbose {
		if renderErr := renderSummary(out, tbl, result.Stats); renderErr != nil {
			return renderErr
		}
	}

	if writeErr := table.WriteFile(outputPath, tbl); writeErr != nil {
		return fmt.Errorf("writing output: %w", writeErr)
	}

	event := logger.Info().Ctx(ctx).
		Int("batches", result.Batches).
		Int("rows_updated", result.Stats.RowsUpdated).
		Int("rows_unmatched", result.Stats.RowsUnmatched).
		Int("null_volumes", result.Stats.NullVolumes)
	if result.Credits != nil {
		event = event.Int64("credits", *result.Credits)
	}
	event.Msg("search volumes updated")

	if recorder != nil {
		recorder.SetRowsUpdated(result.Stats.RowsUpdated)
		if metricsErr := recorder.WriteTextfile(a.flags.metricsFile); metricsErr != nil {
			logger.Warn().Ctx(ctx).Err(metricsErr).Str("path", a.flags.metricsFile).
				Msg("could not write metrics file")
		}
	}

	_, _ = fmt.Fprintf(out, "Successfully updated search volumes and saved to: %s\n", outputPath)
	return nil
}

// samePath reports whether a and b name the same file path after cleaning.
func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
