package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"earshot/internal/config"
	"earshot/internal/daemon"
	"earshot/internal/ingest"
	"earshot/internal/logging"
	"earshot/internal/services/llm"
	"earshot/internal/services/whisperx"
	"earshot/internal/store"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the backend API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if bind != "" {
				cfg.API.Bind = bind
			}
			return runServer(cmd, cfg)
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (overrides api.bind)")
	return cmd
}

func runServer(cmd *cobra.Command, cfg *config.Config) error {
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	st, err := store.Open(cfg)
	if err != nil {
		logger.Error("open store", logging.Error(err))
		return err
	}

	pipeline := newPipeline(cfg, st, logger)
	d, err := daemon.New(cfg, st, pipeline, logger)
	if err != nil {
		_ = st.Close()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	runCtx := cmd.Context()
	if err := d.Start(runCtx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "earshot listening on %s\n", d.Status().Address)

	<-runCtx.Done()
	logger.Info("earshot server shutting down")
	return nil
}

func newPipeline(cfg *config.Config, st *store.Store, logger *slog.Logger) *ingest.Pipeline {
	opts := []ingest.Option{ingest.WithLogger(logger)}
	if cfg.Transcription.Enabled {
		opts = append(opts, ingest.WithTranscriber(whisperx.NewService(whisperx.FromConfig(cfg.Transcription), "")))
	}
	if cfg.LLM.Enabled {
		client := llm.NewClient(llm.FromConfig(cfg.GetLLM()))
		opts = append(opts, ingest.WithTranslator(client), ingest.WithSummarizer(client))
	}
	return ingest.New(st, cfg.Paths.StagingDir, opts...)
}
