package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stylehaus/outfit-assistant/internal/catalog"
	"github.com/stylehaus/outfit-assistant/internal/engine"
	"github.com/stylehaus/outfit-assistant/internal/llm"
	"github.com/stylehaus/outfit-assistant/internal/server"
	"github.com/stylehaus/outfit-assistant/internal/service"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the recommendation API server",
		RunE:  runServe,
	}

	cmd.Flags().String("addr", "", "listen address (default :5001)")
	cmd.Flags().String("styles", "", "path to the catalog CSV")
	cmd.Flags().String("images", "", "path to the catalog image directory")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("data.styles", cmd.Flags().Lookup("styles"))
	_ = viper.BindPFlag("data.images", cmd.Flags().Lookup("images"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := slog.Default()

	policies, err := policiesFromConfig()
	if err != nil {
		return err
	}

	client, err := llm.NewClient(llm.Config{
		APIKey:         viper.GetString("openai.api_key"),
		Model:          viper.GetString("openai.model"),
		EmbeddingModel: viper.GetString("openai.embedding_model"),
		BaseURL:        viper.GetString("openai.base_url"),
		OutfitPolicy:   policies.EventOutfit,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create model client: %w", err)
	}

	store := catalog.New(viper.GetString("data.styles"), viper.GetString("data.images"), logger)
	if err := store.Load(); err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	eng := engine.NewWithConfig(store, client, client, logger, engineConfigFromViper(policies.Comparison))
	handler := server.NewHandler(eng, store, client.Model(), logger)
	srv := server.New(serverConfigFromViper(), server.NewRouter(handler, logger))

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", viper.GetString("server.addr"))
		if err := srv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// policiesFromConfig reads the parse policies, defaulting to the production
// set. Unknown values are a configuration error rather than a silent default.
func policiesFromConfig() (service.Policies, error) {
	defaults := service.DefaultPolicies()
	viper.SetDefault("policies.event_outfit", string(defaults.EventOutfit))
	viper.SetDefault("policies.comparison", string(defaults.Comparison))

	outfit, err := parsePolicy(viper.GetString("policies.event_outfit"))
	if err != nil {
		return service.Policies{}, fmt.Errorf("policies.event_outfit: %w", err)
	}
	comparison, err := parsePolicy(viper.GetString("policies.comparison"))
	if err != nil {
		return service.Policies{}, fmt.Errorf("policies.comparison: %w", err)
	}

	return service.Policies{EventOutfit: outfit, Comparison: comparison}, nil
}

func parsePolicy(value string) (service.ParsePolicy, error) {
	switch policy := service.ParsePolicy(value); policy {
	case service.ParseStrict, service.ParseLenient:
		return policy, nil
	default:
		return "", fmt.Errorf("unknown parse policy %q (want strict or lenient)", value)
	}
}

// engineConfigFromViper reads the matching thresholds and top-k limits,
// defaulting to the production values.
func engineConfigFromViper(comparison service.ParsePolicy) engine.Config {
	defaults := engine.DefaultConfig()
	viper.SetDefault("matching.rag_threshold", defaults.RAGThreshold)
	viper.SetDefault("matching.rag_topk", defaults.RAGTopK)
	viper.SetDefault("matching.event_threshold", defaults.EventThreshold)
	viper.SetDefault("matching.event_topk", defaults.EventTopK)
	viper.SetDefault("matching.search_threshold", defaults.SearchThreshold)
	viper.SetDefault("matching.search_topk", defaults.SearchTopK)

	return engine.Config{
		ComparisonPolicy: comparison,
		RAGThreshold:     viper.GetFloat64("matching.rag_threshold"),
		RAGTopK:          viper.GetInt("matching.rag_topk"),
		EventThreshold:   viper.GetFloat64("matching.event_threshold"),
		EventTopK:        viper.GetInt("matching.event_topk"),
		SearchThreshold:  viper.GetFloat64("matching.search_threshold"),
		SearchTopK:       viper.GetInt("matching.search_topk"),
	}
}

// serverConfigFromViper reads the listener address and timeouts, defaulting
// to the production values.
func serverConfigFromViper() server.Config {
	defaults := server.DefaultConfig()
	viper.SetDefault("server.addr", defaults.Addr)
	viper.SetDefault("server.read_timeout", defaults.ReadTimeout)
	viper.SetDefault("server.write_timeout", defaults.WriteTimeout)
	viper.SetDefault("server.idle_timeout", defaults.IdleTimeout)

	return server.Config{
		Addr:         viper.GetString("server.addr"),
		ReadTimeout:  viper.GetDuration("server.read_timeout"),
		WriteTimeout: viper.GetDuration("server.write_timeout"),
		IdleTimeout:  viper.GetDuration("server.idle_timeout"),
	}
}
