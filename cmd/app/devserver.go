// File: cmd/app/devserver.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"physical-ai-textbook/internal/config"
	"physical-ai-textbook/internal/domain/ports/adapter"
	"physical-ai-textbook/internal/infra/adapters/ai"
	"physical-ai-textbook/internal/infra/devserver"
	"physical-ai-textbook/internal/infra/metrics"
	red "physical-ai-textbook/internal/infra/redis"
)

func newDevServerCmd(flags *rootFlags) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "devserver",
		Short: "Run a local backend serving the auth, chat and content API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, logger, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.DevServer.Port = port
			}
			metrics.SetBuildInfo(Version, Commit)

			answerer, err := buildAnswerer(ctx, cfg.DevServer.AI, logger)
			if err != nil {
				return err
			}
			logger.Info().Strs("providers", answerer.Providers()).Msg("AI answerers ready")

			var limiter devserver.LoginLimiter = devserver.NewMemoryLimiter()
			if cfg.DevServer.UseRedis {
				client, err := red.NewClient(ctx, &cfg.Redis)
				if err != nil {
					return fmt.Errorf("redis: %w", err)
				}
				defer client.Close()
				limiter = red.NewRateLimiter(client)
			}

			srv, err := devserver.New(cfg.DevServer, devserver.NewMemoryAccounts(), answerer, limiter, logger)
			if err != nil {
				return err
			}
			return srv.ListenAndServe(ctx)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides devserver.port)")
	return cmd
}

// buildAnswerer wires every configured provider behind a concurrency limit.
// The echo answerer is always registered last so chat keeps working offline.
func buildAnswerer(ctx context.Context, cfg config.DevAIConfig, logger *zerolog.Logger) (*ai.MultiAnswerer, error) {
	provider := strings.ToLower(cfg.Provider)
	modelFor := func(name string) string {
		if name == provider {
			return cfg.Model
		}
		return ""
	}

	var answerers []adapter.Answerer
	if cfg.GeminiKey != "" {
		g, err := ai.NewGeminiAnswerer(ctx, cfg.GeminiKey, cfg.GeminiURL, modelFor("gemini"), cfg.MaxOutput)
		if err != nil {
			return nil, fmt.Errorf("gemini adapter: %w", err)
		}
		answerers = append(answerers, ai.NewLimitedAnswerer(g, cfg.ConcurrentLimit))
	}
	if cfg.OpenAIKey != "" {
		o, err := ai.NewOpenAIAnswerer(cfg.OpenAIKey, cfg.OpenAIBaseURL, modelFor("openai"), cfg.MaxOutput)
		if err != nil {
			return nil, fmt.Errorf("openai adapter: %w", err)
		}
		answerers = append(answerers, ai.NewLimitedAnswerer(o, cfg.ConcurrentLimit))
	}
	if provider != "echo" && len(answerers) == 0 {
		logger.Warn().Str("provider", provider).Msg("no AI key configured; answering with echo")
	}
	answerers = append(answerers, ai.NewEchoAnswerer(0, logger))
	return ai.NewMultiAnswerer(provider, answerers...), nil
}
