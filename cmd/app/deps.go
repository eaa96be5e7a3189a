// File: cmd/app/deps.go
package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"physical-ai-textbook/internal/config"
	"physical-ai-textbook/internal/domain/ports/repository"
	"physical-ai-textbook/internal/infra/api"
	"physical-ai-textbook/internal/infra/i18n"
	"physical-ai-textbook/internal/infra/logging"
	red "physical-ai-textbook/internal/infra/redis"
	"physical-ai-textbook/internal/infra/security"
	"physical-ai-textbook/internal/infra/tokenstore"
	"physical-ai-textbook/internal/usecase"
)

// deps is the wiring shared by every client subcommand.
type deps struct {
	cfg     *config.Config
	log     *zerolog.Logger
	tr      *i18n.Translator
	tokens  repository.TokenStore
	client  *api.Client
	session *usecase.SessionManager
	closers []func()
}

func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

func loadConfig(flags *rootFlags) (*config.Config, *zerolog.Logger, error) {
	cfg, err := config.LoadConfig(flags.configPath, flags.dev)
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Debug().Str("config", flags.configPath).Msg("dev mode enabled")
	}
	return cfg, logger, nil
}

func buildDeps(ctx context.Context, flags *rootFlags) (*deps, error) {
	cfg, logger, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}
	tr, err := i18n.Default(cfg.Locale)
	if err != nil {
		return nil, fmt.Errorf("locale: %w", err)
	}
	d := &deps{cfg: cfg, log: logger, tr: tr}

	tokens, closeTokens, err := newTokenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	d.tokens = tokens
	if closeTokens != nil {
		d.closers = append(d.closers, closeTokens)
	}

	d.client = api.NewClient(cfg.API.BaseURL, cfg.API.Timeout, tokens, logger, api.WithDev(cfg.Runtime.Dev))
	d.session = usecase.NewSessionManager(tokens, d.client, tr, logger)
	return d, nil
}

func newTokenStore(ctx context.Context, cfg *config.Config) (repository.TokenStore, func(), error) {
	switch cfg.Token.Backend {
	case "memory":
		return tokenstore.NewMemoryStore(""), nil, nil
	case "redis":
		client, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
		return red.NewTokenStore(client, cfg.Token.Key, cfg.Token.TTL), func() { _ = client.Close() }, nil
	default:
		var opts []tokenstore.FileOption
		if cfg.Token.EncryptionKey != "" {
			c, err := security.NewTokenCipher(cfg.Token.EncryptionKey)
			if err != nil {
				return nil, nil, err
			}
			opts = append(opts, tokenstore.WithSealer(c))
		}
		return tokenstore.NewFileStore(cfg.Token.Path, opts...), nil, nil
	}
}
