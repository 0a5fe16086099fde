package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/at-ishikawa/littlesteps/internal/config"
	"github.com/at-ishikawa/littlesteps/internal/kvstore"
	"github.com/at-ishikawa/littlesteps/internal/model"
	"github.com/at-ishikawa/littlesteps/internal/store"
)

var errNobodySignedIn = errors.New("nobody is signed in. Run `littlesteps teacher login` or `littlesteps student select` first")

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	return loader.Load()
}

// newStore opens the configured backend without touching its contents.
func newStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	kv, err := kvstore.Open(ctx, cfg.Storage, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("kvstore.Open() > %w", err)
	}

	var opts []store.Option
	if cfg.Auth.HashPasswords {
		opts = append(opts, store.WithPasswordHashing(cfg.Auth.BcryptCost))
	}
	if cfg.Seed.File != "" {
		opts = append(opts, store.WithSeedFile(cfg.Seed.File))
	}
	return store.New(kv, opts...), nil
}

// openStore loads the config and returns an initialized store. Callers
// must close it.
func openStore(ctx context.Context) (*store.Store, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	s, err := newStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := s.Initialize(ctx); err != nil {
		_ = s.Close()
		return nil, nil, fmt.Errorf("store.Initialize() > %w", err)
	}
	return s, cfg, nil
}

func currentUser(ctx context.Context, s *store.Store) (model.User, error) {
	user, err := s.GetCurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("store.GetCurrentUser() > %w", err)
	}
	if user == nil {
		return nil, errNobodySignedIn
	}
	return user, nil
}
