package cli

import (
	"context"
	"fmt"
	"net/http"

	"travisconnect/internal/config"
	"travisconnect/internal/engine/travis"
	"travisconnect/internal/logger"
	"travisconnect/internal/params"
	"travisconnect/internal/storage"
	"travisconnect/internal/storage/models"
)

// Factory lazily builds the dependencies shared by the commands
type Factory struct {
	ConfigPath string
	Version    string

	cfg   *config.Config
	store *storage.Store
}

// NewFactory creates a factory for the given version
func NewFactory(version string) *Factory {
	return &Factory{ConfigPath: "config.yaml", Version: version}
}

// Config loads the configuration once
func (f *Factory) Config() (*config.Config, error) {
	if f.cfg != nil {
		return f.cfg, nil
	}
	cfg, err := config.Load(f.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	f.cfg = cfg
	return cfg, nil
}

// Store opens the database and seeds the default node when configured
func (f *Factory) Store(ctx context.Context) (*storage.Store, error) {
	if f.store != nil {
		return f.store, nil
	}
	cfg, err := f.Config()
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if cfg.Travis.Seeded() {
		node := models.Node{ID: cfg.Travis.DefaultNode, Name: cfg.Travis.DefaultNode}
		nodeParams := params.New(map[string]string{
			travis.ParameterURL:   cfg.Travis.URL,
			travis.ParameterToken: cfg.Travis.Token,
		})
		if err := store.SaveNode(ctx, node, nodeParams); err != nil {
			store.Close()
			return nil, fmt.Errorf("seeding node %s: %w", node.ID, err)
		}
		logger.Debug("Seeded Travis node", "node", node.ID)
	}

	f.store = store
	return store, nil
}

// Plugin returns the Travis plugin backed by the store
func (f *Factory) Plugin(ctx context.Context) (*travis.Plugin, error) {
	store, err := f.Store(ctx)
	if err != nil {
		return nil, err
	}
	cfg, _ := f.Config()
	client := travis.NewClient(&http.Client{Timeout: cfg.Travis.RequestTimeout()})
	return travis.NewPlugin(client, store), nil
}

// Close releases the database if it was opened
func (f *Factory) Close() error {
	if f.store == nil {
		return nil
	}
	err := f.store.Close()
	f.store = nil
	return err
}
