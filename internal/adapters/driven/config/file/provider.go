package file

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/liftly-labs/adsgate/internal/core/domain"
	"github.com/liftly-labs/adsgate/internal/logger"
)

// Provider holds the current configuration and serves the shared credential
// record from it. It implements sqlite.SharedSource.
//
// Watch keeps the provider current when the config file changes, so rotated
// shared credentials take effect without a restart.
type Provider struct {
	path string

	mu  sync.RWMutex
	cfg *Config
}

// NewProvider loads the configuration from path and returns a provider
// serving it.
func NewProvider(path string) (*Provider, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Provider{path: path, cfg: cfg}, nil
}

// Config returns the current configuration snapshot.
func (p *Provider) Config() *Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg
}

// Reload re-reads the configuration file. On parse failure the previous
// configuration stays in effect.
func (p *Provider) Reload() error {
	cfg, err := Load(p.path)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.cfg = cfg
	p.mu.Unlock()
	logger.Info("configuration reloaded from %s", p.path)
	return nil
}

// SharedCredentials returns the shared platform record from the current
// configuration. Returns domain.ErrNotConfigured when none is set.
func (p *Provider) SharedCredentials(context.Context) (*domain.CredentialRecord, error) {
	rec := p.Config().SharedRecord()
	if rec == nil {
		return nil, domain.ErrNotConfigured
	}
	out := *rec
	return &out, nil
}

// Watch blocks, reloading the configuration whenever the file changes, until
// the context is cancelled. The parent directory is watched because most
// editors and secret managers replace the file rather than write in place.
func (p *Provider) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating config watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(p.path)); err != nil {
		return fmt.Errorf("watching config directory: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(p.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := p.Reload(); err != nil {
				logger.Warn("config reload failed, keeping previous: %v", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher: %v", err)
		}
	}
}
