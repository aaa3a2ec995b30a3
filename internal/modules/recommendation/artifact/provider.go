package artifact

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

type loadedBundle struct {
	bundle  *Bundle
	modTime time.Time
}

// Provider serves the current bundle for one model file and supports hot
// reload. The bundle is replaced as a whole by an atomic pointer swap;
// readers always observe a classifier with its matching thresholds.
type Provider struct {
	current atomic.Pointer[loadedBundle]
	path    string
	log     zerolog.Logger
}

// NewProvider loads the bundle at path and serves it
func NewProvider(path string, log zerolog.Logger) (*Provider, error) {
	p := &Provider{
		path: path,
		log:  log.With().Str("component", "artifact").Str("path", path).Logger(),
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat bundle file: %w", err)
	}

	bundle, err := Load(path)
	if err != nil {
		return nil, err
	}

	p.current.Store(&loadedBundle{bundle: bundle, modTime: info.ModTime()})
	p.log.Info().
		Str("version", bundle.Version).
		Int("labels", len(bundle.Labels)).
		Msg("Loaded classifier bundle")

	return p, nil
}

// Bundle returns the currently served bundle
func (p *Provider) Bundle() *Bundle {
	return p.current.Load().bundle
}

// Reload re-reads the bundle file if it changed on disk and swaps it in
// atomically. Returns true when a new bundle was installed.
func (p *Provider) Reload() (bool, error) {
	info, err := os.Stat(p.path)
	if err != nil {
		return false, fmt.Errorf("failed to stat bundle file: %w", err)
	}

	loaded := p.current.Load()
	if !info.ModTime().After(loaded.modTime) {
		return false, nil
	}

	bundle, err := Load(p.path)
	if err != nil {
		// Keep serving the previous bundle on a bad file
		return false, err
	}

	p.current.Store(&loadedBundle{bundle: bundle, modTime: info.ModTime()})
	p.log.Info().
		Str("old_version", loaded.bundle.Version).
		Str("new_version", bundle.Version).
		Msg("Reloaded classifier bundle")

	return true, nil
}
