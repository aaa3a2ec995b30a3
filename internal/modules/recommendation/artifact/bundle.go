// Package artifact loads and serves pretrained classifier bundles.
//
// A bundle is the immutable unit of deployment for a model: feature
// vocabularies, per-label tree ensembles and per-label decision thresholds
// always travel together, bound to one version. Thresholds are only valid
// for the exact classifier they were calibrated against, so partial
// updates are never allowed; replacement happens by atomically swapping
// the whole bundle.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// DefaultThreshold is applied per label when a bundle carries no calibrated
// threshold set. It reproduces a hard classifier prediction (p >= 0.5).
const DefaultThreshold = 0.5

// Bundle is an immutable classifier artifact. Fields are never mutated
// after Load; concurrent readers need no locking.
type Bundle struct {
	Vocab      map[string][]string `msgpack:"vocab"` // feature name -> classes in index order
	Version    string              `msgpack:"version"`
	Labels     []string            `msgpack:"labels"` // investment ids, index-aligned with Models and Thresholds
	Models     []Ensemble          `msgpack:"models"`
	Thresholds []float64           `msgpack:"thresholds"`

	encoder *Encoder
}

// New assembles a bundle in memory. Empty thresholds default to
// DefaultThreshold per label.
func New(version string, vocab map[string][]string, labels []string, models []Ensemble, thresholds []float64) (*Bundle, error) {
	if len(thresholds) == 0 {
		thresholds = make([]float64, len(labels))
		for i := range thresholds {
			thresholds[i] = DefaultThreshold
		}
	}

	bundle := &Bundle{
		Vocab:      vocab,
		Version:    version,
		Labels:     labels,
		Models:     models,
		Thresholds: thresholds,
	}
	if err := bundle.Validate(); err != nil {
		return nil, err
	}
	bundle.encoder = NewEncoder(vocab)
	return bundle, nil
}

// Load reads and validates a bundle file. Bundles without a calibrated
// threshold set get DefaultThreshold per label.
func Load(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle file: %w", err)
	}

	var bundle Bundle
	if err := msgpack.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("failed to decode bundle %s: %w", path, err)
	}

	if len(bundle.Thresholds) == 0 {
		bundle.Thresholds = make([]float64, len(bundle.Labels))
		for i := range bundle.Thresholds {
			bundle.Thresholds[i] = DefaultThreshold
		}
	}

	if err := bundle.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bundle %s: %w", path, err)
	}

	bundle.encoder = NewEncoder(bundle.Vocab)
	return &bundle, nil
}

// Save writes a bundle to path via a temp file and rename, so a reloading
// reader never observes a partially written bundle.
func Save(path string, bundle *Bundle) error {
	if err := bundle.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid bundle: %w", err)
	}

	data, err := msgpack.Marshal(bundle)
	if err != nil {
		return fmt.Errorf("failed to encode bundle: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".bundle-*")
	if err != nil {
		return fmt.Errorf("failed to create temp bundle file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write temp bundle file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp bundle file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace bundle file: %w", err)
	}

	return nil
}

// Validate checks bundle internal consistency
func (b *Bundle) Validate() error {
	if b.Version == "" {
		return fmt.Errorf("bundle has no version")
	}
	if len(b.Labels) == 0 {
		return fmt.Errorf("bundle has no labels")
	}
	if len(b.Models) != len(b.Labels) {
		return fmt.Errorf("bundle has %d models for %d labels", len(b.Models), len(b.Labels))
	}
	if len(b.Thresholds) != len(b.Labels) {
		return fmt.Errorf("bundle has %d thresholds for %d labels", len(b.Thresholds), len(b.Labels))
	}
	for i, t := range b.Thresholds {
		if t < 0 || t > 1 {
			return fmt.Errorf("threshold for label %s out of range: %f", b.Labels[i], t)
		}
	}
	for i, model := range b.Models {
		if len(model.Trees) == 0 {
			return fmt.Errorf("model for label %s has no trees", b.Labels[i])
		}
		for _, tree := range model.Trees {
			if err := tree.validate(); err != nil {
				return fmt.Errorf("model for label %s: %w", b.Labels[i], err)
			}
		}
	}
	return nil
}

// Encoder returns the feature encoder for this bundle's vocabularies
func (b *Bundle) Encoder() *Encoder {
	return b.encoder
}

// WithThresholds returns a copy of the bundle carrying the given calibrated
// threshold set. The receiver is left untouched.
func (b *Bundle) WithThresholds(thresholds []float64) (*Bundle, error) {
	if len(thresholds) != len(b.Labels) {
		return nil, fmt.Errorf("got %d thresholds for %d labels", len(thresholds), len(b.Labels))
	}

	out := &Bundle{
		Version:    b.Version,
		Labels:     b.Labels,
		Vocab:      b.Vocab,
		Models:     b.Models,
		Thresholds: append([]float64(nil), thresholds...),
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	out.encoder = NewEncoder(out.Vocab)
	return out, nil
}
