package recommendation

import (
	"fmt"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
)

// thresholdGridPoints spans the closed candidate grid {0.20, 0.25, ..., 0.80}
const thresholdGridPoints = 13

// ValidationSample is one held-out example for threshold calibration:
// an already-encoded feature vector and the true label set.
type ValidationSample struct {
	Features []float64
	Labels   map[string]bool
}

// LabelScorer is the classifier contract the calibrator needs
type LabelScorer interface {
	Score(x []float64) ([]float64, error)
}

// Calibrator tunes per-label decision thresholds on a validation set.
// This is an offline batch procedure; it never runs against live traffic
// and its output is only valid for the exact classifier it scored with.
type Calibrator struct {
	grid []float64
	log  zerolog.Logger
}

// NewCalibrator creates a calibrator over the standard threshold grid
func NewCalibrator(log zerolog.Logger) *Calibrator {
	return &Calibrator{
		grid: floats.Span(make([]float64, thresholdGridPoints), 0.20, 0.80),
		log:  log.With().Str("component", "calibrator").Logger(),
	}
}

// Calibrate computes one threshold per label. For each label it scans the
// candidate grid in ascending order and keeps the candidate whose F1 on
// the validation set is strictly greater than the best so far, starting
// from best_f1 = 0 and threshold 0.5. The strict comparison makes F1 ties
// resolve to the lowest-scanned candidate; that tie-break is part of the
// contract and is covered by tests.
func (c *Calibrator) Calibrate(samples []ValidationSample, labels []string, scorer LabelScorer) ([]float64, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("validation set is empty")
	}

	// Score every sample once up front
	scores := make([][]float64, len(samples))
	for i, sample := range samples {
		s, err := scorer.Score(sample.Features)
		if err != nil {
			return nil, fmt.Errorf("failed to score validation sample %d: %w", i, err)
		}
		if len(s) != len(labels) {
			return nil, fmt.Errorf("scorer returned %d scores for %d labels", len(s), len(labels))
		}
		scores[i] = s
	}

	thresholds := make([]float64, len(labels))
	for j, label := range labels {
		bestF1 := 0.0
		bestThreshold := 0.5

		for _, candidate := range c.grid {
			f1 := c.f1AtThreshold(samples, scores, j, label, candidate)
			if f1 > bestF1 {
				bestF1 = f1
				bestThreshold = candidate
			}
		}

		thresholds[j] = bestThreshold
		c.log.Debug().
			Str("label", label).
			Float64("threshold", bestThreshold).
			Float64("f1", bestF1).
			Msg("Calibrated label threshold")
	}

	return thresholds, nil
}

// f1AtThreshold computes F1 for one label with membership predicted as
// score >= threshold. An undefined precision or recall counts as 0.
func (c *Calibrator) f1AtThreshold(samples []ValidationSample, scores [][]float64, labelIdx int, label string, threshold float64) float64 {
	tp, fp, fn := 0, 0, 0
	for i, sample := range samples {
		predicted := scores[i][labelIdx] >= threshold
		actual := sample.Labels[label]
		switch {
		case predicted && actual:
			tp++
		case predicted && !actual:
			fp++
		case !predicted && actual:
			fn++
		}
	}

	if tp == 0 {
		return 0
	}

	precision := float64(tp) / float64(tp+fp)
	recall := float64(tp) / float64(tp+fn)
	return 2 * precision * recall / (precision + recall)
}
