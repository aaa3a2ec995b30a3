package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/jayanthkotte/Personalized-Investment-Recommendation-App/internal/modules/recommendation"
	"github.com/jayanthkotte/Personalized-Investment-Recommendation-App/internal/modules/recommendation/artifact"
	"github.com/jayanthkotte/Personalized-Investment-Recommendation-App/pkg/logger"
)

// validationRow is one labelled example from the held-out validation
// file, given in raw form and encoded against the bundle's vocabulary.
type validationRow struct {
	RiskLevel string   `json:"risk_level"`
	Tenure    int      `json:"tenure"`
	Capital   int      `json:"capital"`
	Labels    []string `json:"labels"`
}

func main() {
	var (
		bundlePath     = flag.String("bundle", "", "classifier bundle to calibrate (msgpack)")
		validationPath = flag.String("validation", "", "validation set (JSON)")
		outPath        = flag.String("out", "", "output path (defaults to overwriting the input bundle)")
		logLevel       = flag.String("log-level", "info", "log level")
	)
	flag.Parse()

	log := logger.New(logger.Config{Level: *logLevel, Pretty: true})

	if *bundlePath == "" || *validationPath == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *outPath == "" {
		*outPath = *bundlePath
	}

	bundle, err := artifact.Load(*bundlePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *bundlePath).Msg("Failed to load bundle")
	}

	samples, err := loadValidationSet(*validationPath, bundle)
	if err != nil {
		log.Fatal().Err(err).Str("path", *validationPath).Msg("Failed to load validation set")
	}
	log.Info().Int("samples", len(samples)).Int("labels", len(bundle.Labels)).Msg("Validation set loaded")

	calibrator := recommendation.NewCalibrator(log)
	thresholds, err := calibrator.Calibrate(samples, bundle.Labels, bundle)
	if err != nil {
		log.Fatal().Err(err).Msg("Calibration failed")
	}

	calibrated, err := bundle.WithThresholds(thresholds)
	if err != nil {
		log.Fatal().Err(err).Msg("Calibrated thresholds rejected")
	}

	if err := artifact.Save(*outPath, calibrated); err != nil {
		log.Fatal().Err(err).Str("path", *outPath).Msg("Failed to save calibrated bundle")
	}

	log.Info().Str("path", *outPath).Str("version", calibrated.Version).Msg("Calibrated bundle written")
}

// loadValidationSet reads raw validation rows and encodes them with the
// bundle's own vocabulary so calibration sees exactly the vectors the
// serving path would produce.
func loadValidationSet(path string, bundle *artifact.Bundle) ([]recommendation.ValidationSample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var rows []validationRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse validation file: %w", err)
	}

	samples := make([]recommendation.ValidationSample, 0, len(rows))
	for i, row := range rows {
		features := recommendation.RTCFeatures{
			RiskLevel: row.RiskLevel,
			Tenure:    row.Tenure,
			Capital:   row.Capital,
		}
		vector, err := features.Vector(bundle.Encoder())
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}

		labels := make(map[string]bool, len(row.Labels))
		for _, label := range row.Labels {
			labels[label] = true
		}
		samples = append(samples, recommendation.ValidationSample{Features: vector, Labels: labels})
	}
	return samples, nil
}
