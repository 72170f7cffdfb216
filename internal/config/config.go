package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ideascope/ideascope-backend/internal/logger"
	"github.com/ideascope/ideascope-backend/internal/uniqueness"
	"github.com/ideascope/ideascope-backend/internal/utils"
)

// Uniqueness carries the tunable parts of the comparison pipeline. Values
// come from an optional YAML file (UNIQUENESS_CONFIG) with env overrides on
// top; defaults match the deployed service.
type Uniqueness struct {
	Threshold    float64            `yaml:"threshold"`
	MaxSimilar   int                `yaml:"max_similar"`
	PaperWeights map[string]float64 `yaml:"paper_weights"`
}

func Defaults() Uniqueness {
	return Uniqueness{
		Threshold:  0.30,
		MaxSimilar: 5,
		PaperWeights: map[string]float64{
			"abstract":   0.6,
			"conclusion": 0.4,
		},
	}
}

func Load(log *logger.Logger) (Uniqueness, error) {
	cfg := Defaults()

	if path := utils.GetEnv("UNIQUENESS_CONFIG", "", log); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read uniqueness config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse uniqueness config: %w", err)
		}
		if log != nil {
			log.Info("Loaded uniqueness config", "path", path)
		}
	}

	cfg.Threshold = utils.GetEnvAsFloat("UNIQUENESS_THRESHOLD", cfg.Threshold, log)
	cfg.MaxSimilar = utils.GetEnvAsInt("UNIQUENESS_MAX_SIMILAR", cfg.MaxSimilar, log)

	if cfg.Threshold < 0 || cfg.Threshold >= 1 {
		return cfg, fmt.Errorf("uniqueness threshold %v out of range [0,1)", cfg.Threshold)
	}
	if cfg.MaxSimilar <= 0 {
		cfg.MaxSimilar = Defaults().MaxSimilar
	}
	if len(cfg.PaperWeights) == 0 {
		cfg.PaperWeights = Defaults().PaperWeights
	}
	return cfg, nil
}

func (u Uniqueness) IdeaChecker() uniqueness.Config {
	cfg := uniqueness.IdeaConfig()
	cfg.Threshold = u.Threshold
	cfg.MaxSimilar = u.MaxSimilar
	return cfg
}

func (u Uniqueness) PaperChecker() uniqueness.Config {
	cfg := uniqueness.PaperConfig()
	cfg.Threshold = u.Threshold
	cfg.MaxSimilar = u.MaxSimilar
	return cfg
}
