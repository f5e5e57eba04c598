package config

import (
	"os"

	"github.com/fannyleague/fanny-services/internal/core/service"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// LoadTiers reads the level tier table from the yaml file named by
// TIERS_FILE. Falls back to the compiled-in defaults when unset or
// unreadable.
func LoadTiers() []service.Tier {
	path := os.Getenv("TIERS_FILE")
	if path == "" {
		return service.DefaultTiers
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Warnf("unable to read tiers file %s, using defaults: %s", path, err)
		return service.DefaultTiers
	}

	var doc struct {
		Tiers []service.Tier `yaml:"tiers"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		log.Warnf("unable to parse tiers file %s, using defaults: %s", path, err)
		return service.DefaultTiers
	}
	if len(doc.Tiers) == 0 {
		return service.DefaultTiers
	}

	log.Infof("loaded %d level tiers from %s", len(doc.Tiers), path)
	return doc.Tiers
}
