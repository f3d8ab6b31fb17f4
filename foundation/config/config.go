// Package config defines this node's startup configuration: parsed
// from environment variables and flags via ardanlabs/conf, then
// checked with go-playground/validator before anything starts.
package config

import (
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/go-playground/validator/v10"
)

// Config is every value gambitd needs before it can start any
// subsystem.
type Config struct {
	conf.Version

	Chain struct {
		ChainID        uint64 `conf:"default:1337" validate:"required"`
		PremineAddress string `conf:"default:"`
		PremineBalance uint64 `conf:"default:1000000"`
	}

	P2P struct {
		ListenHost string   `conf:"default:0.0.0.0:9080"`
		Seeds      []string `conf:"default:"`
	}

	RPC struct {
		ListenHost string `conf:"default:0.0.0.0:8080"`
	}

	Explorer struct {
		ListenHost string `conf:"default:0.0.0.0:7080"`
	}

	Miner struct {
		Enabled  bool          `conf:"default:false"`
		Interval time.Duration `conf:"default:10s"`
	}
}

// Parse fills cfg from environment variables and flags under prefix,
// then validates it.
func Parse(prefix string, cfg *Config) (string, error) {
	help, err := conf.Parse(prefix, cfg)
	if err != nil {
		return help, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return help, err
	}

	return help, nil
}
