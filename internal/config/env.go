package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Env is the module configuration read from the Nakama runtime environment.
type Env struct {
	DBPath       string `env:"CASTLEBATTLE_DB_PATH"       envDefault:"castlebattle.db"`
	RulesPath    string `env:"CASTLEBATTLE_RULES_PATH"`
	OTelEndpoint string `env:"CASTLEBATTLE_OTEL_ENDPOINT"`
	OTelEnabled  bool   `env:"CASTLEBATTLE_OTEL_ENABLED"  envDefault:"true"`
	ServiceName  string `env:"CASTLEBATTLE_SERVICE_NAME"  envDefault:"castlebattle"`
	Notify       bool   `env:"CASTLEBATTLE_NOTIFY"        envDefault:"true"`
}

// LoadEnv parses Env from runtime, falling back to the process environment for keys it lacks.
func LoadEnv(runtime map[string]string) (Env, error) {
	merged := processEnv()
	for k, v := range runtime {
		merged[k] = v
	}

	var cfg Env
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: merged}); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func processEnv() map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			out[k] = v
		}
	}
	return out
}
