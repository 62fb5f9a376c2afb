package fetchstore

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to the env tags of Settings.
const EnvPrefix = "FETCHSTORE_"

// SettingsFromEnv reads Settings from FETCHSTORE_* environment variables,
// e.g. FETCHSTORE_ABORTABLE=true or FETCHSTORE_FETCH_ONCE_DEFAULT_THRESHOLD=1m.
func SettingsFromEnv() (Settings, error) {
	return parseEnvSettings(nil)
}

// LoadSettings reads Settings from a YAML file, or from a dotenv file when
// path ends in ".env". Dotenv keys use the same FETCHSTORE_ names as the
// environment.
func LoadSettings(path string) (Settings, error) {
	if strings.HasSuffix(strings.ToLower(path), ".env") {
		envMap, err := godotenv.Read(path)
		if err != nil {
			return Settings{}, fmt.Errorf("fetchstore: error loading .env file: %w", err)
		}
		return parseEnvSettings(envMap)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("fetchstore: error reading settings file: %w", err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("fetchstore: error parsing yaml settings: %w", err)
	}
	return s, nil
}

// parseEnvSettings parses the process environment, or envMap when it is
// not nil.
func parseEnvSettings(envMap map[string]string) (Settings, error) {
	var s Settings
	opts := env.Options{Prefix: EnvPrefix}
	if envMap != nil {
		opts.Environment = envMap
	}
	if err := env.ParseWithOptions(&s, opts); err != nil {
		return Settings{}, fmt.Errorf("fetchstore: error parsing environment variables: %w", err)
	}
	return s, nil
}
