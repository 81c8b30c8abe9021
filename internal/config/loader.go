package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load reads and parses configuration from a YAML file. A .env file next to
// the config file is loaded into the environment first, so secrets can stay
// out of the config file and be referenced as ${VAR}.
func Load(configPath string) (*Config, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %q: %w", configPath, err)
	}

	if envPath := filepath.Join(filepath.Dir(absPath), ".env"); fileExists(envPath) {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envPath, err)
		}
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %s\n"+
			"Hint: Check the path or run with --config flag", absPath)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal([]byte(interpolateEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", absPath, err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// interpolateEnv replaces ${VAR} references with environment values.
// Unset variables interpolate to the empty string, which validation then
// catches where the value is required.
func interpolateEnv(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(name)
	})
}

// Discover finds the config file by checking standard locations.
// Priority order: $CATAPULT_CONFIG, ~/.config/catapult/catapult.yaml,
// /etc/catapult/catapult.yaml, ./catapult.yaml.
func Discover() (string, error) {
	if path := os.Getenv("CATAPULT_CONFIG"); path != "" {
		if fileExists(path) {
			return path, nil
		}
		return "", fmt.Errorf("$CATAPULT_CONFIG points to %s but no file exists there", path)
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		userPath := filepath.Join(homeDir, ".config", "catapult", "catapult.yaml")
		if fileExists(userPath) {
			return userPath, nil
		}
	}

	systemPath := "/etc/catapult/catapult.yaml"
	if fileExists(systemPath) {
		return systemPath, nil
	}

	localPath := "./catapult.yaml"
	if fileExists(localPath) {
		return localPath, nil
	}

	return "", fmt.Errorf("no config found (checked: $CATAPULT_CONFIG, ~/.config/catapult, /etc/catapult, ./catapult.yaml)")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
