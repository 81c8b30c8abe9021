package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"
)

// ChecksumManifest records expected BLAKE3 hashes for the config file and
// its companion .env file. It lives next to the config as ".checksums".
type ChecksumManifest struct {
	Version     int               `yaml:"version"`
	GeneratedAt string            `yaml:"generated_at"`
	Hashes      map[string]string `yaml:"hashes"`
}

// IntegrityResult collects the outcome of an integrity verification.
type IntegrityResult struct {
	Passed   bool
	Warnings []string
	Errors   []string
}

// hashFile computes the BLAKE3 hash of a file.
func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// lockedFiles returns the files covered by the manifest for a config path:
// the config file itself plus a .env file when present.
func lockedFiles(configPath string) []string {
	files := []string{filepath.Base(configPath)}
	if fileExists(filepath.Join(filepath.Dir(configPath), ".env")) {
		files = append(files, ".env")
	}
	return files
}

// Lock computes checksums for the config file (and .env, if present) and
// writes the .checksums manifest next to the config.
func Lock(configPath string) (*ChecksumManifest, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %q: %w", configPath, err)
	}
	dir := filepath.Dir(absPath)

	manifest := &ChecksumManifest{
		Version:     1,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Hashes:      make(map[string]string),
	}
	for _, name := range lockedFiles(absPath) {
		hash, err := hashFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to hash %s: %w", name, err)
		}
		manifest.Hashes[name] = hash
	}

	data, err := yaml.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal checksums: %w", err)
	}

	// Restrictive permissions: the manifest is the trust anchor.
	if err := os.WriteFile(filepath.Join(dir, ".checksums"), data, 0600); err != nil {
		return nil, fmt.Errorf("failed to write checksums: %w", err)
	}
	return manifest, nil
}

// VerifyIntegrity checks the config file (and .env, if present) against the
// .checksums manifest. A missing manifest is a warning; a hash mismatch or
// a locked file missing from the manifest is an error.
func VerifyIntegrity(configPath string) (*IntegrityResult, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %q: %w", configPath, err)
	}
	dir := filepath.Dir(absPath)
	result := &IntegrityResult{Passed: true}

	manifestPath := filepath.Join(dir, ".checksums")
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("no .checksums manifest at %s; run 'catapult config lock' to enable integrity verification", manifestPath))
			return result, nil
		}
		return nil, fmt.Errorf("failed to read checksums: %w", err)
	}

	var manifest ChecksumManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse checksums: %w", err)
	}
	if manifest.Version != 1 {
		return nil, fmt.Errorf("unsupported checksums version: %d", manifest.Version)
	}

	for _, name := range lockedFiles(absPath) {
		expected, ok := manifest.Hashes[name]
		if !ok {
			result.Passed = false
			result.Errors = append(result.Errors,
				fmt.Sprintf("file %s not in .checksums manifest; run 'catapult config lock' after editing", name))
			continue
		}
		actual, err := hashFile(filepath.Join(dir, name))
		if err != nil {
			result.Passed = false
			result.Errors = append(result.Errors, fmt.Sprintf("failed to hash %s: %v", name, err))
			continue
		}
		if actual != expected {
			result.Passed = false
			result.Errors = append(result.Errors,
				fmt.Sprintf("hash mismatch for %s; if you edited it intentionally, run 'catapult config lock'", name))
		}
	}

	return result, nil
}
