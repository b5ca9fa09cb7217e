// Package compiled persists the per-step decisions of a learning run beside
// the source scenario and gates replays on a staleness check.
package compiled

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jfarcand/mirroir-mcp-sub001/internal/domain/entity"
)

// Suffix replaces the source scenario's extension to name the sidecar.
const Suffix = ".compiled.json"

// SidecarPath maps a scenario path to its compiled-cache path.
func SidecarPath(sourcePath string) string {
	ext := filepath.Ext(sourcePath)
	return strings.TrimSuffix(sourcePath, ext) + Suffix
}

// HashSource fingerprints scenario file content. Content-based, never
// metadata-based, so a touch without an edit stays fresh.
func HashSource(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Load reads and validates a compiled scenario. A missing sidecar returns
// (nil, nil): first runs simply have nothing to replay.
func Load(path string) (*entity.CompiledScenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading compiled scenario: %w", err)
	}

	var c entity.CompiledScenario
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing compiled scenario: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid compiled scenario: %w", err)
	}
	return &c, nil
}

// Save writes the sidecar with stable key ordering so consecutive learning
// runs produce diffable output.
func Save(path string, c *entity.CompiledScenario) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid compiled scenario: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding compiled scenario: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing compiled scenario: %w", err)
	}
	return nil
}
