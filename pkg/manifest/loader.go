package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/Masterminds/semver/v3"
)

const logPrefix = "manifest:loader"

// SupportedVersions is the manifest format range this build understands.
const SupportedVersions = ">= 1.0.0, < 2.0.0"

// LoadManifest reads the first existing file among paths. Missing files are
// skipped; a file that exists but does not parse or validate is an error. With
// no file found the default (empty) manifest is returned.
func LoadManifest(paths ...string) (*Manifest, error) {
	for _, p := range paths {
		if p == "" {
			continue
		}

		data, err := os.ReadFile(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				slog.Warn(fmt.Sprintf("%s - Manifest file %s not found", logPrefix, p))
				continue
			}
			return nil, fmt.Errorf("%s - failed to read %s: %w", logPrefix, p, err)
		}

		m, err := ParseManifest(data)
		if err != nil {
			return nil, fmt.Errorf("%s - %s: %w", logPrefix, p, err)
		}

		slog.Info(fmt.Sprintf("%s - Loaded manifest %q v%s (%d commands) from %s", logPrefix, m.Name, m.Version, len(m.Commands), p))
		return m, nil
	}

	slog.Info(fmt.Sprintf("%s - Using default manifest", logPrefix))
	return DefaultManifest(), nil
}

// ParseManifest decodes and validates manifest JSON.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid manifest JSON: %w", err)
	}
	if err := CheckVersion(m.Version); err != nil {
		return nil, err
	}
	return &m, nil
}

// CheckVersion reports whether version is a supported manifest format version.
func CheckVersion(version string) error {
	if version == "" {
		return fmt.Errorf("manifest version is required")
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("invalid manifest version %q: %w", version, err)
	}
	constraint, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return fmt.Errorf("invalid supported range %q: %w", SupportedVersions, err)
	}
	if !constraint.Check(v) {
		return fmt.Errorf("manifest version %s is not supported (want %s)", v, SupportedVersions)
	}
	return nil
}

// DefaultManifest returns the built-in fallback manifest, which declares no commands.
func DefaultManifest() *Manifest {
	return &Manifest{
		Name:        "slashbot-default",
		Version:     "1.0.0",
		Description: "No declarative commands",
		Commands:    []CommandSpec{},
	}
}
