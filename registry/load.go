package registry

import (
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/growthlab/atlas/errors"
)

// Load reads and validates a registry definition from a TOML file.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read registry file %s", path)
	}
	return Parse(data)
}

// Parse decodes and validates a registry definition from TOML bytes.
func Parse(data []byte) (*Registry, error) {
	var reg Registry
	if err := toml.Unmarshal(data, &reg); err != nil {
		return nil, errors.Wrap(errors.Wrap(errors.ErrInvalidConfig, err.Error()),
			"decode registry TOML")
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return &reg, nil
}
