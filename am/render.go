package am

import (
	"os"

	"github.com/BurntSushi/toml"
	gotoml "github.com/pelletier/go-toml/v2"

	"github.com/teranos/cashngo/errors"
)

// Render marshals the effective configuration to TOML for `am show`.
// The redis password is masked.
func Render(c *Config) ([]byte, error) {
	masked := *c
	if masked.Redis.Password != "" {
		masked.Redis.Password = "********"
	}
	data, err := gotoml.Marshal(masked)
	if err != nil {
		return nil, errors.Wrap(err, "marshal config")
	}
	return data, nil
}

// CheckFile decodes a TOML config file strictly and returns the keys that do
// not map onto Config (typos, stale options). Syntax errors are returned as errors.
func CheckFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}

	var cfg Config
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}

	var unknown []string
	for _, key := range meta.Undecoded() {
		unknown = append(unknown, key.String())
	}

	if err := cfg.Validate(); err != nil {
		return unknown, errors.Wrapf(err, "validate %s", path)
	}
	return unknown, nil
}
