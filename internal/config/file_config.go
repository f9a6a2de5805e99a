package config

import (
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// fileValues mirrors the optional TOML config file. Every field has an
// environment-variable override and a built-in default, so the file itself
// is optional.
type fileValues struct {
	API struct {
		BaseURL        string `toml:"base_url"`
		FrontendOrigin string `toml:"frontend_origin"`
		RequestTimeout string `toml:"request_timeout"`
	} `toml:"api"`
	Store struct {
		Path       string `toml:"path"`
		SealSecret string `toml:"seal_secret"`
		SealSalt   string `toml:"seal_salt"`
	} `toml:"store"`
	Providers map[string]ProviderCredentials `toml:"providers"`
}

func readFile(path string) (fileValues, error) {
	var fv fileValues
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fv, nil
		}
		return fv, errors.Wrap(err, "[readFile] reading config file")
	}
	if err := toml.Unmarshal(data, &fv); err != nil {
		return fv, errors.Wrap(err, "[readFile] parsing config file")
	}
	return fv, nil
}
