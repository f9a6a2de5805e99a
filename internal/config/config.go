package config

import "time"

type Config interface {
	EnvConfig
	APIConfig
	StoreConfig
	ProvidersConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetEnv() string
}

type APIConfig interface {
	GetAPIBaseURL() string
	GetFrontendOrigin() string
	GetRequestTimeout() time.Duration
}

type StoreConfig interface {
	GetStorePath() string
	GetSealSecret() string
	GetSealSalt() string
}

type ProvidersConfig interface {
	GetProviderCredentials() map[string]ProviderCredentials
}

// ProviderCredentials holds one social-login provider's client registration.
type ProviderCredentials struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

type mainConfig struct {
	EnvVars
	API
	Store
	Providers
}

// New builds a Config backed by environment variables alone.
func New() Config {
	return newMainConfig(fileValues{})
}

// Load builds a Config from a TOML file, with environment variables taking
// precedence over file values. A missing file is not an error.
func Load(path string) (Config, error) {
	fv, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return newMainConfig(fv), nil
}

func newMainConfig(fv fileValues) Config {
	return mainConfig{
		API:       API{file: fv},
		Store:     Store{file: fv},
		Providers: Providers{file: fv},
	}
}
