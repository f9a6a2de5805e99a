package config

import "time"

const defaultRequestTimeout = 15 * time.Second

type API struct {
	file fileValues
}

var _ APIConfig = API{}

// GetAPIBaseURL returns the backend origin all API calls are made against.
func (a API) GetAPIBaseURL() string {
	return GetEnv("API_BASE_URL", fallback(a.file.API.BaseURL, "http://localhost:8080"))
}

// GetFrontendOrigin returns the hostname OAuth redirects are expected to
// land on.
func (a API) GetFrontendOrigin() string {
	return GetEnv("FRONTEND_ORIGIN", fallback(a.file.API.FrontendOrigin, "localhost"))
}

func (a API) GetRequestTimeout() time.Duration {
	raw := GetEnv("REQUEST_TIMEOUT", a.file.API.RequestTimeout)
	if raw == "" {
		return defaultRequestTimeout
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return defaultRequestTimeout
	}
	return d
}

func fallback(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
