package config

import "strings"

type Providers struct {
	file fileValues
}

var _ ProvidersConfig = Providers{}

// GetProviderCredentials returns provider client registrations from the
// config file, with GOOGLE_CLIENT_ID style environment overrides.
func (p Providers) GetProviderCredentials() map[string]ProviderCredentials {
	creds := make(map[string]ProviderCredentials, len(p.file.Providers))
	for name, c := range p.file.Providers {
		creds[name] = c
	}
	for _, name := range []string{"google", "kakao", "naver"} {
		prefix := strings.ToUpper(name)
		c := creds[name]
		c.ClientID = GetEnv(prefix+"_CLIENT_ID", c.ClientID)
		c.ClientSecret = GetEnv(prefix+"_CLIENT_SECRET", c.ClientSecret)
		if c.ClientID != "" {
			creds[name] = c
		}
	}
	return creds
}
