package config

type Store struct {
	file fileValues
}

var _ StoreConfig = Store{}

func (s Store) GetStorePath() string {
	return GetEnv("STORE_PATH", fallback(s.file.Store.Path, "./data/tokens"))
}

// GetSealSecret returns the passphrase protecting tokens at rest. Empty
// means the store runs unsealed.
func (s Store) GetSealSecret() string {
	return GetEnv("SEAL_SECRET", s.file.Store.SealSecret)
}

func (s Store) GetSealSalt() string {
	return GetEnv("SEAL_SALT", fallback(s.file.Store.SealSalt, "prome-client-seal-salt"))
}
