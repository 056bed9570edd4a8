package storage

// StorageConfig locates the SQLite database and an optional seed file.
type StorageConfig struct {
	Path string `json:"path"`
	// SeedFile, when set, is loaded by the gateway at startup.
	SeedFile string `json:"seedFile,omitempty"`
}

func DefaultStorageConfig() StorageConfig {
	return StorageConfig{Path: "~/.oatsbridge/oatsbridge.db"}
}
