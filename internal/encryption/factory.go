package encryption

import (
	"fmt"

	"nameforge/internal/config"
	"nameforge/internal/core"
)

// NewEncryptorFromConfig creates an Encryptor based on the configuration
// type. Snapshot encryption is off unless configured.
func NewEncryptorFromConfig(cfg config.EncryptionConfig) (core.Encryptor, error) {
	switch cfg.Type {
	case "", "none":
		return core.NopEncryptor{}, nil
	case "age":
		return NewAgeEncryptor(cfg), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
