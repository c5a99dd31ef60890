package auth

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"os"
)

const secretLength = 64

const secretAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// LoadOrCreateSecret returns the token signing secret, reading it from path
// when present and generating a fresh one otherwise. A failed write is not
// fatal: the server runs with the in-memory secret and every issued token
// dies with the process.
func LoadOrCreateSecret(path string) ([]byte, error) {
	secret, err := os.ReadFile(path)
	if err == nil && len(secret) > 0 {
		return secret, nil
	}

	slog.Info("signing secret not found, generating a new one", "path", path)
	secret, err = randomAlphanumerics(secretLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate signing secret: %w", err)
	}

	if err := os.WriteFile(path, secret, 0o600); err != nil {
		slog.Warn("signing secret could not be saved, tokens will not survive a restart",
			"path", path, "error", err)
	}

	return secret, nil
}

func randomAlphanumerics(n int) ([]byte, error) {
	out := make([]byte, n)
	max := big.NewInt(int64(len(secretAlphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return nil, err
		}
		out[i] = secretAlphabet[idx.Int64()]
	}
	return out, nil
}
