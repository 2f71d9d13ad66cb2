package token

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// ErrKeyMismatch — публичный ключ не соответствует приватному.
var ErrKeyMismatch = errors.New("public key does not match private key")

// loadKeyFiles читает пару PEM-файлов.
func loadKeyFiles(privPath, pubPath string) ([]byte, []byte, error) {
	const op = "token.loadKeyFiles"

	if privPath == "" || pubPath == "" {
		return nil, nil, fmt.Errorf("%s: key paths must be set", op)
	}

	priv, err := os.ReadFile(privPath)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: private key: %w", op, err)
	}

	pub, err := os.ReadFile(pubPath)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: public key: %w", op, err)
	}

	return priv, pub, nil
}

// parseKeys разбирает PEM (PKCS#1/PKCS#8 для приватного, PKIX/PKCS#1 для публичного)
// и проверяет, что ключи из одной пары.
func parseKeys(privPEM, pubPEM []byte) (*rsa.PrivateKey, *rsa.PublicKey, error) {
	const op = "token.parseKeys"

	priv, err := jwt.ParseRSAPrivateKeyFromPEM(privPEM)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: private key: %w", op, err)
	}

	pub, err := jwt.ParseRSAPublicKeyFromPEM(pubPEM)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: public key: %w", op, err)
	}

	if !priv.PublicKey.Equal(pub) {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrKeyMismatch)
	}

	return priv, pub, nil
}
