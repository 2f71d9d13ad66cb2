// tokentest — хелперы для тестов пакетов, которым нужен token.Manager.
package tokentest

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-league-auth/internal/token"
)

// Issuer — issuer, с которым создаются тестовые менеджеры.
const Issuer = "league-auth-test"

var (
	once    sync.Once
	privPEM []byte
	pubPEM  []byte
	keyErr  error
)

// KeyPEM возвращает тестовую пару RSA-ключей в PEM (генерируется один раз на процесс).
func KeyPEM(t testing.TB) ([]byte, []byte) {
	t.Helper()

	once.Do(func() {
		var k *rsa.PrivateKey
		k, keyErr = rsa.GenerateKey(rand.Reader, 2048)
		if keyErr != nil {
			return
		}

		privPEM = pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(k)})

		var der []byte
		der, keyErr = x509.MarshalPKIXPublicKey(&k.PublicKey)
		if keyErr != nil {
			return
		}
		pubPEM = pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	})
	require.NoError(t, keyErr)

	return privPEM, pubPEM
}

// WriteKeys пишет тестовую пару ключей в dir и возвращает пути.
func WriteKeys(t testing.TB, dir string) (string, string) {
	t.Helper()

	priv, pub := KeyPEM(t)
	privPath := filepath.Join(dir, "private.pem")
	pubPath := filepath.Join(dir, "public.pem")
	require.NoError(t, os.WriteFile(privPath, priv, 0o600))
	require.NoError(t, os.WriteFile(pubPath, pub, 0o644))

	return privPath, pubPath
}

// NewManager создаёт token.Manager на тестовых ключах с TTL по умолчанию.
func NewManager(t testing.TB, opts ...token.Option) *token.Manager {
	t.Helper()

	priv, pub := KeyPEM(t)
	m, err := token.NewFromPEM(priv, pub, token.Config{Issuer: Issuer}, opts...)
	require.NoError(t, err)

	return m
}
