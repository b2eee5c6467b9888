package webpush

import (
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"strings"

	"providerdash/internal/domain"
)

// DecodeVAPIDKey converts a base64url application server key (padding
// optional) into its raw bytes. A malformed key is a fatal configuration
// error; the notification subsystem cannot run without it.
func DecodeVAPIDKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, domain.ConfigError{Name: "vapid_public_key missing"}
	}
	if pad := len(s) % 4; pad != 0 {
		s += strings.Repeat("=", 4-pad)
	}
	s = strings.ReplaceAll(s, "-", "+")
	s = strings.ReplaceAll(s, "_", "/")

	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, domain.ConfigError{Name: "vapid_public_key malformed", Err: err}
	}
	return raw, nil
}

// UAKeys is the user-agent half of a push subscription: the P-256 key pair
// the push service encrypts against plus the 16-byte auth secret.
type UAKeys struct {
	PrivateKey *ecdh.PrivateKey
	AuthSecret []byte
}

func GenerateUAKeys() (*UAKeys, error) {
	priv, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	auth := make([]byte, 16)
	if _, err := rand.Read(auth); err != nil {
		return nil, err
	}
	return &UAKeys{PrivateKey: priv, AuthSecret: auth}, nil
}

// P256dh returns the uncompressed public point, base64url without padding,
// as carried in the subscription descriptor.
func (k *UAKeys) P256dh() string {
	return base64.RawURLEncoding.EncodeToString(k.PrivateKey.PublicKey().Bytes())
}

// Auth returns the auth secret, base64url without padding.
func (k *UAKeys) Auth() string {
	return base64.RawURLEncoding.EncodeToString(k.AuthSecret)
}

// StoredUAKeys is the JSON persistence form of UAKeys.
type StoredUAKeys struct {
	PrivateKey string `json:"privateKey"`
	AuthSecret string `json:"authSecret"`
}

func (k *UAKeys) Export() StoredUAKeys {
	return StoredUAKeys{
		PrivateKey: base64.RawURLEncoding.EncodeToString(k.PrivateKey.Bytes()),
		AuthSecret: base64.RawURLEncoding.EncodeToString(k.AuthSecret),
	}
}

func ImportUAKeys(s StoredUAKeys) (*UAKeys, error) {
	privRaw, err := base64.RawURLEncoding.DecodeString(s.PrivateKey)
	if err != nil {
		return nil, err
	}
	priv, err := ecdh.P256().NewPrivateKey(privRaw)
	if err != nil {
		return nil, err
	}
	auth, err := base64.RawURLEncoding.DecodeString(s.AuthSecret)
	if err != nil {
		return nil, err
	}
	return &UAKeys{PrivateKey: priv, AuthSecret: auth}, nil
}
