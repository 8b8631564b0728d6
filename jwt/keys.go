package jwt

import (
	"crypto/rsa"
	"fmt"

	gjwt "github.com/golang-jwt/jwt/v5"
)

// MinRSAKeyBits is the smallest modulus accepted for signing or verification.
const MinRSAKeyBits = 2048

// ParsePrivateKeyPEM parses a PKCS#1 ("RSA PRIVATE KEY") or PKCS#8
// ("PRIVATE KEY") PEM block holding an RSA key.
func ParsePrivateKeyPEM(pemBytes []byte) (*rsa.PrivateKey, error) {
	if len(pemBytes) == 0 {
		return nil, fmt.Errorf("%w: empty private key", ErrInvalidKey)
	}
	key, err := gjwt.ParseRSAPrivateKeyFromPEM(pemBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: parse rsa private key: %v", ErrInvalidKey, err)
	}
	if err := checkPrivateKey(key); err != nil {
		return nil, err
	}
	return key, nil
}

// ParsePublicKeyPEM parses a PKIX ("PUBLIC KEY"), PKCS#1 ("RSA PUBLIC KEY")
// or certificate PEM block holding an RSA public key.
func ParsePublicKeyPEM(pemBytes []byte) (*rsa.PublicKey, error) {
	if len(pemBytes) == 0 {
		return nil, fmt.Errorf("%w: empty public key", ErrInvalidKey)
	}
	key, err := gjwt.ParseRSAPublicKeyFromPEM(pemBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: parse rsa public key: %v", ErrInvalidKey, err)
	}
	if err := checkPublicKey(key); err != nil {
		return nil, err
	}
	return key, nil
}

func checkPrivateKey(key *rsa.PrivateKey) error {
	if key == nil {
		return fmt.Errorf("%w: nil private key", ErrInvalidKey)
	}
	if err := checkPublicKey(&key.PublicKey); err != nil {
		return err
	}
	if err := key.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return nil
}

func checkPublicKey(key *rsa.PublicKey) error {
	if key == nil || key.N == nil {
		return fmt.Errorf("%w: nil public key", ErrInvalidKey)
	}
	if bits := key.N.BitLen(); bits < MinRSAKeyBits {
		return fmt.Errorf("%w: rsa modulus is %d bits, need at least %d", ErrInvalidKey, bits, MinRSAKeyBits)
	}
	return nil
}
