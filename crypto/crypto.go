// Package crypto manages the host key the SSH transport identifies itself with.
package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"

	"github.com/pkg/errors"
	"github.com/zond/azimuth"

	gossh "golang.org/x/crypto/ssh"
)

const (
	defaultBits = 4096
)

type HostKey struct {
	PrivKeyPath   string
	SSHPubKeyPath string
	// Bits defaults to 4096.
	Bits int
}

// Generate writes a new RSA key pair, the private key as PEM and the public
// key in authorized_keys format.
func (h HostKey) Generate() error {
	bits := h.Bits
	if bits == 0 {
		bits = defaultBits
	}
	privateKey, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return azimuth.WithStack(err)
	}

	keyPEM := pem.EncodeToMemory(
		&pem.Block{
			Type:  "RSA PRIVATE KEY",
			Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
		})
	if err := os.WriteFile(h.PrivKeyPath, keyPEM, 0600); err != nil {
		return azimuth.WithStack(err)
	}

	pub, err := gossh.NewPublicKey(&privateKey.PublicKey)
	if err != nil {
		return azimuth.WithStack(err)
	}
	if err := os.WriteFile(h.SSHPubKeyPath, gossh.MarshalAuthorizedKey(pub), 0600); err != nil {
		return azimuth.WithStack(err)
	}

	return nil
}

// Load returns the private key PEM and a signer for it, generating the pair
// first if the private key is missing.
func (h HostKey) Load() ([]byte, gossh.Signer, error) {
	if _, err := os.Stat(h.PrivKeyPath); errors.Is(err, os.ErrNotExist) {
		if err := h.Generate(); err != nil {
			return nil, nil, err
		}
	} else if err != nil {
		return nil, nil, azimuth.WithStack(err)
	}
	pemBytes, err := os.ReadFile(h.PrivKeyPath)
	if err != nil {
		return nil, nil, azimuth.WithStack(err)
	}
	signer, err := gossh.ParsePrivateKey(pemBytes)
	if err != nil {
		return nil, nil, azimuth.WithStack(err)
	}
	return pemBytes, signer, nil
}
