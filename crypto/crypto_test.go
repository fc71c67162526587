package crypto

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	gossh "golang.org/x/crypto/ssh"
)

func TestLoadGeneratesOnce(t *testing.T) {
	dir := t.TempDir()
	h := HostKey{
		PrivKeyPath:   filepath.Join(dir, "private.pem"),
		SSHPubKeyPath: filepath.Join(dir, "public.pub"),
		Bits:          1024,
	}
	first, signer, err := h.Load()
	if err != nil {
		t.Fatal(err)
	}
	pubBytes, err := os.ReadFile(h.SSHPubKeyPath)
	if err != nil {
		t.Fatal(err)
	}
	pub, _, _, _, err := gossh.ParseAuthorizedKey(pubBytes)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(pub.Marshal(), signer.PublicKey().Marshal()) {
		t.Errorf("public key file doesn't match the private key")
	}
	second, _, err := h.Load()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("second Load generated a new key")
	}
}

func TestLoadBrokenKey(t *testing.T) {
	dir := t.TempDir()
	h := HostKey{PrivKeyPath: filepath.Join(dir, "private.pem")}
	if err := os.WriteFile(h.PrivKeyPath, []byte("garbage"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := h.Load(); err == nil {
		t.Errorf("loading garbage succeeded")
	}
}
