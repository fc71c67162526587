package server

import (
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/zond/azimuth"
	"github.com/zond/azimuth/storage"
)

type Config struct {
	SSHAddr        string `env:"SSH_ADDR"`
	WSAddr         string `env:"WS_ADDR"`
	Dir            string `env:"DIR"`
	Store          string `env:"DB_TYPE"`
	WorldID        string `env:"WORLD_ID"`
	WizardPassword string `env:"WIZARD_PASSWORD"`
	// LogPath is where the server log is rotated, empty means stderr only.
	LogPath string `env:"LOG_PATH"`
	// AuditMaxSizeMB is the size at which the audit log is rotated.
	AuditMaxSizeMB int `env:"AUDIT_MAX_SIZE_MB"`
	// HostKeyBits is the size of a generated host key, zero means 4096.
	HostKeyBits int `env:"HOST_KEY_BITS"`
}

func DefaultConfig() Config {
	return Config{
		SSHAddr:        "127.0.0.1:15000",
		WSAddr:         "127.0.0.1:15080",
		Dir:            filepath.Join(os.Getenv("HOME"), ".azimuth"),
		Store:          storage.SQLiteStore,
		WorldID:        "WORLD1",
		WizardPassword: "wizard",
		AuditMaxSizeMB: 100,
	}
}

// ConfigFromEnv returns the default config overridden by AZIMUTH_* environment
// variables.
func ConfigFromEnv() (Config, error) {
	config := DefaultConfig()
	if err := env.ParseWithOptions(&config, env.Options{Prefix: "AZIMUTH_"}); err != nil {
		return Config{}, azimuth.WithStack(err)
	}
	return config, nil
}

func (c Config) hostKeyPaths() (string, string) {
	return filepath.Join(c.Dir, "private.pem"), filepath.Join(c.Dir, "public.pub")
}

func (c Config) auditPath() string {
	return filepath.Join(c.Dir, "audit.log")
}
