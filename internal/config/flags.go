package config

import (
	"github.com/spf13/pflag"
)

// Loader binds the configuration flags to a flag set and resolves the final
// Config once the flags are parsed.
type Loader struct {
	fs         *pflag.FlagSet
	configPath string
	flags      Config
}

// NewLoader registers the configuration flags on fs, typically a cobra
// command's PersistentFlags.
func NewLoader(fs *pflag.FlagSet) *Loader {
	l := &Loader{fs: fs}

	var d Config
	d.LoadDefaults()

	fs.StringVarP(&l.configPath, "config", "c", "", "path to JSON config file")
	fs.StringVar(&l.flags.DatabaseDriver, "db-driver", d.DatabaseDriver, "database driver: sqlite or pgx")
	fs.StringVar(&l.flags.DatabaseDSN, "db-dsn", d.DatabaseDSN, "database DSN")
	fs.StringVar(&l.flags.StorageBackend, "storage", d.StorageBackend, "blob storage backend: file or s3")
	fs.StringVar(&l.flags.StorageDir, "storage-dir", d.StorageDir, "directory for file storage")
	fs.StringVar(&l.flags.S3Bucket, "s3-bucket", d.S3Bucket, "S3 bucket")
	fs.StringVar(&l.flags.S3Region, "s3-region", d.S3Region, "S3 region")
	fs.StringVar(&l.flags.S3BaseEndpoint, "s3-endpoint", d.S3BaseEndpoint, "S3-compatible endpoint URL")
	fs.StringVar(&l.flags.S3AccessKey, "s3-access-key", d.S3AccessKey, "S3 access key")
	fs.StringVar(&l.flags.S3SecretKey, "s3-secret-key", d.S3SecretKey, "S3 secret key")
	fs.StringVar(&l.flags.CipherMode, "cipher", d.CipherMode, "recording cipher: aes-ecb or secretbox")
	fs.StringVar(&l.flags.LogLevel, "log-level", d.LogLevel, "log level: debug, info, warn or error")

	return l
}

// Load applies defaults, then the JSON file, then the flags the user set.
func (l *Loader) Load() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, l.configPath); err != nil {
		return nil, err
	}

	changed := func(name string, dst *string, v string) {
		if l.fs.Changed(name) {
			*dst = v
		}
	}
	changed("db-driver", &cfg.DatabaseDriver, l.flags.DatabaseDriver)
	changed("db-dsn", &cfg.DatabaseDSN, l.flags.DatabaseDSN)
	changed("storage", &cfg.StorageBackend, l.flags.StorageBackend)
	changed("storage-dir", &cfg.StorageDir, l.flags.StorageDir)
	changed("s3-bucket", &cfg.S3Bucket, l.flags.S3Bucket)
	changed("s3-region", &cfg.S3Region, l.flags.S3Region)
	changed("s3-endpoint", &cfg.S3BaseEndpoint, l.flags.S3BaseEndpoint)
	changed("s3-access-key", &cfg.S3AccessKey, l.flags.S3AccessKey)
	changed("s3-secret-key", &cfg.S3SecretKey, l.flags.S3SecretKey)
	changed("cipher", &cfg.CipherMode, l.flags.CipherMode)
	changed("log-level", &cfg.LogLevel, l.flags.LogLevel)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
