package config

import (
	"fmt"

	"github.com/dmitrijs2005/voicevault/internal/cryptox"
	"github.com/dmitrijs2005/voicevault/internal/dbx"
	"github.com/dmitrijs2005/voicevault/internal/logging"
)

const (
	StorageFile = "file"
	StorageS3   = "s3"
)

// Config holds runtime settings for the voicevault CLI.
type Config struct {
	DatabaseDriver string `json:"database_driver"`
	DatabaseDSN    string `json:"database_dsn"`

	StorageBackend string `json:"storage_backend"`
	StorageDir     string `json:"storage_dir"`

	S3Bucket       string `json:"s3_bucket"`
	S3Region       string `json:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint"`
	S3AccessKey    string `json:"s3_access_key"`
	S3SecretKey    string `json:"s3_secret_key"`

	CipherMode string `json:"cipher_mode"`
	LogLevel   string `json:"log_level"`
}

// LoadDefaults populates c with a local SQLite database and file storage.
func (c *Config) LoadDefaults() {
	c.DatabaseDriver = string(dbx.SQLite)
	c.DatabaseDSN = "file:voicevault.db?_pragma=busy_timeout(5000)"
	c.StorageBackend = StorageFile
	c.StorageDir = "voicevault-blobs"
	c.S3Region = "us-east-1"
	c.CipherMode = cryptox.ModeAESECB
	c.LogLevel = "info"
}

// Validate rejects unknown enum values and incomplete S3 settings.
func (c *Config) Validate() error {
	if _, err := dbx.ParseDialect(c.DatabaseDriver); err != nil {
		return err
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("database dsn is required")
	}

	switch c.StorageBackend {
	case StorageFile:
		if c.StorageDir == "" {
			return fmt.Errorf("storage dir is required for file storage")
		}
	case StorageS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("s3 bucket is required for s3 storage")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}

	if _, err := cryptox.NewCipher(c.CipherMode); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// overlay copies the non-empty fields of o into c.
func (c *Config) overlay(o *Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.DatabaseDriver, o.DatabaseDriver)
	set(&c.DatabaseDSN, o.DatabaseDSN)
	set(&c.StorageBackend, o.StorageBackend)
	set(&c.StorageDir, o.StorageDir)
	set(&c.S3Bucket, o.S3Bucket)
	set(&c.S3Region, o.S3Region)
	set(&c.S3BaseEndpoint, o.S3BaseEndpoint)
	set(&c.S3AccessKey, o.S3AccessKey)
	set(&c.S3SecretKey, o.S3SecretKey)
	set(&c.CipherMode, o.CipherMode)
	set(&c.LogLevel, o.LogLevel)
}
