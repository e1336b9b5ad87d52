package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "sqlite", c.DatabaseDriver)
	assert.Contains(t, c.DatabaseDSN, "voicevault.db")
	assert.Equal(t, StorageFile, c.StorageBackend)
	assert.Equal(t, "aes-ecb", c.CipherMode)
	assert.Equal(t, "info", c.LogLevel)
	require.NoError(t, c.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "postgres", mutate: func(c *Config) { c.DatabaseDriver = "pgx"; c.DatabaseDSN = "postgres://localhost/vv" }},
		{name: "unknown driver", mutate: func(c *Config) { c.DatabaseDriver = "mysql" }, wantErr: true},
		{name: "empty dsn", mutate: func(c *Config) { c.DatabaseDSN = "" }, wantErr: true},
		{name: "s3 without bucket", mutate: func(c *Config) { c.StorageBackend = StorageS3 }, wantErr: true},
		{name: "s3 with bucket", mutate: func(c *Config) { c.StorageBackend = StorageS3; c.S3Bucket = "voices" }},
		{name: "file without dir", mutate: func(c *Config) { c.StorageDir = "" }, wantErr: true},
		{name: "unknown storage", mutate: func(c *Config) { c.StorageBackend = "ftp" }, wantErr: true},
		{name: "secretbox", mutate: func(c *Config) { c.CipherMode = "secretbox" }},
		{name: "unknown cipher", mutate: func(c *Config) { c.CipherMode = "rot13" }, wantErr: true},
		{name: "unknown log level", mutate: func(c *Config) { c.LogLevel = "chatty" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tt.mutate(&c)
			if tt.wantErr {
				require.Error(t, c.Validate())
			} else {
				require.NoError(t, c.Validate())
			}
		})
	}
}
