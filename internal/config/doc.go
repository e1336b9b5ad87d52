// Package config loads runtime configuration for the voicevault CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with --config / -c.
//  3. Command-line flags that were set explicitly.
//
// # JSON schema
//
//	{
//	  "database_driver": "sqlite",
//	  "database_dsn": "file:voicevault.db",
//	  "storage_backend": "file",
//	  "storage_dir": "blobs",
//	  "s3_bucket": "voices",
//	  "s3_region": "us-east-1",
//	  "s3_base_endpoint": "http://localhost:9000",
//	  "s3_access_key": "minio",
//	  "s3_secret_key": "minio123",
//	  "cipher_mode": "aes-ecb",
//	  "log_level": "info"
//	}
//
// Fields absent from the file keep their default.
package config
