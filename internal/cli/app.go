package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/dmitrijs2005/voicevault/internal/blobstore"
	"github.com/dmitrijs2005/voicevault/internal/config"
	"github.com/dmitrijs2005/voicevault/internal/cryptox"
	"github.com/dmitrijs2005/voicevault/internal/dbx"
	"github.com/dmitrijs2005/voicevault/internal/logging"
	"github.com/dmitrijs2005/voicevault/internal/repositories/repomanager"
	"github.com/dmitrijs2005/voicevault/internal/services"
)

// App holds the components wired from one Config. It is built once per
// command invocation and closed when the command returns.
type App struct {
	config        *config.Config
	db            *sql.DB
	log           logging.Logger
	keys          *services.KeyStore
	lifecycle     *services.Lifecycle
	directory     *services.SQLUserDirectory
	sharing       *services.Sharing
	notifications *services.Notifications

	stdout io.Writer
	stderr io.Writer
}

func NewApp(ctx context.Context, c *config.Config, stdout, stderr io.Writer) (*App, error) {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	log := logging.NewTextLogger(stderr, level)

	dialect, err := dbx.ParseDialect(c.DatabaseDriver)
	if err != nil {
		return nil, err
	}

	cipher, err := cryptox.NewCipher(c.CipherMode)
	if err != nil {
		return nil, err
	}

	blobs, err := newBlobStore(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("failed to open blob storage: %w", err)
	}

	db, m, err := repomanager.Open(ctx, dialect, c.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	keys := services.NewKeyStore(db, m, log)
	lifecycle := services.NewLifecycle(db, m, blobs, cipher, keys, log)
	directory := services.NewSQLUserDirectory(db, m)
	sharing := services.NewSharing(db, m, blobs, cipher, keys, lifecycle, directory, services.NewLogSink(log), log)

	log.Debug(ctx, "app initialised", "driver", c.DatabaseDriver, "storage", c.StorageBackend, "cipher", c.CipherMode)

	return &App{
		config:        c,
		db:            db,
		log:           log,
		keys:          keys,
		lifecycle:     lifecycle,
		directory:     directory,
		sharing:       sharing,
		notifications: services.NewNotifications(db, m),
		stdout:        stdout,
		stderr:        stderr,
	}, nil
}

func newBlobStore(ctx context.Context, c *config.Config) (blobstore.Store, error) {
	switch c.StorageBackend {
	case config.StorageS3:
		return blobstore.NewS3Store(ctx, blobstore.S3Options{
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
		})
	default:
		return blobstore.NewFileStore(c.StorageDir)
	}
}

func (a *App) Close() error {
	return a.db.Close()
}
