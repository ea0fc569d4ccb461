package config

import (
	"context"

	"github.com/edmon-lab/mentor/pkg/service/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Storage holds CLI flags for the document archive bucket
type Storage struct {
	bucket string
}

// Flags returns CLI flags for archive configuration
func (x *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "archive-bucket",
			Usage:       "Cloud Storage bucket archiving parsed document text at ingest",
			Category:    "Storage",
			Sources:     cli.EnvVars("MENTOR_ARCHIVE_BUCKET"),
			Destination: &x.bucket,
		},
	}
}

// Configure builds the document archive. Returns nil when no bucket is
// configured; ingestion then skips archiving.
func (x *Storage) Configure(ctx context.Context) (*storage.Archive, error) {
	if x.bucket == "" {
		return nil, nil
	}
	archive, err := storage.NewArchive(ctx, x.bucket)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize document archive")
	}
	return archive, nil
}
