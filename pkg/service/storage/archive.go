package storage

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"github.com/edmon-lab/mentor/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

// Archive keeps a copy of each parsed document version in Cloud Storage so
// a re-ingest or an audit can recover exactly what was indexed.
type Archive struct {
	client *storage.Client
	bucket string
}

// NewArchive creates an Archive writing to the given bucket
func NewArchive(ctx context.Context, bucket string) (*Archive, error) {
	if bucket == "" {
		return nil, goerr.New("archive bucket name is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client", goerr.V("bucket", bucket))
	}

	return &Archive{
		client: client,
		bucket: bucket,
	}, nil
}

func objectName(districtID string, docID model.DocumentID, version int) string {
	return fmt.Sprintf("districts/%s/documents/%s/%d.txt", districtID, docID, version)
}

// Store writes the parsed text of one document version
func (a *Archive) Store(ctx context.Context, doc *model.ParsedDocument) error {
	name := objectName(doc.DistrictID, doc.ID, doc.Version)
	w := a.client.Bucket(a.bucket).Object(name).NewWriter(ctx)
	w.ContentType = "text/plain; charset=utf-8"

	if _, err := io.WriteString(w, doc.Content); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to write archived document", goerr.V("object", name))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize archived document", goerr.V("object", name))
	}
	return nil
}

// Load reads back the parsed text of one document version
func (a *Archive) Load(ctx context.Context, districtID string, docID model.DocumentID, version int) (string, error) {
	name := objectName(districtID, docID, version)
	r, err := a.client.Bucket(a.bucket).Object(name).NewReader(ctx)
	if err != nil {
		return "", goerr.Wrap(err, "failed to open archived document", goerr.V("object", name))
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read archived document", goerr.V("object", name))
	}
	return string(data), nil
}

// Close releases the underlying client
func (a *Archive) Close() error {
	if a.client != nil {
		return a.client.Close()
	}
	return nil
}
