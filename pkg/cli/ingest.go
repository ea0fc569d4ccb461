package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/edmon-lab/mentor/pkg/cli/config"
	"github.com/edmon-lab/mentor/pkg/domain/model"
	"github.com/edmon-lab/mentor/pkg/usecase"
	"github.com/edmon-lab/mentor/pkg/utils/errutil"
	"github.com/edmon-lab/mentor/pkg/utils/logging"
	"github.com/edmon-lab/mentor/pkg/utils/safe"
	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdIngest() *cli.Command {
	var districtID string
	var docID string
	var docTitle string
	var docVersion int
	var sourceURL string
	var repoCfg config.Repository
	var geminiCfg config.Gemini
	var storageCfg config.Storage
	var districtCfg config.DistrictFile

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "district-id",
			Usage:       "District owning the documents",
			Required:    true,
			Sources:     cli.EnvVars("MENTOR_DISTRICT_ID"),
			Destination: &districtID,
		},
		&cli.StringFlag{
			Name:        "doc-id",
			Usage:       "Document ID (defaults to the file name; requires a single file)",
			Destination: &docID,
		},
		&cli.StringFlag{
			Name:        "doc-title",
			Usage:       "Document title (defaults to the file name)",
			Destination: &docTitle,
		},
		&cli.IntFlag{
			Name:        "doc-version",
			Usage:       "Document version; earlier versions are replaced wholesale",
			Value:       1,
			Destination: &docVersion,
		},
		&cli.StringFlag{
			Name:        "source-url",
			Usage:       "Source URL of the document",
			Destination: &sourceURL,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, storageCfg.Flags()...)
	flags = append(flags, districtCfg.Flags()...)

	return &cli.Command{
		Name:      "ingest",
		Aliases:   []string{"i"},
		Usage:     "Chunk, embed and index parsed district documents",
		ArgsUsage: "<file>...",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			paths := c.Args().Slice()
			if len(paths) == 0 {
				return goerr.New("at least one document file is required")
			}
			if docID != "" && len(paths) > 1 {
				return goerr.New("doc-id can only be used with a single file")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer safe.Close(ctx, repo)

			llmClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return err
			}
			archive, err := storageCfg.Configure(ctx)
			if err != nil {
				return err
			}
			districtConfig, err := districtCfg.Configure()
			if err != nil {
				return err
			}

			var opts []usecase.Option
			if llmClient != nil {
				opts = append(opts, usecase.WithLLMClient(llmClient))
			} else {
				logger.Warn("No Gemini project configured, indexing with zero embeddings")
			}
			if archive != nil {
				defer safe.Close(ctx, archive)
				opts = append(opts, usecase.WithArchive(archive))
			}
			if districtConfig != nil {
				opts = append(opts, districtConfig.Options()...)
			}

			uc, err := usecase.New(repo, opts...)
			if err != nil {
				return err
			}

			var failed int
			for _, path := range paths {
				doc, err := loadDocument(path, districtID, docID, docTitle, docVersion, sourceURL)
				if err != nil {
					return err
				}

				result, err := uc.Ingest(ctx, doc)
				if err != nil {
					failed++
					_ = errutil.Handle(ctx, err, "failed to ingest document")
					color.Red("failed   %s: %s", doc.ID, err.Error())
					if status, ok := uc.IngestStatus(doc.ID); ok {
						color.New(color.Faint).Printf("         phase=%s error=%s\n", status.Phase, status.Error)
					}
					continue
				}

				fmt.Printf("%s %s v%d: %d chunks (%s)",
					color.GreenString("ingested"), result.DocumentID, result.Version,
					result.ChunkCount, result.Strategy)
				if result.Archived {
					fmt.Print(", archived")
				}
				fmt.Println()
			}

			if failed > 0 {
				return goerr.New("some documents failed to ingest",
					goerr.V("failed", failed), goerr.V("total", len(paths)))
			}
			return nil
		},
	}
}

// loadDocument reads one plain-text file into a ParsedDocument
func loadDocument(path, districtID, docID, title string, version int, sourceURL string) (*model.ParsedDocument, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read document file", goerr.V("path", path))
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if docID == "" {
		docID = base
	}
	if title == "" {
		title = base
	}

	return &model.ParsedDocument{
		ID:         model.DocumentID(docID),
		DistrictID: districtID,
		Version:    version,
		Title:      title,
		SourceURL:  sourceURL,
		Content:    string(data),
		ParsedAt:   time.Now().UTC(),
	}, nil
}
