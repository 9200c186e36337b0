package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/talkingdb"
	logpkg "github.com/kailas-cloud/talkingdb/internal/logger"
)

var errNoGraphID = errors.New("service accepted the document but returned no graph id")

func newIndexCmd(a *app) *cobra.Command {
	var documentPath, fileIndexPath, metadataPath string

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Submit a document for indexing and print its graph id",
		Long: `Submit a document for indexing.

The document, file index and metadata are JSON objects read from files
("-" reads stdin) and sent verbatim. The graph id returned by the service
is printed on stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := readJSONObject(documentPath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			fileIndex, err := readJSONObject(fileIndexPath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			metadata, err := readJSONObject(metadataPath, cmd.InOrStdin())
			if err != nil {
				return err
			}

			graph, ok, err := a.client.IndexDocument(cmd.Context(),
				talkingdb.Document(doc),
				talkingdb.FileIndex(fileIndex),
				talkingdb.Metadata(metadata),
			)
			if err != nil {
				return fmt.Errorf("index document: %w", err)
			}
			if !ok {
				return errNoGraphID
			}

			logpkg.FromContext(cmd.Context()).Debug("document indexed", zap.String("graph_id", string(graph)))
			_, err = fmt.Fprintln(a.out, graph)
			return err
		},
	}

	cmd.Flags().StringVar(&documentPath, "document", "", "JSON file with the document (required)")
	cmd.Flags().StringVar(&fileIndexPath, "file-index", "", "JSON file with the file index")
	cmd.Flags().StringVar(&metadataPath, "metadata", "", "JSON file with metadata")
	_ = cmd.MarkFlagRequired("document")

	return cmd
}
