package talkingdb

import (
	"context"
	"time"

	"github.com/kailas-cloud/talkingdb/internal/domain"
)

// Worker issues requests through one pooled connection. Use one Worker per
// goroutine to keep connection state apart.
type Worker struct {
	id     string
	client *Client
}

// ID returns the worker id.
func (w *Worker) ID() string { return w.id }

// IndexDocument sends the document, its file index and metadata to the
// indexing route. It returns the graph handle and true when the service
// reports one, or "" and false (with a nil error) when it omits it.
func (w *Worker) IndexDocument(
	ctx context.Context, document Document, fileIndex FileIndex, metadata Metadata,
) (handle GraphHandle, ok bool, err error) {
	start := time.Now()
	defer func() { w.client.obs.observe("index_document", w.id, start, err) }()

	req := domain.IndexRequest{
		Metadata:  metadata,
		Document:  document,
		FileIndex: fileIndex,
	}
	var resp domain.IndexResponse
	if err = w.send(ctx, domain.RouteIndexDocument, req, &resp); err != nil {
		return "", false, err
	}
	if resp.GraphID == nil {
		return "", false, nil
	}
	return *resp.GraphID, true, nil
}

// MatchNode asks each graph, in order, for elements matching query and
// returns all elements concatenated in that order. metadata is sent only
// when non-nil.
//
// Graphs are queried one after another on this worker's connection. The
// first failure aborts the call: earlier results are dropped and the
// failure is returned.
func (w *Worker) MatchNode(
	ctx context.Context, graphs []GraphHandle, query string, metadata Metadata,
) (elements []Element, err error) {
	start := time.Now()
	defer func() { w.client.obs.observe("match_node", w.id, start, err) }()

	var md *Metadata
	if metadata != nil {
		md = &metadata
	}

	elements = []Element{}
	for _, g := range graphs {
		req := domain.ExtractRequest{GraphID: g, Text: query, Metadata: md}
		var resp domain.ExtractResponse
		if err = w.send(ctx, domain.RouteExtract, req, &resp); err != nil {
			return nil, err
		}
		elements = append(elements, resp.Elements...)
	}
	return elements, nil
}

func (w *Worker) send(ctx context.Context, route string, payload, out any) error {
	return w.client.exec.Send(ctx, w.id, route, w.client.url(route), payload, out)
}
