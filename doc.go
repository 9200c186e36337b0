// Package talkingdb provides a Go client for the TalkingDB document-graph
// service: documents are submitted for indexing, and the resulting graphs
// are later queried for matching elements.
//
// Every request is a JSON POST with a per-attempt timeout. Connection
// failures, timeouts and 5xx responses are retried with exponential backoff
// and jitter (5 attempts, 1s doubling to 10s by default); 4xx responses and
// malformed bodies fail at once. Failures are *Error values whose Kind tells
// them apart.
//
//	client, _ := talkingdb.New("http://localhost:8000")
//	defer client.Close()
//
//	graph, ok, err := client.IndexDocument(ctx, doc, fileIndex, talkingdb.Metadata{"source": "upload"})
//	elements, err := client.MatchNode(ctx, []talkingdb.GraphHandle{graph}, "termination clause", nil)
//
// # Workers
//
// Each worker id owns one persistent connection. The Client's own
// IndexDocument and MatchNode methods all run as the worker "default", so
// every goroutine calling them shares that single connection. Goroutines
// issuing requests concurrently should each use their own Worker:
//
//	w := client.Worker("ingest-3")
//	graph, ok, err := w.IndexDocument(ctx, doc, fileIndex, meta)
//
// MatchNode queries its graphs sequentially. To fan out in parallel, split
// the handles into disjoint subsets and call MatchNode from several workers.
package talkingdb
