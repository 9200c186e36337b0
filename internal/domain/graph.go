package domain

// Routes of the graph service, appended to the client endpoint.
const (
	RouteIndexDocument = "/index/document/elements"
	RouteExtract       = "/extract"
)

// Document is an opaque document payload passed through verbatim.
type Document map[string]any

// FileIndex is an opaque file index payload passed through verbatim.
type FileIndex map[string]any

// Metadata is an opaque metadata payload passed through verbatim.
type Metadata map[string]any

// GraphHandle identifies one indexed graph on the service side.
type GraphHandle string

// Element is one matched unit of content returned by a query.
type Element map[string]any

// IndexRequest is the body of POST /index/document/elements.
type IndexRequest struct {
	Metadata  Metadata  `json:"metadata"`
	Document  Document  `json:"document"`
	FileIndex FileIndex `json:"file_index"`
}

// IndexResponse is the body returned by the indexing route.
// GraphID is nil when the service omits it.
type IndexResponse struct {
	GraphID *GraphHandle `json:"graph_id"`
}

// ExtractRequest is the body of POST /extract.
// Metadata is omitted when nil; a pointer to an empty map is sent as {}.
type ExtractRequest struct {
	GraphID  GraphHandle `json:"graph_id"`
	Text     string      `json:"text"`
	Metadata *Metadata   `json:"metadata,omitempty"`
}

// ExtractResponse is the body returned by the extract route.
type ExtractResponse struct {
	Elements []Element `json:"elements"`
}
