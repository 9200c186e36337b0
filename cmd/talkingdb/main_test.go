package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/talkingdb"
	"github.com/kailas-cloud/talkingdb/internal/domain"
	"github.com/kailas-cloud/talkingdb/internal/fakeserver"
)

// run executes the CLI against the given endpoint with no config file.
func run(t *testing.T, endpoint string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(&out)
	base := []string{"--env", "test", "--log-level", "error"}
	if endpoint != "" {
		base = append(base, "--endpoint", endpoint)
	}
	root.SetArgs(append(args, base...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "in.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestIndexCmd_PrintsGraphID(t *testing.T) {
	fs := fakeserver.New()
	srv := fs.Start()
	defer srv.Close()

	doc := writeJSON(t, map[string]any{"title": "lease"})
	md := writeJSON(t, map[string]any{"tenant": "acme"})

	out, err := run(t, srv.URL, "index", "--document", doc, "--metadata", md)

	require.NoError(t, err)
	assert.Equal(t, "g1\n", out)

	reqs := fs.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, map[string]any{"title": "lease"}, reqs[0].Body["document"])
	assert.Equal(t, map[string]any{}, reqs[0].Body["file_index"])
	assert.Equal(t, map[string]any{"tenant": "acme"}, reqs[0].Body["metadata"])
}

func TestIndexCmd_NoGraphID(t *testing.T) {
	fs := fakeserver.New()
	fs.SetIndexBody(`{}`)
	srv := fs.Start()
	defer srv.Close()

	_, err := run(t, srv.URL, "index", "--document", writeJSON(t, map[string]any{}))

	assert.ErrorIs(t, err, errNoGraphID)
}

func TestIndexCmd_RequiresDocument(t *testing.T) {
	_, err := run(t, "http://localhost:1", "index")
	assert.Error(t, err)
}

func TestIndexCmd_RejectsNonObject(t *testing.T) {
	_, err := run(t, "http://localhost:1", "index", "--document", writeJSON(t, []int{1, 2}))
	assert.Error(t, err)
}

func TestMatchCmd_PrintsElementsInOrder(t *testing.T) {
	fs := fakeserver.New()
	fs.AddGraph("g1", domain.Element{"id": 1})
	fs.AddGraph("g2", domain.Element{"id": 2})
	fs.AddGraph("g3", domain.Element{"id": 3})
	srv := fs.Start()
	defer srv.Close()

	out, err := run(t, srv.URL, "match",
		"--graph", "g1", "--graph", "g2", "--graph", "g3",
		"--query", "rent", "--workers", "2")
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []map[string]any{{"id": 1.0}, {"id": 2.0}, {"id": 3.0}}, got)
}

func TestMatchCmd_FailureAborts(t *testing.T) {
	fs := fakeserver.New()
	fs.AddGraph("g1", domain.Element{"id": 1})
	srv := fs.Start()
	defer srv.Close()

	out, err := run(t, srv.URL, "match", "--graph", "g1", "--graph", "missing", "--query", "rent")

	assert.ErrorIs(t, err, talkingdb.ErrClient)
	assert.Empty(t, out)
}

func TestMatchCmd_RequiresGraph(t *testing.T) {
	_, err := run(t, "http://localhost:1", "match", "--query", "rent")
	assert.Error(t, err)
}

func TestRoot_RequiresEndpoint(t *testing.T) {
	_, err := run(t, "", "match", "--graph", "g1", "--query", "rent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "endpoint required")
}

func TestRoot_ConfigFile(t *testing.T) {
	fs := fakeserver.New()
	fs.AddGraph("g1", domain.Element{"id": 1})
	fs.FailNext(domain.RouteExtract, 1, http.StatusServiceUnavailable, `{}`)
	srv := fs.Start()
	defer srv.Close()

	cfgPath := filepath.Join(t.TempDir(), "cli.yaml")
	cfg := "client:\n  endpoint: " + srv.URL + "\nretry:\n  base_delay_ms: 1\n  max_delay_ms: 2\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))

	var out bytes.Buffer
	root := newRootCmd(&out)
	root.SetArgs([]string{"match", "--graph", "g1", "--query", "q", "--config", cfgPath, "--log-level", "error"})
	require.NoError(t, root.ExecuteContext(context.Background()))

	assert.Equal(t, 2, fs.Count(domain.RouteExtract))
	assert.True(t, strings.Contains(out.String(), `"id": 1`))
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "talkingdb dev"))
}
