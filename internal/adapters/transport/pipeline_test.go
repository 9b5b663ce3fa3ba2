package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPipeline(t *testing.T) (*Pipeline, *bytes.Buffer) {
	t.Helper()

	session := NewSession()
	sink := NewSink()
	output := &bytes.Buffer{}
	sink.Set(output)

	return NewPipeline(session, http.DefaultClient, sink), output
}

func jsonHandler(t *testing.T, payload any) http.HandlerFunc {
	t.Helper()

	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(payload))
	}
}

func TestGetRegularShapeReturnsBodyUnchanged(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(jsonHandler(t, map[string]any{"symbol": "AAPL"}))
	defer server.Close()

	pipeline, _ := newTestPipeline(t)
	data := pipeline.Get(context.Background(), server.URL, ShapeRegular, nil)

	body, ok := data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "AAPL", body["symbol"])
}

func TestGetResultsShapeUnwrapsResultsList(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(jsonHandler(t, map[string]any{
		"results": []any{map[string]any{"id": "1"}, map[string]any{"id": "2"}},
	}))
	defer server.Close()

	pipeline, _ := newTestPipeline(t)
	data := pipeline.Get(context.Background(), server.URL, ShapeResults, nil)

	results, ok := data.([]any)
	require.True(t, ok)
	assert.Len(t, results, 2)
}

func TestGetResultsShapeMissingResultsYieldsSentinel(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(jsonHandler(t, map[string]any{"detail": "nothing here"}))
	defer server.Close()

	pipeline, _ := newTestPipeline(t)
	data := pipeline.Get(context.Background(), server.URL, ShapeResults, nil)

	assert.Equal(t, []any{nil}, data)
}

func TestGetIndexZeroShapeReturnsFirstResult(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(jsonHandler(t, map[string]any{
		"results": []any{map[string]any{"id": "first"}, map[string]any{"id": "second"}},
	}))
	defer server.Close()

	pipeline, _ := newTestPipeline(t)
	data := pipeline.Get(context.Background(), server.URL, ShapeIndexZero, nil)

	entry, ok := data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "first", entry["id"])
}

func TestGetIndexZeroShapeEmptyResultsReturnsEmptyMap(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(jsonHandler(t, map[string]any{"results": []any{}}))
	defer server.Close()

	pipeline, _ := newTestPipeline(t)
	data := pipeline.Get(context.Background(), server.URL, ShapeIndexZero, nil)

	assert.Equal(t, map[string]any{}, data)
}

func TestGetPaginationFollowsNextCursor(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/page1", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []any{map[string]any{"id": "1"}},
			"next":    server.URL + "/page2",
		})
	})
	mux.HandleFunc("/page2", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []any{map[string]any{"id": "2"}},
			"next":    nil,
		})
	})

	pipeline, _ := newTestPipeline(t)
	data := pipeline.Get(context.Background(), server.URL+"/page1", ShapePagination, nil)

	results, ok := data.([]any)
	require.True(t, ok)
	require.Len(t, results, 2)
	assert.Equal(t, "1", results[0].(map[string]any)["id"])
	assert.Equal(t, "2", results[1].(map[string]any)["id"])
}

func TestGetPaginationKeepsPartialResultsWhenContinuationFails(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/page1", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []any{map[string]any{"id": "1"}},
			"next":    server.URL + "/page2",
		})
	})
	mux.HandleFunc("/page2", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	pipeline, output := newTestPipeline(t)
	data := pipeline.Get(context.Background(), server.URL+"/page1", ShapePagination, nil)

	results, ok := data.([]any)
	require.True(t, ok)
	assert.Len(t, results, 1)
	assert.Contains(t, output.String(), "Additional pages exist but could not be loaded.")
}

func TestGetSwallowsHTTPErrorAndLogsToSink(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	pipeline, output := newTestPipeline(t)

	assert.Nil(t, pipeline.Get(context.Background(), server.URL, ShapeRegular, nil))
	assert.Equal(t, []any{nil}, pipeline.Get(context.Background(), server.URL, ShapeResults, nil))
	assert.Contains(t, output.String(), "Error in request")
}

func TestGetSendsSessionHeadersAndQuery(t *testing.T) {
	t.Parallel()

	var gotAuth, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get(HeaderAuthorization)
		gotQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode(map[string]any{})
	}))
	defer server.Close()

	pipeline, _ := newTestPipeline(t)
	pipeline.Session().SetHeader(HeaderAuthorization, "Bearer token-1")

	pipeline.Get(context.Background(), server.URL, ShapeRegular, url.Values{"nonzero": {"true"}})

	assert.Equal(t, "Bearer token-1", gotAuth)
	assert.Equal(t, "nonzero=true", gotQuery)
}

func TestPostJSONSwapsContentTypeForOneCallOnly(t *testing.T) {
	t.Parallel()

	var contentTypes []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentTypes = append(contentTypes, r.Header.Get(HeaderContentType))
		_ = json.NewEncoder(w).Encode(map[string]any{"state": "queued"})
	}))
	defer server.Close()

	pipeline, _ := newTestPipeline(t)

	data := pipeline.PostJSON(context.Background(), server.URL, map[string]any{"symbol": "AAPL"})
	require.NotNil(t, data)

	pipeline.Post(context.Background(), server.URL, url.Values{"response": {"123456"}})

	require.Len(t, contentTypes, 2)
	assert.Equal(t, contentTypeJSON, contentTypes[0])
	assert.Equal(t, contentTypeForm, contentTypes[1])
	assert.Equal(t, contentTypeForm, pipeline.Session().Header(HeaderContentType))
}

func TestPostJSONRestoresContentTypeOnFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	pipeline, output := newTestPipeline(t)

	assert.Nil(t, pipeline.PostJSON(context.Background(), server.URL, map[string]any{}))
	assert.Equal(t, contentTypeForm, pipeline.Session().Header(HeaderContentType))
	assert.Contains(t, output.String(), "Error in request_post")
}

func TestPostFormExposesStatusAndBodyOnErrorStatuses(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{"detail": "invalid grant"})
	}))
	defer server.Close()

	pipeline, _ := newTestPipeline(t)
	status, body, err := pipeline.PostForm(context.Background(), server.URL, url.Values{})

	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, body)
	assert.Equal(t, "invalid grant", body["detail"])
}

func TestProbeReportsRejectedStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	pipeline, _ := newTestPipeline(t)
	err := pipeline.Probe(context.Background(), server.URL, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), fmt.Sprintf("status %d", http.StatusUnauthorized))
}

func TestProbeAcceptsOKStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(jsonHandler(t, map[string]any{"results": []any{}}))
	defer server.Close()

	pipeline, _ := newTestPipeline(t)
	assert.NoError(t, pipeline.Probe(context.Background(), server.URL, nil))
}

func TestDeleteSwallowsErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	pipeline, output := newTestPipeline(t)

	assert.Nil(t, pipeline.Delete(context.Background(), server.URL))
	assert.Contains(t, output.String(), "Error in request_delete")
}
