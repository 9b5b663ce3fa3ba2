package transport

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newFilterPipeline() (*Pipeline, *bytes.Buffer) {
	sink := NewSink()
	output := &bytes.Buffer{}
	sink.Set(output)
	return NewPipeline(NewSession(), http.DefaultClient, sink), output
}

func TestFilterEmptyFieldPassesDataThrough(t *testing.T) {
	t.Parallel()

	pipeline, _ := newFilterPipeline()
	data := map[string]any{"symbol": "AAPL"}

	assert.Equal(t, data, pipeline.Filter(data, ""))
}

func TestFilterNilPassesThrough(t *testing.T) {
	t.Parallel()

	pipeline, _ := newFilterPipeline()
	assert.Nil(t, pipeline.Filter(nil, "symbol"))
}

func TestFilterEmptySentinelBecomesEmptyList(t *testing.T) {
	t.Parallel()

	pipeline, _ := newFilterPipeline()
	assert.Equal(t, []any{}, pipeline.Filter([]any{nil}, "symbol"))
}

func TestFilterProjectsFieldFromEveryListElement(t *testing.T) {
	t.Parallel()

	pipeline, _ := newFilterPipeline()
	data := []any{
		map[string]any{"symbol": "AAPL", "price": "150.00"},
		map[string]any{"symbol": "MSFT", "price": "300.00"},
	}

	assert.Equal(t, []any{"AAPL", "MSFT"}, pipeline.Filter(data, "symbol"))
}

func TestFilterMissingListFieldLogsAndReturnsEmptyList(t *testing.T) {
	t.Parallel()

	pipeline, output := newFilterPipeline()
	data := []any{map[string]any{"symbol": "AAPL"}}

	assert.Equal(t, []any{}, pipeline.Filter(data, "volume"))
	assert.Contains(t, output.String(), "'volume' is not a key in the dictionary.")
}

func TestFilterMapFieldLookup(t *testing.T) {
	t.Parallel()

	pipeline, _ := newFilterPipeline()
	data := map[string]any{"symbol": "AAPL", "price": "150.00"}

	assert.Equal(t, "150.00", pipeline.Filter(data, "price"))
}

func TestFilterMissingMapFieldLogsAndReturnsNil(t *testing.T) {
	t.Parallel()

	pipeline, output := newFilterPipeline()
	data := map[string]any{"symbol": "AAPL"}

	assert.Nil(t, pipeline.Filter(data, "volume"))
	assert.Contains(t, output.String(), "'volume' is not a key in the dictionary.")
}

func TestFilterScalarDataReturnsUnchanged(t *testing.T) {
	t.Parallel()

	pipeline, _ := newFilterPipeline()
	assert.Equal(t, "AAPL", pipeline.Filter("AAPL", "symbol"))
}
