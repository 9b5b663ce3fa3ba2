package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Shape selects how a response body is normalized before it is handed
// back to the caller.
type Shape int

const (
	// ShapeRegular returns the parsed body unchanged.
	ShapeRegular Shape = iota
	// ShapeResults returns the body's results list.
	ShapeResults
	// ShapeIndexZero returns the first element of the results list.
	ShapeIndexZero
	// ShapePagination returns the results list concatenated across all
	// pages, following each page's next cursor.
	ShapePagination
)

const (
	defaultGetTimeout  = 30 * time.Second
	defaultPostTimeout = 16 * time.Second
	maxResponseBytes   = 4 << 20
)

// Pipeline performs every HTTP call against the brokerage API. Data
// calls never surface HTTP errors: failures are written to the sink and
// a shape-appropriate empty value comes back, so bulk-fetch call sites
// can chain without error plumbing. Auth flows use the raw variants,
// which expose the status code and decoded body.
type Pipeline struct {
	session     *Session
	client      *http.Client
	sink        *Sink
	getTimeout  time.Duration
	postTimeout time.Duration
}

func NewPipeline(session *Session, client *http.Client, sink *Sink) *Pipeline {
	if client == nil {
		client = http.DefaultClient
	}
	if sink == nil {
		sink = NewSink()
	}

	return &Pipeline{
		session:     session,
		client:      client,
		sink:        sink,
		getTimeout:  defaultGetTimeout,
		postTimeout: defaultPostTimeout,
	}
}

func (p *Pipeline) Session() *Session {
	return p.session
}

func (p *Pipeline) Sink() *Sink {
	return p.sink
}

// Get issues a GET and normalizes the response to the requested shape.
func (p *Pipeline) Get(ctx context.Context, rawURL string, shape Shape, query url.Values) any {
	body, err := p.getJSON(ctx, rawURL, query)
	if err != nil {
		p.sink.Printf("Error in request: %v", err)
		return emptyValue(shape)
	}

	switch shape {
	case ShapeResults:
		return resultsOrSentinel(body)
	case ShapeIndexZero:
		return firstResult(body)
	case ShapePagination:
		return p.paginate(ctx, body)
	default:
		return body
	}
}

// Post issues a form-encoded POST and returns the parsed body, or nil
// after logging when the call fails.
func (p *Pipeline) Post(ctx context.Context, rawURL string, form url.Values) any {
	status, body, err := p.PostForm(ctx, rawURL, form)
	if err != nil {
		p.sink.Printf("Error in request_post: %v", err)
		return nil
	}
	if !statusOK(status) {
		p.sink.Printf("Error in request_post: status %d for %s", status, rawURL)
		return nil
	}
	return body
}

// PostJSON issues a POST with a JSON body, swapping the session's
// Content-Type header for the duration of the call and restoring the
// form-encoded default afterward regardless of outcome.
func (p *Pipeline) PostJSON(ctx context.Context, rawURL string, payload any) any {
	encoded, err := json.Marshal(payload)
	if err != nil {
		p.sink.Printf("Error in request_post: encode payload: %v", err)
		return nil
	}

	restore := p.session.swapHeader(HeaderContentType, contentTypeJSON)
	defer restore()

	status, body, err := p.postBody(ctx, rawURL, bytes.NewReader(encoded))
	if err != nil {
		p.sink.Printf("Error in request_post: %v", err)
		return nil
	}
	if !statusOK(status) {
		p.sink.Printf("Error in request_post: status %d for %s", status, rawURL)
		return nil
	}
	return body
}

// Delete issues a DELETE and returns the parsed body (nil for empty
// bodies), or nil after logging when the call fails.
func (p *Pipeline) Delete(ctx context.Context, rawURL string) any {
	requestCtx, cancel := context.WithTimeout(ctx, p.getTimeout)
	defer cancel()

	req, err := p.newRequest(requestCtx, http.MethodDelete, rawURL, nil)
	if err != nil {
		p.sink.Printf("Error in request_delete: %v", err)
		return nil
	}

	status, body, err := p.do(req)
	if err != nil {
		p.sink.Printf("Error in request_delete: %v", err)
		return nil
	}
	if !statusOK(status) {
		p.sink.Printf("Error in request_delete: status %d for %s", status, rawURL)
		return nil
	}
	return body
}

// PostForm is the raw POST used by the auth flows: err reports transport
// failures only, and the body is decoded best-effort whatever the status.
func (p *Pipeline) PostForm(ctx context.Context, rawURL string, form url.Values) (int, map[string]any, error) {
	return p.postBody(ctx, rawURL, strings.NewReader(form.Encode()))
}

// Probe issues an authenticated GET and reports whether it was accepted.
// Used as the liveness check for cached tokens.
func (p *Pipeline) Probe(ctx context.Context, rawURL string, query url.Values) error {
	requestCtx, cancel := context.WithTimeout(ctx, p.getTimeout)
	defer cancel()

	req, err := p.newRequest(requestCtx, http.MethodGet, withQuery(rawURL, query), nil)
	if err != nil {
		return err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))

	if !statusOK(resp.StatusCode) {
		return fmt.Errorf("probe %s: status %d", rawURL, resp.StatusCode)
	}
	return nil
}

func (p *Pipeline) postBody(ctx context.Context, rawURL string, body io.Reader) (int, map[string]any, error) {
	requestCtx, cancel := context.WithTimeout(ctx, p.postTimeout)
	defer cancel()

	req, err := p.newRequest(requestCtx, http.MethodPost, rawURL, body)
	if err != nil {
		return 0, nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var decoded map[string]any
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&decoded); err != nil {
		// Empty or non-JSON bodies are common on error statuses.
		decoded = nil
	}

	return resp.StatusCode, decoded, nil
}

func (p *Pipeline) getJSON(ctx context.Context, rawURL string, query url.Values) (any, error) {
	requestCtx, cancel := context.WithTimeout(ctx, p.getTimeout)
	defer cancel()

	req, err := p.newRequest(requestCtx, http.MethodGet, withQuery(rawURL, query), nil)
	if err != nil {
		return nil, err
	}

	status, body, err := p.do(req)
	if err != nil {
		return nil, err
	}
	if !statusOK(status) {
		return nil, fmt.Errorf("status %d for %s", status, rawURL)
	}
	return body, nil
}

func (p *Pipeline) do(req *http.Request) (int, any, error) {
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var decoded any
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&decoded); err != nil {
		if !errors.Is(err, io.EOF) && statusOK(resp.StatusCode) {
			return resp.StatusCode, nil, fmt.Errorf("decode response from %s: %w", req.URL, err)
		}
		decoded = nil
	}

	return resp.StatusCode, decoded, nil
}

func (p *Pipeline) newRequest(ctx context.Context, method string, rawURL string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", method, err)
	}

	for key, value := range p.session.Headers() {
		req.Header.Set(key, value)
	}
	return req, nil
}

// paginate concatenates results pages, following each page's next URL
// strictly sequentially. A failure on a continuation page is non-fatal:
// pagination stops with a warning and the accumulated results come back.
func (p *Pipeline) paginate(ctx context.Context, body any) []any {
	page, ok := body.(map[string]any)
	if !ok {
		return []any{}
	}

	accumulated := resultsList(page)
	for {
		next, _ := page["next"].(string)
		if next == "" {
			return accumulated
		}

		nextBody, err := p.getJSON(ctx, next, nil)
		if err != nil {
			p.sink.Printf("Additional pages exist but could not be loaded.")
			return accumulated
		}

		page, ok = nextBody.(map[string]any)
		if !ok {
			p.sink.Printf("Additional pages exist but could not be loaded.")
			return accumulated
		}
		accumulated = append(accumulated, resultsList(page)...)
	}
}

func resultsList(page map[string]any) []any {
	results, ok := page["results"].([]any)
	if !ok {
		return []any{}
	}
	return results
}

func resultsOrSentinel(body any) any {
	page, ok := body.(map[string]any)
	if !ok {
		return []any{nil}
	}
	results, ok := page["results"].([]any)
	if !ok {
		return []any{nil}
	}
	return results
}

func firstResult(body any) any {
	page, ok := body.(map[string]any)
	if !ok {
		return map[string]any{}
	}
	results, ok := page["results"].([]any)
	if !ok || len(results) == 0 {
		return map[string]any{}
	}
	return results[0]
}

func emptyValue(shape Shape) any {
	switch shape {
	case ShapeResults, ShapePagination:
		return []any{nil}
	default:
		return nil
	}
}

func statusOK(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

func withQuery(rawURL string, query url.Values) string {
	if len(query) == 0 {
		return rawURL
	}
	if strings.Contains(rawURL, "?") {
		return rawURL + "&" + query.Encode()
	}
	return rawURL + "?" + query.Encode()
}
