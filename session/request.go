package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kballard/go-shellquote"

	"github.com/teranos/gmsctl/am"
	"github.com/teranos/gmsctl/errors"
	"github.com/teranos/gmsctl/logger"
)

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode unmarshals the body into v. A body that is not valid JSON for v is
// marked errors.ErrResponseShape.
func (r *Response) Decode(v interface{}) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return errors.Mark(errors.Wrap(err, "failed to decode response body"), errors.ErrResponseShape)
	}
	return nil
}

// Err returns a *StatusError for non-2xx responses and nil otherwise.
func (r *Response) Err() error {
	if r.OK() {
		return nil
	}
	return NewStatusError(r)
}

// StatusError is a non-success response from the metadata service.
type StatusError struct {
	StatusCode int
	// Message is the server-provided "message" field, if any.
	Message string
	Body    []byte
}

// NewStatusError builds a StatusError, extracting a "message" field when the body
// is a JSON object carrying one.
func NewStatusError(r *Response) *StatusError {
	e := &StatusError{StatusCode: r.StatusCode, Body: r.Body}

	var body map[string]interface{}
	if json.Unmarshal(r.Body, &body) == nil {
		if msg, ok := body["message"].(string); ok {
			e.Message = strings.TrimSpace(msg)
		}
	}
	return e
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("metadata service returned %d: %s", e.StatusCode, e.Message)
	}
	body := strings.TrimSpace(string(e.Body))
	if body == "" {
		return fmt.Sprintf("metadata service returned %d", e.StatusCode)
	}
	return fmt.Sprintf("metadata service returned %d: %s", e.StatusCode, body)
}

// Get issues a GET for path (relative to the host, may include a query string).
func (s *Session) Get(ctx context.Context, path string) (*Response, error) {
	return s.Do(ctx, http.MethodGet, path, nil)
}

// Post marshals body as JSON and issues a POST for path.
func (s *Session) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal request body")
	}
	return s.Do(ctx, http.MethodPost, path, payload)
}

// Do sends one request with the session headers and reads the whole response.
// Only transport failures are returned as errors; callers inspect the status.
func (s *Session) Do(ctx context.Context, method, path string, payload []byte) (*Response, error) {
	url := s.host + path

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create %s request for %s", method, path)
	}
	req.Header = s.headers.Clone()

	ctx = logger.WithRequestID(ctx, uuid.NewString())
	log := s.logger.With(logger.FieldsFromContext(ctx)...)

	if logger.ShouldOutput(logger.Verbosity, logger.OutputHTTPCalls) {
		log.Debugw("Sending request, curl equivalent",
			"curl", s.curlCommand(method, url, payload))
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		log.Debugw("Request failed",
			logger.FieldMethod, method,
			logger.FieldURL, url,
			logger.FieldError, err)
		return nil, errors.Wrapf(err, "%s %s", method, url)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read response from %s", path)
	}

	log.Debugw("Request completed",
		logger.FieldMethod, method,
		logger.FieldPath, path,
		logger.FieldStatus, resp.StatusCode,
		logger.FieldDurationMS, time.Since(start).Milliseconds())

	if logger.ShouldOutput(logger.Verbosity, logger.OutputResponseBody) {
		log.Debugw("Response body", "body", string(data))
	}

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

// curlCommand renders the request as a shell-quoted curl invocation. The bearer
// token is masked.
func (s *Session) curlCommand(method, url string, payload []byte) string {
	args := []string{"curl", "-X", method}

	keys := make([]string, 0, len(s.headers))
	for k := range s.headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := s.headers.Get(k)
		if k == "Authorization" {
			if scheme, token, ok := strings.Cut(v, " "); ok {
				v = scheme + " " + am.MaskToken(token)
			}
		}
		args = append(args, "-H", k+": "+v)
	}

	args = append(args, "--url", url)
	if payload != nil {
		args = append(args, "--data", string(payload))
	}
	return shellquote.Join(args...)
}
