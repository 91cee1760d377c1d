package gms

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/teranos/gmsctl/session"
)

// recorded is one request seen by the fake service.
type recorded struct {
	Method     string
	RequestURI string
	Body       map[string]interface{}
}

// fakeGMS routes requests by "METHOD path?query" (the raw request URI).
type fakeGMS struct {
	t        *testing.T
	server   *httptest.Server
	routes   map[string]http.HandlerFunc
	requests []recorded
}

func newFakeGMS(t *testing.T) *fakeGMS {
	t.Helper()
	f := &fakeGMS{t: t, routes: map[string]http.HandlerFunc{}}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{Method: r.Method, RequestURI: r.RequestURI}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			_ = json.Unmarshal(data, &rec.Body)
		}
		f.requests = append(f.requests, rec)

		handler, ok := f.routes[r.Method+" "+r.RequestURI]
		if !ok {
			http.Error(w, `{"message":"no route"}`, http.StatusNotFound)
			return
		}
		handler(w, r)
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeGMS) handle(method, requestURI string, status int, body string) {
	f.routes[method+" "+requestURI] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

// client returns a Client whose logs are captured at debug level.
func (f *fakeGMS) client() (*Client, *observer.ObservedLogs) {
	s, err := session.New(f.server.URL, "", session.Options{HTTPClient: f.server.Client()})
	require.NoError(f.t, err)

	core, logs := observer.New(zapcore.DebugLevel)
	c := NewClient(s)
	c.logger = zap.New(core).Sugar()
	return c, logs
}

func (f *fakeGMS) last() recorded {
	require.NotEmpty(f.t, f.requests)
	return f.requests[len(f.requests)-1]
}
