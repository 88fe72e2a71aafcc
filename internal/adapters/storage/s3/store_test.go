package s3

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"testing"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 responde GET/PUT path-style sobre un map.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	fail    bool
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	// path-style: /<bucket>/<key>
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}

	if f.fail {
		return respond(http.StatusInternalServerError, nil), nil
	}

	switch req.Method {
	case http.MethodGet:
		b, ok := f.objects[key]
		if !ok {
			body := []byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
			r := respond(http.StatusNotFound, body)
			r.Header.Set("Content-Type", "application/xml")
			return r, nil
		}
		r := respond(http.StatusOK, b)
		r.Header.Set("Content-Length", strconv.Itoa(len(b)))
		return r, nil
	case http.MethodPut:
		body, _ := io.ReadAll(req.Body)
		if strings.Contains(req.Header.Get("Content-Encoding"), "aws-chunked") {
			body = decodeChunked(body)
		}
		f.objects[key] = body
		r := respond(http.StatusOK, nil)
		r.Header.Set("ETag", `"etag"`)
		return r, nil
	}
	return respond(http.StatusNotImplemented, nil), nil
}

func respond(status int, body []byte) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader(body)),
		Header:     http.Header{},
	}
}

// decodeChunked toma el primer chunk de un payload aws-chunked: <hex>[;ext]\r\n<data>\r\n0\r\n...
func decodeChunked(b []byte) []byte {
	head, rest, ok := bytes.Cut(b, []byte("\r\n"))
	if !ok {
		return b
	}
	sizeHex, _, _ := bytes.Cut(head, []byte(";"))
	n, err := strconv.ParseInt(string(sizeHex), 16, 64)
	if err != nil || int64(len(rest)) < n {
		return b
	}
	return rest[:n]
}

func newTestStore(t *testing.T, rt *fakeS3) *Store {
	t.Helper()
	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
	)
	require.NoError(t, err)

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: rt}
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String("https://mock.s3.local")
		o.RetryMaxAttempts = 1
	})
	return NewWithClient(client, "backups", "dose-timeline/")
}

func TestStore_SetGet(t *testing.T) {
	ctx := context.Background()
	rt := &fakeS3{objects: map[string][]byte{}}
	s := newTestStore(t, rt)

	_, ok, err := s.Get(ctx, "doselog/entries")
	require.NoError(t, err)
	assert.False(t, ok, "missing object must read as absent")

	require.NoError(t, s.Set(ctx, "doselog/entries", []byte(`[{"id":"x"}]`)))
	assert.Contains(t, rt.objects, "dose-timeline/doselog/entries.json")

	got, ok, err := s.Get(ctx, "doselog/entries")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"x"}]`, string(got))
}

func TestStore_BackendErrorIsReturned(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, &fakeS3{objects: map[string][]byte{}, fail: true})

	_, _, err := s.Get(ctx, "doselog/entries")
	assert.Error(t, err)
	assert.Error(t, s.Set(ctx, "doselog/entries", []byte(`[]`)))
}

func TestNew_RequiresBucket(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.Error(t, err)
}
