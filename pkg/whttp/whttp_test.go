package whttp

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/korean"
)

func TestFetchGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "000105", r.URL.Query().Get("B"))
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla")
		assert.Equal(t, "yes", r.Header.Get("X-Test"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<p>홍천그란폰도</p>"))
	}))
	defer server.Close()

	c, err := NewClient(ClientOptions{})
	require.NoError(t, err)

	res, err := c.Fetch(context.Background(), &WHTTPReq{
		URL:     server.URL + "/m2.php?E=1&B=000105",
		Headers: []WHTTPHeader{{Name: "X-Test", Value: "yes"}},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "<p>홍천그란폰도</p>", res.BodyString)
}

func TestFetchPostBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		b, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"bibNum":"7"}`, string(b))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c, err := NewClient(ClientOptions{})
	require.NoError(t, err)

	res, err := c.Fetch(context.Background(), &WHTTPReq{
		Method:      http.MethodPost,
		URL:         server.URL,
		Body:        `{"bibNum":"7"}`,
		ContentType: "application/json",
	})
	require.NoError(t, err)
	assert.Equal(t, "[]", res.BodyString)
}

func TestFetchNon2xxIsStatusError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c, err := NewClient(ClientOptions{})
	require.NoError(t, err)

	_, err = c.Fetch(context.Background(), &WHTTPReq{URL: server.URL})
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "requests must not be retried")
}

func TestFetchDecodesEUCKR(t *testing.T) {
	encoded, err := korean.EUCKR.NewEncoder().String("<p>데이터가 없습니다</p>")
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=euc-kr")
		w.Write([]byte(encoded))
	}))
	defer server.Close()

	c, err := NewClient(ClientOptions{})
	require.NoError(t, err)

	res, err := c.Fetch(context.Background(), &WHTTPReq{URL: server.URL})
	require.NoError(t, err)
	assert.Equal(t, "<p>데이터가 없습니다</p>", res.BodyString)
}

func TestNewClientRejectsBadProxy(t *testing.T) {
	_, err := NewClient(ClientOptions{Proxy: "://bad"})
	assert.Error(t, err)
}
