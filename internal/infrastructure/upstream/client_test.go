package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"planner-backend/internal/pkg/trace"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func TestGet_DecodesData(t *testing.T) {
	var gotTrace, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTrace = r.Header.Get(trace.Header)
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","message":"ok","data":{"id":7,"name":"seven"}}`))
	}))
	defer srv.Close()

	c := New("items", srv.URL+"/", time.Second)
	var out item
	ctx := trace.With(context.Background(), "trace-123")
	require.NoError(t, c.Get(ctx, "/items/7", url.Values{"user_id": {"2"}}, &out))
	assert.Equal(t, item{ID: 7, Name: "seven"}, out)
	assert.Equal(t, "trace-123", gotTrace)
	assert.Equal(t, "user_id=2", gotQuery)
}

func TestGet_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status":"error","error":{"message":"Event not found","statusCode":404}}`))
	}))
	defer srv.Close()

	c := New("events", srv.URL, time.Second)
	err := c.Get(context.Background(), "/events/1", nil, &item{})
	require.Error(t, err)
	se, ok := AsStatus(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, se.Status)
	assert.Equal(t, "Event not found", se.Message())
	assert.True(t, IsStatus(err, http.StatusNotFound))
	assert.False(t, errors.Is(err, ErrUnreachable))
}

func TestGet_OversizedBodyIsCut(t *testing.T) {
	big := `{"status":"success","data":{"id":1,"name":"` + strings.Repeat("x", maxBodyBytes) + `"}}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad" {
			w.WriteHeader(http.StatusBadRequest)
		}
		_, _ = w.Write([]byte(big))
	}))
	defer srv.Close()

	c := New("items", srv.URL, time.Second)
	err := c.Get(context.Background(), "/items/1", nil, &item{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "response decode")

	err = c.Get(context.Background(), "/bad", nil, nil)
	se, ok := AsStatus(err)
	require.True(t, ok)
	assert.Len(t, se.Body, maxBodyBytes)
}

func TestGet_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	c := New("users", base, time.Second)
	err := c.Get(context.Background(), "/users/1", nil, &item{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnreachable)
	_, ok := AsStatus(err)
	assert.False(t, ok)
}

func TestGet_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := New("slow", srv.URL, 20*time.Millisecond)
	err := c.Get(context.Background(), "/x", nil, nil)
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestPost_SendsJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"status":"success","data":{"id":1,"name":"new"}}`))
	}))
	defer srv.Close()

	var out item
	require.NoError(t, New("items", srv.URL, time.Second).Post(context.Background(), "/items", item{Name: "new"}, &out))
	assert.Equal(t, uint(1), out.ID)
}

func TestStatusError_DetailFallsBackToString(t *testing.T) {
	se := &StatusError{Service: "x", Status: 500, Body: []byte("boom")}
	assert.Equal(t, "boom", se.Detail())
	assert.Equal(t, "", se.Message())
}

func TestWithBearer_SetsAuthorization(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"status":"success","data":{"id":1}}`))
	}))
	defer srv.Close()

	ctx := WithBearer(context.Background(), "tok")
	require.NoError(t, New("users", srv.URL, time.Second).Get(ctx, "/auth/me", nil, &item{}))
	assert.Equal(t, "Bearer tok", got)
}
