package postgrest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/onedotone/landing-api/pkg/circuitbreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID    int    `json:"id,omitempty"`
	Email string `json:"email"`
}

func TestNewClient_RequiresURLAndKey(t *testing.T) {
	_, err := NewClient(&Config{URL: "https://db.example.com"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewClient(&Config{APIKey: "anon"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewClient(nil)
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewClient(&Config{URL: "ftp://db.example.com", APIKey: "anon"})
	assert.Error(t, err)
}

func TestInsert_SendsHeadersAndDecodesRepresentation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/v1/waitlist", r.URL.Path)
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))

		var in row
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "a@b.com", in.Email)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`[{"id":7,"email":"a@b.com"}]`))
	}))
	defer srv.Close()

	client, err := NewClient(&Config{URL: srv.URL + "/", APIKey: "anon-key"})
	require.NoError(t, err)

	var out []row
	require.NoError(t, client.Insert(context.Background(), "waitlist", row{Email: "a@b.com"}, &out))
	require.Len(t, out, 1)
	assert.Equal(t, 7, out[0].ID)
}

func TestInsert_DecodesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"code":"23505","message":"duplicate key value violates unique constraint \"waitlist_email_key\"","details":null,"hint":null}`))
	}))
	defer srv.Close()

	client, err := NewClient(&Config{URL: srv.URL, APIKey: "k"})
	require.NoError(t, err)

	err = client.Insert(context.Background(), "waitlist", row{Email: "a@b.com"}, nil)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "23505", apiErr.Code)
}

func TestInsert_NonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("upstream unavailable"))
	}))
	defer srv.Close()

	client, err := NewClient(&Config{URL: srv.URL, APIKey: "k"})
	require.NoError(t, err)

	err = client.Insert(context.Background(), "waitlist", row{Email: "a@b.com"}, nil)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "upstream unavailable", apiErr.Message)
}

func TestInsert_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := srv.URL
	srv.Close()

	client, err := NewClient(&Config{URL: addr, APIKey: "k"})
	require.NoError(t, err)

	err = client.Insert(context.Background(), "waitlist", row{Email: "a@b.com"}, nil)

	var transportErr *TransportError
	assert.True(t, errors.As(err, &transportErr))
}

func TestInsert_OpensCircuitAfterRepeatedServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client, err := NewClient(&Config{URL: srv.URL, APIKey: "k"})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		var apiErr *Error
		require.ErrorAs(t, client.Insert(context.Background(), "waitlist", row{Email: "a@b.com"}, nil), &apiErr)
	}

	err = client.Insert(context.Background(), "waitlist", row{Email: "a@b.com"}, nil)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
	assert.Equal(t, int32(5), hits.Load())
}

func TestInsert_ClientErrorsKeepCircuitClosed(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"code":"23505","message":"duplicate key value violates unique constraint"}`))
	}))
	defer srv.Close()

	client, err := NewClient(&Config{URL: srv.URL, APIKey: "k"})
	require.NoError(t, err)

	for i := 0; i < 8; i++ {
		var apiErr *Error
		require.ErrorAs(t, client.Insert(context.Background(), "waitlist", row{Email: "a@b.com"}, nil), &apiErr)
		assert.Equal(t, "23505", apiErr.Code)
	}
	assert.Equal(t, int32(8), hits.Load())
}

func TestSelect_EncodesQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "eq.3", r.URL.Query().Get("id"))
		_, _ = w.Write([]byte(`[{"id":3,"email":"c@d.com"}]`))
	}))
	defer srv.Close()

	client, err := NewClient(&Config{URL: srv.URL, APIKey: "k"})
	require.NoError(t, err)

	var out []row
	require.NoError(t, client.Select(context.Background(), "waitlist", url.Values{"id": {"eq.3"}}, &out))
	assert.Equal(t, "c@d.com", out[0].Email)
}

func TestSelect_RetriesGatewayErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client, err := NewClient(&Config{URL: srv.URL, APIKey: "k"})
	require.NoError(t, err)

	var out []row
	require.NoError(t, client.Select(context.Background(), "waitlist", nil, &out))
	assert.Equal(t, int32(2), calls.Load())
}

func TestSelect_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":"42P01","message":"relation \"public.waitlist\" does not exist"}`))
	}))
	defer srv.Close()

	client, err := NewClient(&Config{URL: srv.URL, APIKey: "k"})
	require.NoError(t, err)

	err = client.Select(context.Background(), "waitlist", nil, nil)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "42P01", apiErr.Code)
	assert.Equal(t, int32(1), calls.Load())
}
