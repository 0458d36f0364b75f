package web

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClient_GetLatestBlock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodGet, r.Method)
			require.Equal(t, "/v1/blocks/latest", r.URL.Path)

			w.Write([]byte(`{"id":"deadbeef"}`))
		}))

	defer srv.Close()

	client := NewClient(srv.URL)

	id, err := client.GetLatestBlock(context.Background())
	require.NoError(t, err)
	require.Equal(t, "deadbeef", id)
}

func TestClient_GetLatestBlock_BadResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))

	defer srv.Close()

	client := NewClient(srv.URL)

	_, err := client.GetLatestBlock(context.Background())
	require.EqualError(t, err,
		"couldn't fetch latest block: node returned status 500")

	srv.Close()

	_, err = client.GetLatestBlock(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "couldn't fetch latest block: request failed")
}

func TestClient_GetSequenceNumber(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/v1/accounts/A/keys/1", r.URL.Path)

			w.Write([]byte(`{"sequenceNumber":42}`))
		}))

	defer srv.Close()

	client := NewClient(srv.URL)

	nonce, err := client.GetSequenceNumber(context.Background(), "A", 1)
	require.NoError(t, err)
	require.Equal(t, uint64(42), nonce)
}

func TestClient_GetSequenceNumber_BadResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		}))

	defer srv.Close()

	client := NewClient(srv.URL)

	_, err := client.GetSequenceNumber(context.Background(), "A", 1)
	require.Error(t, err)
	require.Contains(t, err.Error(),
		"couldn't fetch sequence number: couldn't decode response")
}

func TestClient_SendTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/v1/transactions", r.URL.Path)
			require.Equal(t, "application/json", r.Header.Get("Content-Type"))

			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			require.Equal(t, `{"envelope":true}`, string(body))

			w.Write([]byte(`{"status":"ok"}`))
		}))

	defer srv.Close()

	client := NewClient(srv.URL)

	resp, err := client.SendTransaction(context.Background(), []byte(`{"envelope":true}`))
	require.NoError(t, err)
	require.Equal(t, `{"status":"ok"}`, string(resp))
}

func TestClient_SendTransaction_BadResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`rejected`))
		}))

	defer srv.Close()

	client := NewClient(srv.URL)

	_, err := client.SendTransaction(context.Background(), []byte(`{}`))
	require.EqualError(t, err,
		"couldn't send transaction: node returned status 400: rejected")

	srv.Close()

	_, err = client.SendTransaction(context.Background(), []byte(`{}`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "couldn't send transaction")
}
