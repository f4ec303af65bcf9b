package auth

import (
	"context"
	"encoding/xml"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchToken(t *testing.T) {
	var gotContentType string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		gotContentType = r.Header.Get("Content-Type")
		var err error
		gotBody, err = io.ReadAll(r.Body)
		require.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"token":{"id":"ABCDEF-token","username":"jdoe"}}`))
	}))
	defer server.Close()

	client := &TokenClient{
		Endpoint:   server.URL,
		ClientID:   "test-client",
		HTTPClient: server.Client(),
	}
	token, err := client.FetchToken(context.Background(), &Credential{
		Host:     "urs.earthdata.nasa.gov",
		Login:    "jdoe",
		Password: "hunter2",
	})
	require.NoError(t, err)
	assert.Equal(t, "ABCDEF-token", token)
	assert.Equal(t, "application/xml", gotContentType)

	var sent struct {
		XMLName  xml.Name `xml:"token"`
		Username string   `xml:"username"`
		Password string   `xml:"password"`
		ClientID string   `xml:"client_id"`
	}
	require.NoError(t, xml.Unmarshal(gotBody, &sent))
	assert.Equal(t, "jdoe", sent.Username)
	assert.Equal(t, "hunter2", sent.Password)
	assert.Equal(t, "test-client", sent.ClientID)
}

func TestFetchTokenUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":["invalid credentials"]}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client := &TokenClient{Endpoint: server.URL, HTTPClient: server.Client()}
	_, err := client.FetchToken(context.Background(), &Credential{Login: "jdoe", Password: "wrong"})
	require.Error(t, err)

	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, http.StatusUnauthorized, authErr.Status)
	assert.Contains(t, string(authErr.Body), "invalid credentials")
}

func TestFetchTokenMissingCredential(t *testing.T) {
	client := &TokenClient{Endpoint: "http://localhost:0"}
	_, err := client.FetchToken(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoCredentials)
}

func TestFetchTokenEmptyTokenID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token":{}}`))
	}))
	defer server.Close()

	client := &TokenClient{Endpoint: server.URL, HTTPClient: server.Client()}
	_, err := client.FetchToken(context.Background(), &Credential{Login: "jdoe", Password: "pw"})

	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
}
