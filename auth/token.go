package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
)

// DefaultTokenEndpoint is the Earthdata Login legacy token service.
const DefaultTokenEndpoint = "https://cmr.earthdata.nasa.gov/legacy-services/rest/tokens"

// AuthError reports a failed token exchange.
type AuthError struct {
	Status int
	Body   []byte
}

func (e *AuthError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if len(e.Body) > 0 {
		return fmt.Sprintf("auth: token request failed status=%d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("auth: token request failed status=%d", e.Status)
}

// TokenClient exchanges an Earthdata Login credential for an opaque
// bearer token. One request, one response; no retry and no refresh.
// Callers re-invoke FetchToken after a later authorization failure.
type TokenClient struct {
	// Endpoint defaults to DefaultTokenEndpoint when empty.
	Endpoint string

	// ClientID identifies the calling application to the token service.
	ClientID string

	// UserIP is reported in the token request when set.
	UserIP string

	HTTPClient *http.Client
}

type tokenRequest struct {
	XMLName       xml.Name `xml:"token"`
	Username      string   `xml:"username"`
	Password      string   `xml:"password"`
	ClientID      string   `xml:"client_id"`
	UserIPAddress string   `xml:"user_ip_address,omitempty"`
}

type tokenResponse struct {
	Token struct {
		ID string `json:"id"`
	} `json:"token"`
}

// FetchToken performs the token exchange and returns the token id.
func (c *TokenClient) FetchToken(ctx context.Context, cred *Credential) (string, error) {
	if cred == nil || cred.Login == "" {
		return "", ErrNoCredentials
	}

	endpoint := c.Endpoint
	if endpoint == "" {
		endpoint = DefaultTokenEndpoint
	}

	body, err := xml.Marshal(tokenRequest{
		Username:      cred.Login,
		Password:      cred.Password,
		ClientID:      c.ClientID,
		UserIPAddress: c.UserIP,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/xml")
	req.Header.Set("Accept", "application/json")

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &AuthError{Status: resp.StatusCode, Body: data}
	}

	var decoded tokenResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		return "", fmt.Errorf("auth: decode token response: %w", err)
	}
	if decoded.Token.ID == "" {
		return "", &AuthError{Status: resp.StatusCode, Body: data}
	}
	return decoded.Token.ID, nil
}
