package oauth

import (
	"context"
	"net/http"
	"net/url"
)

// GoogleVerifier checks ID tokens against Google's tokeninfo endpoint
type GoogleVerifier struct {
	clientID     string
	tokenInfoURL string
	httpClient   *http.Client
}

func NewGoogleVerifier(clientID, tokenInfoURL string) *GoogleVerifier {
	return &GoogleVerifier{
		clientID:     clientID,
		tokenInfoURL: tokenInfoURL,
		httpClient:   defaultHTTPClient(),
	}
}

type googleTokenInfo struct {
	Aud           string `json:"aud"`
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Verify resolves an ID token to the Google account it was issued for
func (g *GoogleVerifier) Verify(ctx context.Context, idToken string) (*Identity, error) {
	if idToken == "" {
		return nil, ErrInvalidToken
	}

	var info googleTokenInfo
	endpoint := g.tokenInfoURL + "?id_token=" + url.QueryEscape(idToken)
	if err := getJSON(ctx, g.httpClient, endpoint, &info); err != nil {
		return nil, err
	}
	if info.Sub == "" {
		return nil, ErrInvalidToken
	}
	if g.clientID != "" && info.Aud != g.clientID {
		return nil, ErrAudienceMismatch
	}

	return &Identity{
		Provider:      "google",
		Subject:       info.Sub,
		Email:         info.Email,
		EmailVerified: info.EmailVerified == "true",
		Name:          info.Name,
		Picture:       info.Picture,
	}, nil
}
