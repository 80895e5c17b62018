package oauth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/url"
)

// FacebookVerifier resolves user access tokens through the Graph API
type FacebookVerifier struct {
	appSecret  string
	graphURL   string
	httpClient *http.Client
}

func NewFacebookVerifier(appSecret, graphURL string) *FacebookVerifier {
	return &FacebookVerifier{
		appSecret:  appSecret,
		graphURL:   graphURL,
		httpClient: defaultHTTPClient(),
	}
}

type facebookMe struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	} `json:"picture"`
}

// AppSecretProof is the HMAC Graph requires when the app enforces proofs
func AppSecretProof(accessToken, appSecret string) string {
	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write([]byte(accessToken))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify resolves an access token to the Facebook profile that owns it
func (f *FacebookVerifier) Verify(ctx context.Context, accessToken string) (*Identity, error) {
	if accessToken == "" {
		return nil, ErrInvalidToken
	}

	q := url.Values{}
	q.Set("fields", "id,name,email,picture.type(large)")
	q.Set("access_token", accessToken)
	if f.appSecret != "" {
		q.Set("appsecret_proof", AppSecretProof(accessToken, f.appSecret))
	}

	var me facebookMe
	if err := getJSON(ctx, f.httpClient, f.graphURL+"/me?"+q.Encode(), &me); err != nil {
		return nil, err
	}
	if me.ID == "" {
		return nil, ErrInvalidToken
	}

	return &Identity{
		Provider:      "facebook",
		Subject:       me.ID,
		Email:         me.Email,
		EmailVerified: me.Email != "",
		Name:          me.Name,
		Picture:       me.Picture.Data.URL,
	}, nil
}
