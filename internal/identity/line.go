package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

const ProviderLine = "line"

var lineEndpoint = oauth2.Endpoint{
	AuthURL:   "https://access.line.me/oauth2/v2.1/authorize",
	TokenURL:  "https://api.line.me/oauth2/v2.1/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

const lineProfileURL = "https://api.line.me/v2/profile"

// LineProvider runs the LINE Login authorization code flow.
type LineProvider struct {
	conf       *oauth2.Config
	profileURL string
}

func NewLineProvider(clientID, clientSecret, redirectURL string) *LineProvider {
	return &LineProvider{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"profile", "openid"},
			Endpoint:     lineEndpoint,
		},
		profileURL: lineProfileURL,
	}
}

func (p *LineProvider) AuthCodeURL(state string) string {
	return p.conf.AuthCodeURL(state)
}

type lineProfile struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

func (p *LineProvider) Exchange(ctx context.Context, code string) (External, error) {
	tok, err := p.conf.Exchange(ctx, code)
	if err != nil {
		return External{}, fmt.Errorf("%w: code exchange: %v", ErrInvalidIdentity, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.profileURL, nil)
	if err != nil {
		return External{}, err
	}
	resp, err := p.conf.Client(ctx, tok).Do(req)
	if err != nil {
		return External{}, fmt.Errorf("line profile: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return External{}, fmt.Errorf("%w: line profile status %d", ErrInvalidIdentity, resp.StatusCode)
	}
	var prof lineProfile
	if err := json.NewDecoder(resp.Body).Decode(&prof); err != nil {
		return External{}, fmt.Errorf("line profile decode: %w", err)
	}
	if prof.UserID == "" {
		return External{}, fmt.Errorf("%w: empty line user id", ErrInvalidIdentity)
	}
	return External{Provider: ProviderLine, Subject: prof.UserID, Name: prof.DisplayName}, nil
}
