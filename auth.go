package somfy

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	loginUser   = "u"
	loginButton = "Connexion"
)

// Codebook maps challenge keys ("key_" + challenge) to the pre-shared
// responses printed on the panel card.
type Codebook map[string]string

func (c Codebook) Lookup(challenge string) (string, bool) {
	resp, ok := c["key_"+challenge]
	return resp, ok
}

// ChallengeFunc extracts the challenge code from the login page.
type ChallengeFunc func(doc *goquery.Document) (string, error)

// LoginTableChallenge reads the challenge from the first bold text of the
// third row of the table inside the login form.
func LoginTableChallenge(doc *goquery.Document) (string, error) {
	form := doc.Find("form").First()
	if form.Length() == 0 {
		return "", fmt.Errorf("%w: login form not found", ErrMalformedLoginPage)
	}
	table := form.Find("table").First()
	if table.Length() == 0 {
		return "", fmt.Errorf("%w: table not found in login form", ErrMalformedLoginPage)
	}
	rows := table.Find("tr")
	if rows.Length() < 3 {
		return "", fmt.Errorf("%w: expected at least 3 rows, got %d", ErrMalformedLoginPage, rows.Length())
	}
	b := rows.Eq(2).Find("b").First()
	if b.Length() == 0 {
		return "", fmt.Errorf("%w: authentication code not found", ErrMalformedLoginPage)
	}
	return strings.TrimSpace(b.Text()), nil
}

func (s *Session) challenge(ctx context.Context) (string, error) {
	doc, err := s.get(ctx, pathLogin)
	if err != nil {
		return "", fmt.Errorf("could not load login page: %w", err)
	}
	return s.cfg.challengeFunc()(doc)
}

func (s *Session) login(ctx context.Context) error {
	challenge, err := s.challenge(ctx)
	if err != nil {
		return err
	}
	log.Debug("login", "challenge", challenge)

	key, ok := s.cfg.Codes.Lookup(challenge)
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidAuthCode, challenge)
	}

	doc, err := s.post(ctx, pathLogin, url.Values{
		"login":     {loginUser},
		"password":  {s.cfg.Password},
		"key":       {key},
		"btn_login": {loginButton},
	})
	if err != nil {
		return fmt.Errorf("could not login: %w", err)
	}
	return classify(doc.Selection)
}
