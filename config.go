package somfy

import (
	"errors"
	"strings"
	"time"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultReadTimeout = 10 * time.Second
)

// Config is everything a session needs to reach and log into the panel. It
// is loaded once and handed by value to every session.
type Config struct {
	URL      string
	Password string
	Codes    Codebook
	Timeout  time.Duration

	// ReadTimeout bounds how long a single read of a response body may
	// stall. Timeout still bounds the whole exchange.
	ReadTimeout time.Duration

	// Challenge overrides how the challenge code is read from the login
	// page. Defaults to LoginTableChallenge.
	Challenge ChallengeFunc
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.URL) == "" {
		errs = append(errs, errors.New("missing panel url"))
	}
	if c.Password == "" {
		errs = append(errs, errors.New("missing panel password"))
	}
	if len(c.Codes) == 0 {
		errs = append(errs, errors.New("empty codebook"))
	}
	return errors.Join(errs...)
}

func (c Config) baseURL() string {
	return strings.TrimSuffix(strings.TrimSpace(c.URL), "/")
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return defaultTimeout
	}
	return c.Timeout
}

func (c Config) readTimeout() time.Duration {
	if c.ReadTimeout <= 0 {
		return defaultReadTimeout
	}
	return c.ReadTimeout
}

func (c Config) challengeFunc() ChallengeFunc {
	if c.Challenge == nil {
		return LoginTableChallenge
	}
	return c.Challenge
}
