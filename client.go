package somfy

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/caarlos0/sync/cio"
	logp "github.com/charmbracelet/log"
	"github.com/j-keck/arping"
)

var log = logp.NewWithOptions(os.Stderr, logp.Options{
	ReportTimestamp: true,
	TimeFormat:      time.Kitchen,
	Prefix:          "somfy",
})

// SetLogLevel sets the level of the package logger.
func SetLogLevel(level logp.Level) {
	log.SetLevel(level)
}

const (
	pathLogin   = "/fr/login.htm"
	pathLogout  = "/logout.htm"
	pathControl = "/fr/u_pilotage.htm"
)

const maxBodyBytes = 1 << 20

// Session is one authenticated conversation with the panel. Sessions are
// never shared: open one per operation and close it right after.
type Session struct {
	cfg    Config
	client *http.Client
}

func newSession(cfg Config) (*Session, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("could not create cookie jar: %w", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	// the panel serves a self-signed certificate.
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}

	return &Session{
		cfg: cfg,
		client: &http.Client{
			Jar:       jar,
			Transport: transport,
			Timeout:   cfg.timeout(),
		},
	}, nil
}

// Open creates a session and logs into the panel. If the login fails, the
// session is logged out before the error is returned.
func Open(ctx context.Context, cfg Config) (*Session, error) {
	s, err := newSession(cfg)
	if err != nil {
		return nil, err
	}
	if err := s.login(ctx); err != nil {
		if cerr := s.Close(context.WithoutCancel(ctx)); cerr != nil {
			log.Error("could not logout after failed login", "err", cerr)
		}
		return nil, err
	}
	return s, nil
}

// Do opens a session, runs fn with it and logs out, whatever fn returns.
func Do(ctx context.Context, cfg Config, fn func(s *Session) error) error {
	s, err := Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(context.WithoutCancel(ctx)); err != nil {
			log.Error("could not logout", "err", err)
		}
	}()
	return fn(s)
}

// Probe fetches the login page without logging in and returns the challenge
// it carries.
func Probe(ctx context.Context, cfg Config) (string, error) {
	s, err := newSession(cfg)
	if err != nil {
		return "", err
	}
	defer s.client.CloseIdleConnections()
	return s.challenge(ctx)
}

func (s *Session) Close(ctx context.Context) error {
	defer s.client.CloseIdleConnections()
	log.Debug("logout")
	if _, err := s.get(ctx, pathLogout); err != nil {
		return fmt.Errorf("could not logout: %w", err)
	}
	return nil
}

func (s *Session) SetZone(ctx context.Context, zone Zone) error {
	log.Debug("set zone", "zone", zone)
	if err := s.zone(ctx, zone, true); err != nil {
		return fmt.Errorf("could not set zone %s: %w", zone, err)
	}
	return nil
}

func (s *Session) UnsetZone(ctx context.Context, zone Zone) error {
	log.Debug("unset zone", "zone", zone)
	if err := s.zone(ctx, zone, false); err != nil {
		return fmt.Errorf("could not unset zone %s: %w", zone, err)
	}
	return nil
}

func (s *Session) State(ctx context.Context) (GeneralState, error) {
	log.Debug("state")
	doc, err := s.control(ctx)
	if err != nil {
		return GeneralState{}, fmt.Errorf("could not gather state: %w", err)
	}
	return generalState(doc.Selection)
}

func (s *Session) ZoneStates(ctx context.Context) (ZoneState, error) {
	log.Debug("zone states")
	doc, err := s.control(ctx)
	if err != nil {
		return ZoneState{}, fmt.Errorf("could not gather zone states: %w", err)
	}
	return zoneState(doc.Selection)
}

func (s *Session) zone(ctx context.Context, zone Zone, on bool) error {
	if _, err := ParseZone(string(zone)); err != nil {
		return err
	}
	doc, err := s.post(ctx, pathControl, url.Values{
		"hidden":         {"hidden"},
		zone.button(on): {zone.label(on)},
	})
	if err != nil {
		return err
	}
	return classify(doc.Selection)
}

func (s *Session) control(ctx context.Context) (*goquery.Document, error) {
	doc, err := s.get(ctx, pathControl)
	if err != nil {
		return nil, err
	}
	if err := classify(doc.Selection); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Session) get(ctx context.Context, path string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.baseURL()+path, nil)
	if err != nil {
		return nil, err
	}
	return s.do(req)
}

func (s *Session) post(ctx context.Context, path string, form url.Values) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.cfg.baseURL()+path,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req)
}

func (s *Session) do(req *http.Request) (*goquery.Document, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	log.Debug("panel response", "method", req.Method, "path", req.URL.Path, "status", resp.StatusCode)

	// the client timeout covers the whole exchange, a panel that stops
	// sending halfway through a page is cut earlier.
	body, err := io.ReadAll(io.LimitReader(
		cio.TimeoutReader(resp.Body, s.cfg.readTimeout()),
		maxBodyBytes+1,
	))
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", req.URL.Path, err)
	}
	if len(body) > maxBodyBytes {
		return nil, fmt.Errorf("could not read %s: %w", req.URL.Path, ErrPageTooLarge)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("could not parse %s: %w", req.URL.Path, err)
	}
	return doc, nil
}

// MacAddress resolves the hardware address of the panel. It needs
// 'cap_net_raw+ep' capabilities.
func MacAddress(host string) (string, error) {
	ip := net.ParseIP(host)
	if ip == nil {
		ips, err := net.LookupIP(host)
		if err != nil {
			return "", fmt.Errorf("could not resolve %s: %w", host, err)
		}
		if len(ips) == 0 {
			return "", fmt.Errorf("could not resolve %s", host)
		}
		ip = ips[0]
	}
	hw, _, err := arping.Ping(ip)
	if err != nil {
		return "", fmt.Errorf("could not get the mac address: %w", err)
	}
	return hw.String(), nil
}
