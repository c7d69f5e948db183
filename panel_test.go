package somfy

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

const loginPageFmt = `<html><body>
<form method="post" action="/fr/login.htm">
<table>
<tr><td>Identifiant</td><td><input name="login" value="u"></td></tr>
<tr><td>Mot de passe</td><td><input type="password" name="password"></td></tr>
<tr><td>Code d'authentification <b>%s</b></td><td><input name="key"></td></tr>
</table>
<input type="submit" name="btn_login" value="Connexion">
</form>
</body></html>`

const controlPage = `<html><body>
<div id="alarmstate">
  <div class="pbattery_nok">Batterie OK</div>
  <div class="pcom_nok">Communication OK</div>
  <div class="pdoor_nok">Porte fermée</div>
  <div class="phouse_ok">Maison protégée</div>
  <div class="pbox_ok">Boîtier OK</div>
  <div class="pgsm_5_ok">Signal GSM 5/5</div>
  <div class="pcam_off">Caméras arrêtées</div>
</div>
<div id="groupstate">
  <div id="groupa"><div class="alarmon">Marche</div><div class="noalarm">Pas d'alarme</div></div>
  <div id="groupb"><div class="alarmoff">Arrêt</div><div class="alarm">Intrusion</div></div>
  <div id="groupc"><div class="alarmoff">Arrêt</div><div class="noalarm">Pas d'alarme</div></div>
</div>
</body></html>`

func errorPage(code string) string {
	return fmt.Sprintf(`<html><body><div class="error">Erreur <b>%s</b></div></body></html>`, code)
}

type panelRequest struct {
	Method string
	Path   string
	Form   url.Values
}

// fakePanel mimics the panel web interface over TLS with a self-signed
// certificate.
type fakePanel struct {
	*httptest.Server

	challenge     string
	loginPage     string
	loginResponse string
	controlPage   string
	zoneResponse  string

	mu       sync.Mutex
	requests []panelRequest
}

func newFakePanel(t *testing.T, opts ...func(p *fakePanel)) *fakePanel {
	t.Helper()
	p := &fakePanel{
		challenge:     "1234",
		loginResponse: "<html><body>ok</body></html>",
		controlPage:   controlPage,
		zoneResponse:  controlPage,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.loginPage == "" {
		p.loginPage = fmt.Sprintf(loginPageFmt, p.challenge)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/fr/login.htm", func(w http.ResponseWriter, r *http.Request) {
		p.record(r)
		if r.Method == http.MethodPost {
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "s3cr3t", Path: "/"})
			fmt.Fprint(w, p.loginResponse)
			return
		}
		fmt.Fprint(w, p.loginPage)
	})
	mux.HandleFunc("/logout.htm", func(w http.ResponseWriter, r *http.Request) {
		p.record(r)
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "", Path: "/", MaxAge: -1})
	})
	mux.HandleFunc("/fr/u_pilotage.htm", func(w http.ResponseWriter, r *http.Request) {
		p.record(r)
		if c, err := r.Cookie("session"); err != nil || c.Value != "s3cr3t" {
			fmt.Fprint(w, p.loginPage)
			return
		}
		if r.Method == http.MethodPost {
			fmt.Fprint(w, p.zoneResponse)
			return
		}
		fmt.Fprint(w, p.controlPage)
	})

	p.Server = httptest.NewTLSServer(mux)
	t.Cleanup(p.Close)
	return p
}

func (p *fakePanel) record(r *http.Request) {
	_ = r.ParseForm()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, panelRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Form:   r.PostForm,
	})
}

func (p *fakePanel) calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var result []string
	for _, r := range p.requests {
		result = append(result, r.Method+" "+r.Path)
	}
	return result
}

func (p *fakePanel) posts(path string) []url.Values {
	p.mu.Lock()
	defer p.mu.Unlock()
	var result []url.Values
	for _, r := range p.requests {
		if r.Method == http.MethodPost && r.Path == path {
			result = append(result, r.Form)
		}
	}
	return result
}

func (p *fakePanel) config() Config {
	return Config{
		URL:      p.URL + "/",
		Password: "hunter2",
		Codes:    Codebook{"key_1234": "ABCD", "key_E5": "9876"},
	}
}
