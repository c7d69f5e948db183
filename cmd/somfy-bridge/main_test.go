package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	somfy "github.com/caarlos0/somfy-bridge"
	"github.com/stretchr/testify/require"
)

const loginPage = `<html><body><form><table>
<tr><td>Identifiant</td></tr>
<tr><td>Mot de passe</td></tr>
<tr><td>Code <b>1234</b></td></tr>
</table></form></body></html>`

func TestWaitForPanelReachable(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, loginPage)
	}))
	t.Cleanup(srv.Close)

	ready := waitForPanel(context.Background(), Config{
		URL:          srv.URL,
		ProbeTimeout: time.Minute,
	}, "")

	select {
	case err := <-ready:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("panel check did not finish")
	}
}

func TestWaitForPanelDoesNotBlock(t *testing.T) {
	srv := httptest.NewTLSServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	start := time.Now()
	ready := waitForPanel(ctx, Config{
		URL:          url,
		ProbeTimeout: time.Minute,
	}, "")
	require.Less(t, time.Since(start), time.Second)

	select {
	case <-ready:
		t.Fatal("should keep retrying while the panel is down")
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-ready:
		require.Error(t, err)
		require.False(t, somfy.IsDomainError(err))
	case <-time.After(10 * time.Second):
		t.Fatal("panel check did not stop after cancel")
	}
}

func TestWaitForPanelMalformedLoginPage(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, "<html><body>maintenance</body></html>")
	}))
	t.Cleanup(srv.Close)

	ready := waitForPanel(context.Background(), Config{
		URL:          srv.URL,
		ProbeTimeout: time.Minute,
	}, "")

	select {
	case err := <-ready:
		require.ErrorIs(t, err, somfy.ErrMalformedLoginPage)
	case <-time.After(10 * time.Second):
		t.Fatal("malformed login page should not be retried")
	}
	require.Equal(t, int32(1), calls.Load())
}
