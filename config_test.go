package somfy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		require.NoError(t, Config{
			URL:      "https://192.168.1.20",
			Password: "1234",
			Codes:    Codebook{"key_A1": "1234"},
		}.Validate())
	})

	t.Run("empty", func(t *testing.T) {
		err := Config{}.Validate()
		require.ErrorContains(t, err, "missing panel url")
		require.ErrorContains(t, err, "missing panel password")
		require.ErrorContains(t, err, "empty codebook")
	})
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{URL: " https://192.168.1.20/ "}
	require.Equal(t, "https://192.168.1.20", cfg.baseURL())
	require.Equal(t, defaultTimeout, cfg.timeout())
	require.Equal(t, defaultReadTimeout, cfg.readTimeout())
	require.NotNil(t, cfg.challengeFunc())

	cfg.Timeout = time.Second
	cfg.ReadTimeout = time.Millisecond
	require.Equal(t, time.Second, cfg.timeout())
	require.Equal(t, time.Millisecond, cfg.readTimeout())
}

func TestCodebookLookup(t *testing.T) {
	codes := Codebook{"key_1234": "ABCD"}

	resp, ok := codes.Lookup("1234")
	require.True(t, ok)
	require.Equal(t, "ABCD", resp)

	_, ok = codes.Lookup("key_1234")
	require.False(t, ok)
	_, ok = codes.Lookup("123")
	require.False(t, ok)
}
