package config

import (
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "127.0.0.1:1200", c.ServerAddr)
	assert.Equal(t, "atm1", c.TerminalID)
	assert.Equal(t, "certs", c.CertsDir)
	assert.Equal(t, "rsa", c.Scheme)
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected *Config
		name     string
		args     []string
	}{
		{name: "all flags", args: []string{"cmd", "-a", "127.0.0.1:9090", "-t", "atm2", "-k", "/etc/certs", "-g", "dsa"},
			expected: &Config{ServerAddr: "127.0.0.1:9090", TerminalID: "atm2", CertsDir: "/etc/certs", Scheme: "dsa"}},
		{name: "no flags keep values", args: []string{"cmd"},
			expected: &Config{ServerAddr: "x:1", TerminalID: "atm1", CertsDir: "c", Scheme: "rsa"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)
			origArgs := os.Args
			t.Cleanup(func() { os.Args = origArgs })
			os.Args = tt.args

			config := &Config{ServerAddr: "x:1", TerminalID: "atm1", CertsDir: "c", Scheme: "rsa"}

			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(config, tt.expected))
		})
	}
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.json")
	b, err := json.Marshal(map[string]any{
		"server_addr": "www.example:9000",
		"terminal_id": "atm2",
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))

	t.Run("loads from flags, absent keys keep defaults", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", path}

		cfg := &Config{CertsDir: "keep", Scheme: "dsa"}
		parseJson(cfg)

		assert.Equal(t, "www.example:9000", cfg.ServerAddr)
		assert.Equal(t, "atm2", cfg.TerminalID)
		assert.Equal(t, "keep", cfg.CertsDir)
		assert.Equal(t, "dsa", cfg.Scheme)
	})

	t.Run("no flags, no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{ServerAddr: "defaults:1234"}
		parseJson(cfg)

		assert.Equal(t, "defaults:1234", cfg.ServerAddr)
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}
