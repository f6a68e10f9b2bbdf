package config

// Config holds runtime settings for the ATM terminal client.
//
// Fields:
//   - ServerAddr: host:port of the bank server's TCP endpoint.
//   - TerminalID: identity this terminal signs and logs in as.
//   - CertsDir: directory holding the bank public key and this terminal's
//     private keys.
//   - Scheme: default signature scheme ("rsa" or "dsa"); the interactive
//     prompt can override it per session.
type Config struct {
	ServerAddr string
	TerminalID string
	CertsDir   string
	Scheme     string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerAddr = "127.0.0.1:1200"
	c.TerminalID = "atm1"
	c.CertsDir = "certs"
	c.Scheme = "rsa"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
