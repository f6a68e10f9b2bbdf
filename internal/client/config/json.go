package config

import (
	"encoding/json"
	"os"

	"github.com/sbayu21/Secure-banking-system/internal/flagx"
)

// JsonConfig is the DTO for reading JSON configuration files. After
// unmarshalling, non-empty fields are copied into the runtime Config, so an
// absent key keeps its default.
type JsonConfig struct {
	ServerAddr string `json:"server_addr"`
	TerminalID string `json:"terminal_id"`
	CertsDir   string `json:"certs_dir"`
	Scheme     string `json:"scheme"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// The file path comes from the -c or -config command-line flags; when
// neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics: a config file that was asked
// for but is unusable should stop the client immediately.
func parseJson(cfg *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.ServerAddr != "" {
		cfg.ServerAddr = c.ServerAddr
	}
	if c.TerminalID != "" {
		cfg.TerminalID = c.TerminalID
	}
	if c.CertsDir != "" {
		cfg.CertsDir = c.CertsDir
	}
	if c.Scheme != "" {
		cfg.Scheme = c.Scheme
	}
}
