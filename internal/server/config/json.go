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
	BindAddr       string   `json:"bind_addr"`
	CertsDir       string   `json:"certs_dir"`
	TerminalIDs    []string `json:"terminal_ids"`
	StoreBackend   string   `json:"store_backend"`
	StoreFile      string   `json:"store_file"`
	DatabaseFile   string   `json:"database_file"`
	DatabaseDSN    string   `json:"database_dsn"`
	TransactionLog string   `json:"transaction_log"`
	AmountMode     string   `json:"amount_mode"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path comes from the -c or -config command-line flags; when
// neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics: a config file that was asked
// for but is unusable should stop the server immediately.
func parseJson(config *Config) {

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

	if c.BindAddr != "" {
		config.BindAddr = c.BindAddr
	}
	if c.CertsDir != "" {
		config.CertsDir = c.CertsDir
	}
	if len(c.TerminalIDs) > 0 {
		config.TerminalIDs = c.TerminalIDs
	}
	if c.StoreBackend != "" {
		config.StoreBackend = c.StoreBackend
	}
	if c.StoreFile != "" {
		config.StoreFile = c.StoreFile
	}
	if c.DatabaseFile != "" {
		config.DatabaseFile = c.DatabaseFile
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.TransactionLog != "" {
		config.TransactionLog = c.TransactionLog
	}
	if c.AmountMode != "" {
		config.AmountMode = c.AmountMode
	}
}
