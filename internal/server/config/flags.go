package config

import (
	"flag"
	"os"
	"strings"

	"github.com/sbayu21/Secure-banking-system/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line
// flags.
//
// Supported flags (short forms):
//
//	-a string   TCP bind address (e.g., "127.0.0.1:1200")
//	-k string   certs directory
//	-t string   comma-separated terminal IDs (e.g., "atm1,atm2")
//	-s string   store backend: memory, json, sqlite or postgres
//	-f string   JSON store file path
//	-b string   SQLite database file path
//	-d string   PostgreSQL DSN
//	-l string   transaction log path
//	-m string   amount mode: parsed or fixed
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-k", "-t", "-s", "-f", "-b", "-d", "-l", "-m"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.BindAddr, "a", config.BindAddr, "address and port to run server")
	fs.StringVar(&config.CertsDir, "k", config.CertsDir, "certs directory")
	terminals := fs.String("t", strings.Join(config.TerminalIDs, ","), "comma-separated terminal IDs")
	fs.StringVar(&config.StoreBackend, "s", config.StoreBackend, "store backend (memory, json, sqlite, postgres)")
	fs.StringVar(&config.StoreFile, "f", config.StoreFile, "JSON store file")
	fs.StringVar(&config.DatabaseFile, "b", config.DatabaseFile, "SQLite database file")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.TransactionLog, "l", config.TransactionLog, "transaction log path")
	fs.StringVar(&config.AmountMode, "m", config.AmountMode, "amount mode (parsed or fixed)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TerminalIDs = splitTerminals(*terminals)
}

func splitTerminals(s string) []string {
	parts := strings.Split(s, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}
