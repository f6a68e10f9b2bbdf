package config

import (
	"flag"
	"os"

	"github.com/sbayu21/Secure-banking-system/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   address and port of the bank server (default from Config)
//	-t string   terminal ID to log in as
//	-k string   certs directory
//	-g string   default signature scheme (rsa or dsa)
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-k", "-g"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerAddr, "a", cfg.ServerAddr, "address and port to access server")
	fs.StringVar(&cfg.TerminalID, "t", cfg.TerminalID, "terminal ID")
	fs.StringVar(&cfg.CertsDir, "k", cfg.CertsDir, "certs directory")
	fs.StringVar(&cfg.Scheme, "g", cfg.Scheme, "default signature scheme (rsa or dsa)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
