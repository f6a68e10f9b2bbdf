// Command keygen generates the bank key pair and a pair of signing keys
// per terminal into the certs directory. Existing files are overwritten.
package main

import (
	"flag"
	"log"
	"strings"

	"github.com/sbayu21/Secure-banking-system/internal/keys"
)

func main() {

	dir := flag.String("k", "certs", "directory to write key files into")
	terminals := flag.String("t", "atm1,atm2", "comma-separated terminal IDs")
	bits := flag.Int("b", keys.DefaultRSABits, "RSA key size in bits")
	flag.Parse()

	var ids []string
	for _, id := range strings.Split(*terminals, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	if err := keys.GenerateAll(*dir, ids, *bits); err != nil {
		log.Fatalf("key generation failed: %v", err)
	}

	log.Printf("wrote bank and terminal keys for %v to %s", ids, *dir)
}
