package main

import (
	"context"
	"log"

	"github.com/sbayu21/Secure-banking-system/internal/client/atm"
	"github.com/sbayu21/Secure-banking-system/internal/client/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := atm.NewApp(cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	if err := app.Run(ctx); err != nil {
		log.Printf("%v", err)
	}
}
