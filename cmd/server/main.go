package main

import (
	"context"
	"log"

	"github.com/dka-services/account-core/internal/server"
	"github.com/dka-services/account-core/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(ctx, cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
