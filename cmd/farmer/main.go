package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/dmitrijs2005/pointsfarmer/internal/accounts"
	"github.com/dmitrijs2005/pointsfarmer/internal/app"
	"github.com/dmitrijs2005/pointsfarmer/internal/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	a, err := app.NewApp(ctx, cfg)

	if err != nil {
		if errors.Is(err, accounts.ErrNoAccounts) {
			log.Printf("no accounts found, a template was written to %s, fill it in and start again", cfg.AccountsFile)
		} else {
			log.Printf("%v", err)
		}
		os.Exit(1)
	}

	a.Run(ctx)

}
