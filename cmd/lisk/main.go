package main

import (
	"context"
	"log"
	"os"

	"github.com/lifeisskill/lisk-go/internal/buildinfo"
	"github.com/lifeisskill/lisk-go/internal/cli"
	"github.com/lifeisskill/lisk-go/internal/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.LoadConfig()
	app, err := cli.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
