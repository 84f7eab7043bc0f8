package main

import (
	"fmt"
	"os"

	"github.com/finwise/finwise-backend/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Printf("failed to start: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	a.Log.Info("Starting HTTP server", "addr", a.Cfg.HTTPAddr)
	if err := a.Run(); err != nil {
		a.Log.Error("HTTP server exited", "error", err)
		a.Close()
		os.Exit(1)
	}
}
