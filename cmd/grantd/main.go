package main

import (
	"fmt"
	"os"

	"github.com/keeradon/grantd/internal/oauth2/app"
)

func main() {
	application, err := app.New(app.LoadConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "grantd: %v\n", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "grantd: %v\n", err)
		os.Exit(1)
	}
}
