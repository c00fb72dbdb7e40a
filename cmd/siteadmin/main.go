package main

import (
	"fmt"
	"os"

	"github.com/aussiebroadwan/siteadmin/internal/auth/app"
)

func main() {
	if err := app.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "siteadmin:", err)
		os.Exit(1)
	}
}
