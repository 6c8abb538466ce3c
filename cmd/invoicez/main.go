package main

import (
	"os"
	"strings"

	"github.com/joho/godotenv"

	"invoicez/internal/cli"
	appLog "invoicez/internal/log"
)

// version is overridden by the linker on release builds.
var version = "dev"

func main() {
	// A .env next to the invoice repository may carry proxy settings or
	// a LOG_LEVEL override; absence is fine.
	_ = godotenv.Load()

	switch strings.ToUpper(os.Getenv("LOG_LEVEL")) {
	case "DEBUG":
		appLog.SetLevel(appLog.LevelDebug)
	case "WARN":
		appLog.SetLevel(appLog.LevelWarn)
	case "ERROR":
		appLog.SetLevel(appLog.LevelError)
	}

	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
