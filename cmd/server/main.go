package main

import (
	"log"

	"activityhub/internal/cli"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := cli.NewRootCommand(version).Execute(); err != nil {
		log.Fatalf("activityhub: %v", err)
	}
}
