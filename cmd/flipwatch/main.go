package main

import (
	"os"

	"github.com/wonny/flipwatch/cmd/flipwatch/commands"
)

// main is the entry point for the flipwatch CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/flipwatch [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
