package main

import (
	"os"

	"github.com/wonny/flowrank/backend/cmd/flowrank/commands"
)

// main is the entry point for the FlowRank CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/flowrank [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
