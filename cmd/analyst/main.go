// Package main - analyst CLI
//
// Usage:
//
//	go run ./cmd/analyst ratios AAPL
//	go run ./cmd/analyst report AAPL --sentiment --out aapl.md
//	go run ./cmd/analyst serve
package main

import (
	"os"

	"financial_analyst/cmd/analyst/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
