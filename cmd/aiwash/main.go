// Package main implements the aiwash CLI: sentence extraction, centroid
// building, batch classification, and held-out evaluation for AI-washing
// analysis of corporate filings.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
