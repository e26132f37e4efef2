// Package main provides the entry point for PipeViz.
// PipeViz shows MIPS instructions moving through a five-stage pipeline,
// cycle by cycle, under normal, stall and forwarding hazard handling.
//
// For the full CLI, use: go run ./cmd/pipeviz
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("PipeViz - Five-Stage Pipeline Visualizer")
	fmt.Println("")
	fmt.Println("Usage: pipeviz [options] [program-file]")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -program      Sample program to run")
	fmt.Println("  -mode         Hazard mode: normal, stall or forwarding")
	fmt.Println("  -freq         Cycles per second")
	fmt.Println("  -config       Path to a JSON or YAML configuration file")
	fmt.Println("  -script       Lua script to run instead of the viewer")
	fmt.Println("  -interactive  Read control keys from the terminal")
	fmt.Println("  -static       Print the full timeline and exit")
	fmt.Println("  -legend       Explain the stages and hazards after -static")
	fmt.Println("  -v            Log verbosity")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/pipeviz' for the full CLI and 'go run ./cmd/report'")
	fmt.Println("for a cycle comparison of the sample programs.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/pipeviz' instead.")
	}
}
