// Command report schedules the sample programs under every hazard mode and
// prints their cycle counts side by side.
//
// Usage:
//
//	go run ./cmd/report [flags]
//
// Flags:
//
//	-csv             Output results in CSV format (default: human-readable)
//	-json            Output results as JSON
//	-mode            Only report one hazard mode
//	-program         Only report one sample program
//	-zero-hardwired  Treat register $0 as carrying no dependencies
//
// Example:
//
//	# Compare stall and forwarding costs in a spreadsheet
//	go run ./cmd/report -csv > report.csv
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/pipeviz/programs"
	"github.com/sarchlab/pipeviz/timing/pipeline"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	csvOutput := fs.Bool("csv", false, "Output results in CSV format")
	jsonOutput := fs.Bool("json", false, "Output results as JSON")
	modeName := fs.String("mode", "", "Only report this hazard mode")
	programName := fs.String("program", "", "Only report this sample program")
	zeroHardwired := fs.Bool("zero-hardwired", false, "Treat register $0 as carrying no dependencies")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *csvOutput && *jsonOutput {
		return fmt.Errorf("-csv and -json are mutually exclusive")
	}

	config := programs.DefaultConfig()
	config.Output = out

	if *modeName != "" {
		mode, err := pipeline.ParseMode(*modeName)
		if err != nil {
			return err
		}
		config.Modes = []pipeline.Mode{mode}
	}

	if *zeroHardwired {
		config.HazardUnit = pipeline.NewHazardUnit(pipeline.WithZeroRegisterHardwired())
	}

	harness := programs.NewHarness(config)
	if *programName != "" {
		p, err := programs.Get(*programName)
		if err != nil {
			return err
		}
		harness.AddProgram(p)
	} else {
		harness.AddPrograms(programs.All())
	}

	results := harness.RunAll()

	switch {
	case *csvOutput:
		harness.PrintCSV(results)
	case *jsonOutput:
		return harness.PrintJSON(results)
	default:
		harness.PrintResults(results)
	}

	return nil
}
