// Command sheetctl is a small CLI over pkg/sheetapi: load a workbook
// document, apply edits to it, and print cell values or contents --
// useful for smoke-testing the engine and for scripting batch edits
// from a shell without writing Go.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sheetcore/engine/internal/config"
	"github.com/sheetcore/engine/internal/telemetry"
	"github.com/sheetcore/engine/pkg/sheetapi"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "get":
		runGet(os.Args[2:])
	case "set":
		runSet(os.Args[2:])
	case "list":
		runList(os.Args[2:])
	case "extent":
		runExtent(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: sheetctl <command> [flags]

commands:
  get    --in FILE --sheet NAME --cell LOC       print a cell's value
  set    --in FILE --out FILE --sheet NAME --cell LOC --text TEXT
                                                  set a cell and save the result
  list   --in FILE                               list sheet names
  extent --in FILE --sheet NAME                  print a sheet's (cols, rows) extent`)
}

func commonFlags(fs *flag.FlagSet) (in, cfgPath *string) {
	in = fs.String("in", "", "workbook JSON document to load")
	cfgPath = fs.String("config", "", "optional YAML config (log level; grid bounds are informational)")
	return
}

func loadLimits(cfgPath string) config.Limits {
	if cfgPath == "" {
		return config.Default
	}
	limits, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sheetctl: %v\n", err)
		os.Exit(1)
	}
	return limits
}

func openSheet(path string, log telemetry.Logger) *sheetapi.Spreadsheet {
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sheetctl: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	s := sheetapi.NewWithLogger(log)
	if err := s.LoadWorkbook(f); err != nil {
		fmt.Fprintf(os.Stderr, "sheetctl: load %s: %v\n", path, err)
		os.Exit(1)
	}
	return s
}

func runGet(args []string) {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	in, cfgPath := commonFlags(fs)
	sheet := fs.String("sheet", "", "sheet name")
	cell := fs.String("cell", "", "cell location, e.g. A1")
	fs.Parse(args)

	limits := loadLimits(*cfgPath)
	log := telemetry.New(os.Stderr, limits.ZerologLevel())
	s := openSheet(*in, log)

	v, err := s.GetCellValue(*sheet, *cell)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sheetctl: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(v.ToDisplayString())
}

func runSet(args []string) {
	fs := flag.NewFlagSet("set", flag.ExitOnError)
	in, cfgPath := commonFlags(fs)
	out := fs.String("out", "", "workbook JSON document to write")
	sheet := fs.String("sheet", "", "sheet name")
	cell := fs.String("cell", "", "cell location, e.g. A1")
	text := fs.String("text", "", "new cell contents")
	fs.Parse(args)

	limits := loadLimits(*cfgPath)
	log := telemetry.New(os.Stderr, limits.ZerologLevel())
	s := openSheet(*in, log)

	if err := s.SetCellContents(*sheet, *cell, *text); err != nil {
		fmt.Fprintf(os.Stderr, "sheetctl: %v\n", err)
		os.Exit(1)
	}

	if *out == "" {
		fmt.Fprintln(os.Stderr, "sheetctl: --out is required for set")
		os.Exit(2)
	}
	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sheetctl: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()
	if err := s.SaveWorkbook(f); err != nil {
		fmt.Fprintf(os.Stderr, "sheetctl: %v\n", err)
		os.Exit(1)
	}
}

func runList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	in, cfgPath := commonFlags(fs)
	fs.Parse(args)

	limits := loadLimits(*cfgPath)
	log := telemetry.New(os.Stderr, limits.ZerologLevel())
	s := openSheet(*in, log)
	for _, name := range s.ListSheets() {
		fmt.Println(name)
	}
}

func runExtent(args []string) {
	fs := flag.NewFlagSet("extent", flag.ExitOnError)
	in, cfgPath := commonFlags(fs)
	sheet := fs.String("sheet", "", "sheet name")
	fs.Parse(args)

	limits := loadLimits(*cfgPath)
	log := telemetry.New(os.Stderr, limits.ZerologLevel())
	s := openSheet(*in, log)
	cols, rows, err := s.GetSheetExtent(*sheet)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sheetctl: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%d %d\n", cols, rows)
}
