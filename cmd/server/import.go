package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hazyhaar/fangyan/pkg/dict"
	"github.com/hazyhaar/fangyan/pkg/importer"
)

func cmdImport(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	common := addCommonFlags(fs)
	format := fs.String("format", "", "entry format: json or csv (default: from extension)")
	delimiter := fs.String("delimiter", "", "CSV delimiter (default ,)")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: fangyan import [-format json|csv] FILE|URL")
		os.Exit(1)
	}
	location := fs.Arg(0)

	logger := newLogger("info")
	cfg := common.resolve(logger)
	logger = newLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	entries, err := importer.Read(ctx, importer.Source{
		Location: location,
		Format:   *format,
		Spec:     dict.FormatSpec{Delimiter: *delimiter},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	reg, st := openRegistry(cfg, logger)
	defer st.Close()

	n, err := reg.Import(ctx, entries, location)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Imported %d entries from %s\n", n, location)
}

func cmdReset(args []string) {
	fs := flag.NewFlagSet("reset", flag.ExitOnError)
	common := addCommonFlags(fs)
	fs.Parse(args)

	logger := newLogger("info")
	cfg := common.resolve(logger)
	logger = newLogger(cfg.LogLevel)

	reg, st := openRegistry(cfg, logger)
	defer st.Close()

	n, err := reg.Reset(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Imported set cleared, %d base entries active\n", n)
}

func cmdInstall(args []string) {
	fs := flag.NewFlagSet("install", flag.ExitOnError)
	common := addCommonFlags(fs)
	id := fs.String("id", "", "dataset ID (required)")
	dialect := fs.String("dialect", "", "default dialect of the entries")
	dsVersion := fs.String("version", "", "dataset version")
	source := fs.String("source", "", "human-readable source")
	license := fs.String("license", "", "license identifier")
	format := fs.String("format", "", "entry format: json or csv (default: from extension)")
	mandarinPinyin := fs.Bool("mandarin-pinyin", false, "derive Mandarin pinyin search keywords")
	fs.Parse(args)

	if *id == "" || fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: fangyan install -id ID [-dialect D] [-license L] FILE|URL")
		os.Exit(1)
	}

	logger := newLogger("info")
	cfg := common.resolve(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := &dict.Manifest{
		ID:             *id,
		Version:        *dsVersion,
		Dialect:        *dialect,
		Source:         *source,
		License:        *license,
		MandarinPinyin: *mandarinPinyin,
	}
	n, err := importer.Install(ctx, importer.Source{Location: fs.Arg(0), Format: *format}, cfg.DictsDir, m)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("[%s] installed %d entries into %s\n", *id, n, cfg.DictsDir)
}

func cmdCompile(args []string) {
	fs := flag.NewFlagSet("compile", flag.ExitOnError)
	dir := fs.String("dict", "", "dataset directory containing manifest.yaml")
	fs.Parse(args)

	if *dir == "" {
		fmt.Fprintln(os.Stderr, "Usage: fangyan compile -dict DIR")
		os.Exit(1)
	}

	n, err := dict.Compile(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d entries to %s\n", n, *dir+"/"+dict.GobFile)
}
