package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/galygious/grubwatch/save"
)

// runDecode implements `grubwatch decode <path|dir>`. A directory is scanned
// with -glob (default *.save; the config file is not read here); a plain file is
// decoded directly. This is argument-parsing glue over save.DecodeFile, not
// core logic.
func runDecode(args []string) error {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	glob := fs.String("glob", "*.save", "glob pattern used when the target is a directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: grubwatch decode <path|dir> [-glob pattern]")
	}
	target := fs.Arg(0)

	info, err := os.Stat(target)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		return decodeOne(target)
	}

	matches, err := filepath.Glob(filepath.Join(target, *glob))
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return fmt.Errorf("no files matching %s in %s", *glob, target)
	}

	var failed int
	for _, path := range matches {
		if err := decodeOne(path); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to decode", failed, len(matches))
	}
	return nil
}

func decodeOne(path string) error {
	count, err := save.DecodeFile(path)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d\n", path, count)
	return nil
}
