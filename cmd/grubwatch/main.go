// Command grubwatch inspects Tales of Monkey Island 3 grub counters, either
// from a save file on disk or live from a running process's memory.
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "decode":
		err = runDecode(os.Args[2:])
	case "watch":
		err = runWatch(os.Args[2:])
	case "-h", "--help", "help":
		usage()
		return
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "grubwatch:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `grubwatch is a read-only inspector for Tales of Monkey Island 3 grub counters.

Usage:
  grubwatch decode <path|dir> [-glob pattern]
  grubwatch watch [-config settings.yaml] [-once] [-verbose]`)
}
