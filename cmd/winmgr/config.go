package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/1broseidon/winmgr/internal/config"
	"gopkg.in/yaml.v3"
)

func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  winmgr config validate [--path PATH]")
	fmt.Fprintln(w, "  winmgr config print [--path PATH] [--defaults] [--format json|yaml]")
	fmt.Fprintln(w, "  winmgr config path")
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printConfigUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: $WINMGR_CONFIG or ~/winmgr.json)")
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}

		cfg, resolved, found, err := readConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if !found {
			fmt.Printf("config: %s does not exist, defaults apply\n", resolved)
			return 0
		}
		fmt.Printf("config: ok (%d keybinds, margin %d)\n", len(cfg.Keybinds), cfg.Margin)
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: $WINMGR_CONFIG or ~/winmgr.json)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		format := fs.String("format", "json", "Output format: json or yaml")
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}
		if *format != "json" && *format != "yaml" {
			fmt.Fprintf(os.Stderr, "unknown format %q\n", *format)
			return 2
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
			var err error
			cfg, _, _, err = readConfig(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
		}

		var data []byte
		var err error
		if *format == "yaml" {
			data, err = yaml.Marshal(cfg)
		} else {
			data, err = cfg.Marshal()
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	case "path":
		if len(args) > 1 {
			fmt.Fprintln(os.Stderr, "path takes no arguments")
			return 2
		}
		p, err := config.DefaultConfigPath()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println(p)
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

// readConfig parses the config without creating it. A missing file yields
// the defaults with found set to false.
func readConfig(path string) (cfg *config.Config, resolved string, found bool, err error) {
	resolved = path
	if resolved == "" {
		if resolved, err = config.DefaultConfigPath(); err != nil {
			return nil, "", false, err
		}
	}
	cfg, err = config.ReadFromPath(resolved)
	if errors.Is(err, fs.ErrNotExist) {
		return config.DefaultConfig(), resolved, false, nil
	}
	if err != nil {
		return nil, resolved, true, err
	}
	return cfg, resolved, true, nil
}
