package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/1broseidon/winmgr/internal/geometry"
)

func printLayoutUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  winmgr layout list [--json]")
	fmt.Fprintln(w, "  winmgr layout resolve <layout> --area x,y,w,h [--margin N] [--json]")
}

func runLayout(args []string) int {
	if len(args) == 0 {
		printLayoutUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "list":
		return runLayoutList(args[1:])
	case "resolve":
		return runLayoutResolve(args[1:])
	case "help", "-h", "--help":
		printLayoutUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown layout subcommand: %s\n\n", args[0])
		printLayoutUsage(os.Stderr)
		return 2
	}
}

type layoutJSON struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func runLayoutList(args []string) int {
	fs := flag.NewFlagSet("layout list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print layouts as JSON")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "layout list takes no arguments")
		return 2
	}

	presets := geometry.Presets()
	if *asJSON {
		out := make([]layoutJSON, 0, len(presets))
		for _, p := range presets {
			out = append(out, layoutJSON{Name: string(p), Description: p.Describe()})
		}
		return printJSON(out)
	}
	for _, p := range presets {
		fmt.Printf("%-16s %s\n", p, p.Describe())
	}
	return 0
}

func runLayoutResolve(args []string) int {
	fs := flag.NewFlagSet("layout resolve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	area := fs.String("area", "", "Work area as x,y,w,h (required)")
	margin := fs.Int("margin", 0, "Inset in pixels applied on every side")
	asJSON := fs.Bool("json", false, "Print the rectangle as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winmgr layout resolve <layout> --area x,y,w,h [--margin N]")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}

	// Accept the layout before or after the flags.
	var positional []string
	for len(args) > 0 {
		if err := fs.Parse(args); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}
		if fs.NArg() == 0 {
			break
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}
	if len(positional) != 1 {
		fmt.Fprintln(os.Stderr, "resolve requires exactly one layout")
		fs.Usage()
		return 2
	}
	if *area == "" {
		fmt.Fprintln(os.Stderr, "--area is required")
		fs.Usage()
		return 2
	}
	if *margin < 0 || *margin > geometry.MaxMargin {
		fmt.Fprintf(os.Stderr, "--margin must be between 0 and %d\n", geometry.MaxMargin)
		return 2
	}

	layout, err := parseLayoutArg(positional[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	workArea, err := parseRect(*area)
	if err != nil {
		fmt.Fprintf(os.Stderr, "--area: %v\n", err)
		return 2
	}

	res, err := geometry.Resolve(layout, workArea, *margin)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		return printJSON(struct {
			Layout  string        `json:"layout"`
			Rect    geometry.Rect `json:"rect"`
			Clamped bool          `json:"clamped,omitempty"`
		}{layout.String(), res.Rect, res.Clamped})
	}
	fmt.Println(res.Rect)
	if res.Clamped {
		fmt.Fprintln(os.Stderr, "warning: margin leaves no room, size clamped to 1px")
	}
	return 0
}

// parseLayoutArg accepts a preset name or an absolute x,y,w,h rectangle.
func parseLayoutArg(s string) (geometry.Layout, error) {
	if p, ok := geometry.ParsePreset(s); ok {
		return geometry.PresetLayout(p), nil
	}
	if strings.Contains(s, ",") {
		r, err := parseRect(s)
		if err != nil {
			return geometry.Layout{}, err
		}
		return geometry.CustomLayout(r), nil
	}
	return geometry.Layout{}, fmt.Errorf("unknown layout %q (see 'winmgr layout list')", s)
}

func parseRect(s string) (geometry.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return geometry.Rect{}, fmt.Errorf("expected x,y,w,h, got %q", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return geometry.Rect{}, fmt.Errorf("invalid number %q", p)
		}
		v[i] = n
	}
	if v[2] <= 0 || v[3] <= 0 {
		return geometry.Rect{}, fmt.Errorf("width and height must be positive")
	}
	return geometry.Rect{X: v[0], Y: v[1], Width: v[2], Height: v[3]}, nil
}

func printJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
