package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/woozymasta/worldtile/internal/regions"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Input     string `short:"i" long:"in"        description:"Open-states GeoJSON file. Reads from stdin if empty"`
	Output    string `short:"o" long:"out"       description:"Output file path. Writes to stdout if empty"`
	Format    string `short:"f" long:"format"    description:"Output format" choice:"json" choice:"yaml" default:"json"`
	Normalize bool   `short:"n" long:"normalize" description:"Enforce RFC 7946 ring winding (outer CCW, holes CW)"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	data, err := readInput(opts.Input)
	if err != nil {
		fatalf("reading input: %v", err)
	}

	c, err := regions.Parse(data)
	if err != nil {
		fatalf("parsing open states: %v", err)
	}

	out, err := encode(regions.BuildInverse(c, regions.InverseOptions{Normalize: opts.Normalize}), opts.Format)
	if err != nil {
		fatalf("encoding overlay: %v", err)
	}

	if opts.Output == "" {
		fmt.Println(string(out))
		return
	}

	if err := os.WriteFile(opts.Output, out, 0644); err != nil {
		fatalf("writing %s: %v", opts.Output, err)
	}

	fmt.Fprintf(os.Stderr, "Locked overlay with %d holes (%d features skipped) written to %s as %s\n",
		len(regions.ExtractOuterRings(c)), c.Skipped, opts.Output, opts.Format)
}

func readInput(path string) ([]byte, error) {
	if path == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// encode renders the overlay as indented JSON or as YAML.
// orb types only marshal to JSON, so YAML goes through a generic JSON decode.
func encode(v interface{}, format string) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil || format != "yaml" {
		return data, err
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error "+format+"\n", args...)
	os.Exit(1)
}
