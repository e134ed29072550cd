// Command cborjson converts CBOR documents to JSON and back.
//
// By default it reads CBOR from the input and writes JSON to the
// output; --reverse flips the direction. "-" selects stdin/stdout.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	cbor "github.com/synadia-labs/cbor-stream/runtime"
)

// CLI defines the cborjson command-line interface.
//
// We deliberately keep it minimal:
//   - input: CBOR (or JSON with --reverse) file, "-" for stdin
//   - output: destination file, "-" for stdout
//   - reverse: convert JSON to CBOR instead
type CLI struct {
	Input   string `arg:"" optional:"" help:"Input file (default: stdin)" default:"-"`
	Output  string `short:"o" help:"Output file (default: stdout)" default:"-"`
	Reverse bool   `short:"r" help:"Convert JSON to CBOR instead of CBOR to JSON"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("cborjson"),
		kong.Description("Convert CBOR documents to JSON and back."),
	)

	if err := run(&cli); err != nil {
		ctx.FatalIfErrorf(err)
	}
}

func run(cli *CLI) error {
	in, err := readInput(cli.Input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	var out []byte
	if cli.Reverse {
		out, err = cbor.FromJSONBytes(in)
	} else {
		out, err = cbor.ToJSONBytes(in)
		if err == nil {
			out = append(out, '\n')
		}
	}
	if err != nil {
		return fmt.Errorf("convert: %w", err)
	}

	return writeOutput(cli.Output, out)
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
