package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/hokaccha/go-prettyjson"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/axelmagn/lox/chunk"
	"github.com/axelmagn/lox/dis"
	"github.com/axelmagn/lox/internal/asm"
	"github.com/axelmagn/lox/op"
)

func newDisCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dis [file]",
		Short: "Assemble a chunk listing and disassemble it",
		Long: `Assemble a chunk from a listing and print its disassembly.

With no input the built-in demo chunk is used: the constant 1.5 loaded on
line 123 followed by a return on line 124.`,
		Args: cobra.MaximumNArgs(1),
		RunE: disHandler,
	}
	flags := cmd.Flags()
	flags.StringP("code", "c", "", "assembly listing to disassemble")
	flags.Bool("stdin", false, "read the listing from stdin")
	flags.StringP("name", "n", "", "name shown in the listing header")
	flags.StringP("output", "o", "text", "output format (text, table, json)")
	return cmd
}

func disHandler(cmd *cobra.Command, args []string) error {
	source, name, demo, err := getDisSource(cmd, args)
	if err != nil {
		return err
	}

	var c *chunk.Chunk
	if demo {
		c = demoChunk()
	} else {
		c, err = asm.Parse(strings.NewReader(source))
		if err != nil {
			return err
		}
	}
	defer c.Free()
	log.Debug().
		Str("name", name).
		Int("count", c.Count()).
		Int("capacity", c.Capacity()).
		Int("constants", c.ConstantCount()).
		Msg("assembled chunk")

	if n, _ := cmd.Flags().GetString("name"); n != "" {
		name = n
	}
	out := cmd.OutOrStdout()
	output, _ := cmd.Flags().GetString("output")
	switch output {
	case "text":
		return dis.DisassembleChunk(out, c, name)
	case "table":
		instructions, err := dis.Disassemble(c)
		dis.Print(instructions, out)
		return err
	case "json":
		instructions, err := dis.Disassemble(c)
		if jsonErr := writeJSON(out, instructions); jsonErr != nil {
			return jsonErr
		}
		return err
	default:
		return fmt.Errorf("unknown output format %q", output)
	}
}

// getDisSource returns the listing to assemble and a name for it. When no
// input source is given, demo is set and the listing is empty.
func getDisSource(cmd *cobra.Command, args []string) (source, name string, demo bool, err error) {
	codeSet := cmd.Flags().Changed("code")
	stdinSet, _ := cmd.Flags().GetBool("stdin")
	fileProvided := len(args) > 0

	count := 0
	for _, set := range []bool{codeSet, stdinSet, fileProvided} {
		if set {
			count++
		}
	}
	if count > 1 {
		return "", "", false, errors.New("multiple input sources specified")
	}

	switch {
	case stdinSet:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", false, err
		}
		return string(data), "stdin", false, nil
	case fileProvided:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", false, err
		}
		return string(data), args[0], false, nil
	case codeSet:
		code, _ := cmd.Flags().GetString("code")
		return code, "code", false, nil
	}
	return "", "demo", true, nil
}

func demoChunk() *chunk.Chunk {
	c := chunk.New()
	constant := c.AddConstant(1.5)
	c.WriteOp(op.Constant, 123)
	c.Write(byte(constant), 123)
	c.WriteOp(op.Return, 124)
	return c
}

func writeJSON(w io.Writer, v any) error {
	var data []byte
	var err error
	if f, ok := w.(*os.File); ok && isTerminal(f) && !color.NoColor {
		data, err = prettyjson.Marshal(v)
	} else {
		data, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
