// Package asm reads a small line-oriented assembly language into a chunk so
// bytecode can be built and inspected without a compiler.
//
// Each non-blank line has the form
//
//	<line>: <opcode> [operand ...]
//	<line>: push <literal>
//	.constant <literal>
//
// where <line> is the source line recorded for every byte of the
// instruction, <opcode> is an opcode name with or without its "OP_" prefix
// and operands are raw bytes. "push" adds a constant and emits the matching
// constant instruction. ".constant" only adds to the constant pool. Literals
// are numbers, double-quoted strings, true, false or nil. Text after '#' is a
// comment.
package asm

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/axelmagn/lox/chunk"
	"github.com/axelmagn/lox/op"
	"github.com/axelmagn/lox/value"
)

// SyntaxError describes a malformed assembly line.
type SyntaxError struct {
	Line    int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Parse assembles the listing read from r into a new chunk. All syntax errors
// are collected; the chunk is only returned when there are none.
func Parse(r io.Reader) (*chunk.Chunk, error) {
	c := chunk.New()
	var result *multierror.Error
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		text := stripComment(scanner.Text())
		if text == "" {
			continue
		}
		if err := parseLine(c, text); err != nil {
			result = multierror.Append(result, &SyntaxError{Line: lineNum, Message: err.Error()})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading assembly: %w", err)
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return c, nil
}

func stripComment(s string) string {
	inString, escaped := false, false
	for i, r := range s {
		switch {
		case escaped:
			escaped = false
		case r == '\\' && inString:
			escaped = true
		case r == '"':
			inString = !inString
		case r == '#' && !inString:
			return strings.TrimSpace(s[:i])
		}
	}
	return strings.TrimSpace(s)
}

func parseLine(c *chunk.Chunk, text string) error {
	if rest, ok := strings.CutPrefix(text, ".constant"); ok {
		v, err := parseLiteral(strings.TrimSpace(rest))
		if err != nil {
			return err
		}
		c.AddConstant(v)
		return nil
	}

	prefix, rest, ok := strings.Cut(text, ":")
	if !ok {
		return fmt.Errorf("expected \"<line>: <instruction>\", got %q", text)
	}
	line, err := strconv.Atoi(strings.TrimSpace(prefix))
	if err != nil || line < 0 {
		return fmt.Errorf("invalid source line %q", strings.TrimSpace(prefix))
	}
	rest = strings.TrimSpace(rest)
	name, args, _ := strings.Cut(rest, " ")
	args = strings.TrimSpace(args)

	if name == "push" {
		v, err := parseLiteral(args)
		if err != nil {
			return err
		}
		_, err = c.WriteConstant(v, line)
		return err
	}

	code, ok := op.Lookup(strings.ToUpper(name))
	if !ok {
		return fmt.Errorf("unknown opcode %q", name)
	}
	operands := strings.Fields(args)
	if want := op.GetInfo(code).OperandCount; len(operands) != want {
		return fmt.Errorf("%s takes %d operand(s), got %d", code, want, len(operands))
	}
	bytes := make([]byte, 0, len(operands))
	for _, operand := range operands {
		b, err := strconv.ParseUint(operand, 0, 8)
		if err != nil {
			return fmt.Errorf("invalid operand %q: must be a byte", operand)
		}
		bytes = append(bytes, byte(b))
	}
	c.WriteOp(code, line)
	for _, b := range bytes {
		c.Write(b, line)
	}
	return nil
}

func parseLiteral(s string) (value.Value, error) {
	switch s {
	case "":
		return nil, fmt.Errorf("missing literal")
	case "nil":
		return nil, nil
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	if strings.HasPrefix(s, `"`) {
		str, err := strconv.Unquote(s)
		if err != nil {
			return nil, fmt.Errorf("invalid string literal %s", s)
		}
		return str, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid literal %q", s)
	}
	return f, nil
}
