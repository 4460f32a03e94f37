// Package dis supports analysis of lox bytecode by disassembling it.
// This works with the opcodes defined in the `op` package and uses the
// InstructionIter type from the `chunk` package.
package dis

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"

	"github.com/axelmagn/lox/chunk"
	"github.com/axelmagn/lox/internal/table"
	"github.com/axelmagn/lox/op"
	"github.com/axelmagn/lox/value"
)

// Instruction represents a single bytecode instruction and its operands.
type Instruction struct {
	Offset     int         `json:"offset"`
	Line       int         `json:"line"`
	Name       string      `json:"name"`
	Opcode     op.Code     `json:"opcode"`
	Operands   []int       `json:"operands,omitempty"`
	Annotation string      `json:"annotation,omitempty"`
	Constant   value.Value `json:"constant,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// Disassemble returns a parsed representation of the given chunk. Decoding
// continues past malformed instructions; each problem is recorded on its
// instruction and all of them are returned together as the error.
func Disassemble(c *chunk.Chunk) ([]Instruction, error) {
	var instructions []Instruction
	var result *multierror.Error
	iter := chunk.NewInstructionIter(c)
	for {
		val, ok := iter.Next()
		if !ok {
			break
		}
		info := op.GetInfo(val.Op)
		instr := Instruction{
			Offset: val.Offset,
			Line:   val.Line,
			Name:   info.Name,
			Opcode: val.Op,
		}
		for _, b := range val.Operands {
			instr.Operands = append(instr.Operands, int(b))
		}
		if err := annotate(c, val, &instr); err != nil {
			instr.Error = err.Error()
			result = multierror.Append(result, fmt.Errorf("offset %d: %w", val.Offset, err))
		}
		instructions = append(instructions, instr)
	}
	return instructions, result.ErrorOrNil()
}

func annotate(c *chunk.Chunk, val chunk.Instruction, instr *Instruction) error {
	if !val.Op.IsValid() {
		return fmt.Errorf("unknown opcode %d", uint8(val.Op))
	}
	if val.Truncated() {
		return fmt.Errorf("truncated %s instruction", instr.Name)
	}
	var index int
	switch val.Op {
	case op.Constant:
		index = int(val.Operands[0])
	case op.ConstantLong:
		index = op.DecodeLong(val.Operands[0], val.Operands[1], val.Operands[2])
	default:
		return nil
	}
	constant, err := getConstantValue(c, index)
	if err != nil {
		return err
	}
	instr.Constant = constant
	instr.Annotation = value.Format(constant)
	return nil
}

func getConstantValue(c *chunk.Chunk, index int) (value.Value, error) {
	if c.ConstantCount() <= index {
		return nil, fmt.Errorf("constant index out of range: %d", index)
	}
	return c.ConstantAt(index), nil
}

// constantIndex returns the decoded constant operand of a well-formed
// constant instruction.
func constantIndex(instr Instruction) int {
	if instr.Opcode == op.ConstantLong {
		return instr.Operands[0] | instr.Operands[1]<<8 | instr.Operands[2]<<16
	}
	return instr.Operands[0]
}

// DisassembleChunk writes a listing of the chunk under a "== name ==" header,
// one instruction per line. Malformed instructions are listed as they are
// found and reported in the returned error.
func DisassembleChunk(w io.Writer, c *chunk.Chunk, name string) error {
	instructions, err := Disassemble(c)
	fmt.Fprintf(w, "== %s ==\n", name)
	for _, instr := range instructions {
		sameLine := instr.Offset > 0 && c.LineAt(instr.Offset-1) == instr.Line
		fmt.Fprintln(w, FormatInstruction(instr, sameLine))
	}
	return err
}

// FormatInstruction renders one instruction as a listing line. The line
// column shows "|" instead of the line number when sameLine is set, which
// DisassembleChunk does when the byte before the instruction has the same
// line.
func FormatInstruction(instr Instruction, sameLine bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%04d ", instr.Offset)
	if sameLine {
		sb.WriteString("   | ")
	} else {
		fmt.Fprintf(&sb, "%4d ", instr.Line)
	}
	switch {
	case instr.Name == "":
		fmt.Fprintf(&sb, "Unknown opcode: %d", uint8(instr.Opcode))
	case instr.Error != "":
		fmt.Fprintf(&sb, "%-16s %s", instr.Name, instr.Error)
	case instr.Opcode == op.Constant || instr.Opcode == op.ConstantLong:
		fmt.Fprintf(&sb, "%-16s %4d '%s'", instr.Name, constantIndex(instr), instr.Annotation)
	default:
		sb.WriteString(instr.Name)
	}
	return sb.String()
}

var (
	bold   = color.New(color.Bold).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	cyan   = color.New(color.FgHiCyan).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	italic = color.New(color.Italic).SprintFunc()
)

// Print a string representation of the given instructions to the given writer.
// Colors follow github.com/fatih/color, which disables them when output is not
// a terminal.
func Print(instructions []Instruction, writer io.Writer) {
	var lines [][]string
	for _, instr := range instructions {
		var values []string
		values = append(values, fmt.Sprintf("%d", instr.Offset))
		values = append(values, fmt.Sprintf("%d", instr.Line))
		if instr.Name == "" {
			values = append(values, italic(fmt.Sprintf("<%d>", uint8(instr.Opcode))))
		} else {
			values = append(values, bold(instr.Name))
		}
		values = append(values, formatOperands(instr.Operands))
		switch {
		case instr.Error != "":
			values = append(values, red(instr.Error))
		case instr.Annotation != "" || instr.Constant != nil:
			values = append(values, formatConstant(instr.Constant))
		default:
			values = append(values, "")
		}
		lines = append(lines, values)
	}

	table.NewTable(writer).
		WithHeader([]string{"OFFSET", "LINE", "OPCODE", "OPERANDS", "INFO"}).
		WithColumnAlignment([]table.Alignment{
			table.AlignRight,
			table.AlignRight,
			table.AlignLeft,
			table.AlignRight,
			table.AlignLeft,
		}).
		WithHeaderAlignment([]table.Alignment{
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
		}).
		WithRows(lines).
		Render()
}

func formatConstant(c value.Value) string {
	switch c := c.(type) {
	case nil:
		return italic("nil")
	case float64, float32, int, int64:
		return yellow(value.Format(c))
	case string:
		if len(c) > 80 {
			c = c[:77] + "..."
		}
		return green(fmt.Sprintf("%q", c))
	case bool:
		return cyan(value.Format(c))
	default:
		return bold(value.Format(c))
	}
}

func formatOperands(ops []int) string {
	var sb strings.Builder
	for i, op := range ops {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(fmt.Sprintf("%d", op))
	}
	return sb.String()
}
