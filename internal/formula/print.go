package formula

import "strings"

// Print renders an AST back to formula source text (without the
// leading "="), following the original printer's join rules:
// comparison/additive/multiplicative operators are space-joined,
// concatenation is joined with " & ", unary operators have no space,
// and cell/range references are rendered through ref.Reference's own
// String method so sheet-name quoting stays centralized in one place.
func Print(n Node) string {
	var b strings.Builder
	print1(&b, n)
	return b.String()
}

func print1(b *strings.Builder, n Node) {
	switch v := n.(type) {
	case NumberNode:
		b.WriteString(v.Text)
	case StringNode:
		b.WriteString(`"`)
		b.WriteString(strings.ReplaceAll(v.Value, `"`, `""`))
		b.WriteString(`"`)
	case BooleanNode:
		if v.Value {
			b.WriteString("TRUE")
		} else {
			b.WriteString("FALSE")
		}
	case ErrorLiteralNode:
		b.WriteString(v.Text)
	case *CellRefNode:
		printCellRef(b, v)
	case *RangeNode:
		printCellRef(b, &v.Start)
		b.WriteString(":")
		printCellRef(b, &v.End)
	case *BinaryOpNode:
		print1(b, v.Left)
		b.WriteString(" ")
		b.WriteString(v.Op)
		b.WriteString(" ")
		print1(b, v.Right)
	case *UnaryOpNode:
		b.WriteString(v.Op)
		print1(b, v.Operand)
	case *ParenNode:
		b.WriteString("(")
		print1(b, v.Inner)
		b.WriteString(")")
	case *FunctionCallNode:
		b.WriteString(v.Name)
		b.WriteString("(")
		for i, a := range v.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			print1(b, a)
		}
		b.WriteString(")")
	}
}

func printCellRef(b *strings.Builder, c *CellRefNode) {
	if c.Malformed {
		b.WriteString(c.RefText)
		return
	}
	if c.SheetGiven {
		b.WriteString(c.Reference.String())
		return
	}
	b.WriteString(c.Reference.LocationString())
}
