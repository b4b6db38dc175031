package adapter

import (
	"strings"

	m "cvariants.dev/pkg/cvariants/internal/model"
)

// CPrinter renders model ASTs back to C source text.
type CPrinter interface {
	// Print renders the include lines followed by the translation unit.
	Print(includes []string, file *m.File) []byte
	// Expr renders a single expression.
	Expr(e m.Expr) string
}

// SourcePrinter is the default CPrinter. Blocks open on their own line and
// nest by Indent.
type SourcePrinter struct {
	Indent string
}

// NewSourcePrinter constructs a SourcePrinter with two-space indentation.
func NewSourcePrinter() *SourcePrinter {
	return &SourcePrinter{Indent: "  "}
}

// Print renders includes and file.
func (p *SourcePrinter) Print(includes []string, file *m.File) []byte {
	var sb strings.Builder

	for _, inc := range includes {
		sb.WriteString(inc)
		sb.WriteString("\n")
	}

	if len(includes) > 0 {
		sb.WriteString("\n")
	}

	for i, item := range file.Items {
		switch it := item.(type) {
		case *m.FuncDef:
			if i > 0 {
				sb.WriteString("\n")
			}

			p.funcDef(&sb, it)
		case *m.Decl:
			sb.WriteString(p.decl(it))
			sb.WriteString(";\n")
		case *m.RawDecl:
			sb.WriteString(it.Text)
			sb.WriteString("\n")
		}
	}

	return []byte(sb.String())
}

func (p *SourcePrinter) funcDef(sb *strings.Builder, fd *m.FuncDef) {
	params := make([]string, 0, len(fd.Params)+1)
	for _, d := range fd.Params {
		params = append(params, p.decl(d))
	}

	if fd.Variadic {
		params = append(params, "...")
	}

	sb.WriteString(fd.ReturnType)
	sb.WriteString(" ")
	sb.WriteString(fd.Pointer)
	sb.WriteString(fd.Name)
	sb.WriteString("(")
	sb.WriteString(strings.Join(params, ", "))
	sb.WriteString(")\n")
	p.block(sb, fd.Body, 0)
}

func (p *SourcePrinter) decl(d *m.Decl) string {
	var sb strings.Builder

	sb.WriteString(d.Type)

	if d.Name != "" || d.Pointer != "" {
		sb.WriteString(" ")
	}

	sb.WriteString(d.Pointer)
	sb.WriteString(d.Name)

	for _, dim := range d.Dims {
		sb.WriteString("[")
		sb.WriteString(dim)
		sb.WriteString("]")
	}

	if d.Init != nil {
		sb.WriteString(" = ")
		sb.WriteString(p.expr(d.Init, precAssign))
	}

	return sb.String()
}

func (p *SourcePrinter) line(sb *strings.Builder, depth int, text string) {
	sb.WriteString(strings.Repeat(p.Indent, depth))
	sb.WriteString(text)
	sb.WriteString("\n")
}

func (p *SourcePrinter) block(sb *strings.Builder, b *m.Compound, depth int) {
	p.line(sb, depth, "{")

	for _, s := range b.Items {
		p.stmt(sb, s, depth+1)
	}

	p.line(sb, depth, "}")
}

// body prints a branch or loop body: blocks at the same depth, lone
// statements one level deeper.
func (p *SourcePrinter) body(sb *strings.Builder, s m.Stmt, depth int) {
	if b, ok := s.(*m.Compound); ok {
		p.block(sb, b, depth)

		return
	}

	p.stmt(sb, s, depth+1)
}

func (p *SourcePrinter) forInit(init []m.Stmt) string {
	if len(init) == 0 {
		return ""
	}

	if es, ok := init[0].(*m.ExprStmt); ok {
		return p.expr(es.X, precComma)
	}

	parts := make([]string, 0, len(init))

	for i, s := range init {
		d, ok := s.(*m.Decl)
		if !ok {
			continue
		}

		if i == 0 {
			parts = append(parts, p.decl(d))

			continue
		}

		parts = append(parts, strings.TrimPrefix(p.decl(d), d.Type+" "))
	}

	return strings.Join(parts, ", ")
}

//nolint:cyclop,funlen // one case per statement kind
func (p *SourcePrinter) stmt(sb *strings.Builder, s m.Stmt, depth int) {
	switch st := s.(type) {
	case *m.Compound:
		p.block(sb, st, depth)
	case *m.Decl:
		p.line(sb, depth, p.decl(st)+";")
	case *m.ExprStmt:
		p.line(sb, depth, p.expr(st.X, precComma)+";")
	case *m.If:
		p.line(sb, depth, "if ("+p.expr(st.Cond, precComma)+")")
		p.body(sb, st.Then, depth)
		p.elsePart(sb, st.Else, depth)
	case *m.For:
		cond, step := "", ""
		if st.Cond != nil {
			cond = " " + p.expr(st.Cond, precComma)
		}

		if st.Step != nil {
			step = " " + p.expr(st.Step, precComma)
		}

		p.line(sb, depth, "for ("+p.forInit(st.Init)+";"+cond+";"+step+")")
		p.body(sb, st.Body, depth)
	case *m.While:
		p.line(sb, depth, "while ("+p.expr(st.Cond, precComma)+")")
		p.body(sb, st.Body, depth)
	case *m.DoWhile:
		p.line(sb, depth, "do")
		p.body(sb, st.Body, depth)
		p.line(sb, depth, "while ("+p.expr(st.Cond, precComma)+");")
	case *m.Switch:
		p.line(sb, depth, "switch ("+p.expr(st.Cond, precComma)+")")
		p.body(sb, st.Body, depth)
	case *m.Case:
		if st.Value == nil {
			p.line(sb, depth, "default:")
		} else {
			p.line(sb, depth, "case "+p.expr(st.Value, precTernary)+":")
		}

		for _, inner := range st.Body {
			p.stmt(sb, inner, depth+1)
		}
	case *m.Return:
		if st.X == nil {
			p.line(sb, depth, "return;")
		} else {
			p.line(sb, depth, "return "+p.expr(st.X, precComma)+";")
		}
	case *m.Break:
		p.line(sb, depth, "break;")
	case *m.Continue:
		p.line(sb, depth, "continue;")
	case *m.Empty:
		p.line(sb, depth, ";")
	case *m.RawStmt:
		p.line(sb, depth, st.Text)
	}
}

// elsePart prints "else if" chains flat.
func (p *SourcePrinter) elsePart(sb *strings.Builder, s m.Stmt, depth int) {
	if s == nil {
		return
	}

	if b, ok := s.(*m.Compound); ok && b.Synthetic && len(b.Items) == 1 {
		if chained, ok := b.Items[0].(*m.If); ok {
			var inner strings.Builder

			p.stmt(&inner, chained, depth)
			sb.WriteString(strings.Repeat(p.Indent, depth))
			sb.WriteString("else ")
			sb.WriteString(strings.TrimPrefix(inner.String(), strings.Repeat(p.Indent, depth)))

			return
		}
	}

	p.line(sb, depth, "else")
	p.body(sb, s, depth)
}

// Operator precedence, higher binds tighter.
const (
	precComma = iota + 1
	precAssign
	precTernary
	precOr
	precAnd
	precBitOr
	precBitXor
	precBitAnd
	precEquality
	precRelational
	precShift
	precAdditive
	precMultiplicative
	precUnary
	precPostfix
	precPrimary
)

var binaryPrec = map[string]int{
	"||": precOr,
	"&&": precAnd,
	"|":  precBitOr,
	"^":  precBitXor,
	"&":  precBitAnd,
	"==": precEquality, "!=": precEquality,
	"<": precRelational, ">": precRelational, "<=": precRelational, ">=": precRelational,
	"<<": precShift, ">>": precShift,
	"+": precAdditive, "-": precAdditive,
	"*": precMultiplicative, "/": precMultiplicative, "%": precMultiplicative,
}

func precOf(e m.Expr) int {
	switch ex := e.(type) {
	case *m.Comma:
		return precComma
	case *m.Assignment:
		return precAssign
	case *m.Ternary:
		return precTernary
	case *m.BinaryOp:
		if prec, ok := binaryPrec[ex.Op]; ok {
			return prec
		}

		return precOr
	case *m.UnaryOp:
		if ex.Postfix {
			return precPostfix
		}

		return precUnary
	case *m.Cast:
		return precUnary
	case *m.Call, *m.Index, *m.Member:
		return precPostfix
	default:
		return precPrimary
	}
}

// Expr renders e without outer parentheses.
func (p *SourcePrinter) Expr(e m.Expr) string {
	return p.expr(e, precComma)
}

func (p *SourcePrinter) expr(e m.Expr, minPrec int) string {
	if e == nil {
		return ""
	}

	s := p.bare(e)
	if precOf(e) < minPrec {
		return "(" + s + ")"
	}

	return s
}

//nolint:cyclop // one case per expression kind
func (p *SourcePrinter) bare(e m.Expr) string {
	switch ex := e.(type) {
	case *m.Ident:
		return ex.Name
	case *m.Literal:
		return ex.Text
	case *m.RawExpr:
		return ex.Text
	case *m.BinaryOp:
		prec := precOf(ex)

		return p.expr(ex.Left, prec) + " " + ex.Op + " " + p.expr(ex.Right, prec+1)
	case *m.Assignment:
		return p.expr(ex.LHS, precUnary) + " " + ex.Op + " " + p.expr(ex.RHS, precAssign)
	case *m.Ternary:
		return p.expr(ex.Cond, precOr) + " ? " + p.expr(ex.Then, precComma) + " : " + p.expr(ex.Else, precTernary)
	case *m.UnaryOp:
		if ex.Postfix {
			return p.expr(ex.X, precPostfix) + ex.Op
		}

		operand := p.expr(ex.X, precUnary)
		if last := ex.Op[len(ex.Op)-1]; (last == '-' || last == '+' || last == '&') && strings.HasPrefix(operand, string(last)) {
			operand = "(" + operand + ")"
		}

		return ex.Op + operand
	case *m.Cast:
		return "(" + ex.Type + ")" + p.expr(ex.X, precUnary)
	case *m.Call:
		args := make([]string, 0, len(ex.Args))
		for _, a := range ex.Args {
			args = append(args, p.expr(a, precAssign))
		}

		return p.expr(ex.Func, precPostfix) + "(" + strings.Join(args, ", ") + ")"
	case *m.Index:
		return p.expr(ex.X, precPostfix) + "[" + p.expr(ex.Index, precComma) + "]"
	case *m.Member:
		sep := "."
		if ex.Arrow {
			sep = "->"
		}

		return p.expr(ex.X, precPostfix) + sep + ex.Field
	case *m.Comma:
		parts := make([]string, 0, len(ex.Exprs))
		for _, x := range ex.Exprs {
			parts = append(parts, p.expr(x, precAssign))
		}

		return strings.Join(parts, ", ")
	default:
		return ""
	}
}
