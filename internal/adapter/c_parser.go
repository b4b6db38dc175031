package adapter

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"

	m "cvariants.dev/pkg/cvariants/internal/model"
)

// CParser turns prepared C source into the closed model AST.
type CParser interface {
	// Parse returns the translation unit found after the boundary marker.
	// Syntax errors are reported as m.ErrParse.
	Parse(ctx context.Context, name string, src m.PreparedSource) (*m.File, error)
}

// TreeSitterCParser implements CParser with the tree-sitter C grammar.
type TreeSitterCParser struct{}

// NewTreeSitterCParser constructs a TreeSitterCParser.
func NewTreeSitterCParser() *TreeSitterCParser {
	return &TreeSitterCParser{}
}

// Parse parses src.Text and converts every item after the marker function.
func (p *TreeSitterCParser) Parse(ctx context.Context, name string, src m.PreparedSource) (*m.File, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(c.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src.Text)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", m.ErrParse, name, err)
	}

	root := tree.RootNode()
	if root.HasError() {
		return nil, fmt.Errorf("%w: %s: %s", m.ErrParse, name, firstError(root, src.LineOffset))
	}

	conv := &converter{src: src.Text, file: name, offset: src.LineOffset}
	file := &m.File{Name: name}

	items := conv.namedChildren(root)
	start := 0

	for i, n := range items {
		if n.Type() == "function_definition" && conv.funcName(n) == MarkerName {
			start = i + 1

			break
		}
	}

	for _, n := range items[start:] {
		switch n.Type() {
		case "preproc_include":
			continue
		case "function_definition":
			file.Items = append(file.Items, conv.funcDef(n))
		case "declaration":
			file.Items = append(file.Items, conv.topDecl(n)...)
		default:
			file.Items = append(file.Items, &m.RawDecl{Coord: conv.coord(n), Text: strings.TrimRight(n.Content(conv.src), "\n")})
		}
	}

	return file, nil
}

func firstError(n *sitter.Node, offset int) string {
	if n.Type() == "ERROR" || n.IsMissing() {
		p := n.StartPoint()

		return fmt.Sprintf("syntax error at l%d-c%d", int(p.Row)+1-offset, p.Column+1)
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child != nil && child.HasError() {
			return firstError(child, offset)
		}
	}

	return "syntax error"
}

type converter struct {
	src    []byte
	file   string
	offset int
}

func (cv *converter) coord(n *sitter.Node) m.Coord {
	p := n.StartPoint()

	return m.Coord{File: cv.file, Line: int(p.Row) + 1 - cv.offset, Column: int(p.Column) + 1}
}

func (cv *converter) text(n *sitter.Node) string {
	return n.Content(cv.src)
}

// namedChildren returns the named children of n without comments.
func (cv *converter) namedChildren(n *sitter.Node) []*sitter.Node {
	count := int(n.NamedChildCount())
	out := make([]*sitter.Node, 0, count)

	for i := 0; i < count; i++ {
		child := n.NamedChild(i)
		if child == nil || child.Type() == "comment" {
			continue
		}

		out = append(out, child)
	}

	return out
}

// typePrefix returns the normalized text from the start of a declaration to
// its first declarator: specifiers, qualifiers and the base type.
func (cv *converter) typePrefix(n, firstDeclarator *sitter.Node) string {
	end := n.EndByte()
	if firstDeclarator != nil {
		end = firstDeclarator.StartByte()
	}

	return strings.Join(strings.Fields(string(cv.src[n.StartByte():end])), " ")
}

func (cv *converter) funcName(n *sitter.Node) string {
	decl := n.ChildByFieldName("declarator")
	for decl != nil {
		switch decl.Type() {
		case "identifier":
			return cv.text(decl)
		case "function_declarator", "pointer_declarator", "parenthesized_declarator":
			next := decl.ChildByFieldName("declarator")
			if next == nil && decl.NamedChildCount() > 0 {
				next = decl.NamedChild(0)
			}

			decl = next
		default:
			return ""
		}
	}

	return ""
}

func (cv *converter) funcDef(n *sitter.Node) m.ExternalDecl {
	declarator := n.ChildByFieldName("declarator")
	body := n.ChildByFieldName("body")

	fd := &m.FuncDef{
		Coord:      cv.coord(n),
		ReturnType: cv.typePrefix(n, declarator),
		Name:       cv.funcName(n),
	}

	for declarator != nil && declarator.Type() == "pointer_declarator" {
		fd.Pointer += "*"
		declarator = declarator.ChildByFieldName("declarator")
	}

	if declarator == nil || declarator.Type() != "function_declarator" || body == nil {
		return &m.RawDecl{Coord: cv.coord(n), Text: cv.text(n)}
	}

	if params := declarator.ChildByFieldName("parameters"); params != nil {
		for _, p := range cv.namedChildren(params) {
			switch p.Type() {
			case "parameter_declaration":
				fd.Params = append(fd.Params, cv.param(p))
			case "variadic_parameter":
				fd.Variadic = true
			}
		}
	}

	fd.Body = cv.compound(body)

	return fd
}

func (cv *converter) param(n *sitter.Node) *m.Decl {
	declarator := n.ChildByFieldName("declarator")
	d := &m.Decl{Coord: cv.coord(n), Type: cv.typePrefix(n, declarator)}

	if declarator != nil {
		cv.declarator(declarator, d)
		d.Coord = cv.coord(declarator)
	}

	return d
}

// declarator fills name, pointer and array dimensions of d.
func (cv *converter) declarator(n *sitter.Node, d *m.Decl) {
	for n != nil {
		switch n.Type() {
		case "identifier":
			d.Name = cv.text(n)

			return
		case "pointer_declarator":
			d.Pointer += "*"
			n = n.ChildByFieldName("declarator")
		case "array_declarator":
			size := ""
			if s := n.ChildByFieldName("size"); s != nil {
				size = cv.text(s)
			}

			d.Dims = append([]string{size}, d.Dims...)
			n = n.ChildByFieldName("declarator")
		case "init_declarator":
			if v := n.ChildByFieldName("value"); v != nil {
				d.Init = cv.expr(v)
			}

			n = n.ChildByFieldName("declarator")
		default:
			d.Name = cv.text(n)

			return
		}
	}
}

// declarators returns the declarator children of a declaration, skipping
// specifiers, qualifiers and the type.
func (cv *converter) declarators(n *sitter.Node) []*sitter.Node {
	var out []*sitter.Node

	for _, child := range cv.namedChildren(n) {
		switch child.Type() {
		case "identifier", "init_declarator", "pointer_declarator", "array_declarator",
			"function_declarator", "parenthesized_declarator":
			out = append(out, child)
		}
	}

	return out
}

// decls splits a declaration into one Decl per declarator. ok is false when
// the declaration is not a plain variable declaration.
func (cv *converter) decls(n *sitter.Node) ([]*m.Decl, bool) {
	declarators := cv.declarators(n)
	if len(declarators) == 0 {
		return nil, false
	}

	base := cv.typePrefix(n, declarators[0])
	if strings.HasPrefix(base, "typedef") {
		return nil, false
	}

	out := make([]*m.Decl, 0, len(declarators))

	for _, dn := range declarators {
		if containsType(dn, "function_declarator") {
			return nil, false
		}

		d := &m.Decl{Coord: cv.coord(dn), Type: base}
		cv.declarator(dn, d)
		out = append(out, d)
	}

	return out, true
}

func containsType(n *sitter.Node, typ string) bool {
	if n.Type() == typ {
		return true
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		if child := n.NamedChild(i); child != nil && containsType(child, typ) {
			return true
		}
	}

	return false
}

func (cv *converter) topDecl(n *sitter.Node) []m.ExternalDecl {
	decls, ok := cv.decls(n)
	if !ok {
		return []m.ExternalDecl{&m.RawDecl{Coord: cv.coord(n), Text: cv.text(n)}}
	}

	out := make([]m.ExternalDecl, 0, len(decls))
	for _, d := range decls {
		out = append(out, d)
	}

	return out
}

func (cv *converter) compound(n *sitter.Node) *m.Compound {
	b := &m.Compound{Coord: cv.coord(n)}

	for _, child := range cv.namedChildren(n) {
		b.Items = append(b.Items, cv.stmts(child)...)
	}

	return b
}

// stmts converts one statement node; declarations may expand to several.
func (cv *converter) stmts(n *sitter.Node) []m.Stmt {
	if n.Type() != "declaration" {
		return []m.Stmt{cv.stmt(n)}
	}

	decls, ok := cv.decls(n)
	if !ok {
		return []m.Stmt{&m.RawStmt{Coord: cv.coord(n), Text: cv.text(n)}}
	}

	out := make([]m.Stmt, 0, len(decls))
	for _, d := range decls {
		out = append(out, d)
	}

	return out
}

// single converts a statement in a position that holds exactly one.
func (cv *converter) single(n *sitter.Node) m.Stmt {
	if n == nil {
		return nil
	}

	list := cv.stmts(n)
	if len(list) == 1 {
		return list[0]
	}

	return &m.Compound{Coord: cv.coord(n), Items: list, Synthetic: true}
}

//nolint:cyclop,funlen // one case per statement kind
func (cv *converter) stmt(n *sitter.Node) m.Stmt {
	at := cv.coord(n)

	switch n.Type() {
	case "compound_statement":
		return cv.compound(n)
	case "expression_statement":
		kids := cv.namedChildren(n)
		if len(kids) == 0 {
			return &m.Empty{Coord: at}
		}

		return &m.ExprStmt{Coord: at, X: cv.expr(kids[0])}
	case "if_statement":
		s := &m.If{
			Coord: at,
			Cond:  cv.expr(n.ChildByFieldName("condition")),
			Then:  cv.single(n.ChildByFieldName("consequence")),
		}

		if alt := n.ChildByFieldName("alternative"); alt != nil {
			if alt.Type() == "else_clause" {
				kids := cv.namedChildren(alt)
				if len(kids) > 0 {
					s.Else = cv.single(kids[0])
				}
			} else {
				s.Else = cv.single(alt)
			}
		}

		return s
	case "for_statement":
		return cv.forStmt(n)
	case "while_statement":
		return &m.While{Coord: at, Cond: cv.expr(n.ChildByFieldName("condition")), Body: cv.single(n.ChildByFieldName("body"))}
	case "do_statement":
		return &m.DoWhile{Coord: at, Body: cv.single(n.ChildByFieldName("body")), Cond: cv.expr(n.ChildByFieldName("condition"))}
	case "switch_statement":
		return &m.Switch{Coord: at, Cond: cv.expr(n.ChildByFieldName("condition")), Body: cv.single(n.ChildByFieldName("body"))}
	case "case_statement":
		s := &m.Case{Coord: at}
		value := n.ChildByFieldName("value")

		if value != nil {
			s.Value = cv.expr(value)
		}

		for _, child := range cv.namedChildren(n) {
			if value != nil && child.StartByte() == value.StartByte() && child.EndByte() == value.EndByte() {
				continue
			}

			s.Body = append(s.Body, cv.stmts(child)...)
		}

		return s
	case "return_statement":
		kids := cv.namedChildren(n)
		if len(kids) == 0 {
			return &m.Return{Coord: at}
		}

		return &m.Return{Coord: at, X: cv.expr(kids[0])}
	case "break_statement":
		return &m.Break{Coord: at}
	case "continue_statement":
		return &m.Continue{Coord: at}
	default:
		return &m.RawStmt{Coord: at, Text: cv.text(n)}
	}
}

func (cv *converter) forStmt(n *sitter.Node) m.Stmt {
	s := &m.For{Coord: cv.coord(n)}

	if init := n.ChildByFieldName("initializer"); init != nil {
		if init.Type() == "declaration" {
			decls, ok := cv.decls(init)
			if !ok {
				return &m.RawStmt{Coord: s.Coord, Text: cv.text(n)}
			}

			for _, d := range decls {
				s.Init = append(s.Init, d)
			}
		} else {
			s.Init = []m.Stmt{&m.ExprStmt{Coord: cv.coord(init), X: cv.expr(init)}}
		}
	}

	if cond := n.ChildByFieldName("condition"); cond != nil {
		s.Cond = cv.expr(cond)
	}

	if step := n.ChildByFieldName("update"); step != nil {
		s.Step = cv.expr(step)
	}

	s.Body = cv.single(n.ChildByFieldName("body"))

	return s
}

func (cv *converter) operator(n *sitter.Node) (string, m.Coord) {
	op := n.ChildByFieldName("operator")
	if op == nil {
		return "", cv.coord(n)
	}

	return op.Type(), cv.coord(op)
}

//nolint:cyclop,funlen // one case per expression kind
func (cv *converter) expr(n *sitter.Node) m.Expr {
	if n == nil {
		return nil
	}

	at := cv.coord(n)

	switch n.Type() {
	case "parenthesized_expression":
		kids := cv.namedChildren(n)
		if len(kids) != 1 {
			return &m.RawExpr{Coord: at, Text: cv.text(n)}
		}

		return cv.expr(kids[0])
	case "identifier":
		return &m.Ident{Coord: at, Name: cv.text(n)}
	case "number_literal", "string_literal", "char_literal", "concatenated_string", "true", "false", "null":
		return &m.Literal{Coord: at, Text: cv.text(n)}
	case "binary_expression":
		op, opAt := cv.operator(n)

		return &m.BinaryOp{Coord: opAt, Op: op, Left: cv.expr(n.ChildByFieldName("left")), Right: cv.expr(n.ChildByFieldName("right"))}
	case "assignment_expression":
		op, opAt := cv.operator(n)

		return &m.Assignment{Coord: opAt, Op: op, LHS: cv.expr(n.ChildByFieldName("left")), RHS: cv.expr(n.ChildByFieldName("right"))}
	case "update_expression":
		op, _ := cv.operator(n)
		arg := n.ChildByFieldName("argument")
		postfix := arg != nil && n.StartByte() == arg.StartByte()

		return &m.UnaryOp{Coord: at, Op: op, X: cv.expr(arg), Postfix: postfix}
	case "unary_expression", "pointer_expression":
		op, _ := cv.operator(n)

		return &m.UnaryOp{Coord: at, Op: op, X: cv.expr(n.ChildByFieldName("argument"))}
	case "conditional_expression":
		return &m.Ternary{
			Coord: at,
			Cond:  cv.expr(n.ChildByFieldName("condition")),
			Then:  cv.expr(n.ChildByFieldName("consequence")),
			Else:  cv.expr(n.ChildByFieldName("alternative")),
		}
	case "call_expression":
		call := &m.Call{Coord: at, Func: cv.expr(n.ChildByFieldName("function"))}
		if args := n.ChildByFieldName("arguments"); args != nil {
			for _, a := range cv.namedChildren(args) {
				call.Args = append(call.Args, cv.expr(a))
			}
		}

		return call
	case "subscript_expression":
		return &m.Index{Coord: at, X: cv.expr(n.ChildByFieldName("argument")), Index: cv.expr(n.ChildByFieldName("index"))}
	case "field_expression":
		op, _ := cv.operator(n)
		field := n.ChildByFieldName("field")

		name := ""
		if field != nil {
			name = cv.text(field)
		}

		return &m.Member{Coord: at, X: cv.expr(n.ChildByFieldName("argument")), Field: name, Arrow: op == "->"}
	case "cast_expression":
		typ := n.ChildByFieldName("type")

		return &m.Cast{Coord: at, Type: strings.Join(strings.Fields(cv.text(typ)), " "), X: cv.expr(n.ChildByFieldName("value"))}
	case "comma_expression":
		out := &m.Comma{Coord: at}
		for _, part := range []string{"left", "right"} {
			x := cv.expr(n.ChildByFieldName(part))
			if nested, ok := x.(*m.Comma); ok {
				out.Exprs = append(out.Exprs, nested.Exprs...)
			} else if x != nil {
				out.Exprs = append(out.Exprs, x)
			}
		}

		return out
	default:
		return &m.RawExpr{Coord: at, Text: cv.text(n)}
	}
}
