package model

import "fmt"

// Coord is the source coordinate of a node. Line and Column are 1-based.
type Coord struct {
	File   string
	Line   int
	Column int
}

// SyntheticFile marks coordinates of nodes created by a rewrite rather than
// produced by the parser.
const SyntheticFile = "<synthetic>"

// String renders the coordinate in the compact "l<line>-c<column>" form used
// in bug ledgers.
func (c Coord) String() string {
	return fmt.Sprintf("l%d-c%d", c.Line, c.Column)
}

// Node is implemented by every AST node.
type Node interface {
	Pos() Coord
}

// Expr is the closed set of C expressions the rewriters understand.
// Only types declared in this file implement it.
type Expr interface {
	Node
	exprNode()
}

// Stmt is the closed set of C statements the rewriters understand.
type Stmt interface {
	Node
	stmtNode()
}

// ExternalDecl is the closed set of translation-unit level items.
type ExternalDecl interface {
	Node
	externalNode()
}

// File is one parsed translation unit, already stripped of everything up to
// and including the boundary marker function.
type File struct {
	Name  string
	Items []ExternalDecl
}

// ---- expressions ----

// Ident is a name reference.
type Ident struct {
	Coord Coord
	Name  string
}

// Literal is a number, character or string literal kept verbatim.
type Literal struct {
	Coord Coord
	Text  string
}

// BinaryOp is "Left Op Right". Coord is the operator position so nested
// operators that start at the same column still get distinct identities.
type BinaryOp struct {
	Coord Coord
	Op    string
	Left  Expr
	Right Expr
}

// UnaryOp covers prefix operators (!, -, +, ~, *, &, ++, --) and the postfix
// ++ and -- forms.
type UnaryOp struct {
	Coord   Coord
	Op      string
	X       Expr
	Postfix bool
}

// Assignment is "LHS Op RHS" with Op one of =, +=, -=, ...
type Assignment struct {
	Coord Coord
	Op    string
	LHS   Expr
	RHS   Expr
}

// Ternary is "Cond ? Then : Else".
type Ternary struct {
	Coord Coord
	Cond  Expr
	Then  Expr
	Else  Expr
}

// Call is a function call.
type Call struct {
	Coord Coord
	Func  Expr
	Args  []Expr
}

// Index is "X[Index]".
type Index struct {
	Coord Coord
	X     Expr
	Index Expr
}

// Member is "X.Field" or "X->Field".
type Member struct {
	Coord Coord
	X     Expr
	Field string
	Arrow bool
}

// Cast is "(Type) X".
type Cast struct {
	Coord Coord
	Type  string
	X     Expr
}

// Comma is a comma-separated expression list.
type Comma struct {
	Coord Coord
	Exprs []Expr
}

// RawExpr is an expression the rewriters never look into (initializer
// lists, sizeof, compound literals); it is printed verbatim.
type RawExpr struct {
	Coord Coord
	Text  string
}

func (e *Ident) Pos() Coord      { return e.Coord }
func (e *Literal) Pos() Coord    { return e.Coord }
func (e *BinaryOp) Pos() Coord   { return e.Coord }
func (e *UnaryOp) Pos() Coord    { return e.Coord }
func (e *Assignment) Pos() Coord { return e.Coord }
func (e *Ternary) Pos() Coord    { return e.Coord }
func (e *Call) Pos() Coord       { return e.Coord }
func (e *Index) Pos() Coord      { return e.Coord }
func (e *Member) Pos() Coord     { return e.Coord }
func (e *Cast) Pos() Coord       { return e.Coord }
func (e *Comma) Pos() Coord      { return e.Coord }
func (e *RawExpr) Pos() Coord    { return e.Coord }

func (*Ident) exprNode()      {}
func (*Literal) exprNode()    {}
func (*BinaryOp) exprNode()   {}
func (*UnaryOp) exprNode()    {}
func (*Assignment) exprNode() {}
func (*Ternary) exprNode()    {}
func (*Call) exprNode()       {}
func (*Index) exprNode()      {}
func (*Member) exprNode()     {}
func (*Cast) exprNode()       {}
func (*Comma) exprNode()      {}
func (*RawExpr) exprNode()    {}

// IsIncDec reports whether the operator is ++ or --.
func (e *UnaryOp) IsIncDec() bool {
	return e.Op == "++" || e.Op == "--"
}

// ---- statements ----

// Compound is a "{ ... }" block. Synthetic is set when the block was created
// by normalizing a single-statement branch or loop body.
type Compound struct {
	Coord     Coord
	Items     []Stmt
	Synthetic bool
}

// Decl declares one variable. Declarations with several declarators are
// split into one Decl per declarator.
type Decl struct {
	Coord   Coord
	Type    string   // base type with qualifiers, e.g. "unsigned int"
	Pointer string   // leading stars of the declarator
	Name    string   // empty for abstract parameters such as "void"
	Dims    []string // array dimensions verbatim, "" for []
	Init    Expr
}

// Simple reports whether the declaration is a plain scalar variable
// (no pointer, no array). Only simple declarations take part in
// reordering, misuse candidates and correspondence maps.
func (d *Decl) Simple() bool {
	return d.Name != "" && d.Pointer == "" && len(d.Dims) == 0
}

// ExprStmt is an expression used as a statement.
type ExprStmt struct {
	Coord Coord
	X     Expr
}

// If is an if statement; Else is nil when absent.
type If struct {
	Coord Coord
	Cond  Expr
	Then  Stmt
	Else  Stmt
}

// For is a for loop. Init holds either declarations or a single ExprStmt;
// Cond and Step may be nil.
type For struct {
	Coord Coord
	Init  []Stmt
	Cond  Expr
	Step  Expr
	Body  Stmt
}

// While is a while loop.
type While struct {
	Coord Coord
	Cond  Expr
	Body  Stmt
}

// DoWhile is a do/while loop.
type DoWhile struct {
	Coord Coord
	Body  Stmt
	Cond  Expr
}

// Switch is a switch statement. Body is normally a Compound of Case items.
type Switch struct {
	Coord Coord
	Cond  Expr
	Body  Stmt
}

// Case is a case or default label with the statements following it.
// Value is nil for default.
type Case struct {
	Coord Coord
	Value Expr
	Body  []Stmt
}

// Return is a return statement; X may be nil.
type Return struct {
	Coord Coord
	X     Expr
}

// Break is a break statement.
type Break struct{ Coord Coord }

// Continue is a continue statement.
type Continue struct{ Coord Coord }

// Empty is the null statement ";".
type Empty struct{ Coord Coord }

// RawStmt is a statement kept verbatim (goto, labels, inline asm).
type RawStmt struct {
	Coord Coord
	Text  string
}

func (s *Compound) Pos() Coord { return s.Coord }
func (s *Decl) Pos() Coord     { return s.Coord }
func (s *ExprStmt) Pos() Coord { return s.Coord }
func (s *If) Pos() Coord       { return s.Coord }
func (s *For) Pos() Coord      { return s.Coord }
func (s *While) Pos() Coord    { return s.Coord }
func (s *DoWhile) Pos() Coord  { return s.Coord }
func (s *Switch) Pos() Coord   { return s.Coord }
func (s *Case) Pos() Coord     { return s.Coord }
func (s *Return) Pos() Coord   { return s.Coord }
func (s *Break) Pos() Coord    { return s.Coord }
func (s *Continue) Pos() Coord { return s.Coord }
func (s *Empty) Pos() Coord    { return s.Coord }
func (s *RawStmt) Pos() Coord  { return s.Coord }

func (*Compound) stmtNode() {}
func (*Decl) stmtNode()     {}
func (*ExprStmt) stmtNode() {}
func (*If) stmtNode()       {}
func (*For) stmtNode()      {}
func (*While) stmtNode()    {}
func (*DoWhile) stmtNode()  {}
func (*Switch) stmtNode()   {}
func (*Case) stmtNode()     {}
func (*Return) stmtNode()   {}
func (*Break) stmtNode()    {}
func (*Continue) stmtNode() {}
func (*Empty) stmtNode()    {}
func (*RawStmt) stmtNode()  {}

// ---- external declarations ----

// FuncDef is a function definition.
type FuncDef struct {
	Coord      Coord
	ReturnType string
	Pointer    string
	Name       string
	Params     []*Decl
	Variadic   bool
	Body       *Compound
}

// RawDecl is a top-level item kept verbatim (typedefs, struct definitions,
// prototypes, preprocessor lines).
type RawDecl struct {
	Coord Coord
	Text  string
}

func (f *File) Pos() Coord    { return Coord{File: f.Name, Line: 1, Column: 1} }
func (d *FuncDef) Pos() Coord { return d.Coord }
func (d *RawDecl) Pos() Coord { return d.Coord }

func (*FuncDef) externalNode() {}
func (*RawDecl) externalNode() {}
func (*Decl) externalNode()    {}

// Func returns the function definition with the given name, or nil.
func (f *File) Func(name string) *FuncDef {
	for _, item := range f.Items {
		if fd, ok := item.(*FuncDef); ok && fd.Name == name {
			return fd
		}
	}

	return nil
}
