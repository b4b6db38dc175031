// Package mutilators implements the semantics-breaking rules: each applied
// site injects exactly one bug and one ledger entry.
package mutilators

import (
	"cvariants.dev/pkg/cvariants/internal/domain/astkit"
	m "cvariants.dev/pkg/cvariants/internal/model"
)

// Discovery lists the sites found on the canonical tree, in traversal order.
type Discovery struct {
	Comparators []m.MutationSite
	// Misuses holds one site per (read, replacement) pair; Aux is the
	// replacement name. Pairs of one read are adjacent.
	Misuses   []m.MutationSite
	Deletions []m.MutationSite
	Vars      m.VarTypes
}

// Count returns the number of sites found for rule.
func (d *Discovery) Count(rule m.Rule) int {
	switch rule {
	case m.RuleComparatorCorruption:
		return len(d.Comparators)
	case m.RuleVariableMisuse:
		return len(d.Misuses)
	case m.RuleAssignmentDeletion:
		return len(d.Deletions)
	default:
		return 0
	}
}

type binding struct {
	name string
	typ  string
}

type discoverer struct {
	reg    *astkit.Registry
	out    *Discovery
	scopes [][]binding
}

// Discover walks a normalized canonical tree. The registry must have been
// reset for this seed.
func Discover(reg *astkit.Registry, file *m.File) *Discovery {
	d := &discoverer{
		reg:    reg,
		out:    &Discovery{Vars: astkit.CollectVars(file)},
		scopes: [][]binding{nil},
	}

	for _, item := range file.Items {
		switch it := item.(type) {
		case *m.Decl:
			d.declare(it)
		case *m.FuncDef:
			if it.Body == nil {
				continue
			}

			d.push()

			for _, p := range it.Params {
				d.declare(p)
			}

			d.block(it.Body)
			d.pop()
		}
	}

	return d.out
}

func (d *discoverer) push() { d.scopes = append(d.scopes, nil) }
func (d *discoverer) pop()  { d.scopes = d.scopes[:len(d.scopes)-1] }

// declare binds a simple variable in the innermost scope. The initializer
// is not searched for misuse sites, only for comparators.
func (d *discoverer) declare(decl *m.Decl) {
	d.comparators(decl.Init)

	if decl.Simple() {
		top := len(d.scopes) - 1
		d.scopes[top] = append(d.scopes[top], binding{name: decl.Name, typ: decl.Type})
	}
}

// lookup returns the type of the innermost binding of name.
func (d *discoverer) lookup(name string) (string, bool) {
	for i := len(d.scopes) - 1; i >= 0; i-- {
		for j := len(d.scopes[i]) - 1; j >= 0; j-- {
			if d.scopes[i][j].name == name {
				return d.scopes[i][j].typ, true
			}
		}
	}

	return "", false
}

// visible returns the variables in scope, outermost first, each name once
// with its innermost type.
func (d *discoverer) visible() []binding {
	var out []binding

	pos := make(map[string]int)

	for _, scope := range d.scopes {
		for _, b := range scope {
			if i, ok := pos[b.name]; ok {
				out[i] = b

				continue
			}

			pos[b.name] = len(out)
			out = append(out, b)
		}
	}

	return out
}

func (d *discoverer) block(b *m.Compound) {
	d.push()

	for _, s := range b.Items {
		d.stmt(s)
	}

	d.pop()
}

//nolint:cyclop // one case per statement kind
func (d *discoverer) stmt(s m.Stmt) {
	switch st := s.(type) {
	case *m.Compound:
		d.block(st)
	case *m.Decl:
		d.declare(st)
	case *m.ExprStmt:
		if _, ok := st.X.(*m.Assignment); ok {
			d.out.Deletions = append(d.out.Deletions, m.MutationSite{
				Rule:  m.RuleAssignmentDeletion,
				ID:    d.reg.ID(st.Coord, astkit.TagAssign),
				Coord: st.Coord,
			})
		}

		d.expr(st.X)
	case *m.If:
		d.expr(st.Cond)
		d.stmt(st.Then)
		d.stmt(st.Else)
	case *m.For:
		d.push()

		for _, init := range st.Init {
			if es, ok := init.(*m.ExprStmt); ok {
				d.expr(es.X)
			} else {
				d.stmt(init)
			}
		}

		d.expr(st.Cond)
		d.expr(st.Step)
		d.stmt(st.Body)
		d.pop()
	case *m.While:
		d.expr(st.Cond)
		d.stmt(st.Body)
	case *m.DoWhile:
		d.stmt(st.Body)
		d.expr(st.Cond)
	case *m.Switch:
		d.expr(st.Cond)
		d.stmt(st.Body)
	case *m.Case:
		for _, inner := range st.Body {
			d.stmt(inner)
		}
	case *m.Return:
		d.expr(st.X)
	}
}

// comparators records comparator sites only.
func (d *discoverer) comparators(e m.Expr) {
	astkit.Inspect(e, func(n m.Node) bool {
		if b, ok := n.(*m.BinaryOp); ok {
			d.comparator(b)
		}

		return true
	})
}

func (d *discoverer) comparator(b *m.BinaryOp) {
	if _, ok := corruption[b.Op]; !ok {
		return
	}

	d.out.Comparators = append(d.out.Comparators, m.MutationSite{
		Rule:  m.RuleComparatorCorruption,
		ID:    d.reg.ID(b.Coord, astkit.TagBinary),
		Coord: b.Coord,
		Aux:   b.Op,
	})
}

func (d *discoverer) expr(e m.Expr) {
	astkit.Inspect(e, func(n m.Node) bool {
		switch x := n.(type) {
		case *m.BinaryOp:
			d.comparator(x)
		case *m.Call:
			// the callee name is not a variable
			if _, ok := x.Func.(*m.Ident); ok {
				for _, a := range x.Args {
					d.expr(a)
				}

				return false
			}
		case *m.Ident:
			d.ident(x)
		}

		return true
	})
}

func (d *discoverer) ident(id *m.Ident) {
	typ, ok := d.lookup(id.Name)
	if !ok {
		return
	}

	var site m.NodeID

	registered := false

	for _, b := range d.visible() {
		if b.name == id.Name || b.typ != typ {
			continue
		}

		if !registered {
			site = d.reg.ID(id.Coord, astkit.TagIdent)
			registered = true
		}

		d.out.Misuses = append(d.out.Misuses, m.MutationSite{
			Rule:  m.RuleVariableMisuse,
			ID:    site,
			Coord: id.Coord,
			Aux:   b.name,
		})
	}
}
