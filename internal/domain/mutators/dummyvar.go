package mutators

import (
	"fmt"

	"cvariants.dev/pkg/cvariants/internal/domain/astkit"
	m "cvariants.dev/pkg/cvariants/internal/model"
)

// FreshName returns the first name of the form _int_<i>_ absent from names.
func FreshName(names map[string]struct{}) string {
	for i := 0; ; i++ {
		name := fmt.Sprintf("_int_%d_", i)
		if _, taken := names[name]; !taken {
			return name
		}
	}
}

func dummyRewriter(entry, name string) astkit.Rewriter {
	return astkit.Rewriter{Func: func(fd *m.FuncDef) *m.FuncDef {
		if fd.Name != entry || fd.Body == nil {
			return fd
		}

		at := 0

		for _, s := range fd.Body.Items {
			if _, ok := s.(*m.Decl); !ok {
				break
			}

			at++
		}

		decl := &m.Decl{Coord: m.Coord{File: m.SyntheticFile, Line: fd.Coord.Line}, Type: "int", Name: name}

		items := make([]m.Stmt, 0, len(fd.Body.Items)+1)
		items = append(items, fd.Body.Items[:at]...)
		items = append(items, decl)
		items = append(items, fd.Body.Items[at:]...)

		out := *fd
		out.Body = &m.Compound{Coord: fd.Body.Coord, Synthetic: fd.Body.Synthetic, Items: items}

		return &out
	}}
}
