// Package astkit holds the AST machinery shared by the mutator and the
// mutilator: node identities, the rebuilding rewriter and read-only helpers.
package astkit

import (
	m "cvariants.dev/pkg/cvariants/internal/model"
)

// Tags that discriminate several node kinds sharing one coordinate.
const (
	TagBinary   = "binop"
	TagIf       = "if"
	TagTernary  = "ternary"
	TagIncDec   = "incdec"
	TagFor      = "for"
	TagBlock    = "block"
	TagDecl     = "decl"
	TagIdent    = "ident"
	TagAssign   = "assign"
	TagFunction = "func"
)

type registryKey struct {
	file   string
	line   int
	column int
	tag    string
}

// Registry hands out small integer ids for AST positions. Ids are stable
// for the lifetime of one session, so the same coordinate seen in two
// independent parses of the same source maps to the same id.
//
// A Registry is not safe for concurrent use; give each worker its own.
type Registry struct {
	ids  map[registryKey]m.NodeID
	next m.NodeID
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{ids: make(map[registryKey]m.NodeID)}
}

// ID returns the id previously assigned to (coord, tag) or allocates the
// next unused one, starting at 0.
func (r *Registry) ID(coord m.Coord, tag string) m.NodeID {
	key := registryKey{file: coord.File, line: coord.Line, column: coord.Column, tag: tag}
	if id, ok := r.ids[key]; ok {
		return id
	}

	id := r.next
	r.ids[key] = id
	r.next++

	return id
}

// Lookup returns the id assigned to (coord, tag) without allocating.
func (r *Registry) Lookup(coord m.Coord, tag string) (m.NodeID, bool) {
	id, ok := r.ids[registryKey{file: coord.File, line: coord.Line, column: coord.Column, tag: tag}]

	return id, ok
}

// Len returns the number of ids handed out since the last Reset.
func (r *Registry) Len() int {
	return len(r.ids)
}

// Reset forgets every assignment and restarts the counter at 0. It must be
// called before the discovery pass of each seed program.
func (r *Registry) Reset() {
	r.ids = make(map[registryKey]m.NodeID)
	r.next = 0
}
