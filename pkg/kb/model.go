//
//  Copyright © Manetu Inc. All rights reserved.
//

package kb

import (
	"strings"
)

// Kind distinguishes the three sorts of named entity.
type Kind int

const (
	// ClassKind names a set of individuals.
	ClassKind Kind = iota
	// IndividualKind names a single member of the domain.
	IndividualKind
	// PropertyKind names a binary relation used in existential restrictions.
	PropertyKind
)

func (k Kind) String() string {
	switch k {
	case ClassKind:
		return "class"
	case IndividualKind:
		return "individual"
	case PropertyKind:
		return "property"
	}
	return "unknown"
}

// Built-in top and bottom classes.
const (
	ThingID   = "owl:Thing"
	NothingID = "owl:Nothing"
)

// Entity is a named element of the knowledge base.
type Entity struct {
	// ID is the identifier as written in the source, usually a CURIE.
	ID string
	// IRI is ID with its prefix expanded, or ID itself when no prefix applies.
	IRI   string
	Label string
	Kind  Kind
}

// Expression is a class expression.  Named classes are leaves; the other
// forms are anonymous.
type Expression interface {
	// String renders the expression with entity ids in a canonical form, so
	// two structurally equal expressions render identically.
	String() string
	expression()
}

// Class is a reference to a named class.
type Class struct {
	ID string
}

// And is the intersection of its operands.
type And struct {
	Operands []Expression
}

// Or is the union of its operands.
type Or struct {
	Operands []Expression
}

// Not is the complement of its operand.
type Not struct {
	Operand Expression
}

// Some is the existential restriction "Property some Filler".
type Some struct {
	Property string
	Filler   Expression
}

func (Class) expression() {}
func (And) expression()   {}
func (Or) expression()    {}
func (Not) expression()   {}
func (Some) expression()  {}

func (c Class) String() string { return c.ID }

func (a And) String() string { return join(a.Operands, " and ") }

func (o Or) String() string { return join(o.Operands, " or ") }

func (n Not) String() string { return "not " + wrap(n.Operand) }

func (s Some) String() string { return s.Property + " some " + wrap(s.Filler) }

func join(ops []Expression, sep string) string {
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = wrap(op)
	}
	return "(" + strings.Join(parts, sep) + ")"
}

func wrap(e Expression) string {
	switch e.(type) {
	case Some, Not:
		return "(" + e.String() + ")"
	}
	return e.String()
}

// IsNamed reports whether e is a reference to a named class.
func IsNamed(e Expression) bool {
	_, ok := e.(Class)
	return ok
}

// AxiomKind identifies the logical statement an Axiom makes.
type AxiomKind int

const (
	// SubClassOf states that Left is subsumed by Right.
	SubClassOf AxiomKind = iota
	// EquivalentClasses states that Left and Right have the same members.
	EquivalentClasses
)

// Axiom is a statement between two class expressions, used for entailment
// checks with anonymous subjects.
type Axiom struct {
	Kind  AxiomKind
	Left  Expression
	Right Expression
}

func (a Axiom) String() string {
	switch a.Kind {
	case EquivalentClasses:
		return a.Left.String() + " EquivalentTo " + a.Right.String()
	}
	return a.Left.String() + " SubClassOf " + a.Right.String()
}
