//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package kb provides the in-memory knowledge base the validator checks
// tables against.
//
// A [KnowledgeBase] holds named classes, individuals and properties together
// with their told axioms (subclass, equivalence, disjointness, individual
// types and sub-properties).  It also answers the label questions the term
// resolver needs: which entity carries a label, which label an entity has, and
// how a piece of rule text parses as a class expression.
//
// Knowledge bases are normally read from YAML with the [parsers] package.
package kb

import (
	"fmt"
	"sort"
	"strings"
)

// KnowledgeBase is an indexed set of entities and told axioms.  It is built
// once and then only read; concurrent readers are safe.
type KnowledgeBase struct {
	Name string

	prefixes map[string]string
	entities map[string]*Entity
	order    []*Entity
	labels   map[string]*Entity
	iris     map[string]*Entity
	shorts   map[string]*Entity

	subClassOf    map[string][]Expression
	equivalentTo  map[string][]Expression
	disjointWith  map[string][]Expression
	types         map[string][]Expression
	subPropertyOf map[string][]string
}

// New creates an empty knowledge base.  prefixes maps CURIE prefixes to the
// namespace they expand to.  The built-in classes owl:Thing and owl:Nothing
// are always present.
func New(name string, prefixes map[string]string) *KnowledgeBase {
	k := &KnowledgeBase{
		Name:          name,
		prefixes:      map[string]string{"owl": "http://www.w3.org/2002/07/owl#"},
		entities:      make(map[string]*Entity),
		labels:        make(map[string]*Entity),
		iris:          make(map[string]*Entity),
		shorts:        make(map[string]*Entity),
		subClassOf:    make(map[string][]Expression),
		equivalentTo:  make(map[string][]Expression),
		disjointWith:  make(map[string][]Expression),
		types:         make(map[string][]Expression),
		subPropertyOf: make(map[string][]string),
	}
	for p, ns := range prefixes {
		k.prefixes[p] = ns
	}

	_, _ = k.Declare(ThingID, "", ClassKind)
	_, _ = k.Declare(NothingID, "", ClassKind)

	return k
}

// Expand turns a CURIE into a full IRI.  Strings without a known prefix are
// returned unchanged.
func (k *KnowledgeBase) Expand(id string) string {
	if p, local, ok := strings.Cut(id, ":"); ok {
		if ns, found := k.prefixes[p]; found {
			return ns + local
		}
	}
	return id
}

func shortForm(iri string) string {
	if i := strings.LastIndexAny(iri, "#/"); i >= 0 && i < len(iri)-1 {
		return iri[i+1:]
	}
	if _, local, ok := strings.Cut(iri, ":"); ok && local != "" {
		return local
	}
	return iri
}

// Declare adds a named entity.  Ids and labels must be unique.
func (k *KnowledgeBase) Declare(id, label string, kind Kind) (*Entity, error) {
	if id == "" {
		return nil, fmt.Errorf("entity with label %q has no id", label)
	}
	if _, ok := k.entities[id]; ok {
		return nil, fmt.Errorf("duplicate entity %s", id)
	}
	if label != "" {
		if other, ok := k.labels[label]; ok {
			return nil, fmt.Errorf("label %q is used by both %s and %s", label, other.ID, id)
		}
	}

	e := &Entity{ID: id, IRI: k.Expand(id), Label: label, Kind: kind}
	k.entities[id] = e
	k.order = append(k.order, e)
	k.iris[e.IRI] = e
	if label != "" {
		k.labels[label] = e
	}

	short := shortForm(e.IRI)
	if _, ok := k.shorts[short]; ok {
		// ambiguous short forms resolve to nothing
		k.shorts[short] = nil
	} else {
		k.shorts[short] = e
	}

	return e, nil
}

func (k *KnowledgeBase) require(id string, kind Kind) error {
	e, ok := k.entities[id]
	if !ok {
		return fmt.Errorf("unknown %s %s", kind, id)
	}
	if e.Kind != kind {
		return fmt.Errorf("%s is a %s, not a %s", id, e.Kind, kind)
	}
	return nil
}

// AddSubClassOf records the told axiom "class SubClassOf super".
func (k *KnowledgeBase) AddSubClassOf(class string, super Expression) error {
	if err := k.require(class, ClassKind); err != nil {
		return err
	}
	k.subClassOf[class] = append(k.subClassOf[class], super)
	return nil
}

// AddEquivalentClass records the told axiom "class EquivalentTo expr".
func (k *KnowledgeBase) AddEquivalentClass(class string, expr Expression) error {
	if err := k.require(class, ClassKind); err != nil {
		return err
	}
	k.equivalentTo[class] = append(k.equivalentTo[class], expr)
	return nil
}

// AddDisjointClass records the told axiom "class DisjointWith expr".
func (k *KnowledgeBase) AddDisjointClass(class string, expr Expression) error {
	if err := k.require(class, ClassKind); err != nil {
		return err
	}
	k.disjointWith[class] = append(k.disjointWith[class], expr)
	return nil
}

// AddType records that individual is a member of expr.
func (k *KnowledgeBase) AddType(individual string, expr Expression) error {
	if err := k.require(individual, IndividualKind); err != nil {
		return err
	}
	k.types[individual] = append(k.types[individual], expr)
	return nil
}

// AddSubPropertyOf records that every pair related by property is also
// related by super.
func (k *KnowledgeBase) AddSubPropertyOf(property, super string) error {
	if err := k.require(property, PropertyKind); err != nil {
		return err
	}
	if err := k.require(super, PropertyKind); err != nil {
		return err
	}
	k.subPropertyOf[property] = append(k.subPropertyOf[property], super)
	return nil
}

// Entity returns the entity with the given id.
func (k *KnowledgeBase) Entity(id string) (*Entity, bool) {
	e, ok := k.entities[id]
	return e, ok
}

// Entities returns every entity of the given kind in declaration order.
func (k *KnowledgeBase) Entities(kind Kind) []*Entity {
	var result []*Entity
	for _, e := range k.order {
		if e.Kind == kind {
			result = append(result, e)
		}
	}
	return result
}

// SuperClassAxioms returns the told superclass expressions of a class.
func (k *KnowledgeBase) SuperClassAxioms(class string) []Expression {
	return k.subClassOf[class]
}

// EquivalentAxioms returns the told equivalent expressions of a class.
func (k *KnowledgeBase) EquivalentAxioms(class string) []Expression {
	return k.equivalentTo[class]
}

// DisjointAxioms returns the told disjoint expressions of a class.
func (k *KnowledgeBase) DisjointAxioms(class string) []Expression {
	return k.disjointWith[class]
}

// TypeAxioms returns the told types of an individual.
func (k *KnowledgeBase) TypeAxioms(individual string) []Expression {
	return k.types[individual]
}

// SuperProperties returns the told super-properties of a property, sorted.
func (k *KnowledgeBase) SuperProperties(property string) []string {
	supers := append([]string(nil), k.subPropertyOf[property]...)
	sort.Strings(supers)
	return supers
}

// LabelFor returns the label of the entity with the given id.
func (k *KnowledgeBase) LabelFor(id string) (string, bool) {
	e, ok := k.entities[id]
	if !ok || e.Label == "" {
		return "", false
	}
	return e.Label, true
}

// EntityForLabel returns the entity carrying exactly this label.
func (k *KnowledgeBase) EntityForLabel(label string) (*Entity, bool) {
	e, ok := k.labels[label]
	return e, ok
}

// EntityForTerm resolves a term written in a table or rule.  One layer of
// single quotes is removed, then the term is tried as a label, an id, a full
// IRI (optionally in angle brackets) and finally a local short form.
func (k *KnowledgeBase) EntityForTerm(term string) (*Entity, bool) {
	term = Unquote(strings.TrimSpace(term))
	if term == "" {
		return nil, false
	}
	if e, ok := k.labels[term]; ok {
		return e, true
	}
	if e, ok := k.entities[term]; ok {
		return e, true
	}
	iri := strings.TrimSuffix(strings.TrimPrefix(term, "<"), ">")
	if e, ok := k.iris[iri]; ok {
		return e, true
	}
	if e, ok := k.iris[k.Expand(iri)]; ok {
		return e, true
	}
	if e := k.shorts[term]; e != nil {
		return e, true
	}
	return nil, false
}

// Unquote strips one layer of surrounding single quotes.
func Unquote(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, "'") && strings.HasSuffix(s, "'") {
		return s[1 : len(s)-1]
	}
	return s
}
