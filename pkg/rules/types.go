//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package rules defines the rule vocabulary of the table validator and the
// grammar used in a table's rule row.
//
// A rule cell holds one or more statements separated by ';'.  Each statement
// is "<rule-type> <content>", for example:
//
//	is-required; subclass-of 'material entity' (when %1 instance-of 'organ')
//
// Rule types form a closed set of (category, type) pairs described by a
// [Vocabulary].  The vocabulary is built once with [NewVocabulary] and passed
// to whoever needs it.
package rules

import (
	"sort"
	"strings"
)

// Category groups rule types by how they are evaluated.
type Category int

const (
	// Query rules are answered by the reasoning oracle.
	Query Category = iota
	// Presence rules only look at whether a cell is empty.
	Presence
)

func (c Category) String() string {
	switch c {
	case Query:
		return "QUERY"
	case Presence:
		return "PRESENCE"
	}
	return "UNKNOWN"
}

// Relation is the question a rule type asks about its subject.
type Relation int

// Relations asked by the rule types.
const (
	SubClass Relation = iota
	SuperClass
	Equivalent
	Instance
	Required
	Excluded
)

// Type identifies one rule type.
type Type int

// The closed set of rule types.
const (
	SubClassOf Type = iota
	DirectSubClassOf
	NotSubClassOf
	NotDirectSubClassOf
	SuperClassOf
	DirectSuperClassOf
	NotSuperClassOf
	NotDirectSuperClassOf
	EquivalentTo
	NotEquivalentTo
	InstanceOf
	DirectInstanceOf
	NotInstanceOf
	IsRequired
	IsExcluded
)

// Definition describes one rule type.
type Definition struct {
	Type     Type
	Name     string
	Category Category
	Relation Relation
	Direct   bool
	Negated  bool
}

var definitions = []Definition{
	{SubClassOf, "subclass-of", Query, SubClass, false, false},
	{DirectSubClassOf, "direct-subclass-of", Query, SubClass, true, false},
	{NotSubClassOf, "not-subclass-of", Query, SubClass, false, true},
	{NotDirectSubClassOf, "not-direct-subclass-of", Query, SubClass, true, true},
	{SuperClassOf, "superclass-of", Query, SuperClass, false, false},
	{DirectSuperClassOf, "direct-superclass-of", Query, SuperClass, true, false},
	{NotSuperClassOf, "not-superclass-of", Query, SuperClass, false, true},
	{NotDirectSuperClassOf, "not-direct-superclass-of", Query, SuperClass, true, true},
	{EquivalentTo, "equivalent-to", Query, Equivalent, false, false},
	{NotEquivalentTo, "not-equivalent-to", Query, Equivalent, false, true},
	{InstanceOf, "instance-of", Query, Instance, false, false},
	{DirectInstanceOf, "direct-instance-of", Query, Instance, true, false},
	{NotInstanceOf, "not-instance-of", Query, Instance, false, true},
	{IsRequired, "is-required", Presence, Required, false, false},
	{IsExcluded, "is-excluded", Presence, Excluded, false, false},
}

// Vocabulary maps the textual rule types used in tables to their definitions.
type Vocabulary struct {
	byName map[string]Definition
}

// NewVocabulary builds the lookup table for the closed set of rule types.
func NewVocabulary() *Vocabulary {
	v := &Vocabulary{byName: make(map[string]Definition, len(definitions))}
	for _, d := range definitions {
		v.byName[d.Name] = d
	}
	return v
}

// Lookup returns the definition of a single rule type name.
func (v *Vocabulary) Lookup(name string) (Definition, bool) {
	d, ok := v.byName[name]
	return d, ok
}

// Primary returns the definition of the first type in a '|'-joined rule type,
// e.g. "subclass-of" for "subclass-of|equivalent-to".
func (v *Vocabulary) Primary(ruleType string) (Definition, bool) {
	first, _, _ := strings.Cut(ruleType, "|")
	return v.Lookup(first)
}

// SplitTypes splits a '|'-joined rule type into its sub-types.
func SplitTypes(ruleType string) []string {
	return strings.Split(ruleType, "|")
}

// QueryTypeNames lists the rule types allowed inside a when-clause, sorted.
func (v *Vocabulary) QueryTypeNames() []string {
	names := make([]string, 0, len(v.byName))
	for name, d := range v.byName {
		if d.Category == Query {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

var (
	truthy = map[string]bool{"true": true, "t": true, "1": true, "yes": true, "y": true}
	falsy  = map[string]bool{"false": true, "f": true, "0": true, "no": true, "n": true}
)

// ParseTruth interprets the body of a presence rule.  ok is false when the
// body is not one of true/t/1/yes/y or false/f/0/no/n (case-insensitive).
func ParseTruth(body string) (value bool, ok bool) {
	b := strings.ToLower(strings.TrimSpace(body))
	switch {
	case truthy[b]:
		return true, true
	case falsy[b]:
		return false, true
	}
	return false, false
}
