//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package v1 parses tablevalidator.manetu.io/v1 knowledge base documents.
package v1

import (
	"github.com/manetu/tablevalidator/pkg/kb"
	"github.com/pkg/errors"

	"gopkg.in/yaml.v3"
)

// Property represents a property in v1 format
type Property struct {
	ID            string   `yaml:"id"`
	Label         string   `yaml:"label"`
	SubPropertyOf []string `yaml:"subPropertyOf"`
}

// Class represents a class in v1 format.  Axiom values are class expressions.
type Class struct {
	ID           string   `yaml:"id"`
	Label        string   `yaml:"label"`
	SubClassOf   []string `yaml:"subClassOf"`
	EquivalentTo []string `yaml:"equivalentTo"`
	DisjointWith []string `yaml:"disjointWith"`
}

// Individual represents a named individual in v1 format
type Individual struct {
	ID    string   `yaml:"id"`
	Label string   `yaml:"label"`
	Types []string `yaml:"types"`
}

// Document represents the v1 YAML structure
type Document struct {
	Metadata struct {
		Name string `yaml:"name"`
	}
	Spec struct {
		Prefixes    map[string]string `yaml:"prefixes"`
		Properties  []Property        `yaml:"properties"`
		Classes     []Class           `yaml:"classes"`
		Individuals []Individual      `yaml:"individuals"`
	}
}

// Parse builds a knowledge base from a v1 document.  Every entity is declared
// before any axiom is parsed, so axioms may refer to entities defined later in
// the file.
func Parse(data []byte) (*kb.KnowledgeBase, error) {
	var doc Document

	err := yaml.Unmarshal(data, &doc)
	if err != nil {
		return nil, err
	}

	k := kb.New(doc.Metadata.Name, doc.Spec.Prefixes)

	for _, p := range doc.Spec.Properties {
		if _, err := k.Declare(p.ID, p.Label, kb.PropertyKind); err != nil {
			return nil, err
		}
	}
	for _, c := range doc.Spec.Classes {
		if _, err := k.Declare(c.ID, c.Label, kb.ClassKind); err != nil {
			return nil, err
		}
	}
	for _, i := range doc.Spec.Individuals {
		if _, err := k.Declare(i.ID, i.Label, kb.IndividualKind); err != nil {
			return nil, err
		}
	}

	for _, p := range doc.Spec.Properties {
		for _, super := range p.SubPropertyOf {
			e, ok := k.EntityForTerm(super)
			if !ok {
				return nil, errors.Errorf("property %s: unknown super-property %s", p.ID, super)
			}
			if err := k.AddSubPropertyOf(p.ID, e.ID); err != nil {
				return nil, errors.Wrapf(err, "property %s", p.ID)
			}
		}
	}

	for _, c := range doc.Spec.Classes {
		if err := addAxioms(k, c.ID, c.SubClassOf, k.AddSubClassOf); err != nil {
			return nil, err
		}
		if err := addAxioms(k, c.ID, c.EquivalentTo, k.AddEquivalentClass); err != nil {
			return nil, err
		}
		if err := addAxioms(k, c.ID, c.DisjointWith, k.AddDisjointClass); err != nil {
			return nil, err
		}
	}

	for _, i := range doc.Spec.Individuals {
		if err := addAxioms(k, i.ID, i.Types, k.AddType); err != nil {
			return nil, err
		}
	}

	return k, nil
}

func addAxioms(k *kb.KnowledgeBase, id string, exprs []string, add func(string, kb.Expression) error) error {
	for _, text := range exprs {
		expr, err := k.ParseExpression(text)
		if err != nil {
			return errors.Wrapf(err, "%s: could not parse %q", id, text)
		}
		if err := add(id, expr); err != nil {
			return err
		}
	}
	return nil
}
