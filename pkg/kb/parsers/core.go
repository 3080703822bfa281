//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package parsers loads knowledge bases from YAML, dispatching on the
// document's apiVersion.
package parsers

import (
	"fmt"
	"io"
	"os"

	"github.com/manetu/tablevalidator/pkg/kb"
	"github.com/manetu/tablevalidator/pkg/kb/parsers/v1"

	"gopkg.in/yaml.v3"
)

// Preamble represents the header information of a knowledge base file
type Preamble struct {
	APIVersion string `yaml:"apiVersion"`
	Kind       string `yaml:"kind"`
}

// Load loads a knowledge base from a file path
func Load(path string) (*kb.KnowledgeBase, error) {
	f, err := os.Open(path) // #nosec G304 -- CLI tool intentionally reads user-provided paths
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	return LoadFromBytes(data)
}

// LoadFromBytes loads a knowledge base from an in-memory YAML document
func LoadFromBytes(data []byte) (*kb.KnowledgeBase, error) {
	var preamble Preamble

	err := yaml.Unmarshal(data, &preamble)
	if err != nil {
		return nil, err
	}

	if preamble.Kind != "KnowledgeBase" {
		return nil, fmt.Errorf("expected KnowledgeBase got %s", preamble.Kind)
	}

	switch preamble.APIVersion {
	case "tablevalidator.manetu.io/v1":
		return v1.Parse(data)
	}

	return nil, fmt.Errorf("unsupported KnowledgeBase API Version %s", preamble.APIVersion)
}
