//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package test holds fixtures shared by the unit tests of several packages.
package test

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/manetu/tablevalidator/pkg/config"
	"github.com/manetu/tablevalidator/pkg/kb"
	"github.com/manetu/tablevalidator/pkg/kb/parsers"
)

// TestConfigFilename is the name of the test configuration file (without extension).
const TestConfigFilename = "mtv-config"

// KnowledgeBaseFile is the anatomy knowledge base used throughout the tests.
const KnowledgeBaseFile = "anatomy.yaml"

// GetTestdataPath returns the absolute path to the testdata directory.
// This uses runtime.Caller to locate the source file and compute the path
// relative to it, ensuring tests work regardless of the working directory.
func GetTestdataPath() string {
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		return "testdata"
	}
	// thisFile is internal/test/instance.go
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))
	return filepath.Join(projectRoot, "testdata")
}

// Path returns the absolute path of a file in the testdata directory.
func Path(name string) string {
	return filepath.Join(GetTestdataPath(), name)
}

// SetupTestConfig points the configuration at testdata/mtv-config.yaml and
// reloads it.
func SetupTestConfig() error {
	if err := os.Setenv(config.ConfigPathEnv, GetTestdataPath()); err != nil {
		return err
	}
	if err := os.Setenv(config.ConfigFileNameEnv, TestConfigFilename); err != nil {
		return err
	}
	config.ResetConfig()
	return config.Load()
}

// LoadKnowledgeBase loads the anatomy knowledge base.
func LoadKnowledgeBase() (*kb.KnowledgeBase, error) {
	return parsers.Load(Path(KnowledgeBaseFile))
}
