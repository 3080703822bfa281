//
//  Copyright © Manetu Inc. All rights reserved.
//

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetConfigPath(t *testing.T) {
	t.Setenv(ConfigPathEnv, "/custom/config/path")
	assert.Equal(t, "/custom/config/path", getConfigPath())
}

func TestGetConfigFileName(t *testing.T) {
	t.Setenv(ConfigFileNameEnv, "production-config")
	assert.Equal(t, "production-config", getConfigFileName())
}
