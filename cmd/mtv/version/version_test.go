//
//  Copyright © Manetu Inc. All rights reserved.
//

package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	defer func(v, c string) { Version, Commit = v, c }(Version, Commit)

	Version, Commit = "v1.2.0", ""
	assert.Equal(t, "v1.2.0", String())

	Commit = "0123456789abcdef"
	assert.Equal(t, "v1.2.0 (0123456)", String())
}
