//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package version reports the build of the mtv binary.
package version

// Set at build time, e.g.
//
//	-ldflags "-X github.com/manetu/tablevalidator/cmd/mtv/version.Version=v1.2.0"
var (
	Version = "dev"
	Commit  = ""
)

// String renders the version followed by the short commit, when known.
func String() string {
	if Commit == "" {
		return Version
	}
	c := Commit
	if len(c) > 7 {
		c = c[:7]
	}
	return Version + " (" + c + ")"
}
