/*
Copyright SecureKey Technologies Inc. All Rights Reserved.
SPDX-License-Identifier: Apache-2.0
*/
package main

import (
	"os"
	"testing"
)

// main prints the help and exits with code 0 when run without arguments.
func TestWithoutUserAgs(t *testing.T) { //nolint: unparam //see above
	setUpArgs()
	main()
}

// Strips out the extra args that the unit test framework adds.
func setUpArgs() {
	os.Args = os.Args[:1]
}
