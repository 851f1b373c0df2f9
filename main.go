// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Skymount Contributors

package main

import (
	"fmt"
	"os"

	"github.com/skymount/skymount/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
