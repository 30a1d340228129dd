// Copyright (c) 2025 sfquery
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package main is the entry point for the sfquery CLI, a command-line client
// for querying CRM objects over the SOAP login and REST query APIs.
package main

import (
	"sfquery/cli/cmd"
)

func main() {
	cmd.Execute()
}
