// Command nomnomgen compiles declarative entity specs into generated
// record types, an extraction program, SQL schema, ORM models, an async
// worker, and a dashboard.
package main

import (
	"github.com/nomnomgen/compiler/internal/cmd"
	"github.com/nomnomgen/compiler/internal/output"
)

func main() {
	rootCmd := cmd.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		output.Error(err.Error())
		cmd.Exit(err)
	}
}
