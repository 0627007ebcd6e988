package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nomnomgen/compiler/internal/cmdtypes"
	"github.com/nomnomgen/compiler/internal/compile"
	"github.com/nomnomgen/compiler/internal/genconfig"
	"github.com/nomnomgen/compiler/internal/output"
)

// NewValidateCmd creates the validate command: load and resolve entity
// specs without emitting any artifacts.
func NewValidateCmd(global *cmdtypes.GlobalConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate SPEC_DIR",
		Short: "Resolve entity specs and report errors without emitting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, global, args[0])
		},
	}

	cmd.Flags().String("transforms", "transforms.yaml", "Transform registry file")

	return cmd
}

func runValidate(cmd *cobra.Command, global *cmdtypes.GlobalConfig, specDir string) error {
	v, err := newViper(cmd, global)
	if err != nil {
		return err
	}
	v.Set("spec_dir", specDir)
	v.BindPFlag("transform_registry", cmd.Flags().Lookup("transforms"))

	cfg, err := genconfig.Load(v)
	if err != nil {
		return err
	}

	resolved, err := compile.Resolve(cfg)
	if err != nil {
		return err
	}

	if global.Verbose {
		for _, name := range resolved.Graph.Order {
			e := resolved.Graph.ByName[name]
			output.Println(output.FormatEntityCheck(name, fmt.Sprintf("%d fields", len(e.Fields))))
		}
	} else {
		output.Println(output.RenderSimpleTree(specDir, resolved.Graph.Order))
	}

	output.Info("validation passed", "entities", len(resolved.Graph.Order), "warnings", len(resolved.Warnings))
	output.Println(output.FormatCheckmark(fmt.Sprintf("%d entities valid", len(resolved.Graph.Order))))
	return nil
}
