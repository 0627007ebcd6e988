package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nomnomgen/compiler/internal/cmdtypes"
	"github.com/nomnomgen/compiler/internal/compile"
	"github.com/nomnomgen/compiler/internal/genconfig"
	"github.com/nomnomgen/compiler/internal/modeldiff"
	"github.com/nomnomgen/compiler/internal/output"
)

// NewDiffCmd creates the diff command: resolve two spec directories
// independently and report how their resolved models differ.
func NewDiffCmd(global *cmdtypes.GlobalConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff FROM_SPEC_DIR TO_SPEC_DIR",
		Short: "Show how the resolved model changed between two spec directories",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd, global, args[0], args[1])
		},
	}

	cmd.Flags().String("transforms", "transforms.yaml", "Transform registry file")

	return cmd
}

func runDiff(cmd *cobra.Command, global *cmdtypes.GlobalConfig, fromDir, toDir string) error {
	resolveDir := func(dir string) (*compile.Resolved, error) {
		v, err := newViper(cmd, global)
		if err != nil {
			return nil, err
		}
		v.Set("spec_dir", dir)
		v.BindPFlag("transform_registry", cmd.Flags().Lookup("transforms"))
		cfg, err := genconfig.Load(v)
		if err != nil {
			return nil, err
		}
		return compile.Resolve(cfg)
	}

	from, err := resolveDir(fromDir)
	if err != nil {
		return err
	}
	to, err := resolveDir(toDir)
	if err != nil {
		return err
	}

	report, err := modeldiff.Diff(from.Graph, to.Graph)
	if err != nil {
		return err
	}

	if report == "" {
		output.Info("no differences in resolved model")
		return nil
	}

	output.Println(report)
	return nil
}
