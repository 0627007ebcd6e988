package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nomnomgen/compiler/internal/cmdtypes"
	"github.com/nomnomgen/compiler/internal/compile"
	"github.com/nomnomgen/compiler/internal/emit"
	"github.com/nomnomgen/compiler/internal/genconfig"
	"github.com/nomnomgen/compiler/internal/output"
)

// NewCompileCmd creates the compile command: resolve specs and emit every
// enabled artifact.
func NewCompileCmd(global *cmdtypes.GlobalConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile SPEC_DIR",
		Short: "Compile entity specs into generated artifacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, global, args[0])
		},
	}

	cmd.Flags().String("out", "./generated", "Output directory")
	cmd.Flags().String("dialect", "postgres", "SQL dialect (postgres or mysql)")
	cmd.Flags().String("transforms", "transforms.yaml", "Transform registry file")
	cmd.Flags().StringSlice("emitters", nil, "Emitters to run (default: all)")
	cmd.Flags().String("dashboard-api-base-url", "/api", "Base URL embedded into the generated dashboard client")
	cmd.Flags().Bool("split-manifests", false, "Write each orchestration manifest resource to its own file")

	return cmd
}

func runCompile(cmd *cobra.Command, global *cmdtypes.GlobalConfig, specDir string) error {
	v, err := newViper(cmd, global)
	if err != nil {
		return err
	}
	v.Set("spec_dir", specDir)
	v.BindPFlag("out_dir", cmd.Flags().Lookup("out"))
	v.BindPFlag("sql_dialect", cmd.Flags().Lookup("dialect"))
	v.BindPFlag("transform_registry", cmd.Flags().Lookup("transforms"))
	v.BindPFlag("emitters", cmd.Flags().Lookup("emitters"))
	v.BindPFlag("dashboard_api_base_url", cmd.Flags().Lookup("dashboard-api-base-url"))
	v.BindPFlag("split_manifests", cmd.Flags().Lookup("split-manifests"))

	cfg, err := genconfig.Load(v)
	if err != nil {
		return err
	}

	var result *emit.Result
	spinErr := output.RunWithSpinner(cmd.Context(), func() error {
		var runErr error
		result, runErr = compile.Compile(cfg)
		return runErr
	}, output.WithTitle("Compiling entity specs"))
	// A failing emitter never prevents the others' output from being
	// written, so result can be non-nil even when spinErr reports emitter
	// failures; report what was produced before surfacing the error.
	if result == nil {
		if spinErr != nil {
			return spinErr
		}
		return nil
	}

	output.Info("compile finished", "emitters", result.Ran, "out_dir", cfg.OutDir)

	files := make(map[string]string)
	for emitter, results := range result.ByEmitter {
		for _, r := range results {
			rel, err := filepath.Rel(cfg.OutDir, r.Path)
			if err != nil {
				rel = r.Path
			}
			status := output.StatusUnchanged
			if r.Written {
				status = output.StatusWritten
			}
			files[rel] = emitter + ", " + status

			if global.Verbose {
				output.Println(output.FormatArtifactLine(emitter, rel, status))
			}
		}
	}
	if !global.Verbose {
		output.Println(output.RenderFileTree(filepath.Base(cfg.OutDir), files))
	}
	output.Println(output.FormatCheckmark(fmt.Sprintf("Ran %d emitters into %s", len(result.Ran), cfg.OutDir)))

	return spinErr
}
