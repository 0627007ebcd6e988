// Package cmd provides the nomnomgen CLI command implementations.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nomnomgen/compiler/internal/cmdtypes"
	"github.com/nomnomgen/compiler/internal/output"
)

var (
	configFlag  string
	verboseFlag bool
)

// NewRootCmd creates the root command for the nomnomgen CLI.
func NewRootCmd() *cobra.Command {
	global := &cmdtypes.GlobalConfig{}

	rootCmd := &cobra.Command{
		Use:           "nomnomgen",
		Short:         "Entity spec compiler",
		Long:          `nomnomgen compiles declarative entity specs into record types, an extraction program, SQL schema, ORM models, an async worker, and a dashboard.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			global.ConfigPath = configFlag
			global.Verbose = verboseFlag
			output.SetupLogging(output.LogConfig{Verbose: verboseFlag})
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to config file (env: NOMNOMGEN_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(NewCompileCmd(global))
	rootCmd.AddCommand(NewValidateCmd(global))
	rootCmd.AddCommand(NewDiffCmd(global))
	rootCmd.AddCommand(NewVersionCmd(global))

	return rootCmd
}

// newViper builds a viper instance bound to a command's flags and, when set,
// the resolved --config file, ready for genconfig.Load.
func newViper(cmd *cobra.Command, global *cmdtypes.GlobalConfig) (*viper.Viper, error) {
	v := viper.New()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	if global.ConfigPath != "" {
		v.SetConfigFile(global.ConfigPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}
	return v, nil
}
