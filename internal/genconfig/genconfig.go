// Package genconfig resolves the compiler's emission configuration: which
// emitters run, where each writes, the SQL dialect, and the transform
// registry location. Values are layered flag > env > config file > default,
// the same precedence chain the teacher CLI uses for its own settings.
package genconfig

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/nomnomgen/compiler/internal/typelower"
)

// Config is the fully resolved emission configuration for one compilation.
type Config struct {
	// SpecDir is the directory of entity spec YAML files.
	SpecDir string

	// OutDir is the root output directory; each emitter writes to a
	// fixed subdirectory under it (record/, extraction/, schema/, orm/,
	// worker/, dashboard/, manifest/).
	OutDir string

	// TransformRegistry is the path to the external transform registry YAML.
	TransformRegistry string

	// SQLDialect selects PostgreSQL or MySQL column types for the Schema
	// and ORM emitters.
	SQLDialect typelower.SQLDialect

	// Emitters lists which emitters to run. Empty means "all".
	Emitters []string

	// DashboardAPIBaseURL is embedded into the generated dashboard
	// frontend's fetch client.
	DashboardAPIBaseURL string

	// SplitManifests writes each orchestration manifest resource to its
	// own file under manifest/manifests/ instead of one manifest.yaml.
	SplitManifests bool
}

// AllEmitters names every emitter the Build Descriptor Writer can enumerate.
var AllEmitters = []string{"record", "extraction", "schema", "orm", "worker", "dashboard", "manifest"}

// Load resolves a Config from flags (already bound into v), environment
// variables (NOMNOMGEN_ prefix), an optional config file, and defaults.
func Load(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("nomnomgen")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("out_dir", "./generated")
	v.SetDefault("sql_dialect", "postgres")
	v.SetDefault("transform_registry", "transforms.yaml")
	v.SetDefault("dashboard_api_base_url", "/api")

	dialect := typelower.SQLDialect(v.GetString("sql_dialect"))
	if dialect != typelower.DialectPostgres && dialect != typelower.DialectMySQL {
		return nil, fmt.Errorf("unknown sql dialect %q (want postgres or mysql)", dialect)
	}

	cfg := &Config{
		SpecDir:             v.GetString("spec_dir"),
		OutDir:              v.GetString("out_dir"),
		TransformRegistry:   v.GetString("transform_registry"),
		SQLDialect:          dialect,
		Emitters:            v.GetStringSlice("emitters"),
		DashboardAPIBaseURL: v.GetString("dashboard_api_base_url"),
		SplitManifests:      v.GetBool("split_manifests"),
	}

	if cfg.SpecDir == "" {
		return nil, fmt.Errorf("spec directory is required")
	}

	if len(cfg.Emitters) == 0 {
		cfg.Emitters = AllEmitters
	}

	return cfg, nil
}

// Enabled reports whether the named emitter should run under this Config.
func (c *Config) Enabled(name string) bool {
	for _, e := range c.Emitters {
		if e == name {
			return true
		}
	}
	return false
}
