// Package config loads the project configuration: solver binaries,
// worker counts, folder layout and emitter defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/lightwell/phcband/pkg/ctl"
)

// ProjectFile is the configuration file name looked up in a project
// directory.
const ProjectFile = "phcband.yaml"

// Config is the top-level project configuration.
type Config struct {
	Solver SolverConfig `yaml:"solver"`
	Post   PostConfig   `yaml:"post"`

	// ContainingFolder holds the per-job working directories.
	ContainingFolder string `yaml:"containing_folder"`
	// ProjectedBandsFolder caches unperturbed reference simulations
	// reused across waveguide runs.
	ProjectedBandsFolder string `yaml:"projected_bands_folder"`

	// Parallel bounds concurrent reference simulations in waveguide
	// builds; 0 or 1 keeps the sequential behavior.
	Parallel int `yaml:"parallel"`

	// NewMPB enables script fragments for recent solver releases.
	NewMPB *bool `yaml:"new_mpb"`
	// NumProjectedBands overrides the reference-simulation band count.
	NumProjectedBands int `yaml:"num_projected_bands"`
}

// SolverConfig locates the external solver.
type SolverConfig struct {
	Binary        string `yaml:"binary"`
	MPIBinary     string `yaml:"mpi_binary"`
	MPIRun        string `yaml:"mpirun"`
	NumProcessors int    `yaml:"num_processors"`
}

// PostConfig locates the post-processing collaborators.
type PostConfig struct {
	Command string `yaml:"command"`
	Viewer  string `yaml:"viewer"`
}

// Default returns the configuration used when no project file exists.
func Default() *Config {
	return &Config{
		Solver: SolverConfig{
			Binary:        "mpb",
			MPIBinary:     "mpb-mpi",
			MPIRun:        "mpirun",
			NumProcessors: 2,
		},
		Post:                 PostConfig{Viewer: "xdg-open"},
		ContainingFolder:     ".",
		ProjectedBandsFolder: "../projected_bands_repo",
	}
}

// Load reads a configuration from a YAML file, filling unset fields
// from the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}
	cfg.fillDefaults()
	return cfg, nil
}

// LoadProject loads phcband.yaml from a project directory, returning
// the defaults when the file does not exist.
func LoadProject(projectDir string) (*Config, error) {
	path := filepath.Join(projectDir, ProjectFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

func (c *Config) fillDefaults() {
	d := Default()
	if c.Solver.Binary == "" {
		c.Solver.Binary = d.Solver.Binary
	}
	if c.Solver.MPIBinary == "" {
		c.Solver.MPIBinary = d.Solver.MPIBinary
	}
	if c.Solver.MPIRun == "" {
		c.Solver.MPIRun = d.Solver.MPIRun
	}
	if c.Solver.NumProcessors < 1 {
		c.Solver.NumProcessors = d.Solver.NumProcessors
	}
	if c.Post.Viewer == "" {
		c.Post.Viewer = d.Post.Viewer
	}
	if c.ContainingFolder == "" {
		c.ContainingFolder = d.ContainingFolder
	}
	if c.ProjectedBandsFolder == "" {
		c.ProjectedBandsFolder = d.ProjectedBandsFolder
	}
}

// Defaults builds the emitter configuration with any overrides applied.
func (c *Config) Defaults() ctl.Defaults {
	d := ctl.NewDefaults()
	if c.NewMPB != nil {
		d.NewMPB = *c.NewMPB
	}
	if c.NumProjectedBands > 0 {
		d.NumProjectedBands = c.NumProjectedBands
	}
	return d
}
