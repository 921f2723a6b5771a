package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lightwell/phcband/internal/server"
)

var (
	// Global flags
	projectDir string
	verbose    bool
	runMode    string
	workers    int

	// Logger
	logger *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "phcband",
		Short: "Photonic-crystal band-structure driver for the MPB eigenmode solver",
		Long: `phcband builds MPB control scripts for photonic-crystal unit cells
(triangular lattices of holes, slabs, W1 waveguides), runs the external
solver and post-processes its output into band diagrams.

Waveguide recipes first ensure the matrix of unperturbed reference
simulations needed for band projection, reusing completed ones found in
the projected-bands repository.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config := zap.NewProductionConfig()
			if verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			logger, err = config.Build()
			if err != nil {
				return fmt.Errorf("initializing logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&projectDir, "project", "p", ".",
		"project directory (looks for phcband.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&runMode, "mode", "m", "sim",
		"run mode: '', 'ctl', 'sim', 'postpc' or 'display'")
	rootCmd.PersistentFlags().IntVarP(&workers, "workers", "w", 0,
		"solver worker processes (overrides config)")

	rootCmd.AddCommand(triHoles2DCmd())
	rootCmd.AddCommand(triHolesSlabCmd())
	rootCmd.AddCommand(triHoles2DWaveguideCmd())
	rootCmd.AddCommand(triHolesSlabWaveguideCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the job-folder tree for browsing results",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return server.New(cfg.ContainingFolder, port, logger).Start()
		},
	}
	cmd.Flags().IntVar(&port, "port", 8310, "listen port")
	return cmd
}
