package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lightwell/phcband/pkg/config"
	"github.com/lightwell/phcband/pkg/ctl"
	"github.com/lightwell/phcband/pkg/kspace"
	"github.com/lightwell/phcband/pkg/material"
	"github.com/lightwell/phcband/pkg/recipes"
	"github.com/lightwell/phcband/pkg/sim"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadProject(projectDir)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}
	if workers > 0 {
		cfg.Solver.NumProcessors = workers
	}
	return cfg, nil
}

// buildEnv wires the recipe environment from the project config.
func buildEnv() (*recipes.Env, sim.RunMode, error) {
	mode, err := sim.ParseRunMode(runMode)
	if err != nil {
		return nil, "", err
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, "", err
	}

	solver := sim.NewMPB(cfg.Solver.Binary, cfg.Solver.MPIBinary, cfg.Solver.MPIRun, logger)
	post := sim.NewExternalPost(cfg.Post.Command, cfg.Post.Viewer, logger)

	env := &recipes.Env{
		Runner:               sim.NewRunner(solver, post, cfg.Solver.NumProcessors, logger),
		Defaults:             cfg.Defaults(),
		ContainingFolder:     cfg.ContainingFolder,
		ProjectedBandsFolder: cfg.ProjectedBandsFolder,
		Parallel:             cfg.Parallel,
		Log:                  logger,
	}
	return env, mode, nil
}

type commonFlags struct {
	materialName string
	radius       float64
	numBands     int
	resolution   int
	meshSize     int
	suffix       string
	titleSuffix  string
}

func (f *commonFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.materialName, "material", "",
		"slab material: a name from the dielectric table or a bare epsilon value")
	cmd.Flags().Float64VarP(&f.radius, "radius", "r", 0,
		"hole radius in units of the lattice constant")
	cmd.Flags().IntVar(&f.numBands, "bands", 8, "number of bands to calculate")
	cmd.Flags().IntVar(&f.resolution, "resolution", 32, "solver grid resolution")
	cmd.Flags().IntVar(&f.meshSize, "mesh-size", 7, "solver mesh size")
	cmd.Flags().StringVar(&f.suffix, "suffix", "", "job name suffix")
	cmd.Flags().StringVar(&f.titleSuffix, "title-suffix", "", "band diagram title appendix")
	_ = cmd.MarkFlagRequired("material")
	_ = cmd.MarkFlagRequired("radius")
}

func (f *commonFlags) parseMaterial() (material.Material, error) {
	return material.Parse(f.materialName)
}

func triHoles2DCmd() *cobra.Command {
	var (
		common         commonFlags
		kInterpolation int
		modes          []string
		noPatterns     bool
		convert        bool
	)
	cmd := &cobra.Command{
		Use:   "tri-holes-2d",
		Short: "2D triangular lattice of holes",
		RunE: func(_ *cobra.Command, _ []string) error {
			env, mode, err := buildEnv()
			if err != nil {
				return err
			}
			mat, err := common.parseMaterial()
			if err != nil {
				return err
			}
			modeList, err := parseModes(modes)
			if err != nil {
				return err
			}
			job, err := recipes.TriHoles2D(context.Background(), env, recipes.TriHoles2DOpts{
				Material:             mat,
				Radius:               common.radius,
				NumBands:             common.numBands,
				KInterpolation:       kInterpolation,
				Resolution:           common.resolution,
				MeshSize:             common.meshSize,
				RunMode:              mode,
				SaveFieldPatterns:    !noPatterns,
				ConvertFieldPatterns: convert,
				JobNameSuffix:        common.suffix,
				BandsTitleAppendix:   common.titleSuffix,
				Modes:                modeList,
			})
			if err != nil {
				return err
			}
			printJobSummary(job)
			return nil
		},
	}
	common.register(cmd)
	cmd.Flags().IntVar(&kInterpolation, "k-interpolation", 11,
		"k-points interpolated between high-symmetry points")
	cmd.Flags().StringSliceVar(&modes, "modes", []string{"te", "tm"}, "modes to run")
	cmd.Flags().BoolVar(&noPatterns, "no-field-patterns", false,
		"skip field pattern output at high-symmetry points")
	cmd.Flags().BoolVar(&convert, "convert-patterns", false,
		"convert field pattern files to images during post-processing")
	return cmd
}

func triHolesSlabCmd() *cobra.Command {
	var (
		common         commonFlags
		thickness      float64
		supercellZ     float64
		kInterpolation int
		modes          []string
		substrate      string
		noPatterns     bool
		convert        bool
	)
	cmd := &cobra.Command{
		Use:   "tri-holes-slab",
		Short: "Slab with a triangular lattice of holes",
		RunE: func(_ *cobra.Command, _ []string) error {
			env, mode, err := buildEnv()
			if err != nil {
				return err
			}
			mat, err := common.parseMaterial()
			if err != nil {
				return err
			}
			modeList, err := parseModes(modes)
			if err != nil {
				return err
			}
			opts := recipes.TriHolesSlab3DOpts{
				Material:             mat,
				Radius:               common.radius,
				Thickness:            thickness,
				NumBands:             common.numBands,
				KInterpolation:       kInterpolation,
				Resolution:           common.resolution,
				MeshSize:             common.meshSize,
				SupercellZ:           supercellZ,
				RunMode:              mode,
				SaveFieldPatterns:    !noPatterns,
				ConvertFieldPatterns: convert,
				JobNameSuffix:        common.suffix,
				BandsTitleAppendix:   common.titleSuffix,
				Modes:                modeList,
			}
			if substrate != "" {
				sub, err := material.Parse(substrate)
				if err != nil {
					return err
				}
				opts.SubstrateMaterial = &sub
			}
			job, err := recipes.TriHolesSlab3D(context.Background(), env, opts)
			if err != nil {
				return err
			}
			printJobSummary(job)
			return nil
		},
	}
	common.register(cmd)
	cmd.Flags().Float64VarP(&thickness, "thickness", "t", 0,
		"slab thickness in units of the lattice constant")
	cmd.Flags().Float64Var(&supercellZ, "supercell-z", 6,
		"supercell height in units of the lattice constant")
	cmd.Flags().IntVar(&kInterpolation, "k-interpolation", 11,
		"k-points interpolated between high-symmetry points")
	cmd.Flags().StringSliceVar(&modes, "modes", []string{"zeven", "zodd"}, "modes to run")
	cmd.Flags().StringVar(&substrate, "substrate", "", "optional substrate material")
	cmd.Flags().BoolVar(&noPatterns, "no-field-patterns", false,
		"skip field pattern output at high-symmetry points")
	cmd.Flags().BoolVar(&convert, "convert-patterns", false,
		"convert field pattern files to images during post-processing")
	_ = cmd.MarkFlagRequired("thickness")
	return cmd
}

type waveguideFlags struct {
	pol        string
	kSteps     int
	yDirection bool
	supercell  int
	cropY      string
	saveBands  []int
	saveKVecs  []string
	convert    bool
}

func (f *waveguideFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.pol, "pol", "", "polarization mode to run")
	cmd.Flags().IntVar(&f.kSteps, "k-steps", 17,
		"k samples along the waveguide direction between 0 and 0.5")
	cmd.Flags().BoolVar(&f.yDirection, "ydirection", false,
		"point the waveguide along y instead of x")
	cmd.Flags().IntVar(&f.supercell, "supercell", 5,
		"supercell extent perpendicular to the waveguide, in sqrt(3) lattice constants")
	cmd.Flags().StringVar(&f.cropY, "crop-y", "",
		"band diagram crop: 'auto' or a maximum frequency")
	cmd.Flags().IntSliceVar(&f.saveBands, "save-bands", nil,
		"band numbers at which field patterns are saved")
	cmd.Flags().StringSliceVar(&f.saveKVecs, "save-k", nil,
		"k-vectors 'kx,ky,kz' at which field patterns are saved")
	cmd.Flags().BoolVar(&f.convert, "convert-patterns", false,
		"convert field pattern files to images during post-processing")
}

// mode validates the polarization flag; empty keeps the recipe default.
func (f *waveguideFlags) mode() (ctl.Mode, error) {
	switch m := ctl.Mode(f.pol); m {
	case ctl.ModeAll, ctl.ModeTE, ctl.ModeTM, ctl.ModeZEven, ctl.ModeZOdd:
		return m, nil
	default:
		return "", fmt.Errorf("unknown mode %q", f.pol)
	}
}

func (f *waveguideFlags) crop() (sim.Crop, error) {
	switch f.cropY {
	case "", "none":
		return sim.Crop{}, nil
	case "auto":
		return sim.AutoCrop(), nil
	}
	y, err := strconv.ParseFloat(f.cropY, 64)
	if err != nil {
		return sim.Crop{}, fmt.Errorf("invalid crop-y %q", f.cropY)
	}
	return sim.CropAt(y), nil
}

func (f *waveguideFlags) kvecs() ([]kspace.Vec3, error) {
	var vecs []kspace.Vec3
	for _, s := range f.saveKVecs {
		parts := strings.Split(s, ",")
		if len(parts) == 0 || len(parts) > 3 {
			return nil, fmt.Errorf("invalid k-vector %q", s)
		}
		var v [3]float64
		for i, p := range parts {
			val, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid k-vector %q: %w", s, err)
			}
			v[i] = val
		}
		vecs = append(vecs, kspace.V(v[0], v[1], v[2]))
	}
	return vecs, nil
}

func triHoles2DWaveguideCmd() *cobra.Command {
	var (
		common commonFlags
		wg     waveguideFlags
	)
	cmd := &cobra.Command{
		Use:   "tri-holes-2d-wg",
		Short: "W1 waveguide in a 2D triangular lattice of holes",
		RunE: func(_ *cobra.Command, _ []string) error {
			env, mode, err := buildEnv()
			if err != nil {
				return err
			}
			mat, err := common.parseMaterial()
			if err != nil {
				return err
			}
			crop, err := wg.crop()
			if err != nil {
				return err
			}
			kvecs, err := wg.kvecs()
			if err != nil {
				return err
			}
			pol, err := wg.mode()
			if err != nil {
				return err
			}
			job, err := recipes.TriHoles2DWaveguide(context.Background(), env, recipes.Waveguide2DOpts{
				Material:                  mat,
				Radius:                    common.radius,
				Mode:                      pol,
				NumBands:                  common.numBands,
				KSteps:                    wg.kSteps,
				YDirection:                wg.yDirection,
				SupercellSize:             wg.supercell,
				Resolution:                common.resolution,
				MeshSize:                  common.meshSize,
				RunMode:                   mode,
				SaveFieldPatternsKVecs:    kvecs,
				SaveFieldPatternsBandNums: wg.saveBands,
				ConvertFieldPatterns:      wg.convert,
				JobNameSuffix:             common.suffix,
				BandsTitleAppendix:        common.titleSuffix,
				PlotCropY:                 crop,
			})
			if err != nil {
				return err
			}
			printJobSummary(job)
			return nil
		},
	}
	common.register(cmd)
	wg.register(cmd)
	return cmd
}

func triHolesSlabWaveguideCmd() *cobra.Command {
	var (
		common     commonFlags
		wg         waveguideFlags
		thickness  float64
		supercellZ float64
	)
	cmd := &cobra.Command{
		Use:   "tri-holes-slab-wg",
		Short: "W1 waveguide in a triangular-holes slab",
		RunE: func(_ *cobra.Command, _ []string) error {
			env, mode, err := buildEnv()
			if err != nil {
				return err
			}
			mat, err := common.parseMaterial()
			if err != nil {
				return err
			}
			crop, err := wg.crop()
			if err != nil {
				return err
			}
			kvecs, err := wg.kvecs()
			if err != nil {
				return err
			}
			pol, err := wg.mode()
			if err != nil {
				return err
			}
			job, err := recipes.TriHolesSlab3DWaveguide(context.Background(), env, recipes.WaveguideSlabOpts{
				Material:                  mat,
				Radius:                    common.radius,
				Thickness:                 thickness,
				Mode:                      pol,
				NumBands:                  common.numBands,
				KSteps:                    wg.kSteps,
				YDirection:                wg.yDirection,
				SupercellSize:             wg.supercell,
				SupercellZ:                supercellZ,
				Resolution:                common.resolution,
				MeshSize:                  common.meshSize,
				RunMode:                   mode,
				SaveFieldPatternsKVecs:    kvecs,
				SaveFieldPatternsBandNums: wg.saveBands,
				ConvertFieldPatterns:      wg.convert,
				JobNameSuffix:             common.suffix,
				BandsTitleAppendix:        common.titleSuffix,
				PlotCropY:                 crop,
			})
			if err != nil {
				return err
			}
			printJobSummary(job)
			return nil
		},
	}
	common.register(cmd)
	wg.register(cmd)
	cmd.Flags().Float64VarP(&thickness, "thickness", "t", 0,
		"slab thickness in units of the lattice constant")
	cmd.Flags().Float64Var(&supercellZ, "supercell-z", 6,
		"supercell height in units of the lattice constant")
	_ = cmd.MarkFlagRequired("thickness")
	return cmd
}

func parseModes(names []string) ([]ctl.Mode, error) {
	var modes []ctl.Mode
	for _, n := range names {
		switch m := ctl.Mode(n); m {
		case ctl.ModeTE, ctl.ModeTM, ctl.ModeZEven, ctl.ModeZOdd, ctl.ModeAll:
			modes = append(modes, m)
		default:
			return nil, fmt.Errorf("unknown mode %q", n)
		}
	}
	return modes, nil
}
