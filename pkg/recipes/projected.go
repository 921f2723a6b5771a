package recipes

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lightwell/phcband/pkg/ctl"
	"github.com/lightwell/phcband/pkg/kspace"
	"github.com/lightwell/phcband/pkg/sim"
)

// Waveguide band projection maps each sampled k-value along the
// waveguide axis from the rectangular supercell's Brillouin zone onto
// the zone boundary of the bulk triangular lattice: the rectangular
// K point scaled by the k-value, offset by the triangular M point
// (Johnson et al., Phys. Rev. B 62, 8212 (2000), Fig. 8).
var (
	rectBZK = kspace.V(0.25, -0.25, 0)
	triBZM  = kspace.V(0.5, 0.5, 0)
)

// refKInterpolation is the interpolation density of every reference
// path between the two derived points.
const refKInterpolation = 15

// BulkBuilder runs one unperturbed reference simulation over the given
// k-path. It is the explicit delegation point between the waveguide
// orchestrator and the bulk recipes.
type BulkBuilder func(ctx context.Context, ks *kspace.KSpace, jobNameSuffix, titleAppendix, containingFolder string) (*sim.Job, error)

// EnsureProjectedBands guarantees that one completed unperturbed
// simulation exists per sampled k-value, running the bulk builder for
// any that are missing. Completion is detected by the presence of the
// per-mode ranges marker file; present markers are reused as-is.
//
// The returned folder list preserves k-value order and is complete even
// when every entry was memoized. Any builder failure aborts the whole
// waveguide build; with sequential execution no further simulations are
// started after the first failure.
func EnsureProjectedBands(
	ctx context.Context,
	env *Env,
	repoRoot string,
	unperturbedJobName string,
	mode ctl.Mode,
	kValues []float64,
	build BulkBuilder,
) ([]string, error) {
	repo, err := filepath.Abs(filepath.Join(repoRoot, unperturbedJobName))
	if err != nil {
		return nil, fmt.Errorf("resolving projected-bands folder: %w", err)
	}
	if err := os.MkdirAll(repo, 0o755); err != nil {
		return nil, fmt.Errorf("creating projected-bands folder: %w", err)
	}

	log := env.logger()

	folders := make([]string, len(kValues))
	for i, ky := range kValues {
		folders[i] = filepath.Join(repo, unperturbedJobName+projSuffix(ky))
	}

	runOne := func(ctx context.Context, i int) error {
		ky := kValues[i]
		jobName := unperturbedJobName + projSuffix(ky)
		marker := filepath.Join(folders[i], sim.RangesFileName(jobName, mode))

		if _, err := os.Stat(marker); err == nil {
			log.Debug("unperturbed structure already simulated",
				zap.Float64("k_wg", ky), zap.String("folder", folders[i]))
			return nil
		}

		log.Info("unperturbed structure not yet simulated, running now",
			zap.Float64("k_wg", ky))

		ks := kspace.New([]kspace.Vec3{
			rectBZK.Scale(2 * ky),
			rectBZK.Scale(2 * ky).Add(triBZM),
		}, refKInterpolation)

		titleAppendix := fmt.Sprintf(", at k_wg=%.3f", ky)
		if _, err := build(ctx, ks, projSuffix(ky), titleAppendix, repo); err != nil {
			return fmt.Errorf("unperturbed simulation in %s: %w", folders[i], err)
		}
		return nil
	}

	if env.Parallel > 1 {
		// independent per k-value; memoization and fail-fast semantics
		// carry over, only start order changes
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(env.Parallel)
		for i := range kValues {
			i := i
			g.Go(func() error { return runOne(gctx, i) })
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return folders, nil
	}

	for i := range kValues {
		if err := runOne(ctx, i); err != nil {
			return nil, err
		}
	}
	return folders, nil
}
