package extract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lni/dragonboat/v4/logger"

	"github.com/ValentinKolb/tgis/lib/raster"
	"github.com/ValentinKolb/tgis/lib/tgis"
)

var plog = logger.GetLogger("extract")

// Options configures one extraction run.
type Options struct {
	// Input is the source dataset, "name" or "name@mapset".
	Input string
	// Output is the destination dataset, "name" or "name@mapset".
	Output string
	// Where is the selection predicate passed to the store. Empty selects all maps.
	Where string
	// Expression is the r.mapcalc expression applied to every selected map.
	// Empty registers the selected maps unchanged.
	Expression string
	// Base is the name prefix of derived maps. Required with Expression.
	Base string
	// Mapset qualifies bare names and receives the derived maps.
	Mapset string
	// Creator is recorded on the output dataset and the derived maps.
	Creator string
	// RegisterNull registers derived maps containing only no-data cells.
	RegisterNull bool
	// Overwrite permits replacing the output dataset and derived maps.
	Overwrite bool
}

// Result summarizes a finished run.
type Result struct {
	// Output is the finalized output dataset.
	Output tgis.Dataset
	// Selected is the number of maps matching the predicate.
	Selected int
	// Registered is the number of maps registered into the output.
	Registered int
	// Skipped is the number of maps left out (name collisions and null maps).
	Skipped int
	// Aborted is set if the loop stopped before all selected maps were processed.
	Aborted bool
}

// Extractor runs extractions against a store and a raster engine.
type Extractor struct {
	store    tgis.IStore
	exec     raster.IExecutor
	progress Progress
	metrics  *Metrics
	now      func() time.Time
}

// NewExtractor creates an extractor. progress and m may be nil.
func NewExtractor(store tgis.IStore, exec raster.IExecutor, progress Progress, m *Metrics) *Extractor {
	if progress == nil {
		progress = silent{}
	}
	return &Extractor{
		store:    store,
		exec:     exec,
		progress: progress,
		metrics:  m,
		now:      time.Now,
	}
}

// Run extracts the selected maps of opts.Input into opts.Output.
//
// The returned error is fatal: the input is missing, the output exists without
// overwrite permission, an expression was given without base, the predicate is
// invalid or the store failed. Name collisions and null maps are skipped and
// logged. A failing r.mapcalc stops the loop; the output is finalized with the maps
// registered so far and Result.Aborted is set.
func (e *Extractor) Run(ctx context.Context, opts Options) (Result, error) {
	start := e.now()
	res, err := e.run(ctx, opts)
	if e.metrics != nil {
		e.metrics.Runs.Inc()
		if err != nil {
			e.metrics.RunsFailed.Inc()
		}
		e.metrics.MapsSelected.Add(res.Selected)
		e.metrics.MapsRegistered.Add(res.Registered)
		e.metrics.MapsSkipped.Add(res.Skipped)
		e.metrics.RunDuration.UpdateDuration(start)
	}
	return res, err
}

func (e *Extractor) run(ctx context.Context, opts Options) (Result, error) {
	var res Result

	if opts.Input == "" || opts.Output == "" {
		return res, errors.New("input and output dataset are required")
	}

	inID := tgis.QualifyID(opts.Input, opts.Mapset)
	outID := tgis.QualifyID(opts.Output, opts.Mapset)
	if !inID.IsQualified() || !outID.IsQualified() {
		return res, errors.New("mapset is unknown, set it or use fully qualified names")
	}

	// guard: nothing is modified before these checks passed
	in, err := e.store.GetDataset(inID)
	if tgis.IsNotFound(err) {
		return res, fmt.Errorf("space time raster dataset <%s> not found in temporal database", inID)
	}
	if err != nil {
		return res, fmt.Errorf("load input dataset: %w", err)
	}
	if opts.Expression != "" && opts.Base == "" {
		return res, errors.New("an expression requires a base name for the new maps")
	}
	if opts.Expression != "" && opts.Mapset == "" {
		return res, errors.New("mapset is unknown, it is required to name the new maps")
	}

	outExists, err := e.store.HasDataset(outID)
	if err != nil {
		return res, fmt.Errorf("look up output dataset: %w", err)
	}
	if outExists && !opts.Overwrite {
		return res, fmt.Errorf("space time raster dataset <%s> is already in temporal database, use overwrite flag to overwrite", outID)
	}

	maps, err := e.store.RegisteredMaps(inID, opts.Where)
	if err != nil {
		return res, fmt.Errorf("select maps of <%s>: %w", inID, err)
	}
	res.Selected = len(maps)

	// output preparation
	if outExists {
		plog.Infof("removing existing space time raster dataset <%s>", outID)
		if err := e.store.DeleteDataset(outID); err != nil {
			return res, fmt.Errorf("remove output dataset: %w", err)
		}
	}
	out := tgis.Dataset{ID: outID, Creator: opts.Creator, CreationTime: e.now()}
	out.SetInitialValues(in.InitialValues())
	if err := e.store.InsertDataset(out); err != nil {
		return res, fmt.Errorf("create output dataset: %w", err)
	}

	plog.Debugf("extracting %d maps from <%s> into <%s>", len(maps), inID, outID)

	loopErr := e.process(ctx, &in, outID, maps, opts, &res)

	// finalization always runs, even for an empty or aborted loop
	final, err := e.store.UpdateFromRegisteredMaps(outID)
	if err != nil {
		return res, fmt.Errorf("update extent of <%s>: %w", outID, err)
	}
	res.Output = final
	if len(maps) > 0 {
		e.progress.Percent(len(maps), len(maps))
	}

	if loopErr != nil {
		return res, loopErr
	}
	return res, nil
}

// process runs the per map loop. Store failures and cancellation stop the loop
// and are returned; a failing r.mapcalc only stops the loop.
func (e *Extractor) process(ctx context.Context, in *tgis.Dataset, outID tgis.ID, maps []tgis.Map, opts Options, res *Result) error {
	total := len(maps)
	if total > 0 {
		e.progress.Percent(0, total)
	}

	for i := range maps {
		k := i + 1
		src := &maps[i]

		if err := ctx.Err(); err != nil {
			res.Aborted = true
			return fmt.Errorf("extraction interrupted: %w", err)
		}
		e.progress.Percent(k, total)

		if opts.Expression == "" {
			if err := e.store.RegisterMap(outID, src.ID); err != nil {
				res.Aborted = true
				return fmt.Errorf("register <%s>: %w", src.ID, err)
			}
			res.Registered++
			continue
		}

		next, err := e.derive(ctx, in, outID, src, k, opts)
		switch {
		case err != nil:
			res.Aborted = true
			return err
		case next == stepAbort:
			res.Aborted = true
			return nil
		case next == stepSkip:
			res.Skipped++
		default:
			res.Registered++
		}
	}
	return nil
}

type step int

const (
	stepRegistered step = iota
	stepSkip
	stepAbort
)

// derive computes the k-th derived map from src and registers it into the output.
func (e *Extractor) derive(ctx context.Context, in *tgis.Dataset, outID tgis.ID, src *tgis.Map, k int, opts Options) (step, error) {
	name := fmt.Sprintf("%s_%d", opts.Base, k)
	mapID := tgis.NewID(name, opts.Mapset)
	statement := Statement(name, Substitute(opts.Expression, in.ID, src.ID))

	exists, err := e.store.HasMap(mapID)
	if err != nil {
		return stepAbort, fmt.Errorf("look up <%s>: %w", mapID, err)
	}
	if exists {
		if !opts.Overwrite {
			plog.Errorf("raster map <%s> is already in temporal database, use overwrite flag to overwrite", mapID)
			return stepSkip, nil
		}
		if err := e.store.DeleteMap(mapID); err != nil {
			return stepAbort, fmt.Errorf("remove <%s>: %w", mapID, err)
		}
	}

	plog.Debugf("apply r.mapcalc expression: %q", statement)
	started := e.now()
	err = e.exec.MapCalc(ctx, statement, opts.Overwrite)
	if e.metrics != nil {
		e.metrics.MapCalcDuration.UpdateDuration(started)
	}
	if err != nil {
		if e.metrics != nil {
			e.metrics.MapCalcFailures.Inc()
		}
		plog.Errorf("error while r.mapcalc computation of <%s>, stopping: %v", mapID, err)
		return stepAbort, nil
	}

	info, err := e.exec.Info(ctx, mapID.String())
	if err != nil {
		plog.Errorf("unable to load raster info of <%s>, stopping: %v", mapID, err)
		return stepAbort, nil
	}
	if info.IsNull() && !opts.RegisterNull {
		plog.Infof("raster map <%s> contains only null values, it is not registered", mapID)
		return stepSkip, nil
	}

	derived := tgis.Map{ID: mapID, Creator: opts.Creator, CreationTime: e.now()}
	info.Apply(&derived)
	derived.CopyTimestamp(src)

	if err := e.store.InsertMap(derived); err != nil {
		return stepAbort, fmt.Errorf("insert <%s>: %w", mapID, err)
	}
	if err := e.store.RegisterMap(outID, mapID); err != nil {
		return stepAbort, fmt.Errorf("register <%s>: %w", mapID, err)
	}
	return stepRegistered, nil
}
