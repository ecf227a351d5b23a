package pipeline

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/prepio/janitor/dataset"
	jerrors "github.com/prepio/janitor/internal/errors"
)

// Preprocessor runs the twelve cleaning stages over one dataset. It is a
// single-shot, single-goroutine object: construct one per invocation, call
// Run once, and read the report. No state survives across invocations, so
// concurrent requests each build their own Preprocessor.
type Preprocessor struct {
	original *dataset.Dataset
	target   string
	config   Config
	mem      memory.Allocator
}

// Outcome is what a successful stage hands back to the orchestrator: the
// replacement dataset (nil when the stage left it untouched), whether
// column classification must be recomputed, the log lines to append, and
// the stats entry to record (nil when the stage recorded nothing).
type Outcome struct {
	Dataset    *dataset.Dataset
	Reclassify bool
	Log        []string
	Stats      any
}

// runContext is the per-stage view of pipeline state. Stages read from it
// and return an Outcome; they never mutate shared state directly, so a
// failing stage cannot leave the dataset half-transformed.
type runContext struct {
	ds     *dataset.Dataset
	class  dataset.Classification
	target string
	cfg    Config
	mem    memory.Allocator
}

type stage struct {
	name    string
	enabled func(Config) bool
	run     func(*runContext) (*Outcome, error)
}

// stages returns the stage table in canonical execution order.
func stages() []stage {
	return []stage{
		{StageMissingValues, func(c Config) bool { return c.MissingValues.Enabled }, runMissingValues},
		{StageDuplicates, func(c Config) bool { return c.Duplicates.Enabled }, runDuplicates},
		{StageInvalidData, func(c Config) bool { return c.InvalidData.Enabled }, runInvalidData},
		{StageDataTypeMismatch, func(c Config) bool { return c.DataTypeMismatch.Enabled }, runDataTypeMismatch},
		{StageInconsistentFormats, func(c Config) bool { return c.InconsistentFormats.Enabled }, runInconsistentFormats},
		{StageOutliers, func(c Config) bool { return c.Outliers.Enabled }, runOutliers},
		{StageCardinality, func(c Config) bool { return c.Cardinality.Enabled }, runCardinality},
		{StageLowVariance, func(c Config) bool { return c.LowVariance.Enabled }, runLowVariance},
		{StageFeatureCorrelation, func(c Config) bool { return c.FeatureCorrelation.Enabled }, runFeatureCorrelation},
		{StageMeanMedianDrift, func(c Config) bool { return c.MeanMedianDrift.Enabled }, runMeanMedianDrift},
		{StageRangeViolations, func(c Config) bool { return c.RangeViolations.Enabled }, runRangeViolations},
		{StageClassImbalance, func(c Config) bool { return c.ClassImbalance.Enabled }, runClassImbalance},
	}
}

// New creates a Preprocessor over ds. target optionally names the label
// column used by class balancing; it is excluded from feature
// classification. mem may be nil for the default allocator.
func New(ds *dataset.Dataset, target string, cfg Config, mem memory.Allocator) *Preprocessor {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	return &Preprocessor{original: ds, target: target, config: cfg, mem: mem}
}

// Run executes every enabled stage in order and returns the processed
// dataset plus the report. Run never returns an error and never panics
// outward: a failing stage is logged and skipped, and a failure of the
// orchestration itself returns the original dataset untouched with a
// failure report. Callers detect partial or total failure from the report,
// not from exceptions.
func (p *Preprocessor) Run() (result *dataset.Dataset, report Report) {
	defer func() {
		if r := recover(); r != nil {
			result = p.original
			report = p.failureReport(fmt.Errorf("%v", r))
		}
	}()

	ctx := &runContext{
		ds:     p.original,
		class:  dataset.Classify(p.original, p.target),
		target: p.target,
		cfg:    p.config,
		mem:    p.mem,
	}
	logLines := []string{}
	stats := Stats{}

	for _, s := range stages() {
		if !s.enabled(p.config) {
			continue
		}
		outcome, err := s.run(ctx)
		if err != nil {
			stageErr := err
			if _, ok := err.(*jerrors.PipelineError); !ok {
				stageErr = jerrors.NewInternalError(s.name, err)
			}
			logLines = append(logLines, fmt.Sprintf("Error in %s stage: %v; stage skipped", s.name, stageErr))
			continue
		}
		if outcome.Dataset != nil {
			ctx.ds = outcome.Dataset
		}
		if outcome.Reclassify {
			ctx.class = dataset.Classify(ctx.ds, p.target)
		}
		logLines = append(logLines, outcome.Log...)
		if outcome.Stats != nil {
			stats[s.name] = outcome.Stats
		}
	}

	stats["summary"] = p.summary(ctx.ds, logLines, stats)
	return ctx.ds, Report{
		Log:              logLines,
		Stats:            stats,
		FinalDatasetInfo: datasetInfo(ctx.ds, ctx.class),
	}
}

func (p *Preprocessor) summary(final *dataset.Dataset, logLines []string, stats Stats) SummaryStats {
	total := 0
	if mv, ok := stats[StageMissingValues].(MissingValuesStats); ok {
		total += mv.Before
	}
	if d, ok := stats[StageDuplicates].(DuplicatesStats); ok {
		total += d.Removed
	}
	if o, ok := stats[StageOutliers].(OutliersStats); ok {
		total += o.OutliersDetected
	}
	if rv, ok := stats[StageRangeViolations].(RangeViolationsStats); ok {
		total += rv.ViolationsFixed
	}
	return SummaryStats{
		OriginalShape:      [2]int{p.original.Len(), p.original.Width()},
		FinalShape:         [2]int{final.Len(), final.Width()},
		RowsChanged:        p.original.Len() - final.Len(),
		ColumnsChanged:     p.original.Width() - final.Width(),
		PreprocessingSteps: len(logLines),
		TotalChanges:       total,
	}
}

func (p *Preprocessor) failureReport(err error) Report {
	class := dataset.Classify(p.original, p.target)
	return Report{
		Log:              []string{fmt.Sprintf("Preprocessing failed: %v; returned original dataset", err)},
		Stats:            Stats{},
		FinalDatasetInfo: datasetInfo(p.original, class),
	}
}
