package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/provmap/pkg/dataset"
	"github.com/matzehuels/provmap/pkg/observability"
	"github.com/matzehuels/provmap/pkg/report"
)

// Load reads the dataset from src once. It never fails: a load error is
// reported through rep and an empty dataset is returned, so callers can still
// start and show the failure to the user.
func Load(ctx context.Context, src dataset.Source, rep report.Reporter, logger *log.Logger) *dataset.Dataset {
	if rep == nil {
		rep = report.Discard
	}
	if logger == nil {
		logger = log.Default()
	}

	// Capture the load error without reporting it twice.
	probe := report.NewRecorder()
	start := time.Now()
	ds := dataset.LoadOrEmpty(ctx, src, report.Tee(rep, probe))
	elapsed := time.Since(start)

	var err error
	if errs := probe.Errors(); len(errs) > 0 {
		err = errs[0]
	}
	name := fmt.Sprint(src)
	observability.Pipeline().OnLoadComplete(ctx, name, ds.Len(), len(ds.Issues()), elapsed, err)

	if err == nil {
		logger.Debug("loaded dataset",
			"source", name,
			"provinces", ds.Len(),
			"skipped", len(ds.Issues()),
			"duration", elapsed)
	}
	return ds
}
