// Package pkg provides the core libraries for Chartdeck chart building.
//
// # Overview
//
// Chartdeck turns tabular data (an ordered list of rows, each a map from
// column name to value) into bar, line, doughnut and scatter charts and
// exports them as PNG, PDF or JSON. The same pipeline backs the CLI, the
// interactive explorer and the HTTP API.
//
// The typical data flow:
//
//	JSON / CSV / TSV / XLSX file
//	         ↓
//	    [io] package (import into a dataset)
//	         ↓
//	    [dataset] package (schema: columns and numeric columns)
//	         ↓
//	    [axis] package (default and stale X/Y selection)
//	         ↓
//	    [chart] package (bar, line, doughnut, scatter data)
//	         ↓
//	    [surface] package (rasterised chart)
//	         ↓
//	    [export] package (PNG, PDF artifacts)
//
// [pipeline] runs those stages end to end and reports each chart built and
// each artifact exported to a [notify] notifier.
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/chartdeck/pkg/io"
//	    "github.com/matzehuels/chartdeck/pkg/pipeline"
//	)
//
//	d, _ := io.ImportFile("sales.csv")
//	res, _ := pipeline.NewRunner(nil, nil).Execute(context.Background(), d, pipeline.Options{
//	    Kind:    "bar",
//	    Formats: []string{"png", "pdf"},
//	})
//	png := res.Artifacts["png"].Data
//
// # Main Packages
//
// ## Chart Pipeline
//
// [dataset] - Ordered rows of dynamically typed cells, schema inspection,
// summaries and previews.
//
// [axis] - Default axis selection and the keep/clear policy for selections
// that no longer match the dataset.
//
// [chart] - Chart data builders and the fixed palette.
//
// [surface] - The drawing surface a chart is rendered onto. Safe for
// concurrent readers.
//
// [export] - PNG and PDF encoders with a configurable scale factor.
//
// [pipeline] - Build → draw → export orchestration and the interactive View.
//
// ## Usage Tracking
//
// [notify] - Usage events (chart generated, export completed, upload
// recorded, insight logged), fan-out, async delivery, webhooks and the
// MongoDB activity log.
//
// [session] - Per-client upload history and dashboard counters kept in a
// [store] backend.
//
// ## Infrastructure
//
// [store] - Key/value backends: file (CLI), Redis (server), memory (tests)
// and null.
//
// [io] - Dataset import from JSON, CSV, TSV and XLSX; dataset JSON export.
//
// [errors] - Coded errors with user-facing messages and HTTP status mapping.
//
// [observability] - Pipeline and store hooks.
//
// [httputil] - Outbound HTTP client with retry.
//
// [buildinfo] - Version information set at link time.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/chart/...              # Specific package
//	go test -run Example                 # Examples only
//
// [io]: https://pkg.go.dev/github.com/matzehuels/chartdeck/pkg/io
// [dataset]: https://pkg.go.dev/github.com/matzehuels/chartdeck/pkg/dataset
// [axis]: https://pkg.go.dev/github.com/matzehuels/chartdeck/pkg/axis
// [chart]: https://pkg.go.dev/github.com/matzehuels/chartdeck/pkg/chart
// [surface]: https://pkg.go.dev/github.com/matzehuels/chartdeck/pkg/surface
// [export]: https://pkg.go.dev/github.com/matzehuels/chartdeck/pkg/export
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/chartdeck/pkg/pipeline
// [notify]: https://pkg.go.dev/github.com/matzehuels/chartdeck/pkg/notify
// [session]: https://pkg.go.dev/github.com/matzehuels/chartdeck/pkg/session
// [store]: https://pkg.go.dev/github.com/matzehuels/chartdeck/pkg/store
// [errors]: https://pkg.go.dev/github.com/matzehuels/chartdeck/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/chartdeck/pkg/observability
// [httputil]: https://pkg.go.dev/github.com/matzehuels/chartdeck/pkg/httputil
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/chartdeck/pkg/buildinfo
package pkg
