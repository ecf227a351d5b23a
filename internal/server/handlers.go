package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
	"github.com/prepio/janitor/dataset"
	csvio "github.com/prepio/janitor/internal/io"
	"github.com/prepio/janitor/internal/mathutil"
	"github.com/prepio/janitor/internal/version"
	"github.com/prepio/janitor/pipeline"
)

// PreprocessRequest is the JSON body accepted by /preprocess and
// /preprocess/validate.
type PreprocessRequest struct {
	CSVData      string         `json:"csvData" validate:"required"`
	TargetColumn string         `json:"targetColumn"`
	Config       map[string]any `json:"config"`
}

func (s *Server) handlePreprocess(w http.ResponseWriter, r *http.Request) {
	var req PreprocessRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		s.clientError(w, r, "Request must be JSON")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.clientError(w, r, "Missing csvData field")
		return
	}

	ds, warnings, err := csvio.ReadFlexible(req.CSVData, nil)
	if err != nil {
		s.clientError(w, r, fmt.Sprintf(
			"%v. Please check your CSV format and ensure consistent field counts. "+
				"Common issues: extra commas, unescaped quotes, inconsistent row lengths.", err))
		return
	}
	if ds.Len() == 0 || ds.Width() == 0 {
		s.clientError(w, r, "Empty dataset provided or all rows were malformed")
		return
	}

	cfg, err := pipeline.ParseConfig(req.Config)
	if err != nil {
		s.clientError(w, r, fmt.Sprintf("Invalid preprocessing config: %v", err))
		return
	}

	processor := pipeline.New(ds, req.TargetColumn, cfg, nil)
	processed, report := processor.Run()
	report.Log = append(warnings, report.Log...)

	processedCSV, err := csvio.WriteString(processed)
	if err != nil {
		s.logger.Error("rendering processed dataset failed", "error", err)
		processedCSV = req.CSVData
		processed = ds
		report.Log = append(report.Log,
			fmt.Sprintf("Warning: Failed to convert processed data to CSV, returned original: %v", err))
	}

	render.JSON(w, r, map[string]any{
		"success":              true,
		"processed_data":       processedCSV,
		"preprocessing_report": report,
		"original_shape":       [2]int{ds.Len(), ds.Width()},
		"processed_shape":      [2]int{processed.Len(), processed.Width()},
		"improvements":         improvements(report),
	})
}

// improvements summarizes the run for dashboard consumption, including the
// aggregate data-quality score.
func improvements(report pipeline.Report) map[string]any {
	missingBefore := 0
	if mv, ok := report.Stats[pipeline.StageMissingValues].(pipeline.MissingValuesStats); ok {
		missingBefore = mv.Before
	}
	duplicatesRemoved := 0
	if d, ok := report.Stats[pipeline.StageDuplicates].(pipeline.DuplicatesStats); ok {
		duplicatesRemoved = d.Removed
	}
	outliers := 0
	if o, ok := report.Stats[pipeline.StageOutliers].(pipeline.OutliersStats); ok {
		outliers = o.OutliersDetected
	}
	featuresOptimized := 0
	if c, ok := report.Stats[pipeline.StageFeatureCorrelation].(pipeline.FeatureRemovalStats); ok {
		featuresOptimized = c.FeaturesRemoved
	}

	score := 100 - (float64(missingBefore)*0.1 + float64(duplicatesRemoved)*0.05 + float64(outliers)*0.02)
	return map[string]any{
		"missing_values_handled": missingBefore,
		"duplicates_removed":     duplicatesRemoved,
		"outliers_handled":       outliers,
		"features_optimized":     featuresOptimized,
		"data_quality_score":     mathutil.Clamp(score, 0, 100),
	}
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req PreprocessRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		s.clientError(w, r, "Request must be JSON")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.clientError(w, r, "Missing csvData field")
		return
	}

	ds, warnings, err := csvio.ReadFlexible(req.CSVData, nil)
	if err != nil {
		render.JSON(w, r, map[string]any{
			"success": false,
			"validation": map[string]any{
				"valid": false,
				"error": err.Error(),
				"suggestions": []string{
					"Ensure all rows have the same number of columns",
					"Check for unescaped quotes in text fields",
					"Remove extra commas at the end of rows",
					"Verify the CSV uses standard comma-separated format",
				},
			},
		})
		return
	}

	message := "CSV format is valid and ready for preprocessing"
	if len(warnings) > 0 {
		message = "CSV format was corrected and is now valid for preprocessing"
	}
	render.JSON(w, r, map[string]any{
		"success":    true,
		"validation": validationInfo(ds, warnings),
		"message":    message,
	})
}

func validationInfo(ds *dataset.Dataset, warnings []string) map[string]any {
	info := map[string]any{
		"valid":          true,
		"shape":          [2]int{ds.Len(), ds.Width()},
		"columns":        ds.Columns(),
		"column_types":   ds.DataTypes(),
		"missing_values": ds.MissingCells(),
		"duplicate_rows": duplicateRows(ds),
		"sample_data":    sampleRows(ds, 3),
	}
	if len(warnings) > 0 {
		info["warnings"] = warnings
	}
	return info
}

func duplicateRows(ds *dataset.Dataset) int {
	seen := make(map[string]bool, ds.Len())
	duplicates := 0
	for i := 0; i < ds.Len(); i++ {
		key := ds.RowString(i)
		if seen[key] {
			duplicates++
		}
		seen[key] = true
	}
	return duplicates
}

func sampleRows(ds *dataset.Dataset, n int) []map[string]string {
	if n > ds.Len() {
		n = ds.Len()
	}
	columns := ds.Columns()
	sample := make([]map[string]string, n)
	for i := 0; i < n; i++ {
		row := make(map[string]string, len(columns))
		for _, name := range columns {
			col, _ := ds.Column(name)
			row[name] = col.ValueString(i)
		}
		sample[i] = row
	}
	return sample
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"success":        true,
		"default_config": pipeline.RawDefault(),
		"description":    pipeline.Descriptions(),
	})
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"message":     "Advanced Data Preprocessing API",
		"version":     version.Version,
		"description": "Comprehensive data preprocessing using 12 key quality factors",
		"endpoints": map[string]string{
			"/preprocess":          "POST - Main preprocessing endpoint",
			"/preprocess/validate": "POST - Validate CSV format before processing",
			"/preprocess/config":   "GET - Get default configuration",
		},
		"preprocessing_factors": pipeline.StageOrder,
	})
}

func (s *Server) clientError(w http.ResponseWriter, r *http.Request, message string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, map[string]any{
		"success": false,
		"error":   message,
	})
}
