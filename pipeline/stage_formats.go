package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/prepio/janitor/internal/series"
)

var (
	longDigitRun  = regexp.MustCompile(`\d{3,}`)
	phoneNoise    = regexp.MustCompile(`[+\-()\s]`)
	whitespaceRun = regexp.MustCompile(`\s+`)
)

// runInconsistentFormats normalizes categorical text. Columns containing an
// "@" anywhere are treated as email-like and lowercased; columns containing
// a run of 3+ digits are treated as phone-like and stripped of punctuation.
// A column can match both heuristics and receive both fixes. Every
// categorical column additionally gets generic whitespace normalization,
// which is not counted in the stats.
func runInconsistentFormats(ctx *runContext) (*Outcome, error) {
	cfg := ctx.cfg.InconsistentFormats
	ds := ctx.ds
	var logLines []string
	columnsFixed := 0

	if !cfg.AutoFix {
		return &Outcome{Stats: InconsistentFormatsStats{}}, nil
	}

	for _, name := range ctx.class.Categorical {
		col, ok := ds.Column(name)
		if !ok {
			continue
		}
		values, valid := col.Strings()

		emailLike := false
		phoneLike := false
		for i, v := range values {
			if !valid[i] {
				continue
			}
			if strings.Contains(v, "@") {
				emailLike = true
			}
			if longDigitRun.MatchString(v) {
				phoneLike = true
			}
		}

		if emailLike {
			for i, v := range values {
				if valid[i] {
					values[i] = strings.ToLower(strings.TrimSpace(v))
				}
			}
			logLines = append(logLines, fmt.Sprintf("Standardized email formats in %s", name))
		}
		if phoneLike {
			for i, v := range values {
				if valid[i] {
					values[i] = phoneNoise.ReplaceAllString(v, "")
				}
			}
			logLines = append(logLines, fmt.Sprintf("Standardized phone formats in %s", name))
		}
		for i, v := range values {
			if valid[i] {
				values[i] = whitespaceRun.ReplaceAllString(strings.TrimSpace(v), " ")
			}
		}

		var err error
		ds, err = ds.SetColumn(series.NewString(name, values, valid, ctx.mem))
		if err != nil {
			return nil, err
		}
		if emailLike || phoneLike {
			columnsFixed++
		}
	}

	return &Outcome{
		Dataset: ds,
		Log:     logLines,
		Stats:   InconsistentFormatsStats{ColumnsFixed: columnsFixed},
	}, nil
}
