package pipeline

import (
	"crypto/sha256"
	"fmt"
)

// runDuplicates removes rows sharing an identical fingerprint: the SHA-256
// digest of the row's full value tuple rendered as text. Hashing gives
// constant-time duplicate lookup regardless of dataset width; exact-match
// semantics are preserved because equal tuples hash equally. The configured
// keep policy decides whether the first or last occurrence survives.
func runDuplicates(ctx *runContext) (*Outcome, error) {
	cfg := ctx.cfg.Duplicates
	ds := ctx.ds
	before := ds.Len()

	mask := make([]bool, before)
	seen := make(map[[32]byte]bool, before)
	if cfg.Keep == "last" {
		for i := before - 1; i >= 0; i-- {
			fp := sha256.Sum256([]byte(ds.RowString(i)))
			if !seen[fp] {
				seen[fp] = true
				mask[i] = true
			}
		}
	} else {
		for i := 0; i < before; i++ {
			fp := sha256.Sum256([]byte(ds.RowString(i)))
			if !seen[fp] {
				seen[fp] = true
				mask[i] = true
			}
		}
	}

	ds, err := ds.FilterRows(mask, ctx.mem)
	if err != nil {
		return nil, err
	}

	removed := before - ds.Len()
	var logLines []string
	if removed > 0 {
		logLines = append(logLines, fmt.Sprintf("Removed %d duplicate records", removed))
	}
	return &Outcome{
		Dataset: ds,
		Log:     logLines,
		Stats: DuplicatesStats{
			BeforeCount: before,
			AfterCount:  ds.Len(),
			Removed:     removed,
		},
	}, nil
}
