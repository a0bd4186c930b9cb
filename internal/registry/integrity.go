package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/roach88/accolade/internal/ir"
	"github.com/roach88/accolade/internal/store"
)

// IntegrityReport summarizes a full scan of the store.
type IntegrityReport struct {
	Records    int      `json:"records"`
	Owners     int      `json:"owners"`
	Categories int      `json:"categories"`
	NextID     uint64   `json:"next_id"`
	Problems   []string `json:"problems"`
}

// OK reports whether the scan found no problems.
func (r IntegrityReport) OK() bool { return len(r.Problems) == 0 }

// CheckIntegrity scans every record and index and reports each violation of
// the store invariants:
//   - every indexed ID has a record, and its owner matches the owner index
//   - every record appears exactly once in its owner's index
//   - every record appears in exactly one category index
//   - no ID exceeds the allocator counter
//
// Problems are reported, not returned as errors. The error is non-nil only
// when the store itself cannot be read.
func (r *Registry) CheckIntegrity(ctx context.Context) (IntegrityReport, error) {
	var report IntegrityReport
	err := r.kv.View(ctx, func(tx store.Tx) error {
		report = IntegrityReport{Problems: []string{}}
		problem := func(format string, args ...any) {
			report.Problems = append(report.Problems, fmt.Sprintf(format, args...))
		}

		next, err := readNextID(ctx, tx)
		if err != nil {
			return err
		}
		report.NextID = next

		records := make(map[uint64]ir.Achievement)
		err = tx.Scan(ctx, ir.KindAchievement, func(key ir.Key, value []byte) error {
			var a ir.Achievement
			if err := json.Unmarshal(value, &a); err != nil {
				problem("%s: undecodable record: %v", key, err)
				return nil
			}
			if strconv.FormatUint(a.ID, 10) != key.Subject {
				problem("%s: record claims id %d", key, a.ID)
			}
			if a.ID > next {
				problem("%s: id exceeds next_id %d", key, next)
			}
			if !a.Status.Valid() {
				problem("%s: unknown status %q", key, a.Status)
			}
			records[a.ID] = a
			return nil
		})
		if err != nil {
			return err
		}
		report.Records = len(records)

		ownerHits := make(map[uint64]int)
		err = tx.Scan(ctx, ir.KindOwnerIndex, func(key ir.Key, value []byte) error {
			report.Owners++
			return checkIndex(key, value, problem, func(id uint64) {
				a, ok := records[id]
				switch {
				case !ok:
					problem("%s: references missing record %d", key, id)
				case string(a.Owner) != key.Subject:
					problem("%s: record %d is owned by %q", key, id, a.Owner)
				}
				ownerHits[id]++
			})
		})
		if err != nil {
			return err
		}

		categoryHits := make(map[uint64]int)
		err = tx.Scan(ctx, ir.KindCategoryIndex, func(key ir.Key, value []byte) error {
			report.Categories++
			return checkIndex(key, value, problem, func(id uint64) {
				if _, ok := records[id]; !ok {
					problem("%s: references missing record %d", key, id)
				}
				categoryHits[id]++
			})
		})
		if err != nil {
			return err
		}

		for _, id := range slices.Sorted(maps.Keys(records)) {
			if n := ownerHits[id]; n != 1 {
				problem("achievement/%d: in owner index %d times", id, n)
			}
			if n := categoryHits[id]; n != 1 {
				problem("achievement/%d: in category indices %d times", id, n)
			}
		}
		return nil
	})
	return report, err
}

func checkIndex(key ir.Key, value []byte, problem func(string, ...any), visit func(uint64)) error {
	var ids []uint64
	if err := json.Unmarshal(value, &ids); err != nil {
		problem("%s: undecodable index: %v", key, err)
		return nil
	}
	seen := make(map[uint64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			problem("%s: duplicate id %d", key, id)
		}
		seen[id] = true
		visit(id)
	}
	return nil
}
