package heap

import "fmt"

// IssueKind identifies which invariant a Validate finding violates.
type IssueKind string

const (
	// IssueFreeListCycleOrDup is raised when a page's free-slot list
	// revisits an index, which would otherwise loop Validate forever.
	IssueFreeListCycleOrDup IssueKind = "free_slot_list_duplicate_or_cycle"

	// IssueFreeListOutOfRange is raised when a page's free-slot list
	// contains an index outside [0, NextSlotIdx).
	IssueFreeListOutOfRange IssueKind = "free_slot_out_of_range"

	// IssueSlotCountMismatch is raised when NumSlots disagrees with
	// NextSlotIdx minus the free-slot list's length.
	IssueSlotCountMismatch IssueKind = "slot_count_mismatch"

	// IssueFreePageListMismatch is raised when a page's free-page-list
	// membership disagrees with HasFreeSpace (invariant 4).
	IssueFreePageListMismatch IssueKind = "free_page_list_membership_mismatch"

	// IssueFreePageListDuplicate is raised when a page appears twice on
	// the file-level free-page list.
	IssueFreePageListDuplicate IssueKind = "free_page_list_duplicate"
)

// Issue is a single invariant violation found by Validate.
type Issue struct {
	Kind        IssueKind
	PageID      int32
	Description string
}

// Report is the result of a Validate run: either Issues is empty and
// Healthy is true, or every violation found is listed.
type Report struct {
	PagesScanned int32
	Issues       []Issue
	Healthy      bool
}

// Validate walks every page of f and checks the universally-quantified
// invariants of spec.md §8 items 1-2: free-slot list well-formedness
// (no duplicates, no out-of-range entries, NumSlots matches the list's
// length) and free-page-list membership matching HasFreeSpace. It
// mutates nothing; detection only, no repair — this layer has no
// rollback story to repair safely into (spec.md §7).
func Validate(f *File) (*Report, error) {
	if f == nil {
		return nil, ErrNilArgument
	}

	report := &Report{}

	onFreePageList := make(map[int32]bool)
	cur := f.header.FirstFreePage
	seenChain := make(map[int32]bool)
	for cur != NoFreePage {
		if seenChain[cur] {
			report.Issues = append(report.Issues, Issue{
				Kind:        IssueFreePageListDuplicate,
				PageID:      cur,
				Description: fmt.Sprintf("page %d appears twice in the file-level free-page list", cur),
			})
			break
		}
		seenChain[cur] = true
		onFreePageList[cur] = true

		if cur < 0 || cur >= f.header.NumPages {
			break
		}
		page, err := f.ReadPage(cur)
		if err != nil {
			return nil, err
		}
		cur = page.header.NextFreePage
	}

	for pid := int32(0); pid < f.header.NumPages; pid++ {
		report.PagesScanned++

		page, err := f.ReadPage(pid)
		if err != nil {
			return nil, err
		}

		seen := make(map[int32]bool)
		freeCount := 0
		link := page.header.FirstFreeSlot
		for link != FreeSlotEnd {
			if seen[link] {
				report.Issues = append(report.Issues, Issue{
					Kind:        IssueFreeListCycleOrDup,
					PageID:      pid,
					Description: fmt.Sprintf("free-slot list revisits index %d", link),
				})
				break
			}
			if link < 0 || link >= page.header.NextSlotIdx {
				report.Issues = append(report.Issues, Issue{
					Kind:        IssueFreeListOutOfRange,
					PageID:      pid,
					Description: fmt.Sprintf("free-slot list index %d is outside [0, %d)", link, page.header.NextSlotIdx),
				})
				break
			}
			seen[link] = true
			freeCount++

			slot, ok := page.GetSlot(link)
			if !ok {
				break
			}
			link = readFreeLink(slot)
		}

		if page.header.NumSlots != page.header.NextSlotIdx-int32(freeCount) {
			report.Issues = append(report.Issues, Issue{
				Kind:   IssueSlotCountMismatch,
				PageID: pid,
				Description: fmt.Sprintf("num_slots=%d but next_slot_idx=%d minus free-list length %d = %d",
					page.header.NumSlots, page.header.NextSlotIdx, freeCount, page.header.NextSlotIdx-int32(freeCount)),
			})
		}

		if page.HasFreeSpace() != onFreePageList[pid] {
			report.Issues = append(report.Issues, Issue{
				Kind:   IssueFreePageListMismatch,
				PageID: pid,
				Description: fmt.Sprintf("has_free_space=%v but on_free_page_list=%v",
					page.HasFreeSpace(), onFreePageList[pid]),
			})
		}
	}

	report.Healthy = len(report.Issues) == 0
	return report, nil
}
