package heap

import (
	"bytes"
	"testing"
)

func testRecord(cfg Config, fill byte) Record {
	rec := cfg.NewRecord()
	for i := range rec {
		rec[i] = fill
	}
	return rec
}

func TestInitPage(t *testing.T) {
	cfg := DefaultConfig()
	page := InitPage(cfg, NewPageBuffer(cfg), 3)

	h := page.Header()
	if h.PageID != 3 {
		t.Errorf("PageID = %d, want 3", h.PageID)
	}
	if h.NumSlots != 0 || h.NextSlotIdx != 0 {
		t.Errorf("expected NumSlots=0 NextSlotIdx=0, got %+v", h)
	}
	if h.FirstFreeSlot != FreeSlotEnd {
		t.Errorf("FirstFreeSlot = %d, want %d", h.FirstFreeSlot, FreeSlotEnd)
	}
	if h.NextFreePage != NoFreePage {
		t.Errorf("NextFreePage = %d, want %d", h.NextFreePage, NoFreePage)
	}
}

func TestPageInsertGetRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	page := InitPage(cfg, NewPageBuffer(cfg), 0)

	rec := testRecord(cfg, 0xAB)
	slot, err := page.InsertRecord(rec)
	if err != nil {
		t.Fatalf("InsertRecord: %v", err)
	}
	if slot != 0 {
		t.Errorf("slot = %d, want 0", slot)
	}

	got, ok := page.GetRecord(slot)
	if !ok {
		t.Fatal("GetRecord returned ok=false for a live slot")
	}
	if !bytes.Equal(got, rec) {
		t.Errorf("round-tripped record mismatch")
	}

	if page.Header().NumSlots != 1 {
		t.Errorf("NumSlots = %d, want 1", page.Header().NumSlots)
	}
}

func TestPageInsertPrefersFreeListOverHighWaterMark(t *testing.T) {
	cfg := DefaultConfig()
	page := InitPage(cfg, NewPageBuffer(cfg), 0)

	s0, _ := page.InsertRecord(testRecord(cfg, 1))
	s1, _ := page.InsertRecord(testRecord(cfg, 2))
	_ = s1

	if err := page.DeleteRecord(s0); err != nil {
		t.Fatalf("DeleteRecord: %v", err)
	}

	reused, err := page.InsertRecord(testRecord(cfg, 3))
	if err != nil {
		t.Fatalf("InsertRecord: %v", err)
	}
	if reused != s0 {
		t.Errorf("expected LIFO reuse of slot %d, got %d", s0, reused)
	}
	if page.Header().NextSlotIdx != 2 {
		t.Errorf("NextSlotIdx should not grow on reuse, got %d", page.Header().NextSlotIdx)
	}
}

func TestPageFillsUpAndReportsFull(t *testing.T) {
	cfg := Config{PageSize: PageHeaderSize + 4*RecordSize, RecordSize: RecordSize}
	page := InitPage(cfg, NewPageBuffer(cfg), 0)

	for i := 0; i < cfg.MaxSlots(); i++ {
		if _, err := page.InsertRecord(testRecord(cfg, byte(i))); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	if page.HasFreeSpace() {
		t.Error("page should report full")
	}

	if _, err := page.InsertRecord(testRecord(cfg, 0xFF)); err != ErrPageFull {
		t.Errorf("expected ErrPageFull, got %v", err)
	}
}

func TestPageDeleteTwiceFails(t *testing.T) {
	cfg := DefaultConfig()
	page := InitPage(cfg, NewPageBuffer(cfg), 0)

	slot, _ := page.InsertRecord(testRecord(cfg, 7))
	if err := page.DeleteRecord(slot); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := page.DeleteRecord(slot); err != ErrInvalidSlot {
		t.Errorf("expected ErrInvalidSlot on double delete, got %v", err)
	}
}

func TestGetRecordOnFreedSlotReturnsFalse(t *testing.T) {
	cfg := DefaultConfig()
	page := InitPage(cfg, NewPageBuffer(cfg), 0)

	slot, _ := page.InsertRecord(testRecord(cfg, 9))
	page.DeleteRecord(slot)

	if _, ok := page.GetRecord(slot); ok {
		t.Error("GetRecord should return ok=false for a freed slot")
	}

	// GetSlot, unlike GetRecord, still permits access — it's the free
	// list's own walking primitive.
	if _, ok := page.GetSlot(slot); !ok {
		t.Error("GetSlot should still return ok=true for a freed-but-in-range slot")
	}
}

func TestUpdateRecordPreservesID(t *testing.T) {
	cfg := DefaultConfig()
	page := InitPage(cfg, NewPageBuffer(cfg), 0)

	original := ReferenceRecord{ID: 42, Name: "Alice", Age: 30, Email: "alice@example.com"}
	slot, err := page.InsertRecord(original.Encode())
	if err != nil {
		t.Fatalf("InsertRecord: %v", err)
	}

	update := ReferenceRecord{ID: 999, Name: "Alicia", Age: 31, Email: "alicia@example.com"}
	if err := page.UpdateRecord(slot, update.Encode()); err != nil {
		t.Fatalf("UpdateRecord: %v", err)
	}

	got, ok := page.GetRecord(slot)
	if !ok {
		t.Fatal("expected live record after update")
	}
	decoded, err := DecodeReference(got)
	if err != nil {
		t.Fatalf("DecodeReference: %v", err)
	}

	if decoded.ID != 42 {
		t.Errorf("id changed by update: got %d, want 42 (unchanged)", decoded.ID)
	}
	if decoded.Name != "Alicia" || decoded.Age != 31 || decoded.Email != "alicia@example.com" {
		t.Errorf("mutable fields not applied: got %+v", decoded)
	}
}

func TestUpdateInvalidSlot(t *testing.T) {
	cfg := DefaultConfig()
	page := InitPage(cfg, NewPageBuffer(cfg), 0)

	if err := page.UpdateRecord(0, testRecord(cfg, 1)); err != ErrInvalidSlot {
		t.Errorf("expected ErrInvalidSlot, got %v", err)
	}
}

func TestIsInFreeListOutOfRange(t *testing.T) {
	cfg := DefaultConfig()
	page := InitPage(cfg, NewPageBuffer(cfg), 0)

	if page.IsInFreeList(-1) {
		t.Error("IsInFreeList(-1) should be false")
	}
	if page.IsInFreeList(1000) {
		t.Error("IsInFreeList(1000) should be false")
	}
}

func TestPageRoundTripThroughLoad(t *testing.T) {
	cfg := DefaultConfig()
	page := InitPage(cfg, NewPageBuffer(cfg), 5)
	page.InsertRecord(testRecord(cfg, 1))
	page.InsertRecord(testRecord(cfg, 2))

	loaded := LoadPage(cfg, page.Bytes())
	if loaded.Header() != page.Header() {
		t.Errorf("header mismatch after load: got %+v, want %+v", loaded.Header(), page.Header())
	}
	rec, ok := loaded.GetRecord(0)
	if !ok || rec[0] != 1 {
		t.Errorf("record 0 mismatch after load")
	}
}
