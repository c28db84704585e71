package heap

import (
	"encoding/binary"
	"fmt"
)

// RecordId identifies a live record by the page it lives on and its
// slot index within that page. It stays stable across scans and
// across close/reopen as long as the slot isn't deleted.
type RecordId struct {
	PageID  int32
	SlotIdx int32
}

// Record is an opaque fixed-size record: exactly cfg.RecordSize bytes.
// heap treats it as an opaque byte sequence; only readFreeLink/
// writeFreeLink (the free-slot overlay) and the optional ReferenceRecord
// helpers below interpret its contents.
type Record []byte

// NewRecord returns a zeroed Record of the given geometry's size.
func (c Config) NewRecord() Record {
	return make(Record, c.RecordSize)
}

// readFreeLink reads the next_free_slot link overlaid on a freed slot's
// first 4 bytes. Slot must be at least 4 bytes (Config.Validate
// enforces RecordSize >= 4 at file-creation time).
func readFreeLink(slot []byte) int32 {
	return int32(binary.LittleEndian.Uint32(slot[0:4]))
}

// writeFreeLink overwrites a freed slot's first 4 bytes with the
// next_free_slot link. The remaining bytes are left as garbage, per
// spec: only the link field is meaningful on a freed slot.
func writeFreeLink(slot []byte, next int32) {
	binary.LittleEndian.PutUint32(slot[0:4], uint32(next))
}

// Reference schema sizes: {id: i32, name: 32 bytes, age: i32, email: 24 bytes} = 64 bytes.
const (
	refIDOffset    = 0
	refIDSize      = 4
	refNameOffset  = refIDOffset + refIDSize
	refNameSize    = 32
	refAgeOffset   = refNameOffset + refNameSize
	refAgeSize     = 4
	refEmailOffset = refAgeOffset + refAgeSize
	refEmailSize   = 24
	// ReferenceRecordSize is the total size of the reference schema; it
	// must equal Config.RecordSize for Encode/DecodeReference
	// to be used against a given file.
	ReferenceRecordSize = refEmailOffset + refEmailSize
)

// ReferenceRecord is the {id, name, age, email} schema spec.md uses as
// its running example. heap's core never interprets bytes this way on
// its own; this type exists for callers (the CLI demo, tests) that want
// named fields instead of raw bytes.
type ReferenceRecord struct {
	ID    int32
	Name  string
	Age   int32
	Email string
}

// Encode packs r into a Record of ReferenceRecordSize bytes. Name and
// Email are NUL-padded/truncated to their field widths, matching
// spec.md §3's "callers must ensure string fields are NUL-terminated
// within their field widths."
func (r ReferenceRecord) Encode() Record {
	buf := make(Record, ReferenceRecordSize)
	binary.LittleEndian.PutUint32(buf[refIDOffset:refIDOffset+refIDSize], uint32(r.ID))
	putFixedString(buf[refNameOffset:refNameOffset+refNameSize], r.Name)
	binary.LittleEndian.PutUint32(buf[refAgeOffset:refAgeOffset+refAgeSize], uint32(r.Age))
	putFixedString(buf[refEmailOffset:refEmailOffset+refEmailSize], r.Email)
	return buf
}

// DecodeReference unpacks a Record of ReferenceRecordSize bytes into a
// ReferenceRecord.
func DecodeReference(rec Record) (ReferenceRecord, error) {
	if len(rec) != ReferenceRecordSize {
		return ReferenceRecord{}, fmt.Errorf("heap: reference record must be %d bytes, got %d", ReferenceRecordSize, len(rec))
	}
	return ReferenceRecord{
		ID:    int32(binary.LittleEndian.Uint32(rec[refIDOffset : refIDOffset+refIDSize])),
		Name:  getFixedString(rec[refNameOffset : refNameOffset+refNameSize]),
		Age:   int32(binary.LittleEndian.Uint32(rec[refAgeOffset : refAgeOffset+refAgeSize])),
		Email: getFixedString(rec[refEmailOffset : refEmailOffset+refEmailSize]),
	}, nil
}

// EncodeMutable packs just the mutable fields (name, age, email) at the
// offsets update_record is allowed to touch, leaving a zero id — used
// together with Page.UpdateRecord, which only copies these ranges and
// ignores bytes [0:4).
func (r ReferenceRecord) EncodeMutable() Record {
	buf := make(Record, ReferenceRecordSize)
	putFixedString(buf[refNameOffset:refNameOffset+refNameSize], r.Name)
	binary.LittleEndian.PutUint32(buf[refAgeOffset:refAgeOffset+refAgeSize], uint32(r.Age))
	putFixedString(buf[refEmailOffset:refEmailOffset+refEmailSize], r.Email)
	return buf
}

func putFixedString(dst []byte, s string) {
	for i := range dst {
		dst[i] = 0
	}
	n := copy(dst, s)
	_ = n // truncation is silent by design: caller's field already fit the width or is cut
}

func getFixedString(src []byte) string {
	for i, b := range src {
		if b == 0 {
			return string(src[:i])
		}
	}
	return string(src)
}
