package heap

import (
	"encoding/binary"
	"fmt"
	"io"
)

// FileHeader occupies the first FileHeaderSize bytes of the file.
type FileHeader struct {
	NumPages      int32 // number of allocated pages
	NextPageIdx   int32 // high-water mark for page-id allocation
	FirstFreePage int32 // head of the file-level free-page list, or NoFreePage
}

func (h FileHeader) put(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], uint32(h.NumPages))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(h.NextPageIdx))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(h.FirstFreePage))
}

func getFileHeader(buf []byte) FileHeader {
	return FileHeader{
		NumPages:      int32(binary.LittleEndian.Uint32(buf[0:4])),
		NextPageIdx:   int32(binary.LittleEndian.Uint32(buf[4:8])),
		FirstFreePage: int32(binary.LittleEndian.Uint32(buf[8:12])),
	}
}

func (h FileHeader) validate() error {
	if h.NumPages < 0 {
		return ErrCorruptHeader
	}
	if h.NextPageIdx < h.NumPages {
		return ErrCorruptHeader
	}
	if h.FirstFreePage < -1 {
		return ErrCorruptHeader
	}
	return nil
}

// File is a single heap file: a FileHeader followed by a sequence of
// fixed-size pages, addressed by RecordId-keyed CRUD plus a full scan.
// It is single-threaded and synchronous by design: no method here
// takes a lock, and concurrent calls on one File
// from multiple goroutines are undefined, exactly as spec.md's
// concurrency model states. Distinct Files over distinct devices are
// independent and may be used from separate goroutines freely.
type File struct {
	cfg    Config
	device Device
	header FileHeader

	reads  int64
	writes int64
}

// Create makes (truncating if necessary) a new heap file at path under
// cfg's geometry and writes a fresh, empty FileHeader.
func Create(path string, cfg Config) (*File, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	dev, err := CreateFileDevice(path)
	if err != nil {
		return nil, err
	}
	f, err := CreateOnDevice(dev, cfg)
	if err != nil {
		dev.Close()
		return nil, err
	}
	return f, nil
}

// CreateOnDevice is Create against an already-open Device (e.g. a
// MemDevice in tests).
func CreateOnDevice(dev Device, cfg Config) (*File, error) {
	if dev == nil {
		return nil, ErrNilArgument
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	f := &File{
		cfg:    cfg,
		device: dev,
		header: FileHeader{NumPages: 0, NextPageIdx: 0, FirstFreePage: NoFreePage},
	}
	if err := f.writeHeader(); err != nil {
		return nil, err
	}
	return f, nil
}

// Open opens an existing heap file at path, validating its header.
func Open(path string, cfg Config) (*File, error) {
	dev, err := OpenFileDevice(path)
	if err != nil {
		return nil, err
	}
	f, err := OpenOnDevice(dev, cfg)
	if err != nil {
		dev.Close()
		return nil, err
	}
	return f, nil
}

// OpenOnDevice is Open against an already-open Device.
func OpenOnDevice(dev Device, cfg Config) (*File, error) {
	if dev == nil {
		return nil, ErrNilArgument
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	buf := make([]byte, FileHeaderSize)
	n, err := dev.ReadAt(buf, 0)
	if err != nil && err != io.EOF {
		return nil, err
	}
	if n < FileHeaderSize {
		return nil, ErrCorruptHeader
	}

	header := getFileHeader(buf)
	if err := header.validate(); err != nil {
		return nil, err
	}

	return &File{cfg: cfg, device: dev, header: header}, nil
}

// Close flushes and releases the underlying device.
func (f *File) Close() error {
	if f == nil {
		return ErrNilArgument
	}
	if err := f.device.Flush(); err != nil {
		return err
	}
	return f.device.Close()
}

func (f *File) writeHeader() error {
	buf := make([]byte, FileHeaderSize)
	f.header.put(buf)
	if _, err := f.device.WriteAt(buf, 0); err != nil {
		return err
	}
	return f.device.Flush()
}

func (f *File) pageOffset(pageID int32) int64 {
	return int64(FileHeaderSize) + int64(pageID)*int64(f.cfg.PageSize)
}

// ReadPage reads page pageID into memory. pageID must satisfy
// 0 <= pageID < NumPages.
func (f *File) ReadPage(pageID int32) (*Page, error) {
	if f == nil {
		return nil, ErrNilArgument
	}
	if pageID < 0 || pageID >= f.header.NumPages {
		return nil, ErrInvalidPageID
	}

	buf := make([]byte, f.cfg.PageSize)
	n, err := f.device.ReadAt(buf, f.pageOffset(pageID))
	if err != nil && err != io.EOF {
		return nil, err
	}
	if n < f.cfg.PageSize {
		return nil, fmt.Errorf("%w: short read of page %d", ErrFileReadFailed, pageID)
	}

	f.reads++
	return LoadPage(f.cfg, buf), nil
}

// WritePage writes page back to the offset derived from its own
// page.ID(). It performs no validation of that id against NumPages —
// a caller holding a page buffer it forged itself (rather than one
// returned by ReadPage/AllocPage) can write beyond the allocated
// range. This mirrors the source's write_page, which has the same gap.
func (f *File) WritePage(page *Page) error {
	if f == nil || page == nil {
		return ErrNilArgument
	}
	if _, err := f.device.WriteAt(page.Bytes(), f.pageOffset(page.ID())); err != nil {
		return err
	}
	if err := f.device.Flush(); err != nil {
		return err
	}
	f.writes++
	return nil
}

// AllocPage assigns a new page id, initializes a fresh page, links it
// onto the head of the file-level free-page list, writes it, and
// persists the file header. Returns the new page's id.
func (f *File) AllocPage() (int32, error) {
	if f == nil {
		return 0, ErrNilArgument
	}
	newID := f.header.NextPageIdx
	f.header.NextPageIdx++

	page := InitPage(f.cfg, NewPageBuffer(f.cfg), newID)
	page.header.NextFreePage = f.header.FirstFreePage
	page.header.put(page.buf)
	f.header.FirstFreePage = newID

	if err := f.WritePage(page); err != nil {
		return 0, err
	}

	f.header.NumPages++
	if err := f.writeHeader(); err != nil {
		return 0, err
	}

	return newID, nil
}

// Insert writes rec to a page with room — reusing the head of the
// file-level free-page list if one exists, allocating a fresh page
// otherwise — and returns the RecordId it landed at.
func (f *File) Insert(rec Record) (RecordId, error) {
	if f == nil || rec == nil {
		return RecordId{}, ErrNilArgument
	}

	var pageID int32
	if f.header.FirstFreePage != NoFreePage {
		pageID = f.header.FirstFreePage
	} else {
		allocated, err := f.AllocPage()
		if err != nil {
			return RecordId{}, err
		}
		pageID = allocated
	}

	page, err := f.ReadPage(pageID)
	if err != nil {
		return RecordId{}, err
	}

	// The picked page is guaranteed room under invariant 4, so this
	// cannot return ErrPageFull.
	slot, err := page.InsertRecord(rec)
	if err != nil {
		return RecordId{}, err
	}

	if !page.HasFreeSpace() {
		f.header.FirstFreePage = page.header.NextFreePage
		page.header.NextFreePage = NoFreePage
		page.header.put(page.buf)
		if err := f.writeHeader(); err != nil {
			return RecordId{}, err
		}
	}

	if err := f.WritePage(page); err != nil {
		return RecordId{}, err
	}

	return RecordId{PageID: pageID, SlotIdx: slot}, nil
}

// ScanNext advances a scan cursor and returns the next live record.
// To begin a fresh scan, callers pass RecordId{PageID: 0, SlotIdx: -1}.
// Scanning starts at (rid.PageID, rid.SlotIdx+1), walks slots up to
// each page's NextSlotIdx skipping freed ones, and moves to the next
// page once exhausted. Returns ErrScanEnd once PageID reaches NumPages.
func (f *File) ScanNext(rid RecordId) (RecordId, Record, error) {
	if f == nil {
		return RecordId{}, nil, ErrNilArgument
	}
	pageID := rid.PageID
	slotIdx := rid.SlotIdx + 1

	for {
		if pageID < 0 || pageID >= f.header.NumPages {
			return RecordId{}, nil, ErrScanEnd
		}

		page, err := f.ReadPage(pageID)
		if err != nil {
			return RecordId{}, nil, err
		}

		for slotIdx < page.header.NextSlotIdx {
			if rec, ok := page.GetRecord(slotIdx); ok {
				return RecordId{PageID: pageID, SlotIdx: slotIdx}, rec, nil
			}
			slotIdx++
		}

		pageID++
		slotIdx = 0
	}
}

// UpdateRecord overwrites the mutable bytes of the record at rid with
// those of rec, leaving rid's slot's leading id field untouched.
func (f *File) UpdateRecord(rid RecordId, rec Record) error {
	if f == nil || rec == nil {
		return ErrNilArgument
	}
	if rid.PageID < 0 || rid.PageID >= f.header.NumPages {
		return ErrInvalidPageID
	}

	page, err := f.ReadPage(rid.PageID)
	if err != nil {
		return err
	}
	if err := page.UpdateRecord(rid.SlotIdx, rec); err != nil {
		return err
	}
	return f.WritePage(page)
}

// DeleteRecord removes the record at rid. If the page was full and the
// deletion opens space, the page is linked back onto the head of the
// file-level free-page list and the file header is persisted.
func (f *File) DeleteRecord(rid RecordId) error {
	if f == nil {
		return ErrNilArgument
	}
	if rid.PageID < 0 || rid.PageID >= f.header.NumPages {
		return ErrInvalidPageID
	}

	page, err := f.ReadPage(rid.PageID)
	if err != nil {
		return err
	}

	wasFull := !page.HasFreeSpace()
	if err := page.DeleteRecord(rid.SlotIdx); err != nil {
		return err
	}

	if wasFull && page.HasFreeSpace() {
		page.header.NextFreePage = f.header.FirstFreePage
		f.header.FirstFreePage = page.header.PageID
		page.header.put(page.buf)
		if err := f.writeHeader(); err != nil {
			return err
		}
	}

	return f.WritePage(page)
}

// Header returns a copy of the file's current header.
func (f *File) Header() FileHeader { return f.header }

// Config returns the geometry this file was opened/created under.
func (f *File) Config() Config { return f.cfg }

// Stats is a snapshot of operational counters, the generalization of
// the donor's disk-manager/buffer-pool Stats() maps into a typed
// struct scoped to what this layer actually tracks (no buffer-pool
// hit rate: there is no buffer pool here).
type Stats struct {
	NumPages      int32
	NextPageIdx   int32
	FirstFreePage int32
	PagesRead     int64
	PagesWritten  int64
}

// Stats returns a snapshot of the file's counters.
func (f *File) Stats() Stats {
	return Stats{
		NumPages:      f.header.NumPages,
		NextPageIdx:   f.header.NextPageIdx,
		FirstFreePage: f.header.FirstFreePage,
		PagesRead:     f.reads,
		PagesWritten:  f.writes,
	}
}
