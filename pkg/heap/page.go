package heap

import "encoding/binary"

// idFieldSize is the width of the leading id field every record is
// assumed to carry. Page.UpdateRecord leaves these bytes untouched and
// only overwrites the rest of the slot — see the "update preserves id"
// decision in the design notes.
const idFieldSize = 4

// PageHeader occupies the first PageHeaderSize bytes of every page.
type PageHeader struct {
	PageID        int32 // this page's own index in the file
	NumSlots      int32 // count of currently live (non-deleted) records
	NextSlotIdx   int32 // high-water mark: smallest slot index never yet allocated
	FirstFreeSlot int32 // head of the intrusive per-page free-slot list, or FreeSlotEnd
	NextFreePage  int32 // link field for the file-level free-page list, or NoFreePage
}

func (h PageHeader) put(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], uint32(h.PageID))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(h.NumSlots))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(h.NextSlotIdx))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(h.FirstFreeSlot))
	binary.LittleEndian.PutUint32(buf[16:20], uint32(h.NextFreePage))
}

func getPageHeader(buf []byte) PageHeader {
	return PageHeader{
		PageID:        int32(binary.LittleEndian.Uint32(buf[0:4])),
		NumSlots:      int32(binary.LittleEndian.Uint32(buf[4:8])),
		NextSlotIdx:   int32(binary.LittleEndian.Uint32(buf[8:12])),
		FirstFreeSlot: int32(binary.LittleEndian.Uint32(buf[12:16])),
		NextFreePage:  int32(binary.LittleEndian.Uint32(buf[16:20])),
	}
}

// Page is one in-memory page buffer: a PageHeader followed by a body of
// fixed-size record slots. Page is pure data — it does no I/O; File is
// responsible for reading/writing Page buffers to a Device.
type Page struct {
	cfg    Config
	header PageHeader
	buf    []byte // cfg.PageSize bytes: header, then body
}

// NewPageBuffer allocates a zeroed page-sized buffer under cfg's geometry.
func NewPageBuffer(cfg Config) []byte {
	return make([]byte, cfg.PageSize)
}

// InitPage resets buf's header in place to a fresh, empty page with the
// given id: NumSlots=0, NextSlotIdx=0, FirstFreeSlot=FreeSlotEnd,
// NextFreePage=NoFreePage. It does not zero the body — a reused page's
// old slot bytes are left as garbage, which is safe since NextSlotIdx=0
// makes none of them addressable yet.
func InitPage(cfg Config, buf []byte, pageID int32) *Page {
	p := &Page{
		cfg: cfg,
		header: PageHeader{
			PageID:        pageID,
			NumSlots:      0,
			NextSlotIdx:   0,
			FirstFreeSlot: FreeSlotEnd,
			NextFreePage:  NoFreePage,
		},
		buf: buf,
	}
	p.header.put(p.buf)
	return p
}

// LoadPage wraps an existing page-sized buffer (e.g. just read from
// disk) and deserializes its header.
func LoadPage(cfg Config, buf []byte) *Page {
	return &Page{cfg: cfg, header: getPageHeader(buf), buf: buf}
}

// Header returns a copy of the page's current header.
func (p *Page) Header() PageHeader { return p.header }

// ID returns the page's own id.
func (p *Page) ID() int32 { return p.header.PageID }

// Bytes returns the full underlying page buffer (header + body), ready
// to be written back to disk as-is.
func (p *Page) Bytes() []byte { return p.buf }

func (p *Page) bodyOffset(slot int32) int {
	return PageHeaderSize + int(slot)*p.cfg.RecordSize
}

// GetSlot returns the raw RecordSize-byte range at slot index i, or
// false if i is out of [0, NextSlotIdx). Deleted slots are still in
// range: this is the primitive used to walk the free-slot list.
// Record-level accessors (GetRecord) must additionally check
// IsInFreeList.
func (p *Page) GetSlot(i int32) (Record, bool) {
	if i < 0 || i >= p.header.NextSlotIdx {
		return nil, false
	}
	off := p.bodyOffset(i)
	return Record(p.buf[off : off+p.cfg.RecordSize]), true
}

// HasFreeSpace reports whether the page can accept another insert
// without extending the file: either the free-slot list is non-empty,
// or the high-water mark hasn't reached MaxSlots.
func (p *Page) HasFreeSpace() bool {
	return p.header.FirstFreeSlot != FreeSlotEnd || int(p.header.NextSlotIdx) < p.cfg.MaxSlots()
}

// IsInFreeList reports whether slot i currently sits on the page's
// free-slot list. It's an O(n) walk from FirstFreeSlot and is defined
// (returns false) even for out-of-range i.
func (p *Page) IsInFreeList(i int32) bool {
	cur := p.header.FirstFreeSlot
	for cur != FreeSlotEnd {
		if cur == i {
			return true
		}
		slot, ok := p.GetSlot(cur)
		if !ok {
			return false
		}
		cur = readFreeLink(slot)
	}
	return false
}

// InsertRecord writes rec into a slot, preferring to recycle the head
// of the free-slot list (LIFO) over extending the high-water mark.
// Returns the chosen slot index, or ErrPageFull if the page has no room.
func (p *Page) InsertRecord(rec Record) (int32, error) {
	if rec == nil {
		return 0, ErrNilArgument
	}
	if len(rec) != p.cfg.RecordSize {
		return 0, ErrInvalidSlot
	}

	var slot int32
	if p.header.FirstFreeSlot != FreeSlotEnd {
		slot = p.header.FirstFreeSlot
		linked, _ := p.GetSlot(slot)
		p.header.FirstFreeSlot = readFreeLink(linked)
	} else if int(p.header.NextSlotIdx) < p.cfg.MaxSlots() {
		slot = p.header.NextSlotIdx
		p.header.NextSlotIdx++
	} else {
		return 0, ErrPageFull
	}

	off := p.bodyOffset(slot)
	copy(p.buf[off:off+p.cfg.RecordSize], rec)
	p.header.NumSlots++
	p.header.put(p.buf)
	return slot, nil
}

// DeleteRecord removes the record at slot i by threading it onto the
// head of the free-slot list. It fails with ErrInvalidSlot if i is
// out of range or already free (a duplicate delete). NextSlotIdx is
// never decremented.
func (p *Page) DeleteRecord(i int32) error {
	slot, ok := p.GetSlot(i)
	if !ok || p.IsInFreeList(i) {
		return ErrInvalidSlot
	}

	writeFreeLink(slot, p.header.FirstFreeSlot)
	p.header.FirstFreeSlot = i
	p.header.NumSlots--
	p.header.put(p.buf)
	return nil
}

// UpdateRecord overwrites slot i's mutable bytes — everything from
// idFieldSize onward — with the corresponding bytes of new, leaving the
// leading id field untouched. Fails with ErrInvalidSlot if i is out of
// range or freed.
func (p *Page) UpdateRecord(i int32, newRec Record) error {
	if newRec == nil {
		return ErrNilArgument
	}
	if len(newRec) != p.cfg.RecordSize {
		return ErrInvalidSlot
	}

	slot, ok := p.GetSlot(i)
	if !ok || p.IsInFreeList(i) {
		return ErrInvalidSlot
	}

	copy(slot[idFieldSize:], newRec[idFieldSize:])
	return nil
}

// GetRecord returns the live record at slot i, or false if i is out of
// range or currently on the free-slot list.
func (p *Page) GetRecord(i int32) (Record, bool) {
	slot, ok := p.GetSlot(i)
	if !ok || p.IsInFreeList(i) {
		return nil, false
	}
	return slot, true
}
