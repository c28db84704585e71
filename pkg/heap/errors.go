package heap

import "errors"

// Sentinel errors, one per taxonomy entry. Operations wrap these with
// fmt.Errorf("%w: %v", Err..., cause) so callers can still errors.Is
// through to the sentinel after a wrapped I/O failure.
var (
	// ErrNilArgument is returned when a required handle/buffer/record
	// argument is absent (the null-pointer case). Every File method that
	// returns an error guards against a nil receiver and returns this,
	// along with nil Record/*Page arguments. Header, Config and Stats
	// return no error and do not guard against a nil receiver.
	ErrNilArgument = errors.New("heap: nil argument")

	// ErrInvalidSlot is returned when a slot index is out of a page's
	// range, or addresses a slot currently on the free-slot list.
	ErrInvalidSlot = errors.New("heap: invalid slot")

	// ErrInvalidPageID is returned when a page id is negative or >=
	// the file's num_pages.
	ErrInvalidPageID = errors.New("heap: invalid page id")

	// ErrRecordNotFound is reserved for a future by-key lookup; no
	// operation in this package raises it today.
	ErrRecordNotFound = errors.New("heap: record not found")

	// ErrPageFull is raised by Page.InsertRecord when neither the
	// free-slot list nor the high-water mark has room. File.Insert
	// never lets this escape: it only calls InsertRecord on a page it
	// already knows has space.
	ErrPageFull = errors.New("heap: page full")

	// ErrCorruptHeader is returned when a file header fails validation
	// on open.
	ErrCorruptHeader = errors.New("heap: corrupt header")

	// Transport errors from the storage device.
	ErrFileOpenFailed  = errors.New("heap: file open failed")
	ErrFileReadFailed  = errors.New("heap: file read failed")
	ErrFileWriteFailed = errors.New("heap: file write failed")
	ErrFileSeekFailed  = errors.New("heap: file seek failed")

	// ErrScanEnd is not a failure; it signals scan exhaustion.
	ErrScanEnd = errors.New("heap: end of scan")
)
