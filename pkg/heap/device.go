package heap

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Device is the narrow storage adapter the file layer reads and writes
// pages through. It is deliberately small — open/seek-by-offset/read/
// write/flush/close — so an in-memory stand-in can satisfy it for tests
// without dragging in any higher-level buffering. Grain reads and
// writes pages directly through a Device; it has no buffer pool or page
// cache of its own (those are out of scope for this layer).
type Device interface {
	// ReadAt reads len(buf) bytes starting at offset. It behaves like
	// io.ReaderAt: a short read without error is only permitted at EOF.
	ReadAt(buf []byte, offset int64) (int, error)

	// WriteAt writes all of buf starting at offset, growing the device
	// if offset+len(buf) exceeds its current size.
	WriteAt(buf []byte, offset int64) (int, error)

	// Flush makes prior writes durable to the extent the underlying
	// device's own flush contract provides.
	Flush() error

	// Truncate grows or shrinks the device to exactly size bytes.
	Truncate(size int64) error

	// Close releases the device. MemDevice's Close is a no-op;
	// FileDevice's Close returns an error when the file is already closed.
	Close() error
}

// FileDevice is a Device backed by an *os.File, the byte-addressable
// sequential storage device spec.md assumes. It owns the os.File
// exclusively for its lifetime.
type FileDevice struct {
	mu   sync.Mutex
	file *os.File
}

// CreateFileDevice creates (truncating if necessary) the file at path
// and opens it for read/write.
func CreateFileDevice(path string) (*FileDevice, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileOpenFailed, err)
	}
	return &FileDevice{file: f}, nil
}

// OpenFileDevice opens an existing file at path for read/write.
func OpenFileDevice(path string) (*FileDevice, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileOpenFailed, err)
	}
	return &FileDevice{file: f}, nil
}

// ReadAt implements Device.
func (d *FileDevice) ReadAt(buf []byte, offset int64) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, err := d.file.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("%w: %v", ErrFileReadFailed, err)
	}
	return n, err
}

// WriteAt implements Device.
func (d *FileDevice) WriteAt(buf []byte, offset int64) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, err := d.file.WriteAt(buf, offset)
	if err != nil {
		return n, fmt.Errorf("%w: %v", ErrFileWriteFailed, err)
	}
	return n, nil
}

// Flush implements Device by calling fsync.
func (d *FileDevice) Flush() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.file.Sync(); err != nil {
		return fmt.Errorf("%w: %v", ErrFileWriteFailed, err)
	}
	return nil
}

// Truncate implements Device.
func (d *FileDevice) Truncate(size int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.file.Truncate(size); err != nil {
		return fmt.Errorf("%w: %v", ErrFileWriteFailed, err)
	}
	return nil
}

// Close implements Device.
func (d *FileDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.file.Close()
}

// MemDevice is an in-memory Device, used by this package's own tests
// and by callers who want an ephemeral heap file with no disk footprint.
type MemDevice struct {
	mu   sync.Mutex
	data []byte
}

// NewMemDevice returns an empty in-memory device.
func NewMemDevice() *MemDevice {
	return &MemDevice{}
}

// ReadAt implements Device. A read starting at or past the current size
// returns io.EOF; a read that runs past the end copies the bytes that
// exist and returns io.EOF. Gaps left by a write past the old end read
// as zero, matching a sparse file's semantics on a freshly-grown region.
func (d *MemDevice) ReadAt(buf []byte, offset int64) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if offset < 0 {
		return 0, fmt.Errorf("%w: negative offset", ErrFileSeekFailed)
	}
	if offset >= int64(len(d.data)) {
		return 0, io.EOF
	}

	n := copy(buf, d.data[offset:])
	if n < len(buf) {
		return n, io.EOF
	}
	return n, nil
}

// WriteAt implements Device, growing the backing buffer as needed.
func (d *MemDevice) WriteAt(buf []byte, offset int64) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if offset < 0 {
		return 0, fmt.Errorf("%w: negative offset", ErrFileSeekFailed)
	}

	end := offset + int64(len(buf))
	if end > int64(len(d.data)) {
		grown := make([]byte, end)
		copy(grown, d.data)
		d.data = grown
	}

	n := copy(d.data[offset:end], buf)
	return n, nil
}

// Flush implements Device; a no-op, since MemDevice has no backing store.
func (d *MemDevice) Flush() error { return nil }

// Truncate implements Device.
func (d *MemDevice) Truncate(size int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if size < 0 {
		return fmt.Errorf("%w: negative size", ErrFileWriteFailed)
	}
	if size <= int64(len(d.data)) {
		d.data = d.data[:size]
		return nil
	}
	grown := make([]byte, size)
	copy(grown, d.data)
	d.data = grown
	return nil
}

// Close implements Device; a no-op.
func (d *MemDevice) Close() error { return nil }

// Size returns the current length of the backing buffer, for tests.
func (d *MemDevice) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.data))
}
