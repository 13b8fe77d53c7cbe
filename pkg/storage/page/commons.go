package page

import (
	"os"
	"sync"

	"github.com/juju/errors"

	"tupledb/pkg/primitives"
	"tupledb/pkg/storage"
)

const (
	// PageSize is the fixed byte size of every page in the system. It is
	// the unit of disk I/O and of cache residency.
	PageSize = 4096
)

// BaseFile provides the raw page-granular I/O shared by every database
// file type: exact-size reads and writes at page offsets, the page count
// derived from the file size, and the stable file ID derived from the path.
//
// Raw reads and writes are not synchronized against other processes; in
// normal operation callers reach this path only through the page store.
type BaseFile struct {
	file     *os.File
	fileID   primitives.TableID
	filePath primitives.Filepath
	mutex    sync.RWMutex
}

// NewBaseFile opens (creating if needed) the file at filePath for
// page-granular access.
func NewBaseFile(filePath primitives.Filepath) (*BaseFile, error) {
	if filePath.IsEmpty() {
		return nil, errors.Errorf("file path cannot be empty")
	}

	file, err := os.OpenFile(filePath.String(), os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, errors.Annotatef(storage.ErrIO, "opening %s: %v", filePath, err)
	}

	return &BaseFile{
		file:     file,
		fileID:   filePath.Hash(),
		filePath: filePath,
	}, nil
}

// GetID returns the stable identifier derived from the file's path.
func (bf *BaseFile) GetID() primitives.TableID {
	return bf.fileID
}

// FilePath returns the path this file was opened with.
func (bf *BaseFile) FilePath() primitives.Filepath {
	return bf.filePath
}

// NumPages returns fileSize / PageSize. In the steady state the file size
// is always an exact multiple of PageSize; a partial trailing page can only
// be observed mid-append and is not counted.
func (bf *BaseFile) NumPages() (primitives.PageNumber, error) {
	bf.mutex.RLock()
	defer bf.mutex.RUnlock()
	return bf.numPagesLocked()
}

func (bf *BaseFile) numPagesLocked() (primitives.PageNumber, error) {
	if bf.file == nil {
		return 0, errors.Annotatef(storage.ErrIO, "file %s is closed", bf.filePath)
	}

	info, err := bf.file.Stat()
	if err != nil {
		return 0, errors.Annotatef(storage.ErrIO, "stat %s: %v", bf.filePath, err)
	}

	return primitives.PageNumber(info.Size() / PageSize), nil
}

// ReadPageData reads exactly PageSize bytes at the given page's offset.
// A read past the end of the file, or a truncated read, is an I/O failure.
func (bf *BaseFile) ReadPageData(pageNo primitives.PageNumber) ([]byte, error) {
	bf.mutex.RLock()
	defer bf.mutex.RUnlock()

	if bf.file == nil {
		return nil, errors.Annotatef(storage.ErrIO, "file %s is closed", bf.filePath)
	}

	data := make([]byte, PageSize)
	offset := int64(pageNo) * PageSize

	n, err := bf.file.ReadAt(data, offset)
	if err != nil {
		return nil, errors.Annotatef(storage.ErrIO,
			"reading page %d of %s: %d of %d bytes: %v", pageNo, bf.filePath, n, PageSize, err)
	}

	return data, nil
}

// WritePageData writes exactly PageSize bytes at the given page's offset.
// Writing at pageNo == NumPages() appends a page; the whole append happens
// under the file lock so readers never observe a partial page. Writing any
// further past the end fails OutOfRange.
func (bf *BaseFile) WritePageData(pageNo primitives.PageNumber, data []byte) error {
	bf.mutex.Lock()
	defer bf.mutex.Unlock()

	if bf.file == nil {
		return errors.Annotatef(storage.ErrIO, "file %s is closed", bf.filePath)
	}

	if len(data) != PageSize {
		return errors.Annotatef(storage.ErrIO,
			"invalid page data size: expected %d, got %d", PageSize, len(data))
	}

	numPages, err := bf.numPagesLocked()
	if err != nil {
		return err
	}
	if pageNo < 0 || pageNo > numPages {
		return errors.Annotatef(storage.ErrOutOfRange,
			"page %d not in [0, %d]", pageNo, numPages)
	}

	offset := int64(pageNo) * PageSize
	if _, err := bf.file.WriteAt(data, offset); err != nil {
		return errors.Annotatef(storage.ErrIO, "writing page %d of %s: %v", pageNo, bf.filePath, err)
	}

	if err := bf.file.Sync(); err != nil {
		return errors.Annotatef(storage.ErrIO, "syncing %s: %v", bf.filePath, err)
	}

	return nil
}

// AppendPage writes data as a new page at the current end of the file and
// returns its page number. The end is recomputed under the write lock, so
// concurrent appenders each get a distinct page and a caller holding a
// stale page count can never overwrite an existing page.
func (bf *BaseFile) AppendPage(data []byte) (primitives.PageNumber, error) {
	bf.mutex.Lock()
	defer bf.mutex.Unlock()

	if bf.file == nil {
		return 0, errors.Annotatef(storage.ErrIO, "file %s is closed", bf.filePath)
	}

	if len(data) != PageSize {
		return 0, errors.Annotatef(storage.ErrIO,
			"invalid page data size: expected %d, got %d", PageSize, len(data))
	}

	pageNo, err := bf.numPagesLocked()
	if err != nil {
		return 0, err
	}

	offset := int64(pageNo) * PageSize
	if _, err := bf.file.WriteAt(data, offset); err != nil {
		return 0, errors.Annotatef(storage.ErrIO, "appending page %d of %s: %v", pageNo, bf.filePath, err)
	}

	if err := bf.file.Sync(); err != nil {
		return 0, errors.Annotatef(storage.ErrIO, "syncing %s: %v", bf.filePath, err)
	}

	return pageNo, nil
}

// Close releases the underlying file handle. Closing twice is a no-op.
func (bf *BaseFile) Close() error {
	bf.mutex.Lock()
	defer bf.mutex.Unlock()

	if bf.file == nil {
		return nil
	}

	err := bf.file.Close()
	bf.file = nil
	if err != nil {
		return errors.Annotatef(storage.ErrIO, "closing %s: %v", bf.filePath, err)
	}
	return nil
}
