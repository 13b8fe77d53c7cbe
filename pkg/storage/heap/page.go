package heap

import (
	"bytes"
	"sync"

	"github.com/juju/errors"

	"tupledb/pkg/logger"
	"tupledb/pkg/primitives"
	"tupledb/pkg/storage"
	"tupledb/pkg/storage/page"
	"tupledb/pkg/tuple"
	"tupledb/pkg/types"
)

// HeapPage is a fixed-size slotted page holding fixed-width records in no
// particular order. It implements the page.Page interface.
//
// Page layout:
//   - Header: a bitmap of ceil(numSlots/8) bytes. Bit i (least significant
//     bit first within each byte) is set iff slot i holds a valid record.
//   - Slot array: numSlots record slots of tupleDesc.Size() bytes each,
//     packed immediately after the header. Unused slots are zeroed.
//
// numSlots = floor(PageSize*8 / (recordWidth*8 + 1)), accounting for the
// one header bit each slot costs.
type HeapPage struct {
	pageID    *page.PageDescriptor
	tupleDesc *tuple.TupleDescription
	header    []byte
	tuples    []*tuple.Tuple
	numSlots  int
	dirtier   *primitives.TransactionID
	oldData   []byte
	mutex     sync.RWMutex
}

// SlotsPerPage returns how many records of the given width fit on a page
// once each record's header bit is accounted for.
func SlotsPerPage(recordWidth int) int {
	return (page.PageSize * 8) / (recordWidth*8 + 1)
}

// HeaderSize returns the byte length of the occupancy bitmap for the given
// slot count.
func HeaderSize(numSlots int) int {
	return (numSlots + 7) / 8
}

// NewHeapPage decodes a raw page block of exactly page.PageSize bytes. The
// bitmap is read first, then every occupied slot is decoded into a tuple
// carrying its full RecordID. A block of the wrong length, or an occupied
// slot whose bytes do not parse under the schema, is a corrupt page.
func NewHeapPage(pid *page.PageDescriptor, data []byte, td *tuple.TupleDescription) (*HeapPage, error) {
	if len(data) != page.PageSize {
		return nil, errors.Annotatef(storage.ErrCorruptPage,
			"invalid page data size: expected %d, got %d", page.PageSize, len(data))
	}

	numSlots := SlotsPerPage(td.Size())
	hp := &HeapPage{
		pageID:    pid,
		tupleDesc: td,
		header:    make([]byte, HeaderSize(numSlots)),
		tuples:    make([]*tuple.Tuple, numSlots),
		numSlots:  numSlots,
		oldData:   make([]byte, page.PageSize),
	}

	if err := hp.parsePageData(data); err != nil {
		return nil, err
	}

	copy(hp.oldData, data)
	return hp, nil
}

// NewEmptyHeapPage creates a page with every slot free.
func NewEmptyHeapPage(pid *page.PageDescriptor, td *tuple.TupleDescription) (*HeapPage, error) {
	return NewHeapPage(pid, make([]byte, page.PageSize), td)
}

func (hp *HeapPage) parsePageData(data []byte) error {
	copy(hp.header, data[:len(hp.header)])

	recordWidth := hp.tupleDesc.Size()
	for i := 0; i < hp.numSlots; i++ {
		if !hp.bitSet(i) {
			continue
		}

		offset := len(hp.header) + i*recordWidth
		r := bytes.NewReader(data[offset : offset+recordWidth])

		t, err := readTuple(r, hp.tupleDesc)
		if err != nil {
			return errors.Annotatef(storage.ErrCorruptPage,
				"decoding slot %d of %s: %v", i, hp.pageID, err)
		}

		t.RecordID = tuple.NewRecordID(hp.pageID, primitives.SlotNumber(i))
		hp.tuples[i] = t
	}

	return nil
}

// readTuple decodes one fixed-width record from r.
func readTuple(r *bytes.Reader, td *tuple.TupleDescription) (*tuple.Tuple, error) {
	t := tuple.NewTuple(td)

	for i := 0; i < td.NumFields(); i++ {
		fieldType, err := td.TypeAtIndex(primitives.ColumnID(i))
		if err != nil {
			return nil, err
		}

		field, err := types.ParseField(r, fieldType)
		if err != nil {
			return nil, err
		}

		t.SetField(i, field)
	}
	return t, nil
}

// GetID returns the identifier of this page.
func (hp *HeapPage) GetID() *page.PageDescriptor {
	return hp.pageID
}

// GetTupleDesc returns the schema of the records on this page.
func (hp *HeapPage) GetTupleDesc() *tuple.TupleDescription {
	return hp.tupleDesc
}

// NumSlots returns the fixed slot capacity of this page.
func (hp *HeapPage) NumSlots() int {
	return hp.numSlots
}

// NumEmptySlots returns how many slots are currently free.
func (hp *HeapPage) NumEmptySlots() int {
	hp.mutex.RLock()
	defer hp.mutex.RUnlock()
	return hp.numEmptySlotsLocked()
}

func (hp *HeapPage) numEmptySlotsLocked() int {
	empty := 0
	for i := 0; i < hp.numSlots; i++ {
		if !hp.bitSet(i) {
			empty++
		}
	}
	return empty
}

// IsSlotUsed reports whether slot i holds a record. Out-of-range slots are
// never used.
func (hp *HeapPage) IsSlotUsed(i int) bool {
	hp.mutex.RLock()
	defer hp.mutex.RUnlock()
	if i < 0 || i >= hp.numSlots {
		return false
	}
	return hp.bitSet(i)
}

func (hp *HeapPage) bitSet(i int) bool {
	return hp.header[i/8]&(1<<(i%8)) != 0
}

func (hp *HeapPage) setBit(i int, used bool) {
	if used {
		hp.header[i/8] |= 1 << (i % 8)
	} else {
		hp.header[i/8] &^= 1 << (i % 8)
	}
}

// InsertTuple places t into the lowest-numbered free slot, marks the slot
// occupied, and assigns t's RecordID. Fails SchemaMismatch before any
// mutation when t's schema is incompatible, and PageFull when no slot is
// free.
func (hp *HeapPage) InsertTuple(t *tuple.Tuple) error {
	hp.mutex.Lock()
	defer hp.mutex.Unlock()

	if !t.TupleDesc.Equals(hp.tupleDesc) {
		return errors.Annotatef(storage.ErrSchemaMismatch,
			"tuple schema does not match page %s", hp.pageID)
	}

	slot := -1
	for i := 0; i < hp.numSlots; i++ {
		if !hp.bitSet(i) {
			slot = i
			break
		}
	}
	if slot < 0 {
		return errors.Annotatef(storage.ErrPageFull, "page %s", hp.pageID)
	}

	hp.setBit(slot, true)
	hp.tuples[slot] = t
	t.RecordID = tuple.NewRecordID(hp.pageID, primitives.SlotNumber(slot))
	return nil
}

// DeleteTuple clears the occupancy bit of t's slot, logically deleting the
// record without compacting the slot array. The tuple must carry a locator
// naming this page and the slot must currently be occupied.
func (hp *HeapPage) DeleteTuple(t *tuple.Tuple) error {
	hp.mutex.Lock()
	defer hp.mutex.Unlock()

	rid := t.RecordID
	if rid == nil {
		return errors.Annotatef(storage.ErrRecordNotFound, "tuple has no locator")
	}

	if !rid.PID.Equals(hp.pageID) {
		return errors.Annotatef(storage.ErrWrongPage,
			"tuple is on %s, not %s", rid.PID, hp.pageID)
	}

	slot := int(rid.Slot)
	if slot < 0 || slot >= hp.numSlots || !hp.bitSet(slot) {
		return errors.Annotatef(storage.ErrRecordNotFound,
			"slot %d of %s is not occupied", slot, hp.pageID)
	}

	hp.setBit(slot, false)
	hp.tuples[slot] = nil
	t.RecordID = nil
	return nil
}

// TupleAt returns the record in slot i, or nil when the slot is free.
func (hp *HeapPage) TupleAt(i int) (*tuple.Tuple, error) {
	hp.mutex.RLock()
	defer hp.mutex.RUnlock()

	if i < 0 || i >= hp.numSlots {
		return nil, errors.Annotatef(storage.ErrOutOfRange,
			"slot %d not in [0, %d)", i, hp.numSlots)
	}
	return hp.tuples[i], nil
}

// Tuples returns the occupied slots' records in increasing slot order.
func (hp *HeapPage) Tuples() []*tuple.Tuple {
	hp.mutex.RLock()
	defer hp.mutex.RUnlock()

	out := make([]*tuple.Tuple, 0, hp.numSlots-hp.numEmptySlotsLocked())
	for _, t := range hp.tuples {
		if t != nil {
			out = append(out, t)
		}
	}
	return out
}

// Iterator returns a forward-only iterator over the occupied slots in
// increasing slot order.
func (hp *HeapPage) Iterator() *HeapPageIterator {
	return NewHeapPageIterator(hp)
}

// GetPageData serializes the page back to exactly page.PageSize bytes:
// the bitmap, then every slot at its fixed offset. Unused slots and unset
// fields serialize as zeros, so a page decoded and re-encoded without
// modification round-trips byte for byte.
func (hp *HeapPage) GetPageData() []byte {
	hp.mutex.RLock()
	defer hp.mutex.RUnlock()
	return hp.getPageDataLocked()
}

func (hp *HeapPage) getPageDataLocked() []byte {
	data := make([]byte, page.PageSize)
	copy(data, hp.header)

	recordWidth := hp.tupleDesc.Size()
	for i := 0; i < hp.numSlots; i++ {
		t := hp.tuples[i]
		if !hp.bitSet(i) || t == nil {
			continue
		}

		var buf bytes.Buffer
		for j := 0; j < hp.tupleDesc.NumFields(); j++ {
			fieldType, _ := hp.tupleDesc.TypeAtIndex(primitives.ColumnID(j))
			if f := t.GetField(j); f != nil {
				_ = f.Serialize(&buf)
			} else {
				buf.Write(make([]byte, fieldType.Size()))
			}
		}

		offset := len(hp.header) + i*recordWidth
		copy(data[offset:offset+recordWidth], buf.Bytes())
	}

	return data
}

// IsDirty returns the transaction that last modified this page, or nil.
func (hp *HeapPage) IsDirty() *primitives.TransactionID {
	hp.mutex.RLock()
	defer hp.mutex.RUnlock()
	return hp.dirtier
}

// MarkDirty sets or clears the dirty state for a transaction.
func (hp *HeapPage) MarkDirty(dirty bool, tid *primitives.TransactionID) {
	hp.mutex.Lock()
	defer hp.mutex.Unlock()

	if dirty {
		hp.dirtier = tid
	} else {
		hp.dirtier = nil
	}
}

// GetBeforeImage returns the page as it was before the current
// transaction's modifications, or nil if the captured bytes no longer
// decode. oldData only ever holds bytes that decoded once, so a failure
// here means in-memory corruption and is logged rather than silently
// yielding a typed nil.
func (hp *HeapPage) GetBeforeImage() page.Page {
	hp.mutex.RLock()
	defer hp.mutex.RUnlock()

	before, err := NewHeapPage(hp.pageID, hp.oldData, hp.tupleDesc)
	if err != nil {
		logger.Errorf("decoding before-image of %s: %v", hp.pageID, err)
		return nil
	}
	return before
}

// SetBeforeImage captures the current content as the before-image.
func (hp *HeapPage) SetBeforeImage() {
	hp.mutex.Lock()
	defer hp.mutex.Unlock()
	hp.oldData = hp.getPageDataLocked()
}
