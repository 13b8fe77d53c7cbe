package tuple

import (
	"fmt"

	"tupledb/pkg/primitives"
)

// RecordID locates a tuple: the page holding it and the slot within that
// page. It is assigned when the tuple is placed in storage and stays valid
// until the tuple is deleted, since slots are never compacted.
type RecordID struct {
	PID  PageID
	Slot primitives.SlotNumber
}

// NewRecordID creates a locator for the given page and slot.
func NewRecordID(pid PageID, slot primitives.SlotNumber) *RecordID {
	return &RecordID{
		PID:  pid,
		Slot: slot,
	}
}

// Equals reports whether both locators name the same page and slot.
func (rid *RecordID) Equals(other *RecordID) bool {
	if other == nil {
		return false
	}
	return rid.PID.Equals(other.PID) && rid.Slot == other.Slot
}

func (rid *RecordID) String() string {
	return fmt.Sprintf("RecordID(page=%s, slot=%d)", rid.PID, rid.Slot)
}
