package primitives

// TableID identifies the physical file backing a table. It is derived by
// hashing the file's cleaned path, so the same path yields the same ID
// across process restarts.
type TableID uint64

// PageNumber is the zero-based position of a page within its file.
type PageNumber int

// SlotNumber is the zero-based position of a record slot within a page.
type SlotNumber int

// ColumnID identifies a field position within a tuple schema.
type ColumnID int
