package page

import "tupledb/pkg/primitives"

// Page is a page resident in the page store. Pages may be dirty, meaning
// they have been modified since they were last written to disk.
type Page interface {
	// GetID returns the identifier of this page.
	GetID() *PageDescriptor

	// IsDirty returns the transaction that dirtied this page, or nil if
	// the page is clean.
	IsDirty() *primitives.TransactionID

	// MarkDirty sets or clears the dirty state for a transaction.
	MarkDirty(dirty bool, tid *primitives.TransactionID)

	// GetPageData serializes the page to exactly PageSize bytes.
	GetPageData() []byte

	// GetBeforeImage returns the page as it was before the current
	// transaction's modifications. Used to undo on abort.
	GetBeforeImage() Page

	// SetBeforeImage captures the current content as the before-image.
	// Called when a transaction that wrote this page commits.
	SetBeforeImage()
}
