package page

import (
	"fmt"

	"tupledb/pkg/primitives"
	"tupledb/pkg/tuple"
)

// PageDescriptor identifies a page: the table file it belongs to and its
// position within that file. It implements tuple.PageID.
type PageDescriptor struct {
	tableID primitives.TableID
	pageNum primitives.PageNumber
}

// NewPageDescriptor creates a page identifier.
func NewPageDescriptor(tableID primitives.TableID, pageNum primitives.PageNumber) *PageDescriptor {
	return &PageDescriptor{
		tableID: tableID,
		pageNum: pageNum,
	}
}

// GetTableID returns the owning table's file ID.
func (pd *PageDescriptor) GetTableID() primitives.TableID {
	return pd.tableID
}

// PageNo returns the page's position within its file.
func (pd *PageDescriptor) PageNo() primitives.PageNumber {
	return pd.pageNum
}

// Equals reports whether both components match.
func (pd *PageDescriptor) Equals(other tuple.PageID) bool {
	if other == nil {
		return false
	}
	return pd.tableID == other.GetTableID() && pd.pageNum == other.PageNo()
}

func (pd *PageDescriptor) String() string {
	return fmt.Sprintf("PageDescriptor(table=%d, page=%d)", pd.tableID, pd.pageNum)
}
