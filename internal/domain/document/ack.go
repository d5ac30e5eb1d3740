package document

// InsertResult acknowledges an insert-one operation.
type InsertResult struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

// UpdateResult acknowledges an update-one operation. A zero MatchedCount
// means no document had the requested id.
type UpdateResult struct {
	Acknowledged  bool    `json:"acknowledged"`
	MatchedCount  int64   `json:"matchedCount"`
	ModifiedCount int64   `json:"modifiedCount"`
	UpsertedCount int64   `json:"upsertedCount"`
	UpsertedID    *string `json:"upsertedId"`
}

// DeleteResult acknowledges a delete-one operation.
type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

// Inserted builds the acknowledgment for a stored document.
func Inserted(id string) *InsertResult {
	return &InsertResult{Acknowledged: true, InsertedID: id}
}

// Updated builds the acknowledgment for an update that matched documents
// and changed modified of them.
func Updated(matched, modified int64) *UpdateResult {
	return &UpdateResult{Acknowledged: true, MatchedCount: matched, ModifiedCount: modified}
}

// Deleted builds the acknowledgment for a delete that removed n documents.
func Deleted(n int64) *DeleteResult {
	return &DeleteResult{Acknowledged: true, DeletedCount: n}
}
