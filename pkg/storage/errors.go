package storage

// StorageError is a sentinel returned by the snapshot store.
type StorageError struct {
	Message string
}

func (e *StorageError) Error() string {
	return e.Message
}

var (
	ErrSnapshotNotFound = &StorageError{"snapshot not found"}
	ErrStoreClosed      = &StorageError{"snapshot store is closed"}
)
