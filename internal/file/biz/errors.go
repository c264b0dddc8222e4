package biz

import "errors"

var (
	// ErrFileNotFound means no record matched the (file id, user id)
	// filter. A file owned by another user is indistinguishable from a
	// missing one.
	ErrFileNotFound = errors.New("file not found")

	// ErrBlobStore means an object-storage operation failed. Metadata
	// may already have changed when this is returned from a permanent
	// delete.
	ErrBlobStore = errors.New("blob store operation failed")
)
