package filestorage

import "mime/multipart"

// URLResolver maps an attachment storage key to an externally-servable URL.
// Both the message store and the attachment resolver go through this whenever
// a message with media leaves the service.
type URLResolver interface {
	ResolveURL(storageKey string) string
}

// Storage defines the interface for attachment blob storage.
type Storage interface {
	URLResolver

	// Save stores an uploaded file and returns the storage key under which
	// it can later be resolved.
	Save(fileHeader *multipart.FileHeader) (string, error)

	// Delete removes a stored file by its storage key.
	Delete(storageKey string) error
}
