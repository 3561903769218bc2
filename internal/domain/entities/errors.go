package entities

import "errors"

// Error taxonomy for the query pipeline. Adapters wrap these with %w so the
// HTTP layer can map them to status codes with errors.Is.
var (
	// ErrInvalidRequest means none of file, fileId or pdfUrl was supplied.
	ErrInvalidRequest = errors.New("no file, fileId, or pdfUrl provided")

	// ErrDocumentFetch means a URL or upload could not be read or parsed.
	ErrDocumentFetch = errors.New("failed to fetch or parse document")

	// ErrSessionNotFound means a fileId did not resolve to a stored session.
	ErrSessionNotFound = errors.New("file not found")

	// ErrLLMTransport means the model endpoint could not be reached or
	// returned a non-success status. Never retried.
	ErrLLMTransport = errors.New("llm request failed")

	// ErrPersistence means a session store read or write failed.
	ErrPersistence = errors.New("session store failure")
)
