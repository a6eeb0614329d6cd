// Package enginerr holds the engine's sentinel errors and machine-readable
// error codes.
package enginerr

import "errors"

var (
	ErrDocumentNotOpen    = errors.New("document not open")
	ErrSymbolNotFound     = errors.New("symbol not found")
	ErrParseFailed        = errors.New("parse failed")
	ErrWorkspaceNotReady  = errors.New("workspace not discovered yet")
	ErrCacheUnavailable   = errors.New("reference cache unavailable")
	ErrDuplicateDocument  = errors.New("document already indexed")
	ErrInvalidArgument    = errors.New("invalid argument")
)

// Code is a machine-readable error classification for JSON/LSP responses.
type Code string

const (
	CodeNone              Code = ""
	CodeDocumentNotOpen   Code = "ERR_DOCUMENT_NOT_OPEN"
	CodeSymbolNotFound    Code = "ERR_SYMBOL_NOT_FOUND"
	CodeParseFailed       Code = "ERR_PARSE_FAILED"
	CodeWorkspaceNotReady Code = "ERR_WORKSPACE_NOT_READY"
	CodeCacheUnavailable  Code = "ERR_CACHE_UNAVAILABLE"
	CodeDuplicateDocument Code = "ERR_DUPLICATE_DOCUMENT"
	CodeInvalidArgument   Code = "ERR_INVALID_ARGUMENT"
	CodeUnknown           Code = "ERR_UNKNOWN"
)

// CodeFor maps a sentinel (or wrapped sentinel) error to its Code, falling
// back to CodeUnknown for anything it doesn't recognize.
func CodeFor(err error) Code {
	switch {
	case err == nil:
		return CodeNone
	case errors.Is(err, ErrDocumentNotOpen):
		return CodeDocumentNotOpen
	case errors.Is(err, ErrSymbolNotFound):
		return CodeSymbolNotFound
	case errors.Is(err, ErrParseFailed):
		return CodeParseFailed
	case errors.Is(err, ErrWorkspaceNotReady):
		return CodeWorkspaceNotReady
	case errors.Is(err, ErrCacheUnavailable):
		return CodeCacheUnavailable
	case errors.Is(err, ErrDuplicateDocument):
		return CodeDuplicateDocument
	case errors.Is(err, ErrInvalidArgument):
		return CodeInvalidArgument
	default:
		return CodeUnknown
	}
}
