package bookpress

import "errors"

// Sentinel errors for library operations.
var (
	// ErrCompile reports a failed compiler run. Wrapped errors carry the
	// exit status and a stderr excerpt from the external tool.
	ErrCompile = errors.New("document compilation failed")

	// ErrMerge reports a failed artifact merge. Chunked builds wrap chunk
	// compile failures in ErrMerge as well, keeping the original ErrCompile
	// visible through the chain.
	ErrMerge = errors.New("artifact merge failed")

	// ErrVerify reports a merged artifact whose page count does not match
	// the sum of its inputs.
	ErrVerify = errors.New("artifact verification failed")

	// Build configuration validation errors.
	ErrEmptyOutput      = errors.New("output path cannot be empty")
	ErrInvalidChunkSize = errors.New("chunk size cannot be negative")

	// Merge tool resolution errors.
	ErrNoMergeTool      = errors.New("no PDF merge tool (pdftk or cpdf) found on PATH")
	ErrUnknownMergeTool = errors.New("unknown merge tool")

	// Preview rendering errors.
	ErrHTMLRender     = errors.New("HTML rendering failed")
	ErrUnknownStyle   = errors.New("unknown highlight style")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFRender      = errors.New("PDF rendering failed")
)
