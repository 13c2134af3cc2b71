package epub

import "errors"

// Sentinel errors returned (wrapped with context via fmt.Errorf's %w) by
// the epub package. Callers compare with errors.Is, never a type switch.
var (
	// ErrInvalidContainer means META-INF/container.xml is missing or
	// does not point at a usable rootfile.
	ErrInvalidContainer = errors.New("epub: invalid container")

	// ErrInvalidXML means a document (OPF, nav, NCX) could not be parsed
	// even in tolerant mode.
	ErrInvalidXML = errors.New("epub: invalid xml")

	// ErrEncoding means a document declared or contained an encoding this
	// package cannot decode. No reader path returns it: charsetReader
	// passes a charset it does not recognise through undecoded.
	ErrEncoding = errors.New("epub: unsupported encoding")

	// ErrNotFound means a requested resource, chapter, or identifier does
	// not exist in the package.
	ErrNotFound = errors.New("epub: not found")

	// ErrInvalidArgument means a caller-supplied value (id, href, index)
	// is malformed or out of range.
	ErrInvalidArgument = errors.New("epub: invalid argument")

	// ErrIO wraps unexpected filesystem or zip I/O failures.
	ErrIO = errors.New("epub: i/o error")
)
