package syntax

import "errors"

// Error taxonomy shared by the engines. Callers test with errors.Is.
var (
	// ErrInvalidArgument signals malformed input: an empty name, an
	// out-of-range position, a non-function inline target.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrSymbolNotFound signals that a position does not fall within an
	// identifier resolving to a declared symbol.
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrInvalidIdentifier signals that a proposed rename target is not a
	// legal identifier for the file's language.
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrInvariant signals a broken internal invariant (a scope cycle, an
	// edit range outside its file): a bug in an upstream AST provider, not
	// user error.
	ErrInvariant = errors.New("internal invariant violation")
)
