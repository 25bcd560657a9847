package rt

import "errors"

// ---------------------------------------------------------------------------
// Error taxonomy
// ---------------------------------------------------------------------------

// Every failure the runtime reports wraps exactly one of these sentinels,
// so callers can classify with errors.Is while still seeing the wrapped
// diagnostic context.
var (
	// ErrDuplicateClass is reported by DefineClass when the name is taken.
	ErrDuplicateClass = errors.New("duplicate class name")

	// ErrMultipleSuperclass is reported when a definition block calls
	// Superclass more than once.
	ErrMultipleSuperclass = errors.New("superclass already set")

	// ErrUnknownSuperclass is reported when Superclass names a class that
	// is not registered.
	ErrUnknownSuperclass = errors.New("unknown superclass")

	// ErrMethodNotFound is reported when dispatch finds neither the
	// selector nor an unknown handler anywhere on the chain.
	ErrMethodNotFound = errors.New("method not found")

	// ErrNoNextReceiver is reported by Call.Next when the defining class
	// has no superclass, or no ancestor defines the same selector.
	ErrNoNextReceiver = errors.New("no next receiver")

	// ErrInvalidHandle is reported when operating on a destroyed object,
	// an unknown handle, or a destroyed class.
	ErrInvalidHandle = errors.New("invalid handle")

	// ErrDuplicateHandle is reported when Create or Rename would bind a
	// handle that is already bound to a live object.
	ErrDuplicateHandle = errors.New("handle already in use")

	// ErrConstructorFailure wraps any error raised inside a constructor
	// body. The original error remains reachable through errors.Is/As.
	ErrConstructorFailure = errors.New("constructor failed")

	// ErrUndefinedVariable is reported when reading an instance variable
	// that has never been set on the receiver.
	ErrUndefinedVariable = errors.New("undefined instance variable")
)
