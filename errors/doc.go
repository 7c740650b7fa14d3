/*
Package errors provides semantic error types for quickcontext.

The package defines the failure modes of the registry and of the datastore
layer behind it. Each typed error matches a sentinel through errors.Is(), so
callers can branch on the kind without inspecting messages.

Common Errors:

	var (
	    ErrNotFound        = errors.New("record not found")
	    ErrMultipleResults = errors.New("multiple records returned")
	    ErrDuplicateEntry  = errors.New("entry already registered")
	    ErrEntryNotFound   = errors.New("entry not registered")
	    ErrInvalidInput    = errors.New("invalid input")
	    ErrNoIndexMap      = errors.New("no index map found for type")
	)

Usage:

	if err := reg.Register("user", entry); err != nil {
	    if errors.IsDuplicateEntry(err) {
	        // pick another name or call Update
	    }
	    return err
	}

	user, err := store.GetBy(ctx, "username", "root")
	if errors.IsNotFound(err) {
	    // no such user
	}

Registration errors are meant to surface at startup. Record-not-found is
swallowed by ModelEntry.Get and turned into a nil result; every other
datastore error reaches the caller unchanged.
*/
package errors
