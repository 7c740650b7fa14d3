/*
Package quickcontext exposes datastore-backed lookup handles to templates under
a fixed namespace, so a template can write quick.user.root instead of calling
into a repository.

A Registry maps names to values. A value is either opaque (a site name, a
feature flag) or a ModelEntry bound to a typed datastore and a lookup field:

	reg := quickcontext.NewRegistry()

	users := mock.New[User]()
	quickcontext.RegisterModel(reg, "user", users, "username")
	reg.Register("site_name", "Example")

	// Register never overwrites; Update only replaces existing names.
	err := reg.Register("site_name", "Other")    // DuplicateEntryError
	err = reg.Update("site_name", "Other")        // ok
	err = reg.Update("missing", 1)                // EntryNotFoundError

Lookups on a ModelEntry:

	entry, _ := quickcontext.Model[User](reg, "user")

	root, err := entry.Get(ctx, "root")          // nil, nil when absent
	pending := entry.Filter("icontains")         // username__icontains
	matches, err := pending.Match(ctx, "oo")

A PendingFilter is an immutable value, so concurrent and repeated lookups on
one entry never share state.

Templates reach the same lookups through attribute paths, resolved by
Registry.ResolvePath and the render package:

	${quick.user.root.email}
	${length(quick.user.filter__icontains.oo)}

Names() returns the registered names in registration order.
*/
package quickcontext
