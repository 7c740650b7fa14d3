/*
Package render evaluates HCL expressions and templates against a
quickcontext registry.

Registered names appear under the quick namespace:

	${quick.site_name}                           // plain value
	${quick.user.root.email}                     // record whose lookup field is "root"
	${quick.user["root@example.com"].username}   // index form for non-identifier values
	${length(quick.user.filter__active.true)}    // collection from lookup_field__active == "true"

Only traversals that appear literally in the source are resolved. A missing
record evaluates to null, so templates guard optional records with a
conditional:

	%{ if quick.user.ghost != null }${quick.user.ghost.email}%{ else }unknown%{ endif }

Interpolating null into surrounding text is an error; a template made of a
single null interpolation renders as the empty string.
*/
package render
