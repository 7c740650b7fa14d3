/*
Package storagemodels defines the data structures shared by quickcontext's
datastore backends.

FieldPath:
Queries address attributes with the double-underscore convention. Segments
walk into nested map attributes; an optional trailing segment picks the
comparison:

	username                  // username == value
	username__icontains       // case-insensitive substring
	profile__city__startswith // nested map attribute, prefix match
	score__gte                // numeric comparison
	tags__contains            // set or list membership
	deleted_at__isnull        // value is "true" or "false"

Supported lookups: exact, iexact, contains, icontains, startswith,
istartswith, endswith, iendswith, gt, gte, lt, lte, in, isnull.

Matching operates on DynamoDB attribute values, the representation both
backends share:

	path, err := ParseFieldPath("email__iendswith")
	ok, err := path.Match(item, "@example.com")

A path that traverses into a scalar attribute is a validation error rather
than a non-match, so a malformed filter expression reaches the caller.

Record:
A schemaless map used for models declared at runtime.
*/
package storagemodels
