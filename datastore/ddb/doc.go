/*
Package ddb provides a DynamoDB implementation of the DataStore interface.

The DynamodbDataStore supports:
  - Single-table design patterns
  - Macro-based key expansion (e.g., "USER#{username}")
  - Lookups routed by access path: GetItem, GSI Query or Scan
  - Field-path filters evaluated over paginated scans
  - EntityType tagging for several models sharing one table
  - DynamoDB Local through an endpoint override

Key Features:

Macro Expansion:
Keys are built from templates whose macros name entity attributes:

	indexMap := map[string]string{
	    "PK":     "USER#{username}", // Becomes "USER#root"
	    "SK":     "PROFILE",         // Static value
	    "GSI1PK": "EMAIL#{email}",
	}

Access Paths:
GetBy(ctx, "username", "root") reads the item directly because PK and SK are
built from username alone. GetBy(ctx, "email", v) queries GSI1 because GSI1PK
is built from email. Any other path scans:

	store := ddb.NewWithClient[User](client, "users",
	    ddb.WithIndexMap(indexMap),
	    ddb.WithEntityType("User"),
	)
	root, err := store.GetBy(ctx, "username", "root")
	gmail, err := store.Filter(ctx, "email__iendswith", "@gmail.com")

Key attributes and EntityType are dropped from items before they are
unmarshalled or matched.
*/
package ddb
