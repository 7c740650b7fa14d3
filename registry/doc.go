/*
Package registry associates Go types with DynamoDB key patterns.

Index maps hold key templates whose {Field} macros are filled from entity
attributes:

	registry.RegisterIndexMap[User](map[string]string{
	    "PK":     "USER#{username}",
	    "SK":     "USER#{username}",
	    "GSI1PK": "EMAIL#{email}",
	})

A ddb datastore for User uses this map unless it was given one explicitly.
The registry is thread-safe and should be populated during initialization,
typically in init() functions.
*/
package registry
