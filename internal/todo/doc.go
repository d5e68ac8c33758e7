// Package todo defines tasks, the task collection, and the stored payload format.
//
// The payload stored under the storage key is a JSON array of tasks:
//
//	[
//	  {
//	    "id": 1718000000000,
//	    "text": "Buy milk",
//	    "category": "Personal",
//	    "completed": false
//	  }
//	]
//
// # Collection
//
// Collection is a value type. Append, Remove, Toggle and Replace return a new
// collection and never write to the receiver's backing array, so a snapshot
// handed to a renderer stays stable while the store moves on.
//
// # Validation
//
// Decode validates a payload in two passes:
//
// 1. JSON Schema validation against the embedded tasks.schema.json
//   - type checking, required fields, category enum, non-empty text
//
// 2. Collection checks that the schema cannot express
//   - unique ids
//   - text that is only whitespace
//
// # Categories
//
//   - "Personal"
//   - "Work"
package todo
