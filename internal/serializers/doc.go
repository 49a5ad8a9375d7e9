// Package serializers converts catalog entities to their API representations
// and decodes, validates and applies request payloads.
//
// Responses come in explicit shapes: Author, BookDetail and BookList. Input
// is read into a Payload first so that a missing key, an explicit null and a
// value can be told apart, then checked field by field. Failures are
// collected into a ValidationError keyed by field name.
package serializers
