// Package header provides the tooling for reading and writing email message
// headers needed to route a message: ordered header fields, a forgiving parser
// that keeps fields as they were found for output, and high-level accessors
// for the address, date, and encoded-word fields.
//
// The provided Parse() function unfolds continuation lines for reading while
// keeping the raw bytes of each field so the header writes back out the same
// way it came in.
package header
