// Package yaml wraps [github.com/goccy/go-yaml] with the decoder and encoder
// options used for settings files, JSON schema validation, schema
// generation, and errors annotated with the offending source lines.
package yaml
