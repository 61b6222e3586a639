// model/record.go
package model

// RawRecord is an opaque field-name to value mapping as returned by the
// record store. Ownership transfers to the masking engine; the fetcher does
// not retain it.
type RawRecord map[string]interface{}

// MaskedRecord is the transformed output of the masking engine. Fields whose
// resolved rule is HIDDEN are omitted entirely, not nulled.
type MaskedRecord map[string]interface{}

// County is one organizational scope in the county directory.
type County struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Region string `json:"region,omitempty"`
	Active bool   `json:"active"`
}
