// Package models defines the JSON shapes exchanged with the NeuroFit REST API.
//
// Field names follow the server's snake_case wire format. Optional profile
// fields are pointers so partial PATCH bodies omit what the caller left unset.
package models
