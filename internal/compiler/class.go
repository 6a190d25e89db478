package compiler

import "lumen/internal/token"

// ClassRecord tracks one active `class` body so the driver can validate
// `this` and `super` usage and know whether a superclass init chain exists.
type ClassRecord struct {
	Name          token.Token
	HasSuperclass bool
	Enclosing     *ClassRecord
}
