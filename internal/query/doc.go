// Package query provides the backend-agnostic query expression model.
//
// A query is described by three independent trees:
//
//	filters     Node = *Filter | *Group     (WHERE)
//	orders      *Order                      (ORDER BY)
//	pagination  *Pagination                 (LIMIT)
//
// Node is a sealed interface: only *Filter and *Group implement it, so
// backend compilers (see package querysql) can switch over it exhaustively.
//
// VALIDATION:
//
// Setters validate immediately and return an error matching
// ErrInvalidArgument (unknown operator, function, conjunction or mode, empty
// property, negative page). Structural completeness is checked later, when a
// backend compiles the expression: an Order in "values" mode without values
// is legal to build but fails to compile with ErrDomain.
//
// DATA:
//
// Every expression accepts a Data map through SetData. Only recognised keys
// are applied; unknown keys are ignored. The legacy keys "val", "operand"
// and "string" are still honoured but reported through DeprecationHandler.
//
// CLONING:
//
// Clone returns a deep copy. Cloning a Group clones every descendant, so a
// cloned tree shares no mutable state with its original.
package query
