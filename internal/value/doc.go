// Package value provides the values carried by query expressions.
//
// A filter compares a column against a Value; an explicit-rank order lists
// Values. Value is a sealed interface: only Null, String, Int, Float, Bool
// and List implement it, so compilers can switch over it exhaustively.
//
// This package imports nothing internal. Every other internal package may
// import value.
package value
