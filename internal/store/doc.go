// Package store provides SQLite-backed storage for model records.
//
// A DatabaseSource runs a source.Source against one model's table: the
// source's filters, orders and pagination are compiled by querysql and
// executed here. Only compiled fragments reach the database; values are
// always bound as parameters.
//
// # Critical Patterns
//
// Deterministic Results
//   - Every SELECT ends its ORDER BY with the model key, ascending
//   - Pages never overlap or skip rows that tie on the requested order
//
// MySQL Compatibility
//   - FIND_IN_SET, FIELD, REGEXP and RAND are registered on every connection
//   - Fragments compiled for either dialect execute unchanged
//
// Storage of Values
//   - Multiple-valued properties are stored comma-joined
//   - Object properties are stored as JSON
//   - Translatable properties occupy one column per language
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//   - A single connection, so that user-defined functions and pragmas
//     apply to every statement
package store
