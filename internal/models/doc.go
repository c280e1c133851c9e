// Package models defines the core domain models for the tally engine.
//
// # Models
//
//   - WeightClassification: a named weight/product bucket within a category
//   - AllocationView: required vs. logged bag counts for one classification in a session
//   - TallyLogEntry: one logged bag/unit, immutable once created
//   - TallySession, Customer, Plant: the session a tally runs against
//   - Preferences: per-user classification order
//
// # Design Principles
//
// 1. **Integer IDs**: identifiers mirror the upstream API (integer primary keys)
// 2. **Explicit variants**: allocation rows are tagged full or requirement-only, never inferred
// 3. **No pointers between models**: relationships are expressed with IDs
package models
