// Package models defines the persisted domain entities for expenseshare.
//
// # Entities
//
//   - UserProfile: a person who can belong to groups and own expenses
//   - Group: a named collection of user profiles sharing expenses
//   - Expense: a single expense, optionally linked to a user and a group
//
// # Identity
//
// Every entity carries an int64 id generated by the database on first
// persist. A zero id means "not yet persisted". Equality between entities
// is defined solely by id: two instances are equal iff both carry the same
// non-zero id. An unpersisted entity is never equal to another instance,
// even one with identical field values; only reference identity holds.
//
// # Relationships
//
// Group membership is a many-to-many relation with Group as the owning
// side: only group-side persistence writes the join table. The Groups
// slice on UserProfile is the inverse side and is read-only as far as
// storage is concerned. LinkMember and UnlinkMember keep both in-memory
// sides consistent on add/remove; updating only one side is a caller bug
// the model does not prevent.
//
// # Serialization
//
// Nested entities are always shallow: a Group's members carry no Groups
// slice of their own, and an Expense's user and group references carry no
// collections. Cyclic JSON is prevented structurally rather than by codec
// configuration.
package models
