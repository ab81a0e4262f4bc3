// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/lavanya/expenseshare/internal/models"
)

// ErrNotFound is returned by single-entity reads and updates when no row
// with the requested id exists.
var ErrNotFound = errors.New("entity not found")

// Sort names a field and direction for list queries. The zero value means
// insertion order. Fields are entity-level JSON names; implementations
// ignore fields they do not recognize.
type Sort struct {
	Field string
	Desc  bool
}

// Store defines the interface for expense-tracking storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the resource layer.
//
// Every mutating operation runs in its own all-or-nothing transaction.
// Delete operations are idempotent: deleting an absent id is a no-op.
type Store interface {
	// CreateUserProfile persists a new profile and assigns its id.
	CreateUserProfile(ctx context.Context, profile *models.UserProfile) error

	// GetUserProfile retrieves a profile by id with its group memberships
	// resolved as shallow references. Returns ErrNotFound when absent.
	GetUserProfile(ctx context.Context, id int64) (*models.UserProfile, error)

	// GetUserProfileByEmail retrieves a profile by its unique email.
	// Returns ErrNotFound when absent.
	GetUserProfileByEmail(ctx context.Context, email string) (*models.UserProfile, error)

	// ListUserProfiles retrieves all profiles without resolving group
	// memberships.
	ListUserProfiles(ctx context.Context, sort Sort) ([]models.UserProfile, error)

	// UpdateUserProfile replaces the profile's own columns. The Groups
	// slice is the inverse side of the membership relation and is NOT
	// persisted here; membership changes go through the owning Group
	// side.
	UpdateUserProfile(ctx context.Context, profile *models.UserProfile) error

	// PatchUserProfile merges only the non-nil patch fields into the
	// stored profile and returns the result.
	PatchUserProfile(ctx context.Context, id int64, patch models.UserProfilePatch) (*models.UserProfile, error)

	DeleteUserProfile(ctx context.Context, id int64) error
	UserProfileExists(ctx context.Context, id int64) (bool, error)
	CountUserProfiles(ctx context.Context) (int64, error)

	// CreateGroup persists a new group, assigns its id, and writes one
	// join row per member.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group by id without resolving members.
	GetGroup(ctx context.Context, id int64) (*models.Group, error)

	// GetGroupWithMembers retrieves a group and its member set in a
	// single joined query. Returns ErrNotFound when absent.
	GetGroupWithMembers(ctx context.Context, id int64) (*models.Group, error)

	// ListGroups retrieves all groups without resolving members.
	ListGroups(ctx context.Context, sort Sort) ([]models.Group, error)

	// ListGroupsPage retrieves one page of groups without members, along
	// with the total element count.
	ListGroupsPage(ctx context.Context, req models.PageRequest) (models.Page[models.Group], error)

	// UpdateGroup replaces the group's own columns and its entire member
	// set (the owning side of the relation).
	UpdateGroup(ctx context.Context, group *models.Group) error

	// PatchGroup merges only the non-nil patch fields into the stored
	// group and returns the result. The member set is left untouched.
	PatchGroup(ctx context.Context, id int64, patch models.GroupPatch) (*models.Group, error)

	DeleteGroup(ctx context.Context, id int64) error
	GroupExists(ctx context.Context, id int64) (bool, error)
	CountGroups(ctx context.Context) (int64, error)

	// AddGroupMember inserts a single membership join row. Owning-side
	// operation; inserting an existing pairing is a no-op.
	AddGroupMember(ctx context.Context, groupID, userID int64) error

	// RemoveGroupMember deletes a single membership join row. Idempotent.
	RemoveGroupMember(ctx context.Context, groupID, userID int64) error

	// FetchGroupMembers resolves the member sets of all input groups in
	// one joined query, returning the groups in the caller-supplied
	// order. An empty input short-circuits without touching the
	// database.
	FetchGroupMembers(ctx context.Context, groups []models.Group) ([]models.Group, error)

	// FetchGroupMembersPage is FetchGroupMembers over a page's content;
	// the page's total-element count and paging metadata are preserved.
	FetchGroupMembersPage(ctx context.Context, page models.Page[models.Group]) (models.Page[models.Group], error)

	// CreateExpense persists a new expense and assigns its id.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense by id with shallow user and group
	// references resolved. Returns ErrNotFound when absent.
	GetExpense(ctx context.Context, id int64) (*models.Expense, error)

	// ListExpenses retrieves all expenses with shallow references
	// resolved.
	ListExpenses(ctx context.Context, sort Sort) ([]models.Expense, error)

	// UpdateExpense replaces all fields of an existing expense.
	UpdateExpense(ctx context.Context, expense *models.Expense) error

	// PatchExpense merges only the non-nil patch fields into the stored
	// expense and returns the result.
	PatchExpense(ctx context.Context, id int64, patch models.ExpensePatch) (*models.Expense, error)

	DeleteExpense(ctx context.Context, id int64) error
	ExpenseExists(ctx context.Context, id int64) (bool, error)
	CountExpenses(ctx context.Context) (int64, error)

	// Close releases any resources held by the store.
	Close() error
}
