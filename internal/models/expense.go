package models

// Expense is a single tracked expense.
//
// Amount is deliberately stored as free text: the schema this application
// was generated from enforces no numeric type, currency, or precision on
// it, and callers must not assume the value parses as a number.
type Expense struct {
	// ID is the generated identifier; zero until first persist.
	ID int64 `json:"id,omitempty"`

	// Amount is the expense amount as an unvalidated string.
	Amount string `json:"amount,omitempty"`

	// User is an optional shallow reference to the owning user profile.
	User *UserProfile `json:"user,omitempty"`

	// Group is an optional shallow reference to the group the expense
	// belongs to.
	Group *Group `json:"group,omitempty"`
}

// Equal reports entity equality by id: true iff both expenses carry the
// same non-zero id. An expense with a zero id only equals itself by
// reference.
func (e *Expense) Equal(other *Expense) bool {
	if e == other {
		return e != nil
	}
	if e == nil || other == nil {
		return false
	}
	return e.ID != 0 && e.ID == other.ID
}

// ExpensePatch carries the fields of a merge-patch request for an
// expense. Nil fields are left untouched on merge.
type ExpensePatch struct {
	ID     *int64  `json:"id"`
	Amount *string `json:"amount"`
}
