package models

// UserProfile represents a person tracked by the application.
type UserProfile struct {
	// ID is the generated identifier; zero until first persist.
	ID int64 `json:"id,omitempty"`

	// Name is the display name of the user.
	Name string `json:"name,omitempty"`

	// Email is the user's unique email address, used for login.
	Email string `json:"email,omitempty"`

	// PasswordHash is the bcrypt hash backing authentication.
	// Never serialized.
	PasswordHash string `json:"-"`

	// Groups is the inverse side of the membership relation, populated
	// as shallow references (no Members) on eager reads. Mutating it
	// without persisting the owning Group side has no stored effect.
	Groups []Group `json:"groups,omitempty"`
}

// Equal reports entity equality by id: true iff both profiles carry the
// same non-zero id. A profile with a zero id only equals itself by
// reference.
func (u *UserProfile) Equal(other *UserProfile) bool {
	if u == other {
		return u != nil
	}
	if u == nil || other == nil {
		return false
	}
	return u.ID != 0 && u.ID == other.ID
}

// AddGroup adds g to the user's group set, ignoring duplicates by id.
// This updates the in-memory inverse side only.
func (u *UserProfile) AddGroup(g Group) {
	if g.ID != 0 && u.HasGroup(g.ID) {
		return
	}
	u.Groups = append(u.Groups, g)
}

// RemoveGroup deletes the group with g's id from the user's group set.
func (u *UserProfile) RemoveGroup(g Group) {
	for i := range u.Groups {
		if u.Groups[i].ID != 0 && u.Groups[i].ID == g.ID {
			u.Groups = append(u.Groups[:i], u.Groups[i+1:]...)
			return
		}
	}
}

// HasGroup reports whether a group with the given id is in the set.
func (u *UserProfile) HasGroup(id int64) bool {
	for i := range u.Groups {
		if u.Groups[i].ID == id {
			return true
		}
	}
	return false
}

// UserProfilePatch carries the fields of a merge-patch request for a user
// profile. Nil fields are left untouched on merge.
type UserProfilePatch struct {
	ID    *int64  `json:"id"`
	Name  *string `json:"name"`
	Email *string `json:"email"`
}
