package models

// Group is a named collection of user profiles that share expenses.
//
// Group is the owning side of the membership relation: persisting a group
// (or calling the store's explicit member operations) is what writes the
// join table. Members has set semantics, identified by id, with no
// ordering guarantees.
type Group struct {
	// ID is the generated identifier; zero until first persist.
	ID int64 `json:"id,omitempty"`

	// Name is the display name of the group.
	Name string `json:"name,omitempty"`

	// AdminID is a loose reference to the administrating user. It is not
	// backed by a foreign key; dangling values are permitted.
	AdminID *int64 `json:"adminId,omitempty"`

	// Members holds the group's user profiles as shallow references
	// (no Groups slice on each member).
	Members []UserProfile `json:"members,omitempty"`
}

// Equal reports entity equality by id: true iff both groups carry the
// same non-zero id. A group with a zero id only equals itself by
// reference.
func (g *Group) Equal(other *Group) bool {
	if g == other {
		return g != nil
	}
	if g == nil || other == nil {
		return false
	}
	return g.ID != 0 && g.ID == other.ID
}

// AddMember adds u to the member set, ignoring duplicates by id.
// This updates the in-memory owning side only; persistence happens when
// the group is saved.
func (g *Group) AddMember(u UserProfile) {
	if u.ID != 0 && g.HasMember(u.ID) {
		return
	}
	g.Members = append(g.Members, u)
}

// RemoveMember deletes the member with u's id from the member set.
func (g *Group) RemoveMember(u UserProfile) {
	for i := range g.Members {
		if g.Members[i].ID != 0 && g.Members[i].ID == u.ID {
			g.Members = append(g.Members[:i], g.Members[i+1:]...)
			return
		}
	}
}

// HasMember reports whether a member with the given id is in the set.
func (g *Group) HasMember(id int64) bool {
	for i := range g.Members {
		if g.Members[i].ID == id {
			return true
		}
	}
	return false
}

// LinkMember adds u to g's member set and g to u's group set, keeping
// both in-memory sides of the relation consistent. Only the owning
// (group) side is consulted when persisting.
func LinkMember(g *Group, u *UserProfile) {
	g.AddMember(UserProfile{ID: u.ID, Name: u.Name, Email: u.Email})
	u.AddGroup(Group{ID: g.ID, Name: g.Name, AdminID: g.AdminID})
}

// UnlinkMember removes u from g's member set and g from u's group set.
func UnlinkMember(g *Group, u *UserProfile) {
	g.RemoveMember(UserProfile{ID: u.ID})
	u.RemoveGroup(Group{ID: g.ID})
}

// GroupPatch carries the fields of a merge-patch request for a group.
// Nil fields are left untouched on merge; the member set is never patched
// this way.
type GroupPatch struct {
	ID      *int64  `json:"id"`
	Name    *string `json:"name"`
	AdminID *int64  `json:"adminId"`
}
