package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/lavanya/expenseshare/internal/models"
	"github.com/lavanya/expenseshare/internal/storage"
)

func createProfile(t *testing.T, store *SQLiteStore, name, email string) *models.UserProfile {
	t.Helper()
	profile := &models.UserProfile{Name: name, Email: email}
	if err := store.CreateUserProfile(context.Background(), profile); err != nil {
		t.Fatalf("CreateUserProfile(%s) failed: %v", name, err)
	}
	return profile
}

func createGroup(t *testing.T, store *SQLiteStore, name string, members ...*models.UserProfile) *models.Group {
	t.Helper()
	group := &models.Group{Name: name}
	for _, m := range members {
		group.AddMember(models.UserProfile{ID: m.ID})
	}
	if err := store.CreateGroup(context.Background(), group); err != nil {
		t.Fatalf("CreateGroup(%s) failed: %v", name, err)
	}
	return group
}

func TestGroupStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("create with members writes join rows", func(t *testing.T) {
		alice := createProfile(t, store, "Alice", "alice@groups.test")
		bob := createProfile(t, store, "Bob", "bob@groups.test")
		group := createGroup(t, store, "Flatmates", alice, bob)

		retrieved, err := store.GetGroupWithMembers(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroupWithMembers failed: %v", err)
		}
		if len(retrieved.Members) != 2 {
			t.Fatalf("expected 2 members, got %d", len(retrieved.Members))
		}
		if !retrieved.HasMember(alice.ID) || !retrieved.HasMember(bob.ID) {
			t.Error("expected both created members in the set")
		}
		for _, m := range retrieved.Members {
			if m.Groups != nil {
				t.Error("expected shallow member references without nested groups")
			}
		}
	})

	t.Run("plain get leaves members unresolved", func(t *testing.T) {
		alice := createProfile(t, store, "Ann", "ann@groups.test")
		group := createGroup(t, store, "Lazy", alice)

		retrieved, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if retrieved.Members != nil {
			t.Errorf("expected unresolved members, got %d entries", len(retrieved.Members))
		}
	})

	t.Run("get absent returns ErrNotFound", func(t *testing.T) {
		if _, err := store.GetGroup(ctx, 999999); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetGroup: expected ErrNotFound, got %v", err)
		}
		if _, err := store.GetGroupWithMembers(ctx, 999999); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetGroupWithMembers: expected ErrNotFound, got %v", err)
		}
	})

	t.Run("update replaces the member set", func(t *testing.T) {
		alice := createProfile(t, store, "Ada", "ada@groups.test")
		bob := createProfile(t, store, "Ben", "ben@groups.test")
		group := createGroup(t, store, "Rotating", alice)

		group.Members = []models.UserProfile{{ID: bob.ID}}
		group.Name = "Rotated"
		if err := store.UpdateGroup(ctx, group); err != nil {
			t.Fatalf("UpdateGroup failed: %v", err)
		}

		retrieved, err := store.GetGroupWithMembers(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroupWithMembers failed: %v", err)
		}
		if retrieved.Name != "Rotated" {
			t.Errorf("Name = %q, want %q", retrieved.Name, "Rotated")
		}
		if retrieved.HasMember(alice.ID) || !retrieved.HasMember(bob.ID) {
			t.Errorf("expected member set replaced, got %+v", retrieved.Members)
		}
	})

	t.Run("patch preserves unsupplied fields and members", func(t *testing.T) {
		member := createProfile(t, store, "Kept", "kept@groups.test")
		group := &models.Group{Name: "Old", AdminID: int64Ptr(3)}
		group.AddMember(models.UserProfile{ID: member.ID})
		if err := store.CreateGroup(ctx, group); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}

		patched, err := store.PatchGroup(ctx, group.ID, models.GroupPatch{Name: strPtr("NewName")})
		if err != nil {
			t.Fatalf("PatchGroup failed: %v", err)
		}
		if patched.Name != "NewName" {
			t.Errorf("Name = %q, want %q", patched.Name, "NewName")
		}
		if patched.AdminID == nil || *patched.AdminID != 3 {
			t.Errorf("AdminID = %v, want 3 preserved", patched.AdminID)
		}
		if !patched.HasMember(member.ID) {
			t.Error("expected member set untouched by patch")
		}
	})

	t.Run("delete cascades join rows and is idempotent", func(t *testing.T) {
		member := createProfile(t, store, "Gone", "gone@groups.test")
		group := createGroup(t, store, "Doomed", member)

		before, _ := store.CountGroups(ctx)
		if err := store.DeleteGroup(ctx, group.ID); err != nil {
			t.Fatalf("DeleteGroup failed: %v", err)
		}
		if err := store.DeleteGroup(ctx, group.ID); err != nil {
			t.Fatalf("repeated DeleteGroup failed: %v", err)
		}
		after, _ := store.CountGroups(ctx)
		if after != before-1 {
			t.Errorf("count = %d after two deletes of one group, want %d", after, before-1)
		}

		// The member survives with no dangling membership.
		profile, err := store.GetUserProfile(ctx, member.ID)
		if err != nil {
			t.Fatalf("GetUserProfile failed: %v", err)
		}
		if profile.HasGroup(group.ID) {
			t.Error("expected membership to cascade away with the group")
		}
	})
}

func TestFetchGroupMembers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := createProfile(t, store, "Alice", "alice@fetch.test")
	bob := createProfile(t, store, "Bob", "bob@fetch.test")

	// Insertion order g1 < g2 < g3 by id; the join's internal ORDER BY id
	// would return them in that order regardless of input.
	g1 := createGroup(t, store, "First", alice)
	g2 := createGroup(t, store, "Second", alice, bob)
	g3 := createGroup(t, store, "Third")

	t.Run("restores caller-supplied order", func(t *testing.T) {
		input := []models.Group{*g3, *g1, *g2}
		result, err := store.FetchGroupMembers(ctx, input)
		if err != nil {
			t.Fatalf("FetchGroupMembers failed: %v", err)
		}
		if len(result) != 3 {
			t.Fatalf("expected 3 groups, got %d", len(result))
		}
		for i, want := range []int64{g3.ID, g1.ID, g2.ID} {
			if result[i].ID != want {
				t.Errorf("result[%d].ID = %d, want %d", i, result[i].ID, want)
			}
		}
	})

	t.Run("resolves the member sets", func(t *testing.T) {
		result, err := store.FetchGroupMembers(ctx, []models.Group{*g1, *g2, *g3})
		if err != nil {
			t.Fatalf("FetchGroupMembers failed: %v", err)
		}
		if len(result[0].Members) != 1 || !result[0].HasMember(alice.ID) {
			t.Errorf("g1 members = %+v, want just Alice", result[0].Members)
		}
		if len(result[1].Members) != 2 {
			t.Errorf("g2 members = %+v, want Alice and Bob", result[1].Members)
		}
		if len(result[2].Members) != 0 {
			t.Errorf("g3 members = %+v, want none", result[2].Members)
		}
	})

	t.Run("empty input short-circuits", func(t *testing.T) {
		result, err := store.FetchGroupMembers(ctx, nil)
		if err != nil {
			t.Fatalf("FetchGroupMembers failed: %v", err)
		}
		if len(result) != 0 {
			t.Errorf("expected empty result, got %d groups", len(result))
		}
	})

	t.Run("concurrently deleted group is dropped silently", func(t *testing.T) {
		doomed := createGroup(t, store, "Doomed", bob)
		input := []models.Group{*g1, *doomed, *g2}

		// Simulates a delete landing between the initial load and the join.
		if err := store.DeleteGroup(ctx, doomed.ID); err != nil {
			t.Fatalf("DeleteGroup failed: %v", err)
		}

		result, err := store.FetchGroupMembers(ctx, input)
		if err != nil {
			t.Fatalf("FetchGroupMembers failed: %v", err)
		}
		if len(result) != 2 {
			t.Fatalf("expected 2 groups after concurrent delete, got %d", len(result))
		}
		if result[0].ID != g1.ID || result[1].ID != g2.ID {
			t.Errorf("expected [g1, g2] with input order preserved, got [%d, %d]", result[0].ID, result[1].ID)
		}
	})
}

func TestFetchGroupMembersPage(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	member := createProfile(t, store, "Paged", "paged@fetch.test")
	for _, name := range []string{"A", "B", "C"} {
		createGroup(t, store, name, member)
	}

	page, err := store.ListGroupsPage(ctx, models.PageRequest{Page: 0, Size: 2})
	if err != nil {
		t.Fatalf("ListGroupsPage failed: %v", err)
	}
	if page.TotalElements != 3 {
		t.Errorf("TotalElements = %d, want 3", page.TotalElements)
	}
	if len(page.Content) != 2 {
		t.Fatalf("page content = %d groups, want 2", len(page.Content))
	}
	if page.Content[0].Members != nil {
		t.Error("expected paged load without members")
	}

	resolved, err := store.FetchGroupMembersPage(ctx, page)
	if err != nil {
		t.Fatalf("FetchGroupMembersPage failed: %v", err)
	}
	if resolved.TotalElements != page.TotalElements || resolved.Page != page.Page || resolved.Size != page.Size {
		t.Error("expected paging metadata preserved through the member fetch")
	}
	if len(resolved.Content) != 2 {
		t.Fatalf("resolved content = %d groups, want 2", len(resolved.Content))
	}
	for i, g := range resolved.Content {
		if g.ID != page.Content[i].ID {
			t.Errorf("content order changed at %d: got %d, want %d", i, g.ID, page.Content[i].ID)
		}
		if !g.HasMember(member.ID) {
			t.Errorf("group %d missing resolved member", g.ID)
		}
	}

	secondPage, err := store.ListGroupsPage(ctx, models.PageRequest{Page: 1, Size: 2})
	if err != nil {
		t.Fatalf("ListGroupsPage failed: %v", err)
	}
	if len(secondPage.Content) != 1 {
		t.Errorf("second page = %d groups, want 1", len(secondPage.Content))
	}
}

func TestBidirectionalMembership(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("owning-side add shows up on both read paths", func(t *testing.T) {
		user := createProfile(t, store, "Uma", "uma@bidi.test")
		group := createGroup(t, store, "Climbers")

		if err := store.AddGroupMember(ctx, group.ID, user.ID); err != nil {
			t.Fatalf("AddGroupMember failed: %v", err)
		}
		// Re-adding the same pairing is a no-op.
		if err := store.AddGroupMember(ctx, group.ID, user.ID); err != nil {
			t.Fatalf("repeated AddGroupMember failed: %v", err)
		}

		fromGroup, err := store.GetGroupWithMembers(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroupWithMembers failed: %v", err)
		}
		if len(fromGroup.Members) != 1 || !fromGroup.HasMember(user.ID) {
			t.Errorf("group members = %+v, want exactly Uma", fromGroup.Members)
		}

		fromUser, err := store.GetUserProfile(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUserProfile failed: %v", err)
		}
		if !fromUser.HasGroup(group.ID) {
			t.Error("expected membership visible from the user side")
		}
	})

	t.Run("persisting the owning side from the inverse mutation", func(t *testing.T) {
		user := createProfile(t, store, "Vik", "vik@bidi.test")
		group := createGroup(t, store, "Runners")

		// Keep both in-memory sides consistent, then persist the owner.
		models.LinkMember(group, user)
		if err := store.UpdateGroup(ctx, group); err != nil {
			t.Fatalf("UpdateGroup failed: %v", err)
		}

		fromUser, err := store.GetUserProfile(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUserProfile failed: %v", err)
		}
		if !fromUser.HasGroup(group.ID) {
			t.Error("expected membership stored via the owning side")
		}
	})

	t.Run("removal clears both read paths", func(t *testing.T) {
		user := createProfile(t, store, "Wes", "wes@bidi.test")
		group := createGroup(t, store, "Swimmers", user)

		if err := store.RemoveGroupMember(ctx, group.ID, user.ID); err != nil {
			t.Fatalf("RemoveGroupMember failed: %v", err)
		}

		fromGroup, err := store.GetGroupWithMembers(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroupWithMembers failed: %v", err)
		}
		if fromGroup.HasMember(user.ID) {
			t.Error("expected member gone from the group side")
		}

		fromUser, err := store.GetUserProfile(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUserProfile failed: %v", err)
		}
		if fromUser.HasGroup(group.ID) {
			t.Error("expected membership gone from the user side")
		}
	})
}

func TestGroupCacheAliasing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group := &models.Group{Name: "Trip", AdminID: int64Ptr(3)}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	first, err := store.GetGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	second, err := store.GetGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}

	*first.AdminID = 99
	if *second.AdminID != 3 {
		t.Errorf("expected independent adminId pointers, got %d", *second.AdminID)
	}

	third, err := store.GetGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if *third.AdminID != 3 {
		t.Errorf("expected cached adminId untouched by caller writes, got %d", *third.AdminID)
	}
}
