package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/lavanya/expenseshare/internal/models"
	"github.com/lavanya/expenseshare/internal/storage"
)

var groupSortColumns = map[string]string{
	"id":      "id",
	"name":    "name",
	"adminId": "admin_id",
}

// CreateGroup inserts a new group, assigns its generated id, and writes
// one join row per member. The group side owns the join table.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO groups (name, admin_id) VALUES (?, ?)",
		nullString(group.Name), nullInt(group.AdminID),
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read generated id: %w", err)
	}
	group.ID = id

	if err := insertMembers(ctx, tx, id, group.Members); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// insertMembers writes one join row per distinct member id. Members with
// a zero id (never persisted) cannot be linked and are skipped.
func insertMembers(ctx context.Context, tx *sql.Tx, groupID int64, members []models.UserProfile) error {
	seen := make(map[int64]bool, len(members))
	for _, m := range members {
		if m.ID == 0 || seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO group_members (group_id, user_id) VALUES (?, ?)",
			groupID, m.ID,
		); err != nil {
			return fmt.Errorf("failed to insert group member: %w", err)
		}
	}
	return nil
}

// GetGroup retrieves a group by id without resolving members.
func (s *SQLiteStore) GetGroup(ctx context.Context, id int64) (*models.Group, error) {
	if cached, ok := s.groups.Get(id); ok {
		clone := cloneGroup(cached)
		return &clone, nil
	}

	group := models.Group{}
	var name sql.NullString
	var adminID sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, admin_id FROM groups WHERE id = ?", id,
	).Scan(&group.ID, &name, &adminID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("group %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	group.Name = name.String
	group.AdminID = intPtr(adminID)

	s.groups.Put(id, cloneGroup(group))
	return &group, nil
}

// cloneGroup copies a group including its AdminID pointer, so cached
// values never share pointers with values handed to callers. Cached
// groups carry no members.
func cloneGroup(g models.Group) models.Group {
	clone := models.Group{ID: g.ID, Name: g.Name}
	if g.AdminID != nil {
		admin := *g.AdminID
		clone.AdminID = &admin
	}
	return clone
}

// GetGroupWithMembers retrieves a group and its full member set in one
// joined query, the single-entity eager-load path.
func (s *SQLiteStore) GetGroupWithMembers(ctx context.Context, id int64) (*models.Group, error) {
	groups, err := s.queryGroupsWithMembers(ctx,
		"WHERE g.id = ?", []interface{}{id},
	)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("group %d: %w", id, storage.ErrNotFound)
	}
	return &groups[0], nil
}

// ListGroups retrieves all groups without resolving members.
func (s *SQLiteStore) ListGroups(ctx context.Context, sort storage.Sort) ([]models.Group, error) {
	query := "SELECT id, name, admin_id FROM groups" + orderClause(sort, groupSortColumns)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()
	return scanGroupRows(rows)
}

// ListGroupsPage retrieves one page of groups (ordered by id for stable
// paging) without members, plus the total element count.
func (s *SQLiteStore) ListGroupsPage(ctx context.Context, req models.PageRequest) (models.Page[models.Group], error) {
	page := models.Page[models.Group]{Page: req.Page, Size: req.Size}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM groups").Scan(&page.TotalElements); err != nil {
		return page, fmt.Errorf("failed to count groups: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, admin_id FROM groups ORDER BY id LIMIT ? OFFSET ?",
		req.Size, req.Page*req.Size,
	)
	if err != nil {
		return page, fmt.Errorf("failed to list groups page: %w", err)
	}
	defer rows.Close()

	content, err := scanGroupRows(rows)
	if err != nil {
		return page, err
	}
	page.Content = content
	return page, nil
}

func scanGroupRows(rows *sql.Rows) ([]models.Group, error) {
	var groups []models.Group
	for rows.Next() {
		var g models.Group
		var name sql.NullString
		var adminID sql.NullInt64
		if err := rows.Scan(&g.ID, &name, &adminID); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		g.Name = name.String
		g.AdminID = intPtr(adminID)
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}
	return groups, nil
}

// UpdateGroup replaces the group's own columns and its entire member set
// in one transaction.
func (s *SQLiteStore) UpdateGroup(ctx context.Context, group *models.Group) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE groups SET name = ?, admin_id = ? WHERE id = ?",
		nullString(group.Name), nullInt(group.AdminID), group.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	} else if n == 0 {
		return fmt.Errorf("group %d: %w", group.ID, storage.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM group_members WHERE group_id = ?", group.ID,
	); err != nil {
		return fmt.Errorf("failed to clear group members: %w", err)
	}
	if err := insertMembers(ctx, tx, group.ID, group.Members); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.groups.Invalidate(group.ID)
	s.expenses.Clear() // expenses embed shallow group references
	return nil
}

// PatchGroup merges only the non-nil patch fields into the stored group
// and returns the result with members resolved. The member set is never
// merge-patched.
func (s *SQLiteStore) PatchGroup(ctx context.Context, id int64, patch models.GroupPatch) (*models.Group, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var name sql.NullString
	var adminID sql.NullInt64
	err = tx.QueryRowContext(ctx,
		"SELECT name, admin_id FROM groups WHERE id = ?", id,
	).Scan(&name, &adminID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("group %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load group for patch: %w", err)
	}

	if patch.Name != nil {
		name = nullString(*patch.Name)
	}
	if patch.AdminID != nil {
		adminID = sql.NullInt64{Int64: *patch.AdminID, Valid: true}
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE groups SET name = ?, admin_id = ? WHERE id = ?", name, adminID, id,
	); err != nil {
		return nil, fmt.Errorf("failed to patch group: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.groups.Invalidate(id)
	s.expenses.Clear()
	return s.GetGroupWithMembers(ctx, id)
}

// DeleteGroup removes a group by id. Deleting an absent id is a no-op;
// join rows cascade, expense references null out.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM groups WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	s.groups.Invalidate(id)
	s.expenses.Clear()
	return nil
}

// GroupExists reports whether a group row with the given id exists.
func (s *SQLiteStore) GroupExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM groups WHERE id = ?)", id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check group existence: %w", err)
	}
	return exists, nil
}

// CountGroups returns the number of stored groups.
func (s *SQLiteStore) CountGroups(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM groups").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count groups: %w", err)
	}
	return count, nil
}

// AddGroupMember inserts a single membership join row through the owning
// side. Re-adding an existing pairing is a no-op; a nonexistent group or
// user surfaces as a constraint violation.
func (s *SQLiteStore) AddGroupMember(ctx context.Context, groupID, userID int64) error {
	if _, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO group_members (group_id, user_id) VALUES (?, ?)",
		groupID, userID,
	); err != nil {
		return fmt.Errorf("failed to add group member: %w", err)
	}
	return nil
}

// RemoveGroupMember deletes a single membership join row. Idempotent.
func (s *SQLiteStore) RemoveGroupMember(ctx context.Context, groupID, userID int64) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM group_members WHERE group_id = ? AND user_id = ?",
		groupID, userID,
	); err != nil {
		return fmt.Errorf("failed to remove group member: %w", err)
	}
	return nil
}

// FetchGroupMembers resolves the member sets of all input groups in a
// single IN-list join, then restores the caller-supplied ordering. The
// join returns rows in arbitrary order, so the original positional index
// of each group id is recorded up front and the joined result is sorted
// by that index before returning.
//
// A group deleted between the caller's initial load and this join is
// simply absent from the joined rows and silently dropped from the
// result: the two statements run without a shared snapshot by design, so
// this is ordinary read skew under the store's default isolation, not an
// error.
func (s *SQLiteStore) FetchGroupMembers(ctx context.Context, groups []models.Group) ([]models.Group, error) {
	if len(groups) == 0 {
		return []models.Group{}, nil
	}

	order := make(map[int64]int, len(groups))
	args := make([]interface{}, len(groups))
	for i, g := range groups {
		order[g.ID] = i
		args[i] = g.ID
	}

	result, err := s.queryGroupsWithMembers(ctx,
		"WHERE g.id IN (?"+placeholders(len(groups)-1)+")", args,
	)
	if err != nil {
		return nil, err
	}

	sort.Slice(result, func(i, j int) bool {
		return order[result[i].ID] < order[result[j].ID]
	})
	return result, nil
}

// FetchGroupMembersPage applies FetchGroupMembers to a page's content,
// preserving the total-element count and paging metadata.
func (s *SQLiteStore) FetchGroupMembersPage(ctx context.Context, page models.Page[models.Group]) (models.Page[models.Group], error) {
	content, err := s.FetchGroupMembers(ctx, page.Content)
	if err != nil {
		return page, err
	}
	return models.Page[models.Group]{
		Content:       content,
		TotalElements: page.TotalElements,
		Page:          page.Page,
		Size:          page.Size,
	}, nil
}

// queryGroupsWithMembers runs the fetch-join of groups to their member
// sets and assembles one Group per distinct group row, in join-result
// order. Members are shallow references.
func (s *SQLiteStore) queryGroupsWithMembers(ctx context.Context, where string, args []interface{}) ([]models.Group, error) {
	query := `SELECT g.id, g.name, g.admin_id, u.id, u.name, u.email
		 FROM groups g
		 LEFT JOIN group_members gm ON gm.group_id = g.id
		 LEFT JOIN user_profile u ON u.id = gm.user_id
		 ` + where + `
		 ORDER BY g.id, u.id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch groups with members: %w", err)
	}
	defer rows.Close()

	var result []models.Group
	byID := make(map[int64]int)
	for rows.Next() {
		var groupID int64
		var groupName sql.NullString
		var adminID, memberID sql.NullInt64
		var memberName, memberEmail sql.NullString
		if err := rows.Scan(&groupID, &groupName, &adminID, &memberID, &memberName, &memberEmail); err != nil {
			return nil, fmt.Errorf("failed to scan joined group row: %w", err)
		}

		idx, ok := byID[groupID]
		if !ok {
			result = append(result, models.Group{
				ID:      groupID,
				Name:    groupName.String,
				AdminID: intPtr(adminID),
			})
			idx = len(result) - 1
			byID[groupID] = idx
		}

		if memberID.Valid {
			result[idx].Members = append(result[idx].Members, models.UserProfile{
				ID:    memberID.Int64,
				Name:  memberName.String,
				Email: memberEmail.String,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate joined group rows: %w", err)
	}
	return result, nil
}
