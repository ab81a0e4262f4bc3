package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lavanya/expenseshare/internal/models"
	"github.com/lavanya/expenseshare/internal/storage"
)

// CreateUserProfile inserts a new profile and assigns its generated id.
func (s *SQLiteStore) CreateUserProfile(ctx context.Context, profile *models.UserProfile) error {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO user_profile (name, email, password_hash) VALUES (?, ?, ?)",
		nullString(profile.Name), nullString(profile.Email), nullString(profile.PasswordHash),
	)
	if err != nil {
		return fmt.Errorf("failed to insert user profile: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read generated id: %w", err)
	}
	profile.ID = id
	return nil
}

// GetUserProfile retrieves a profile by id. Group memberships are
// resolved fresh on every call (the inverse side is never cached); only
// the profile row itself goes through the cache.
func (s *SQLiteStore) GetUserProfile(ctx context.Context, id int64) (*models.UserProfile, error) {
	var profile models.UserProfile
	if cached, ok := s.profiles.Get(id); ok {
		profile = cached
	} else {
		var name, email, hash sql.NullString
		err := s.db.QueryRowContext(ctx,
			"SELECT id, name, email, password_hash FROM user_profile WHERE id = ?", id,
		).Scan(&profile.ID, &name, &email, &hash)
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user profile %d: %w", id, storage.ErrNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get user profile: %w", err)
		}
		profile.Name = name.String
		profile.Email = email.String
		profile.PasswordHash = hash.String
		s.profiles.Put(id, profile)
	}

	groups, err := s.userGroups(ctx, id)
	if err != nil {
		return nil, err
	}
	profile.Groups = groups
	return &profile, nil
}

// GetUserProfileByEmail retrieves a profile by its unique email address.
func (s *SQLiteStore) GetUserProfileByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	profile := &models.UserProfile{}
	var name, mail, hash sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, email, password_hash FROM user_profile WHERE email = ?", email,
	).Scan(&profile.ID, &name, &mail, &hash)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user profile with email %q: %w", email, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user profile by email: %w", err)
	}
	profile.Name = name.String
	profile.Email = mail.String
	profile.PasswordHash = hash.String
	return profile, nil
}

// userGroups loads the inverse side of the membership relation as shallow
// group references.
func (s *SQLiteStore) userGroups(ctx context.Context, userID int64) ([]models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT g.id, g.name, g.admin_id
		 FROM groups g
		 JOIN group_members gm ON gm.group_id = g.id
		 WHERE gm.user_id = ?
		 ORDER BY g.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get groups for user %d: %w", userID, err)
	}
	defer rows.Close()

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

// ListUserProfiles retrieves all profiles without resolving memberships.
func (s *SQLiteStore) ListUserProfiles(ctx context.Context, sort storage.Sort) ([]models.UserProfile, error) {
	query := "SELECT id, name, email, password_hash FROM user_profile" +
		orderClause(sort, map[string]string{"id": "id", "name": "name", "email": "email"})

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list user profiles: %w", err)
	}
	defer rows.Close()

	var profiles []models.UserProfile
	for rows.Next() {
		var p models.UserProfile
		var name, email, hash sql.NullString
		if err := rows.Scan(&p.ID, &name, &email, &hash); err != nil {
			return nil, fmt.Errorf("failed to scan user profile: %w", err)
		}
		p.Name = name.String
		p.Email = email.String
		p.PasswordHash = hash.String
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user profiles: %w", err)
	}
	return profiles, nil
}

// UpdateUserProfile replaces the profile's own columns. The Groups slice
// is the inverse side of the membership relation and is deliberately not
// persisted here; membership is written through the owning Group side
// only. Credentials are managed by the auth layer and left untouched.
func (s *SQLiteStore) UpdateUserProfile(ctx context.Context, profile *models.UserProfile) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE user_profile SET name = ?, email = ? WHERE id = ?",
		nullString(profile.Name), nullString(profile.Email), profile.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user profile: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	} else if n == 0 {
		return fmt.Errorf("user profile %d: %w", profile.ID, storage.ErrNotFound)
	}

	s.profiles.Invalidate(profile.ID)
	s.expenses.Clear() // expenses embed shallow user references
	return nil
}

// PatchUserProfile merges only the non-nil patch fields into the stored
// profile and returns the result.
func (s *SQLiteStore) PatchUserProfile(ctx context.Context, id int64, patch models.UserProfilePatch) (*models.UserProfile, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var name, email sql.NullString
	err = tx.QueryRowContext(ctx,
		"SELECT name, email FROM user_profile WHERE id = ?", id,
	).Scan(&name, &email)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user profile %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user profile for patch: %w", err)
	}

	if patch.Name != nil {
		name = nullString(*patch.Name)
	}
	if patch.Email != nil {
		email = nullString(*patch.Email)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE user_profile SET name = ?, email = ? WHERE id = ?", name, email, id,
	); err != nil {
		return nil, fmt.Errorf("failed to patch user profile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.profiles.Invalidate(id)
	s.expenses.Clear()
	return s.GetUserProfile(ctx, id)
}

// DeleteUserProfile removes a profile by id. Deleting an absent id is a
// no-op; join rows cascade, expense references null out.
func (s *SQLiteStore) DeleteUserProfile(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM user_profile WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete user profile: %w", err)
	}
	s.profiles.Invalidate(id)
	s.expenses.Clear()
	return nil
}

// UserProfileExists reports whether a profile row with the given id exists.
func (s *SQLiteStore) UserProfileExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM user_profile WHERE id = ?)", id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check user profile existence: %w", err)
	}
	return exists, nil
}

// CountUserProfiles returns the number of stored profiles.
func (s *SQLiteStore) CountUserProfiles(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM user_profile").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count user profiles: %w", err)
	}
	return count, nil
}
