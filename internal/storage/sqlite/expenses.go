package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lavanya/expenseshare/internal/models"
	"github.com/lavanya/expenseshare/internal/storage"
)

var expenseSortColumns = map[string]string{
	"id":     "e.id",
	"amount": "e.amount",
}

// CreateExpense inserts a new expense and assigns its generated id.
// The amount is stored verbatim; nothing validates that it is numeric.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	var userID, groupID sql.NullInt64
	if expense.User != nil {
		userID = refID(expense.User.ID)
	}
	if expense.Group != nil {
		groupID = refID(expense.Group.ID)
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO expense (amount, user_id, group_id) VALUES (?, ?, ?)",
		nullString(expense.Amount), userID, groupID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read generated id: %w", err)
	}
	expense.ID = id
	return nil
}

const expenseSelect = `SELECT e.id, e.amount, u.id, u.name, u.email, g.id, g.name, g.admin_id
	 FROM expense e
	 LEFT JOIN user_profile u ON u.id = e.user_id
	 LEFT JOIN groups g ON g.id = e.group_id`

// GetExpense retrieves an expense by id with its shallow user and group
// references resolved in the same query.
func (s *SQLiteStore) GetExpense(ctx context.Context, id int64) (*models.Expense, error) {
	if cached, ok := s.expenses.Get(id); ok {
		clone := cloneExpense(cached)
		return &clone, nil
	}

	row := s.db.QueryRowContext(ctx, expenseSelect+" WHERE e.id = ?", id)
	expense, err := scanExpense(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("expense %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	s.expenses.Put(id, cloneExpense(*expense))
	return expense, nil
}

// ListExpenses retrieves all expenses with shallow references resolved.
func (s *SQLiteStore) ListExpenses(ctx context.Context, sort storage.Sort) ([]models.Expense, error) {
	query := expenseSelect + orderClause(sort, expenseSortColumns)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		expense, err := scanExpense(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, *expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return expenses, nil
}

// scanExpense assembles an expense and its optional shallow references
// from one joined row.
func scanExpense(scan func(dest ...interface{}) error) (*models.Expense, error) {
	expense := &models.Expense{}
	var amount sql.NullString
	var userID, groupID, adminID sql.NullInt64
	var userName, userEmail, groupName sql.NullString

	err := scan(&expense.ID, &amount, &userID, &userName, &userEmail, &groupID, &groupName, &adminID)
	if err != nil {
		return nil, err
	}

	expense.Amount = amount.String
	if userID.Valid {
		expense.User = &models.UserProfile{
			ID:    userID.Int64,
			Name:  userName.String,
			Email: userEmail.String,
		}
	}
	if groupID.Valid {
		expense.Group = &models.Group{
			ID:      groupID.Int64,
			Name:    groupName.String,
			AdminID: intPtr(adminID),
		}
	}
	return expense, nil
}

// cloneExpense copies an expense including its reference structs, so
// cached values never share pointers with values handed to callers.
func cloneExpense(e models.Expense) models.Expense {
	clone := models.Expense{ID: e.ID, Amount: e.Amount}
	if e.User != nil {
		user := *e.User
		clone.User = &user
	}
	if e.Group != nil {
		group := *e.Group
		if e.Group.AdminID != nil {
			admin := *e.Group.AdminID
			group.AdminID = &admin
		}
		clone.Group = &group
	}
	return clone
}

// UpdateExpense replaces all fields of an existing expense, including its
// user and group references.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	var userID, groupID sql.NullInt64
	if expense.User != nil {
		userID = refID(expense.User.ID)
	}
	if expense.Group != nil {
		groupID = refID(expense.Group.ID)
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE expense SET amount = ?, user_id = ?, group_id = ? WHERE id = ?",
		nullString(expense.Amount), userID, groupID, expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	} else if n == 0 {
		return fmt.Errorf("expense %d: %w", expense.ID, storage.ErrNotFound)
	}

	s.expenses.Invalidate(expense.ID)
	return nil
}

// PatchExpense merges only the non-nil patch fields into the stored
// expense and returns the result. References are never merge-patched.
func (s *SQLiteStore) PatchExpense(ctx context.Context, id int64, patch models.ExpensePatch) (*models.Expense, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var amount sql.NullString
	err = tx.QueryRowContext(ctx, "SELECT amount FROM expense WHERE id = ?", id).Scan(&amount)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("expense %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load expense for patch: %w", err)
	}

	if patch.Amount != nil {
		amount = nullString(*patch.Amount)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE expense SET amount = ? WHERE id = ?", amount, id,
	); err != nil {
		return nil, fmt.Errorf("failed to patch expense: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.expenses.Invalidate(id)
	return s.GetExpense(ctx, id)
}

// DeleteExpense removes an expense by id. Deleting an absent id is a
// no-op.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM expense WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	s.expenses.Invalidate(id)
	return nil
}

// ExpenseExists reports whether an expense row with the given id exists.
func (s *SQLiteStore) ExpenseExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM expense WHERE id = ?)", id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check expense existence: %w", err)
	}
	return exists, nil
}

// CountExpenses returns the number of stored expenses.
func (s *SQLiteStore) CountExpenses(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM expense").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count expenses: %w", err)
	}
	return count, nil
}
