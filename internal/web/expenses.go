package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/lavanya/expenseshare/internal/models"
	"github.com/lavanya/expenseshare/internal/storage"
)

const expenseEntityName = "expense"

// ExpenseResource serves /api/expenses.
type ExpenseResource struct {
	store storage.Store
}

func NewExpenseResource(store storage.Store) *ExpenseResource {
	return &ExpenseResource{store: store}
}

func (res *ExpenseResource) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/expenses", res.create)
	mux.HandleFunc("GET /api/expenses", res.list)
	mux.HandleFunc("GET /api/expenses/{id}", res.get)
	mux.HandleFunc("PUT /api/expenses/{id}", res.update)
	mux.HandleFunc("PATCH /api/expenses/{id}", res.patch)
	mux.HandleFunc("DELETE /api/expenses/{id}", res.delete)
}

func (res *ExpenseResource) create(w http.ResponseWriter, r *http.Request) {
	var expense models.Expense
	if err := json.NewDecoder(r.Body).Decode(&expense); err != nil {
		badRequestAlert(w, expenseEntityName, errKeyIDInvalid, "malformed request body")
		return
	}
	if expense.ID != 0 {
		badRequestAlert(w, expenseEntityName, errKeyIDExists, "A new expense cannot already have an ID")
		return
	}
	if err := res.store.CreateExpense(r.Context(), &expense); err != nil {
		serverError(w, r, err)
		return
	}
	slog.Info("created expense", "id", expense.ID)
	w.Header().Set("Location", fmt.Sprintf("/api/expenses/%d", expense.ID))
	alertHeaders(w, fmt.Sprintf("A new expense is created with identifier %d", expense.ID), expense.ID)
	writeJSON(w, http.StatusCreated, expense)
}

func (res *ExpenseResource) list(w http.ResponseWriter, r *http.Request) {
	expenses, err := res.store.ListExpenses(r.Context(), parseSort(r))
	if err != nil {
		serverError(w, r, err)
		return
	}
	if expenses == nil {
		expenses = []models.Expense{}
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (res *ExpenseResource) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequestAlert(w, expenseEntityName, errKeyIDInvalid, "invalid id")
		return
	}
	expense, err := res.store.GetExpense(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

func (res *ExpenseResource) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequestAlert(w, expenseEntityName, errKeyIDInvalid, "invalid id")
		return
	}
	var expense models.Expense
	if err := json.NewDecoder(r.Body).Decode(&expense); err != nil {
		badRequestAlert(w, expenseEntityName, errKeyIDInvalid, "malformed request body")
		return
	}
	if expense.ID == 0 {
		badRequestAlert(w, expenseEntityName, errKeyIDNull, "Invalid id")
		return
	}
	if expense.ID != id {
		badRequestAlert(w, expenseEntityName, errKeyIDInvalid, "Invalid ID")
		return
	}
	exists, err := res.store.ExpenseExists(r.Context(), id)
	if err != nil {
		serverError(w, r, err)
		return
	}
	if !exists {
		badRequestAlert(w, expenseEntityName, errKeyIDNotFound, "Entity not found")
		return
	}
	if err := res.store.UpdateExpense(r.Context(), &expense); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		serverError(w, r, err)
		return
	}
	alertHeaders(w, fmt.Sprintf("An expense is updated with identifier %d", id), id)
	writeJSON(w, http.StatusOK, expense)
}

func (res *ExpenseResource) patch(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequestAlert(w, expenseEntityName, errKeyIDInvalid, "invalid id")
		return
	}
	var patch models.ExpensePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		badRequestAlert(w, expenseEntityName, errKeyIDInvalid, "malformed request body")
		return
	}
	if patch.ID == nil {
		badRequestAlert(w, expenseEntityName, errKeyIDNull, "Invalid id")
		return
	}
	if *patch.ID != id {
		badRequestAlert(w, expenseEntityName, errKeyIDInvalid, "Invalid ID")
		return
	}
	exists, err := res.store.ExpenseExists(r.Context(), id)
	if err != nil {
		serverError(w, r, err)
		return
	}
	if !exists {
		badRequestAlert(w, expenseEntityName, errKeyIDNotFound, "Entity not found")
		return
	}
	expense, err := res.store.PatchExpense(r.Context(), id, patch)
	if errors.Is(err, storage.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		serverError(w, r, err)
		return
	}
	alertHeaders(w, fmt.Sprintf("An expense is updated with identifier %d", id), id)
	writeJSON(w, http.StatusOK, expense)
}

func (res *ExpenseResource) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequestAlert(w, expenseEntityName, errKeyIDInvalid, "invalid id")
		return
	}
	if err := res.store.DeleteExpense(r.Context(), id); err != nil {
		serverError(w, r, err)
		return
	}
	slog.Info("deleted expense", "id", id)
	alertHeaders(w, fmt.Sprintf("An expense is deleted with identifier %d", id), id)
	w.WriteHeader(http.StatusNoContent)
}
