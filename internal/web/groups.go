package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/lavanya/expenseshare/internal/models"
	"github.com/lavanya/expenseshare/internal/storage"
)

const groupEntityName = "group"

// GroupResource serves /api/groups. Groups own the membership
// relation, so list reads optionally resolve member sets eagerly.
type GroupResource struct {
	store storage.Store
}

func NewGroupResource(store storage.Store) *GroupResource {
	return &GroupResource{store: store}
}

func (res *GroupResource) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/groups", res.create)
	mux.HandleFunc("GET /api/groups", res.list)
	mux.HandleFunc("GET /api/groups/{id}", res.get)
	mux.HandleFunc("PUT /api/groups/{id}", res.update)
	mux.HandleFunc("PATCH /api/groups/{id}", res.patch)
	mux.HandleFunc("DELETE /api/groups/{id}", res.delete)
}

func (res *GroupResource) create(w http.ResponseWriter, r *http.Request) {
	var group models.Group
	if err := json.NewDecoder(r.Body).Decode(&group); err != nil {
		badRequestAlert(w, groupEntityName, errKeyIDInvalid, "malformed request body")
		return
	}
	if group.ID != 0 {
		badRequestAlert(w, groupEntityName, errKeyIDExists, "A new group cannot already have an ID")
		return
	}
	if err := res.store.CreateGroup(r.Context(), &group); err != nil {
		serverError(w, r, err)
		return
	}
	slog.Info("created group", "id", group.ID, "members", len(group.Members))
	w.Header().Set("Location", fmt.Sprintf("/api/groups/%d", group.ID))
	alertHeaders(w, fmt.Sprintf("A new group is created with identifier %d", group.ID), group.ID)
	writeJSON(w, http.StatusCreated, group)
}

// list returns groups with member sets resolved unless eagerload=false.
// With page/size parameters the response is one page plus X-Total-Count
// and Link headers; without them everything comes back.
func (res *GroupResource) list(w http.ResponseWriter, r *http.Request) {
	eager := true
	if raw := r.URL.Query().Get("eagerload"); raw != "" {
		if parsed, err := strconv.ParseBool(raw); err == nil {
			eager = parsed
		}
	}

	if req, paged := pageRequest(r); paged {
		page, err := res.store.ListGroupsPage(r.Context(), req)
		if err != nil {
			serverError(w, r, err)
			return
		}
		if eager {
			page, err = res.store.FetchGroupMembersPage(r.Context(), page)
			if err != nil {
				serverError(w, r, err)
				return
			}
		}
		if page.Content == nil {
			page.Content = []models.Group{}
		}
		paginationHeaders(w, r, page)
		writeJSON(w, http.StatusOK, page.Content)
		return
	}

	groups, err := res.store.ListGroups(r.Context(), parseSort(r))
	if err != nil {
		serverError(w, r, err)
		return
	}
	if eager {
		groups, err = res.store.FetchGroupMembers(r.Context(), groups)
		if err != nil {
			serverError(w, r, err)
			return
		}
	}
	if groups == nil {
		groups = []models.Group{}
	}
	writeJSON(w, http.StatusOK, groups)
}

func (res *GroupResource) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequestAlert(w, groupEntityName, errKeyIDInvalid, "invalid id")
		return
	}
	group, err := res.store.GetGroupWithMembers(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (res *GroupResource) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequestAlert(w, groupEntityName, errKeyIDInvalid, "invalid id")
		return
	}
	var group models.Group
	if err := json.NewDecoder(r.Body).Decode(&group); err != nil {
		badRequestAlert(w, groupEntityName, errKeyIDInvalid, "malformed request body")
		return
	}
	if group.ID == 0 {
		badRequestAlert(w, groupEntityName, errKeyIDNull, "Invalid id")
		return
	}
	if group.ID != id {
		badRequestAlert(w, groupEntityName, errKeyIDInvalid, "Invalid ID")
		return
	}
	exists, err := res.store.GroupExists(r.Context(), id)
	if err != nil {
		serverError(w, r, err)
		return
	}
	if !exists {
		badRequestAlert(w, groupEntityName, errKeyIDNotFound, "Entity not found")
		return
	}
	if err := res.store.UpdateGroup(r.Context(), &group); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		serverError(w, r, err)
		return
	}
	alertHeaders(w, fmt.Sprintf("A group is updated with identifier %d", id), id)
	writeJSON(w, http.StatusOK, group)
}

func (res *GroupResource) patch(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequestAlert(w, groupEntityName, errKeyIDInvalid, "invalid id")
		return
	}
	var patch models.GroupPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		badRequestAlert(w, groupEntityName, errKeyIDInvalid, "malformed request body")
		return
	}
	if patch.ID == nil {
		badRequestAlert(w, groupEntityName, errKeyIDNull, "Invalid id")
		return
	}
	if *patch.ID != id {
		badRequestAlert(w, groupEntityName, errKeyIDInvalid, "Invalid ID")
		return
	}
	exists, err := res.store.GroupExists(r.Context(), id)
	if err != nil {
		serverError(w, r, err)
		return
	}
	if !exists {
		badRequestAlert(w, groupEntityName, errKeyIDNotFound, "Entity not found")
		return
	}
	group, err := res.store.PatchGroup(r.Context(), id, patch)
	if errors.Is(err, storage.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		serverError(w, r, err)
		return
	}
	alertHeaders(w, fmt.Sprintf("A group is updated with identifier %d", id), id)
	writeJSON(w, http.StatusOK, group)
}

func (res *GroupResource) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequestAlert(w, groupEntityName, errKeyIDInvalid, "invalid id")
		return
	}
	if err := res.store.DeleteGroup(r.Context(), id); err != nil {
		serverError(w, r, err)
		return
	}
	slog.Info("deleted group", "id", id)
	alertHeaders(w, fmt.Sprintf("A group is deleted with identifier %d", id), id)
	w.WriteHeader(http.StatusNoContent)
}
