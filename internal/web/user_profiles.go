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

const userProfileEntityName = "userProfile"

// UserProfileResource serves /api/user-profiles. Profiles are the
// inverse side of the membership relation; the Groups slice in a
// request body is ignored on writes.
type UserProfileResource struct {
	store storage.Store
}

func NewUserProfileResource(store storage.Store) *UserProfileResource {
	return &UserProfileResource{store: store}
}

func (res *UserProfileResource) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/user-profiles", res.create)
	mux.HandleFunc("GET /api/user-profiles", res.list)
	mux.HandleFunc("GET /api/user-profiles/{id}", res.get)
	mux.HandleFunc("PUT /api/user-profiles/{id}", res.update)
	mux.HandleFunc("PATCH /api/user-profiles/{id}", res.patch)
	mux.HandleFunc("DELETE /api/user-profiles/{id}", res.delete)
}

func (res *UserProfileResource) create(w http.ResponseWriter, r *http.Request) {
	var profile models.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		badRequestAlert(w, userProfileEntityName, errKeyIDInvalid, "malformed request body")
		return
	}
	if profile.ID != 0 {
		badRequestAlert(w, userProfileEntityName, errKeyIDExists, "A new userProfile cannot already have an ID")
		return
	}
	if err := res.store.CreateUserProfile(r.Context(), &profile); err != nil {
		serverError(w, r, err)
		return
	}
	slog.Info("created user profile", "id", profile.ID)
	w.Header().Set("Location", fmt.Sprintf("/api/user-profiles/%d", profile.ID))
	alertHeaders(w, fmt.Sprintf("A new userProfile is created with identifier %d", profile.ID), profile.ID)
	writeJSON(w, http.StatusCreated, profile)
}

func (res *UserProfileResource) list(w http.ResponseWriter, r *http.Request) {
	profiles, err := res.store.ListUserProfiles(r.Context(), parseSort(r))
	if err != nil {
		serverError(w, r, err)
		return
	}
	if profiles == nil {
		profiles = []models.UserProfile{}
	}
	writeJSON(w, http.StatusOK, profiles)
}

func (res *UserProfileResource) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequestAlert(w, userProfileEntityName, errKeyIDInvalid, "invalid id")
		return
	}
	profile, err := res.store.GetUserProfile(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (res *UserProfileResource) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequestAlert(w, userProfileEntityName, errKeyIDInvalid, "invalid id")
		return
	}
	var profile models.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		badRequestAlert(w, userProfileEntityName, errKeyIDInvalid, "malformed request body")
		return
	}
	if profile.ID == 0 {
		badRequestAlert(w, userProfileEntityName, errKeyIDNull, "Invalid id")
		return
	}
	if profile.ID != id {
		badRequestAlert(w, userProfileEntityName, errKeyIDInvalid, "Invalid ID")
		return
	}
	exists, err := res.store.UserProfileExists(r.Context(), id)
	if err != nil {
		serverError(w, r, err)
		return
	}
	if !exists {
		badRequestAlert(w, userProfileEntityName, errKeyIDNotFound, "Entity not found")
		return
	}
	if err := res.store.UpdateUserProfile(r.Context(), &profile); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		serverError(w, r, err)
		return
	}
	alertHeaders(w, fmt.Sprintf("A userProfile is updated with identifier %d", id), id)
	writeJSON(w, http.StatusOK, profile)
}

func (res *UserProfileResource) patch(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequestAlert(w, userProfileEntityName, errKeyIDInvalid, "invalid id")
		return
	}
	var patch models.UserProfilePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		badRequestAlert(w, userProfileEntityName, errKeyIDInvalid, "malformed request body")
		return
	}
	if patch.ID == nil {
		badRequestAlert(w, userProfileEntityName, errKeyIDNull, "Invalid id")
		return
	}
	if *patch.ID != id {
		badRequestAlert(w, userProfileEntityName, errKeyIDInvalid, "Invalid ID")
		return
	}
	exists, err := res.store.UserProfileExists(r.Context(), id)
	if err != nil {
		serverError(w, r, err)
		return
	}
	if !exists {
		badRequestAlert(w, userProfileEntityName, errKeyIDNotFound, "Entity not found")
		return
	}
	profile, err := res.store.PatchUserProfile(r.Context(), id, patch)
	if errors.Is(err, storage.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		serverError(w, r, err)
		return
	}
	alertHeaders(w, fmt.Sprintf("A userProfile is updated with identifier %d", id), id)
	writeJSON(w, http.StatusOK, profile)
}

func (res *UserProfileResource) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequestAlert(w, userProfileEntityName, errKeyIDInvalid, "invalid id")
		return
	}
	if err := res.store.DeleteUserProfile(r.Context(), id); err != nil {
		serverError(w, r, err)
		return
	}
	slog.Info("deleted user profile", "id", id)
	alertHeaders(w, fmt.Sprintf("A userProfile is deleted with identifier %d", id), id)
	w.WriteHeader(http.StatusNoContent)
}
