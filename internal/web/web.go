// Package web exposes the REST resources over net/http. Each entity
// gets one resource type that registers its routes on a ServeMux and
// translates between HTTP and the storage layer.
//
// Client-caused failures use the alert-error shape: status 400, a JSON
// body naming the entity and error key, and X-expenseshareApp-error /
// X-expenseshareApp-params headers. Successful writes carry a matching
// X-expenseshareApp-alert header.
package web

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/lavanya/expenseshare/internal/models"
	"github.com/lavanya/expenseshare/internal/storage"
)

const (
	errKeyIDExists   = "idexists"
	errKeyIDNull     = "idnull"
	errKeyIDInvalid  = "idinvalid"
	errKeyIDNotFound = "idnotfound"
)

// alertError is the body of a 400 response caused by the client.
type alertError struct {
	EntityName string `json:"entityName"`
	ErrorKey   string `json:"errorKey"`
	Message    string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// badRequestAlert writes a 400 with the alert-error body and headers.
func badRequestAlert(w http.ResponseWriter, entityName, errorKey, message string) {
	w.Header().Set("X-expenseshareApp-error", "error."+errorKey)
	w.Header().Set("X-expenseshareApp-params", entityName)
	writeJSON(w, http.StatusBadRequest, alertError{
		EntityName: entityName,
		ErrorKey:   errorKey,
		Message:    message,
	})
}

// alertHeaders marks a successful write. The message follows the
// "A new group is created with identifier 42" convention.
func alertHeaders(w http.ResponseWriter, message string, id int64) {
	w.Header().Set("X-expenseshareApp-alert", message)
	w.Header().Set("X-expenseshareApp-params", strconv.FormatInt(id, 10))
}

// serverError logs the failure and returns an opaque 500.
func serverError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]any{
		"status": http.StatusInternalServerError,
		"detail": "internal server error",
	})
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// parseSort reads the sort query parameter in "field,asc" or
// "field,desc" form. A missing parameter means insertion order.
func parseSort(r *http.Request) storage.Sort {
	raw := r.URL.Query().Get("sort")
	if raw == "" {
		return storage.Sort{}
	}
	field, dir, _ := strings.Cut(raw, ",")
	return storage.Sort{Field: field, Desc: strings.EqualFold(dir, "desc")}
}

// pageRequest reads page/size query parameters. The second return is
// false when neither is present, meaning the caller wants everything.
func pageRequest(r *http.Request) (models.PageRequest, bool) {
	q := r.URL.Query()
	if q.Get("page") == "" && q.Get("size") == "" {
		return models.PageRequest{}, false
	}
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 0 {
		page = 0
	}
	size, err := strconv.Atoi(q.Get("size"))
	if err != nil || size <= 0 {
		size = 20
	}
	return models.PageRequest{Page: page, Size: size}, true
}

// paginationHeaders sets X-Total-Count and a Link header with
// first/last plus next/prev where they exist.
func paginationHeaders[T any](w http.ResponseWriter, r *http.Request, page models.Page[T]) {
	w.Header().Set("X-Total-Count", strconv.FormatInt(page.TotalElements, 10))

	lastPage := 0
	if page.Size > 0 && page.TotalElements > 0 {
		lastPage = int((page.TotalElements - 1) / int64(page.Size))
	}

	// Rebuilt links keep the caller's other query parameters (sort,
	// eagerload) so following them returns the same result shape.
	link := func(p int, rel string) string {
		q := r.URL.Query()
		q.Set("page", strconv.Itoa(p))
		q.Set("size", strconv.Itoa(page.Size))
		return fmt.Sprintf("<%s?%s>; rel=%q", r.URL.Path, q.Encode(), rel)
	}
	links := []string{}
	if page.Page < lastPage {
		links = append(links, link(page.Page+1, "next"))
	}
	if page.Page > 0 {
		links = append(links, link(page.Page-1, "prev"))
	}
	links = append(links, link(lastPage, "last"), link(0, "first"))
	w.Header().Set("Link", strings.Join(links, ","))
}
