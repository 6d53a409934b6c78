// Package fooapi exposes a memory repository of test entities
// as a small JSON REST API, to act as the backend in http level tests.
package fooapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.llib.dev/hookit/adapter/memory"
	"go.llib.dev/hookit/pkg/iterkit"
	"go.llib.dev/hookit/pkg/pathkit"
	"go.llib.dev/hookit/port/crud"
	"go.llib.dev/hookit/spechelper/testent"
)

// Handler serves the repository under the "/foos" resource path.
func Handler(repo *memory.Repository[testent.Foo, testent.FooID]) http.Handler {
	return handler{Repository: repo}
}

type handler struct {
	Repository *memory.Repository[testent.Foo, testent.FooID]
}

func (h handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(pathkit.Canonical(r.URL.Path), "/foos")
	rest = strings.Trim(rest, "/")
	if rest == "" {
		h.collection(w, r)
		return
	}
	h.entity(w, r, testent.FooID(rest))
}

func (h handler) collection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	switch r.Method {
	case http.MethodGet:
		all, err := iterkit.CollectE(h.Repository.FindAll(ctx))
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if name := r.URL.Query().Get("name"); name != "" {
			var filtered []testent.Foo
			for _, foo := range all {
				if foo.Name == name {
					filtered = append(filtered, foo)
				}
			}
			all = filtered
		}
		if all == nil {
			all = []testent.Foo{}
		}
		h.writeJSON(w, http.StatusOK, all)
	case http.MethodPost:
		var foo testent.Foo
		if err := json.NewDecoder(r.Body).Decode(&foo); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if err := h.Repository.Create(ctx, &foo); err != nil {
			h.writeError(w, err)
			return
		}
		h.writeJSON(w, http.StatusCreated, foo)
	case http.MethodPut: // batch update
		var foos []testent.Foo
		if err := json.NewDecoder(r.Body).Decode(&foos); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		for i := range foos {
			if err := h.Repository.Update(ctx, &foos[i]); err != nil {
				h.writeError(w, err)
				return
			}
		}
		h.writeJSON(w, http.StatusOK, foos)
	case http.MethodDelete:
		if err := h.Repository.DeleteAll(ctx); err != nil {
			h.writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h handler) entity(w http.ResponseWriter, r *http.Request, id testent.FooID) {
	ctx := r.Context()
	switch r.Method {
	case http.MethodGet:
		foo, found, err := h.Repository.FindByID(ctx, id)
		if err != nil {
			h.writeError(w, err)
			return
		}
		if !found {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.writeJSON(w, http.StatusOK, foo)
	case http.MethodPut:
		var foo testent.Foo
		if err := json.NewDecoder(r.Body).Decode(&foo); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		foo.ID = id
		if err := h.Repository.Update(ctx, &foo); err != nil {
			h.writeError(w, err)
			return
		}
		h.writeJSON(w, http.StatusOK, foo)
	case http.MethodDelete:
		if err := h.Repository.DeleteByID(ctx, id); err != nil {
			h.writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h handler) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (h handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, crud.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
	case errors.Is(err, crud.ErrAlreadyExists):
		w.WriteHeader(http.StatusConflict)
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}
}
