package server

import (
	"net/http"
	"strconv"

	"github.com/jonathan/interview-prep/internal/db"
	"github.com/jonathan/interview-prep/internal/types"
)

// handleListFavorites returns saved questions, newest first.
func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	limit := db.DefaultFavoritesLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.failure(w, r, &ErrValidation{Field: "limit", Message: "must be a positive integer"})
			return
		}
		limit = n
	}

	favorites, err := s.store.ListFavorites(r.Context(), limit)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	if favorites == nil {
		favorites = []types.FavoriteQuestion{}
	}
	s.jsonResponse(w, http.StatusOK, favorites)
}

// handleAddFavorite saves a question and returns the stored record.
func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	var req types.AddFavoriteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.failure(w, r, err)
		return
	}

	fav := req.ToFavorite()
	if err := s.store.InsertFavorite(r.Context(), fav); err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, fav)
}

// handleDeleteFavorite removes one favorite by id.
func (s *Server) handleDeleteFavorite(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		s.failure(w, r, &ErrValidation{Field: "id", Message: "required"})
		return
	}

	deleted, err := s.store.DeleteFavorite(r.Context(), id)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	if deleted == 0 {
		s.failure(w, r, &ErrNotFound{Resource: "Favorite"})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"message": "Favorite removed successfully"})
}
