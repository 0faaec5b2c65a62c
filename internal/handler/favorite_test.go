package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MathiAviles/abogapp/internal/model"
	"github.com/MathiAviles/abogapp/internal/repository"
)

type memFavorites struct{ saved map[uint64][]uint64 }

func (m *memFavorites) Add(_ context.Context, userID, lawyerID uint64) error {
	if slices.Contains(m.saved[userID], lawyerID) {
		return repository.ErrConflict
	}
	m.saved[userID] = append(m.saved[userID], lawyerID)
	return nil
}

func (m *memFavorites) Remove(_ context.Context, userID, lawyerID uint64) error {
	m.saved[userID] = slices.DeleteFunc(m.saved[userID], func(id uint64) bool { return id == lawyerID })
	return nil
}

func (m *memFavorites) LawyerIDs(_ context.Context, userID uint64) ([]uint64, error) {
	return append([]uint64{}, m.saved[userID]...), nil
}

type favoriteUsers struct{ memUsers }

func (f favoriteUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := f.memUsers[id]
	if !ok {
		return u, repository.ErrUserNotFound
	}
	return u, nil
}

func favoriteServer(favs *memFavorites) *testServer {
	s := newTestServer()
	users := favoriteUsers{memUsers{
		1: {ID: 1, Role: model.RoleClient},
		2: {ID: 2, Role: model.RoleLawyer, Nombres: "Ana", Apellidos: "Paz"},
		3: {ID: 3, Role: model.RoleLawyer, Nombres: "Luis", Apellidos: "Mora"},
	}}
	h := NewFavoriteHandler(favs, users, zap.NewNop())
	s.api.GET("/favorites", h.List)
	s.api.GET("/favorites/ids", h.IDs)
	s.api.POST("/favorites/:lawyer_id", h.Add)
	s.api.DELETE("/favorites/:lawyer_id", h.Remove)
	return s
}

func TestFavorites(t *testing.T) {
	favs := &memFavorites{saved: map[uint64][]uint64{}}
	s := favoriteServer(favs)
	tok := bearer(t, 1, model.RoleClient)

	for _, id := range []string{"3", "2", "3"} {
		rec := s.do(http.MethodPost, "/api/favorites/"+id, tok, "")
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	}
	assert.Equal(t, []uint64{3, 2}, favs.saved[1], "saving twice keeps one entry")

	rec := s.do(http.MethodGet, "/api/favorites/ids", tok, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ids":[3,2]}`, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/favorites", tok, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "Luis", list[0]["nombres"], "listed in saved order")
	assert.Equal(t, "Ana", list[1]["nombres"])

	rec = s.do(http.MethodDelete, "/api/favorites/3", tok, "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodDelete, "/api/favorites/9", tok, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []uint64{2}, favs.saved[1])
}

func TestAddFavoriteRejects(t *testing.T) {
	tests := []struct {
		name  string
		user  uint64
		role  string
		path  string
		code  int
		error string
	}{
		{"unknown user", 1, model.RoleClient, "/api/favorites/9", http.StatusNotFound, "LAWYER_NOT_FOUND"},
		{"not a lawyer", 2, model.RoleLawyer, "/api/favorites/1", http.StatusNotFound, "LAWYER_NOT_FOUND"},
		{"self", 2, model.RoleLawyer, "/api/favorites/2", http.StatusBadRequest, "VALIDATION"},
		{"bad id", 1, model.RoleClient, "/api/favorites/abc", http.StatusBadRequest, "VALIDATION"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			favs := &memFavorites{saved: map[uint64][]uint64{}}
			s := favoriteServer(favs)
			rec := s.do(http.MethodPost, tt.path, bearer(t, tt.user, tt.role), "")
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
			assert.Equal(t, tt.error, decode(t, rec)["error"])
			assert.Empty(t, favs.saved[tt.user])
		})
	}
}
