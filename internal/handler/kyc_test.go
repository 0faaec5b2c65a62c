package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MathiAviles/abogapp/internal/lifecycle"
	"github.com/MathiAviles/abogapp/internal/model"
	"github.com/MathiAviles/abogapp/internal/repository"
)

type memKYC struct {
	users map[uint64]model.User
}

func (m *memKYC) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (m *memKYC) SetKYC(_ context.Context, id uint64, status string, notes *string) (model.User, error) {
	u := m.users[id]
	u.KYCStatus, u.KYCNotes = status, notes
	u.IsApproved = lifecycle.ComputeApproval(lifecycle.ApprovalFacts{
		Role: u.Role, EmailVerified: u.EmailVerified, KYCStatus: u.KYCStatus,
	})
	m.users[id] = u
	return u, nil
}

func (m *memKYC) SetActive(_ context.Context, id uint64, active bool) error {
	u, ok := m.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.IsActive = active
	m.users[id] = u
	return nil
}

func (m *memKYC) ListLawyersByKYC(_ context.Context, status string) ([]model.User, error) {
	var out []model.User
	for _, u := range m.users {
		if u.Role == model.RoleLawyer && u.KYCStatus == status {
			out = append(out, u)
		}
	}
	return out, nil
}

func kycServer() (*testServer, *memKYC) {
	store := &memKYC{users: map[uint64]model.User{
		1: {ID: 1, Role: model.RoleClient, EmailVerified: true, KYCStatus: model.KYCNotSubmitted, IsApproved: true, IsActive: true},
		2: {ID: 2, Role: model.RoleLawyer, EmailVerified: true, KYCStatus: model.KYCNotSubmitted, IsActive: true},
	}}
	h := NewKYCHandler(store, zap.NewNop())
	s := newTestServer()
	s.api.GET("/kyc/status", h.Status)
	s.api.POST("/kyc/submit", h.Submit)
	s.api.GET("/admin/lawyers", h.ListLawyers)
	s.api.POST("/admin/users/:id/approve", h.Approve)
	s.api.POST("/admin/users/:id/reject", h.Reject)
	s.api.POST("/admin/users/:id/deactivate", h.Deactivate)
	return s, store
}

func TestKYCFlow(t *testing.T) {
	s, store := kycServer()
	lawyer := bearer(t, 2, model.RoleLawyer)
	admin := bearer(t, 9, model.RoleAdmin)

	rec := s.do(http.MethodPost, "/api/kyc/submit", lawyer, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, model.KYCPending, decode(t, rec)["kyc_status"])

	rec = s.do(http.MethodGet, "/api/admin/lawyers", admin, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":2`)

	rec = s.do(http.MethodPost, "/api/admin/users/2/reject", admin, `{"reason":" blurry id "}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, model.KYCRejected, body["kyc_status"])
	assert.Equal(t, "blurry id", body["kyc_notes"])
	assert.Equal(t, false, body["is_approved"])

	rec = s.do(http.MethodPost, "/api/admin/users/2/approve", admin, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["is_approved"])
	assert.True(t, store.users[2].IsApproved)

	rec = s.do(http.MethodPost, "/api/kyc/submit", lawyer, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "KYC_ALREADY_APPROVED", decode(t, rec)["error"])
}

func TestKYCRejects(t *testing.T) {
	s, store := kycServer()
	admin := bearer(t, 9, model.RoleAdmin)

	rec := s.do(http.MethodPost, "/api/kyc/submit", bearer(t, 1, model.RoleClient), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "LAWYERS_ONLY", decode(t, rec)["error"])

	rec = s.do(http.MethodPost, "/api/admin/users/1/approve", admin, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/admin/users/42/approve", admin, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "USER_NOT_FOUND", decode(t, rec)["error"])

	rec = s.do(http.MethodGet, "/api/admin/lawyers?kyc_status=bogus", admin, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/admin/users/2/deactivate", admin, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, store.users[2].IsActive)
}
