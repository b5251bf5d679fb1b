package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SyedTahirHussan/codebuff-sub001/internal/clock"
	"github.com/SyedTahirHussan/codebuff-sub001/internal/config"
	consumptiondomain "github.com/SyedTahirHussan/codebuff-sub001/internal/consumption/domain"
	cycledomain "github.com/SyedTahirHussan/codebuff-sub001/internal/cycle/domain"
	delegationdomain "github.com/SyedTahirHussan/codebuff-sub001/internal/delegation/domain"
	grantdomain "github.com/SyedTahirHussan/codebuff-sub001/internal/grant/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeGrantService struct {
	grantErr   error
	revoked    bool
	balance    int64
	lastGrant  grantdomain.CreateGrantRequest
	grantCalls int
}

func (f *fakeGrantService) Grant(_ context.Context, _ *gorm.DB, req grantdomain.CreateGrantRequest) (*grantdomain.GrantResult, error) {
	return f.GrantTx(context.Background(), req)
}

func (f *fakeGrantService) GrantTx(_ context.Context, req grantdomain.CreateGrantRequest) (*grantdomain.GrantResult, error) {
	f.grantCalls++
	f.lastGrant = req
	if f.grantErr != nil {
		return nil, f.grantErr
	}
	return &grantdomain.GrantResult{
		OperationID: req.OperationID,
		OwnerID:     req.OwnerID,
		Granted:     true,
		Balance:     req.Amount,
		Principal:   req.Amount,
	}, nil
}

func (f *fakeGrantService) Revoke(context.Context, string, string) (bool, error) {
	return f.revoked, nil
}

func (f *fakeGrantService) EligibleGrants(context.Context, *gorm.DB, string, time.Time) ([]grantdomain.CreditGrant, error) {
	return nil, nil
}

func (f *fakeGrantService) FindByOperationID(context.Context, string) (*grantdomain.CreditGrant, error) {
	return nil, nil
}

func (f *fakeGrantService) Balance(context.Context, string, time.Time) (int64, error) {
	return f.balance, nil
}

func (f *fakeGrantService) ListByOwner(context.Context, string) ([]grantdomain.CreditGrant, error) {
	return nil, nil
}

type fakeConsumeService struct {
	err error
}

func (f *fakeConsumeService) Consume(_ context.Context, req consumptiondomain.ConsumeRequest) (*consumptiondomain.ConsumeResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &consumptiondomain.ConsumeResult{
		OwnerID:         req.OwnerID,
		CreditsConsumed: req.Credits,
	}, nil
}

func (f *fakeConsumeService) List(context.Context, consumptiondomain.ListUsageRequest) (consumptiondomain.ListUsageResponse, error) {
	return consumptiondomain.ListUsageResponse{}, nil
}

type fakeCycleService struct {
	err error
}

func (f *fakeCycleService) TriggerReset(context.Context, string) (*cycledomain.ResetResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &cycledomain.ResetResult{Applied: true}, nil
}

func (f *fakeCycleService) DueUserIDs(context.Context, time.Time, int) ([]string, error) {
	return nil, nil
}

type fakeDelegationService struct {
	err error
}

func (f *fakeDelegationService) ResolveAndConsume(_ context.Context, _, _ string, credits int64, _ consumptiondomain.UsageMetadata) (*consumptiondomain.ConsumeResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &consumptiondomain.ConsumeResult{CreditsConsumed: credits, OrganizationID: "org-9"}, nil
}

type fakes struct {
	grant      *fakeGrantService
	consume    *fakeConsumeService
	cycle      *fakeCycleService
	delegation *fakeDelegationService
}

func newTestServer(t *testing.T) (*Server, *fakes) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &fakes{
		grant:      &fakeGrantService{},
		consume:    &fakeConsumeService{},
		cycle:      &fakeCycleService{},
		delegation: &fakeDelegationService{},
	}
	log := zap.NewNop()
	cfg := config.Config{HTTPAddr: ":0"}
	s := NewServer(Params{
		Config:        cfg,
		Log:           log,
		Clock:         clock.NewFakeClock(time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)),
		GrantSvc:      f.grant,
		ConsumeSvc:    f.consume,
		CycleSvc:      f.cycle,
		DelegationSvc: f.delegation,
	}, NewEngine(cfg, log))
	return s, f
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func TestCreateGrantEndpoint(t *testing.T) {
	s, f := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/v1/grants", map[string]any{
		"owner_id":     "user-1",
		"amount":       500,
		"type":         "purchase",
		"operation_id": "op-1",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, f.grant.grantCalls)
	assert.Equal(t, "user-1", f.grant.lastGrant.OwnerID)
	assert.Equal(t, int64(500), f.grant.lastGrant.Amount)
}

func TestCreateGrantDuplicateConflict(t *testing.T) {
	s, f := newTestServer(t)
	f.grant.grantErr = grantdomain.ErrDuplicateOperation

	w := doJSON(t, s, http.MethodPost, "/v1/grants", map[string]any{
		"owner_id":     "user-1",
		"amount":       500,
		"type":         "purchase",
		"operation_id": "op-1",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateGrantValidationError(t *testing.T) {
	s, f := newTestServer(t)
	f.grant.grantErr = grantdomain.ErrInvalidAmount

	w := doJSON(t, s, http.MethodPost, "/v1/grants", map[string]any{
		"owner_id": "user-1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRevokeGrantEndpoint(t *testing.T) {
	s, f := newTestServer(t)
	f.grant.revoked = true

	w := doJSON(t, s, http.MethodPost, "/v1/grants/op-1/revoke", map[string]any{
		"reason": "terms violation",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp revokeGrantResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Revoked)
	assert.Equal(t, "op-1", resp.OperationID)
}

func TestGetBalanceEndpoint(t *testing.T) {
	s, f := newTestServer(t)
	f.grant.balance = 730

	w := doJSON(t, s, http.MethodGet, "/v1/owners/user-1/balance", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp balanceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(730), resp.Balance)
}

func TestConsumeEndpointInsufficient(t *testing.T) {
	s, f := newTestServer(t)
	f.consume.err = consumptiondomain.ErrInsufficientGrants

	w := doJSON(t, s, http.MethodPost, "/v1/owners/user-1/consume", map[string]any{
		"credits": 50,
	})
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
}

func TestConsumeDelegatedEndpointErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"missing url", delegationdomain.ErrNoRepositoryURL, http.StatusBadRequest},
		{"malformed url", delegationdomain.ErrMalformedRepositoryURL, http.StatusBadRequest},
		{"no organization", delegationdomain.ErrNoOrganizationFound, http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, f := newTestServer(t)
			f.delegation.err = tc.err

			w := doJSON(t, s, http.MethodPost, "/v1/consume/delegated", map[string]any{
				"user_id": "member-1",
				"credits": 10,
			})
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestTriggerResetEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/v1/users/user-1/quota-reset", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp cycledomain.ResetResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Applied)
}

func TestTriggerResetUnknownUserIsInternal(t *testing.T) {
	s, f := newTestServer(t)
	f.cycle.err = cycledomain.ErrOwnerNotFound

	w := doJSON(t, s, http.MethodPost, "/v1/users/ghost/quota-reset", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
