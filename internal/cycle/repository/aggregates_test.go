package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/SyedTahirHussan/codebuff-sub001/internal/config"
	grantdomain "github.com/SyedTahirHussan/codebuff-sub001/internal/grant/domain"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAggregates(t *testing.T) (*gorm.DB, Params) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&grantdomain.CreditGrant{}))
	return db, Params{DB: db, Config: config.Config{FreeMonthlyCredits: 500}}
}

func createGrant(t *testing.T, db *gorm.DB, opID string, gtype grantdomain.GrantType, principal int64, createdAt time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&grantdomain.CreditGrant{
		OperationID: opID,
		OwnerID:     "user-1",
		Type:        gtype,
		Priority:    gtype.Priority(),
		Principal:   principal,
		Balance:     principal,
		CreatedAt:   createdAt,
	}).Error)
}

func TestPreviousFreeGrantPrincipal(t *testing.T) {
	db, params := setupAggregates(t)
	history := NewGrantHistory(params)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	createGrant(t, db, "op-jan", grantdomain.GrantTypeFree, 500, base)
	createGrant(t, db, "op-feb", grantdomain.GrantTypeFree, 750, base.AddDate(0, 1, 0))
	createGrant(t, db, "op-purchase", grantdomain.GrantTypePurchase, 2000, base.AddDate(0, 2, 0))

	principal, err := history.PreviousFreeGrantPrincipal(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(750), principal)
}

func TestPreviousFreeGrantPrincipalDefault(t *testing.T) {
	_, params := setupAggregates(t)
	history := NewGrantHistory(params)

	principal, err := history.PreviousFreeGrantPrincipal(context.Background(), "new-user")
	require.NoError(t, err)
	assert.Equal(t, int64(500), principal)
}

func TestPreviousFreeGrantPrincipalRevokedFallsBack(t *testing.T) {
	db, params := setupAggregates(t)
	history := NewGrantHistory(params)

	// A revoked free grant has principal zero; the default takes over.
	createGrant(t, db, "op-revoked", grantdomain.GrantTypeFree, 0, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))

	principal, err := history.PreviousFreeGrantPrincipal(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(500), principal)
}

func TestActiveReferralBonusTotal(t *testing.T) {
	db, params := setupAggregates(t)
	referrals := NewReferralSource(params)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	createGrant(t, db, "op-ref-1", grantdomain.GrantTypeReferral, 100, base)
	createGrant(t, db, "op-ref-2", grantdomain.GrantTypeReferral, 100, base.AddDate(0, 0, 1))
	createGrant(t, db, "op-ref-revoked", grantdomain.GrantTypeReferral, 0, base.AddDate(0, 0, 2))
	createGrant(t, db, "op-legacy", grantdomain.GrantTypeReferralLegacy, 100, base.AddDate(0, 0, 3))

	total, err := referrals.ActiveReferralBonusTotal(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(200), total)
}
