package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shopgate/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Domain{}, &model.BrandConfig{}, &model.AllowedDomain{}))
	return db
}

// fakeResolver scripts DNS lookups per host
type fakeResolver struct {
	fail map[string]bool
}

func (f *fakeResolver) LookupHost(_ context.Context, host string) ([]string, error) {
	if f.fail[host] {
		return nil, errors.New("no such host")
	}
	return []string{"203.0.113.10"}, nil
}

// captureInvalidator records evicted cache keys
type captureInvalidator struct {
	keys []string
}

func (c *captureInvalidator) Invalidate(_ context.Context, key string) {
	c.keys = append(c.keys, key)
}

func newTestRegistry(t *testing.T) (*Registry, *gorm.DB, *captureInvalidator) {
	t.Helper()
	db := newTestDB(t)
	inv := &captureInvalidator{}
	reg := NewRegistry(db, &fakeResolver{}, inv, inv, []string{"localhost", "evil.com"}, true)
	return reg, db, inv
}

func TestAdd_NormalizesAndCreatesPending(t *testing.T) {
	reg, _, _ := newTestRegistry(t)

	d, err := reg.Add(context.Background(), AddParams{
		DomainName:  "  Shop.Example.COM. ",
		MetaPixelID: "px-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "shop.example.com", d.DomainName)
	assert.Equal(t, model.DomainStatusActive, d.Status)
	assert.Equal(t, model.ProvisionStatusPending, d.ApacheStatus)
	assert.Equal(t, model.ProvisionStatusPending, d.SSLStatus)
	require.Len(t, d.SetupLogs, 1)
	assert.Equal(t, "domain registered, provisioning queued", d.SetupLogs[0].Message)
}

func TestAdd_RejectsDuplicate(t *testing.T) {
	reg, _, _ := newTestRegistry(t)

	_, err := reg.Add(context.Background(), AddParams{DomainName: "shop.example.com"})
	require.NoError(t, err)

	// Same name in a different spelling is still a duplicate.
	_, err = reg.Add(context.Background(), AddParams{DomainName: "SHOP.example.com:443"})
	assert.ErrorIs(t, err, ErrDomainExists)
}

func TestAdd_Denylist(t *testing.T) {
	reg, _, _ := newTestRegistry(t)

	_, err := reg.Add(context.Background(), AddParams{DomainName: "evil.com"})
	assert.ErrorIs(t, err, ErrDomainDenied)

	// Subdomains of a denylisted apex are denied too.
	_, err = reg.Add(context.Background(), AddParams{DomainName: "shop.evil.com"})
	assert.ErrorIs(t, err, ErrDomainDenied)
}

func TestAdd_RejectsInvalidName(t *testing.T) {
	reg, _, _ := newTestRegistry(t)

	for _, name := range []string{"", "192.168.1.1", "bad domain.com"} {
		_, err := reg.Add(context.Background(), AddParams{DomainName: name})
		assert.Error(t, err, "name %q", name)
	}
}

func TestAdd_DNSCheckFailure(t *testing.T) {
	db := newTestDB(t)
	resolver := &fakeResolver{fail: map[string]bool{"unresolvable.example.com": true}}
	reg := NewRegistry(db, resolver, nil, nil, nil, true)

	_, err := reg.Add(context.Background(), AddParams{DomainName: "unresolvable.example.com"})

	var dnsErr *DNSCheckError
	require.True(t, errors.As(err, &dnsErr))
	assert.Equal(t, "unresolvable.example.com", dnsErr.Domain)

	// Nothing was persisted; the registration can be retried as-is.
	var count int64
	require.NoError(t, db.Model(&model.Domain{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAdd_DNSCheckDisabled(t *testing.T) {
	db := newTestDB(t)
	resolver := &fakeResolver{fail: map[string]bool{"unresolvable.example.com": true}}
	reg := NewRegistry(db, resolver, nil, nil, nil, false)

	_, err := reg.Add(context.Background(), AddParams{DomainName: "unresolvable.example.com"})
	assert.NoError(t, err)
}

func TestSetStatus_EvictsBrandCache(t *testing.T) {
	reg, _, inv := newTestRegistry(t)

	d, err := reg.Add(context.Background(), AddParams{DomainName: "shop.example.com"})
	require.NoError(t, err)

	updated, err := reg.SetStatus(context.Background(), d.ID, model.DomainStatusInactive)
	require.NoError(t, err)

	assert.Equal(t, model.DomainStatusInactive, updated.Status)
	// Both the brand payload and the CORS verdict are evicted.
	assert.Equal(t, []string{"shop.example.com", "shop.example.com"}, inv.keys)
	last := updated.SetupLogs[len(updated.SetupLogs)-1]
	assert.Equal(t, "status changed to inactive", last.Message)

	reloaded, err := reg.Get(context.Background(), "shop.example.com")
	require.NoError(t, err)
	assert.Equal(t, model.DomainStatusInactive, reloaded.Status)
}

func TestSetStatus_UnknownDomain(t *testing.T) {
	reg, _, _ := newTestRegistry(t)

	_, err := reg.SetStatus(context.Background(), 9999, model.DomainStatusInactive)
	assert.ErrorIs(t, err, ErrDomainNotFound)
}

func TestUpdateProvisioning(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	_, err := reg.Add(context.Background(), AddParams{DomainName: "shop.example.com"})
	require.NoError(t, err)

	d, err := reg.UpdateProvisioning(context.Background(), "shop.example.com", ProvisionUpdate{
		ApacheStatus: model.ProvisionStatusActive,
		LogMessage:   "vhost configured",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ProvisionStatusActive, d.ApacheStatus)
	assert.Equal(t, model.ProvisionStatusPending, d.SSLStatus)

	d, err = reg.UpdateProvisioning(context.Background(), "shop.example.com", ProvisionUpdate{
		SSLStatus:  model.ProvisionStatusFailed,
		LogMessage: "certificate issuance failed",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ProvisionStatusFailed, d.SSLStatus)

	reloaded, err := reg.Get(context.Background(), "shop.example.com")
	require.NoError(t, err)
	require.Len(t, reloaded.SetupLogs, 3)
	assert.Equal(t, "vhost configured", reloaded.SetupLogs[1].Message)
	assert.Equal(t, "certificate issuance failed", reloaded.SetupLogs[2].Message)
}

func TestUpdateProvisioning_RejectsUnknownStatus(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	_, err := reg.Add(context.Background(), AddParams{DomainName: "shop.example.com"})
	require.NoError(t, err)

	_, err = reg.UpdateProvisioning(context.Background(), "shop.example.com", ProvisionUpdate{
		ApacheStatus: "done",
	})
	assert.Error(t, err)
}

func TestList_FiltersAndPaginates(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	ctx := context.Background()

	for _, name := range []string{"alpha.example.com", "beta.example.com", "alpha.example.org"} {
		_, err := reg.Add(ctx, AddParams{DomainName: name})
		require.NoError(t, err)
	}
	d, err := reg.Get(ctx, "beta.example.com")
	require.NoError(t, err)
	_, err = reg.SetStatus(ctx, d.ID, model.DomainStatusInactive)
	require.NoError(t, err)

	res, err := reg.List(ctx, ListParams{Keyword: "alpha"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Total)
	assert.Len(t, res.Items, 2)

	res, err = reg.List(ctx, ListParams{Status: "inactive"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Total)
	assert.Equal(t, "beta.example.com", res.Items[0].DomainName)

	res, err = reg.List(ctx, ListParams{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, res.Total)
	assert.Len(t, res.Items, 1)
	assert.Equal(t, 2, res.Page)
}
