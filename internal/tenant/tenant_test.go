package tenant

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"shopgate/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// memCache is a test double for cache.Store
type memCache struct {
	entries map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]byte)}
}

func (m *memCache) GetJSON(_ context.Context, key string, dest interface{}) (bool, error) {
	data, ok := m.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (m *memCache) SetJSON(_ context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = data
	return nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	delete(m.entries, key)
	return nil
}

type mockDomainReader struct {
	mock.Mock
}

func (m *mockDomainReader) FindByName(name string) (*model.Domain, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Domain), args.Error(1)
}

type mockBrandReader struct {
	mock.Mock
}

func (m *mockBrandReader) FindByDomain(name string) (*model.BrandConfig, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BrandConfig), args.Error(1)
}

type mockAllowedReader struct {
	mock.Mock
}

func (m *mockAllowedReader) ExistsActive(normalized, raw string) (bool, error) {
	args := m.Called(normalized, raw)
	return args.Bool(0), args.Error(1)
}

func TestResolver(t *testing.T) {
	tests := []struct {
		name       string
		production bool
		origin     string
		host       string
		want       string
	}{
		{
			name:       "development pins to localhost",
			production: false,
			origin:     "https://shop.example.com",
			want:       DevDomain,
		},
		{
			name:       "production uses origin",
			production: true,
			origin:     "https://shop.example.com/",
			host:       "api.internal",
			want:       "shop.example.com",
		},
		{
			name:       "production falls back to host",
			production: true,
			host:       "shop.example.com:443",
			want:       "shop.example.com",
		},
		{
			name:       "no headers yields sentinel",
			production: true,
			want:       UnknownOrigin,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(tt.production)
			if got := r.Resolve(tt.origin, tt.host); got != tt.want {
				t.Errorf("Resolve(%q, %q) = %q; want %q", tt.origin, tt.host, got, tt.want)
			}
		})
	}
}

func TestBrandService_InactiveDomainWinsOverActiveOverlay(t *testing.T) {
	domains := new(mockDomainReader)
	brands := new(mockBrandReader)
	domains.On("FindByName", "shop.example.com").Return(&model.Domain{
		DomainName: "shop.example.com",
		Status:     model.DomainStatusInactive,
	}, nil)

	svc := NewBrandService(domains, brands, newMemCache(), true)

	_, err := svc.Resolve(context.Background(), "shop.example.com")
	assert.ErrorIs(t, err, ErrDomainInactive)
	// The overlay must never be consulted for a deactivated tenant.
	brands.AssertNotCalled(t, "FindByDomain", mock.Anything)
}

func TestBrandService_DomainPixelWinsOverOverlay(t *testing.T) {
	domains := new(mockDomainReader)
	brands := new(mockBrandReader)
	domains.On("FindByName", "shop.example.com").Return(&model.Domain{
		DomainName:  "shop.example.com",
		MetaPixelID: "pixel-domain",
		Status:      model.DomainStatusActive,
	}, nil)
	brands.On("FindByDomain", "shop.example.com").Return(&model.BrandConfig{
		DomainName:  "shop.example.com",
		BrandName:   "Acme Shoes",
		MetaPixelID: "pixel-overlay",
		Theme:       model.Theme{PrimaryColor: "#ff0000"},
	}, nil)

	svc := NewBrandService(domains, brands, newMemCache(), true)

	payload, err := svc.Resolve(context.Background(), "shop.example.com")
	require.NoError(t, err)
	assert.Equal(t, "pixel-domain", payload.MetaPixelID)
	assert.Equal(t, "Acme Shoes", payload.BrandName)
	assert.Equal(t, "#ff0000", payload.Theme.PrimaryColor)
	assert.Equal(t, "active", payload.Status)
}

func TestBrandService_CacheHitSkipsDatabase(t *testing.T) {
	domains := new(mockDomainReader)
	brands := new(mockBrandReader)
	domains.On("FindByName", "shop.example.com").Return(&model.Domain{
		DomainName: "shop.example.com",
		Status:     model.DomainStatusActive,
	}, nil).Once()
	brands.On("FindByDomain", "shop.example.com").Return(nil, nil).Once()

	svc := NewBrandService(domains, brands, newMemCache(), true)

	first, err := svc.Resolve(context.Background(), "shop.example.com")
	require.NoError(t, err)

	// Second resolve must come from cache; the mocks only allow one call.
	second, err := svc.Resolve(context.Background(), "shop.example.com")
	require.NoError(t, err)
	assert.Equal(t, first.BrandName, second.BrandName)
	domains.AssertExpectations(t)
	brands.AssertExpectations(t)
}

func TestBrandService_InvalidateForcesReload(t *testing.T) {
	domains := new(mockDomainReader)
	brands := new(mockBrandReader)
	domains.On("FindByName", "shop.example.com").Return(&model.Domain{
		DomainName: "shop.example.com",
		Status:     model.DomainStatusActive,
	}, nil).Twice()
	brands.On("FindByDomain", "shop.example.com").Return(nil, nil).Twice()

	svc := NewBrandService(domains, brands, newMemCache(), true)
	ctx := context.Background()

	_, err := svc.Resolve(ctx, "shop.example.com")
	require.NoError(t, err)

	svc.Invalidate(ctx, "shop.example.com")

	_, err = svc.Resolve(ctx, "shop.example.com")
	require.NoError(t, err)
	domains.AssertExpectations(t)
}

func TestBrandService_DevFallbackWithoutDomainRecord(t *testing.T) {
	domains := new(mockDomainReader)
	brands := new(mockBrandReader)
	domains.On("FindByName", "localhost").Return(nil, nil)

	svc := NewBrandService(domains, brands, newMemCache(), false)

	payload, err := svc.Resolve(context.Background(), "localhost")
	require.NoError(t, err)
	assert.Equal(t, "Dev Store", payload.BrandName)
	assert.Equal(t, "active", payload.Status)
	assert.Equal(t, DefaultPrimaryColor, payload.Theme.PrimaryColor)
}

func TestBrandService_ProductionMissingDomainFails(t *testing.T) {
	domains := new(mockDomainReader)
	brands := new(mockBrandReader)
	domains.On("FindByName", "ghost.example.com").Return(nil, nil)

	svc := NewBrandService(domains, brands, newMemCache(), true)

	_, err := svc.Resolve(context.Background(), "ghost.example.com")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrDomainInactive)
}

func TestGate_NoOriginAlwaysAdmitted(t *testing.T) {
	g := NewGate(new(mockAllowedReader), newMemCache(), true)
	assert.True(t, g.Allow(context.Background(), ""))
}

func TestGate_NonProductionAdmitsEverything(t *testing.T) {
	g := NewGate(new(mockAllowedReader), newMemCache(), false)
	assert.True(t, g.Allow(context.Background(), "https://anything.example.com"))
}

func TestGate_AllowListDecision(t *testing.T) {
	allowed := new(mockAllowedReader)
	allowed.On("ExistsActive", "shop.example.com", "https://shop.example.com").Return(true, nil).Once()
	allowed.On("ExistsActive", "evil.example.com", "https://evil.example.com").Return(false, nil).Once()

	g := NewGate(allowed, newMemCache(), true)
	ctx := context.Background()

	assert.True(t, g.Allow(ctx, "https://shop.example.com"))
	assert.False(t, g.Allow(ctx, "https://evil.example.com"))

	// Verdicts are cached: repeated checks must not hit the store again.
	assert.True(t, g.Allow(ctx, "https://shop.example.com"))
	assert.False(t, g.Allow(ctx, "https://evil.example.com"))
	allowed.AssertExpectations(t)
}

func TestGate_LookupErrorDenies(t *testing.T) {
	allowed := new(mockAllowedReader)
	allowed.On("ExistsActive", mock.Anything, mock.Anything).Return(false, errors.New("db down"))

	g := NewGate(allowed, newMemCache(), true)
	assert.False(t, g.Allow(context.Background(), "https://shop.example.com"))
}

func TestGate_InvalidateEvictsVerdict(t *testing.T) {
	allowed := new(mockAllowedReader)
	allowed.On("ExistsActive", "shop.example.com", "https://shop.example.com").Return(false, nil).Once()
	allowed.On("ExistsActive", "shop.example.com", "https://shop.example.com").Return(true, nil).Once()

	g := NewGate(allowed, newMemCache(), true)
	ctx := context.Background()

	assert.False(t, g.Allow(ctx, "https://shop.example.com"))

	// Admin adds the domain, then evicts the stale deny verdict.
	g.Invalidate(ctx, "https://shop.example.com")

	assert.True(t, g.Allow(ctx, "https://shop.example.com"))
	allowed.AssertExpectations(t)
}
