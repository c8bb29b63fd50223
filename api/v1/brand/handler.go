package brand

import (
	"errors"

	"github.com/gin-gonic/gin"

	"shopgate/internal/domain"
	"shopgate/internal/httpx"
	"shopgate/internal/model"
	"shopgate/internal/tenant"
)

// Handler serves the storefront bootstrap payload and the admin overlay
type Handler struct {
	resolver *tenant.Resolver
	brands   *tenant.BrandService
	admin    *domain.BrandAdmin
}

// NewHandler creates a brand config handler
func NewHandler(resolver *tenant.Resolver, brands *tenant.BrandService, admin *domain.BrandAdmin) *Handler {
	return &Handler{
		resolver: resolver,
		brands:   brands,
		admin:    admin,
	}
}

// Get handles GET /brand-config, the storefront bootstrap call. The tenant
// is derived from the request, never from a parameter, so one storefront
// cannot read another's config.
func (h *Handler) Get(c *gin.Context) {
	domainName := h.resolver.Resolve(c.GetHeader("Origin"), c.Request.Host)

	payload, err := h.brands.Resolve(c.Request.Context(), domainName)
	if err != nil {
		if errors.Is(err, tenant.ErrDomainInactive) {
			httpx.FailErr(c, httpx.ErrForbidden("store is temporarily unavailable"))
			return
		}
		httpx.FailErr(c, httpx.ErrNotFound("no configuration for this domain"))
		return
	}

	httpx.OK(c, payload)
}

// UpsertRequest represents the admin overlay write body
type UpsertRequest struct {
	Domain                string      `json:"domain" binding:"required"`
	BrandName             string      `json:"brandName"`
	MetaPixelID           string      `json:"metaPixelId"`
	EnabledPaymentMethods []string    `json:"enabledPaymentMethods"`
	Theme                 model.Theme `json:"theme"`
}

// Upsert handles POST /brand-config/upsert (admin)
func (h *Handler) Upsert(c *gin.Context) {
	var req UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body: "+err.Error()))
		return
	}

	bc, err := h.admin.Upsert(c.Request.Context(), domain.UpsertParams{
		DomainName:            req.Domain,
		BrandName:             req.BrandName,
		MetaPixelID:           req.MetaPixelID,
		EnabledPaymentMethods: req.EnabledPaymentMethods,
		Theme:                 req.Theme,
	})
	if err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}

	httpx.OK(c, bc)
}

// Detail handles GET /brand-config/detail?domain= (admin)
func (h *Handler) Detail(c *gin.Context) {
	name := c.Query("domain")
	if name == "" {
		httpx.FailErr(c, httpx.ErrParamMissing("parameter 'domain' is required"))
		return
	}

	bc, err := h.admin.Get(c.Request.Context(), name)
	if err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}
	if bc == nil {
		httpx.FailErr(c, httpx.ErrNotFound("no brand config for this domain"))
		return
	}

	httpx.OK(c, bc)
}
