package domains

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"shopgate/internal/domain"
	"shopgate/internal/httpx"
	"shopgate/internal/model"
)

// Handler handles the admin domain registry endpoints
type Handler struct {
	registry *domain.Registry
}

// NewHandler creates a domains handler
func NewHandler(registry *domain.Registry) *Handler {
	return &Handler{registry: registry}
}

// List handles GET /domains
func (h *Handler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	res, err := h.registry.List(c.Request.Context(), domain.ListParams{
		Page:     page,
		PageSize: pageSize,
		Keyword:  c.Query("keyword"),
		Status:   c.Query("status"),
	})
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to list domains", err))
		return
	}

	httpx.OKItems(c, res.Items, res.Total, res.Page, res.PageSize)
}

// CreateRequest represents the domain registration body
type CreateRequest struct {
	Domain      string `json:"domain" binding:"required"`
	MetaPixelID string `json:"metaPixelId"`
}

// Create handles POST /domains/create
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body: "+err.Error()))
		return
	}

	d, err := h.registry.Add(c.Request.Context(), domain.AddParams{
		DomainName:  req.Domain,
		MetaPixelID: req.MetaPixelID,
	})
	if err != nil {
		var dnsErr *domain.DNSCheckError
		switch {
		case errors.Is(err, domain.ErrDomainExists):
			httpx.FailErr(c, httpx.ErrAlreadyExists("domain already registered"))
		case errors.Is(err, domain.ErrDomainDenied):
			httpx.FailErr(c, httpx.ErrParamInvalid("domain is not allowed"))
		case errors.As(err, &dnsErr):
			httpx.FailErr(c, httpx.ErrExternalError("domain does not resolve yet, retry after DNS propagates", err))
		default:
			httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		}
		return
	}

	httpx.OK(c, d)
}

// Detail handles GET /domains/detail?domain=, including setup logs
func (h *Handler) Detail(c *gin.Context) {
	name := c.Query("domain")
	if name == "" {
		httpx.FailErr(c, httpx.ErrParamMissing("parameter 'domain' is required"))
		return
	}

	d, err := h.registry.Get(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, domain.ErrDomainNotFound) {
			httpx.FailErr(c, httpx.ErrNotFound("domain not found"))
			return
		}
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}

	httpx.OK(c, d)
}

// ToggleRequest represents the activate/deactivate body
type ToggleRequest struct {
	ID     int    `json:"id" binding:"required"`
	Status string `json:"status" binding:"required"`
}

// Toggle handles POST /domains/toggle
func (h *Handler) Toggle(c *gin.Context) {
	var req ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body: "+err.Error()))
		return
	}

	d, err := h.registry.SetStatus(c.Request.Context(), req.ID, model.DomainStatus(req.Status))
	if err != nil {
		if errors.Is(err, domain.ErrDomainNotFound) {
			httpx.FailErr(c, httpx.ErrNotFound("domain not found"))
			return
		}
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}

	httpx.OK(c, d)
}

// ProvisionRequest represents a provisioning progress report
type ProvisionRequest struct {
	Domain       string `json:"domain" binding:"required"`
	ApacheStatus string `json:"apacheStatus"`
	SSLStatus    string `json:"sslStatus"`
	LogMessage   string `json:"logMessage"`
}

// Provision handles POST /domains/provision, called by the provisioning
// worker to report vhost/TLS progress
func (h *Handler) Provision(c *gin.Context) {
	var req ProvisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body: "+err.Error()))
		return
	}

	d, err := h.registry.UpdateProvisioning(c.Request.Context(), req.Domain, domain.ProvisionUpdate{
		ApacheStatus: req.ApacheStatus,
		SSLStatus:    req.SSLStatus,
		LogMessage:   req.LogMessage,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDomainNotFound) {
			httpx.FailErr(c, httpx.ErrNotFound("domain not found"))
			return
		}
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}

	httpx.OK(c, d)
}
