package allowed_domains

import (
	"errors"

	"github.com/gin-gonic/gin"

	"shopgate/internal/domain"
	"shopgate/internal/httpx"
)

// Handler handles the admin cross-origin allow-list endpoints
type Handler struct {
	allowlist *domain.Allowlist
}

// NewHandler creates an allowed-domains handler
func NewHandler(allowlist *domain.Allowlist) *Handler {
	return &Handler{allowlist: allowlist}
}

// List handles GET /allowed-domains
func (h *Handler) List(c *gin.Context) {
	entries, err := h.allowlist.List(c.Request.Context())
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to list allowed domains", err))
		return
	}
	httpx.OK(c, entries)
}

// AddRequest represents the allow-list add body
type AddRequest struct {
	Domain string `json:"domain" binding:"required"`
}

// Add handles POST /allowed-domains/add
func (h *Handler) Add(c *gin.Context) {
	var req AddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body: "+err.Error()))
		return
	}

	entry, err := h.allowlist.Add(c.Request.Context(), req.Domain)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyAllowed) {
			httpx.FailErr(c, httpx.ErrAlreadyExists("domain already on allow-list"))
			return
		}
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}

	httpx.OK(c, entry)
}

// ToggleRequest represents the allow-list toggle body
type ToggleRequest struct {
	ID       int   `json:"id" binding:"required"`
	IsActive *bool `json:"isActive" binding:"required"`
}

// Toggle handles POST /allowed-domains/toggle
func (h *Handler) Toggle(c *gin.Context) {
	var req ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body: "+err.Error()))
		return
	}

	entry, err := h.allowlist.SetActive(c.Request.Context(), req.ID, *req.IsActive)
	if err != nil {
		if errors.Is(err, domain.ErrDomainNotFound) {
			httpx.FailErr(c, httpx.ErrNotFound("allow-list entry not found"))
			return
		}
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to update allow-list entry", err))
		return
	}

	httpx.OK(c, entry)
}
