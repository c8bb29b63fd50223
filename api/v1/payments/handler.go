package payments

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"shopgate/internal/httpx"
	"shopgate/internal/payment"
	"shopgate/internal/payu"
	"shopgate/internal/tenant"
)

// Handler handles payment initiation, gateway callbacks and status polling
type Handler struct {
	svc      *payment.Service
	proc     *payment.Processor
	resolver *tenant.Resolver
}

// NewHandler creates a payments handler
func NewHandler(svc *payment.Service, proc *payment.Processor, resolver *tenant.Resolver) *Handler {
	return &Handler{
		svc:      svc,
		proc:     proc,
		resolver: resolver,
	}
}

// InitiateRequest represents the checkout request body
type InitiateRequest struct {
	UserID      string         `json:"userId"`
	Products    datatypes.JSON `json:"products"`
	Amount      float64        `json:"amount" binding:"required"`
	PaymentMode string         `json:"paymentMode"`
	ProductInfo string         `json:"productInfo" binding:"required"`
	FirstName   string         `json:"firstname" binding:"required"`
	Email       string         `json:"email" binding:"required"`
	Phone       string         `json:"phone"`
}

// Initiate handles POST /payments/initiate
func (h *Handler) Initiate(c *gin.Context) {
	var req InitiateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body: "+err.Error()))
		return
	}
	if req.Amount <= 0 {
		httpx.FailErr(c, httpx.ErrParamInvalid("amount must be positive"))
		return
	}

	domain := h.resolver.Resolve(c.GetHeader("Origin"), c.Request.Host)

	order, payReq, err := h.svc.Initiate(c.Request.Context(), payment.InitiateParams{
		UserID:      req.UserID,
		Products:    req.Products,
		Amount:      req.Amount,
		PaymentMode: req.PaymentMode,
		ProductInfo: req.ProductInfo,
		FirstName:   req.FirstName,
		Email:       req.Email,
		Phone:       req.Phone,
		Domain:      domain,
	})
	if err != nil {
		httpx.FailErr(c, httpx.ErrInternalError("failed to initiate payment", err))
		return
	}

	httpx.OK(c, gin.H{
		"orderId":       order.ID,
		"transactionId": order.TransactionID,
		"status":        order.Status,
		"payment":       payReq,
	})
}

// Webhook handles POST /payments/webhook, the gateway's server-to-server
// notification. The response acknowledges processing; the gateway does not
// interpret the body.
func (h *Handler) Webhook(c *gin.Context) {
	var cb payu.Callback
	if err := c.ShouldBind(&cb); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid callback payload"))
		return
	}

	oc := h.proc.Process(c.Request.Context(), cb)
	h.proc.AnnotateRisk(oc)

	data := gin.H{
		"reason":     oc.Reason,
		"idempotent": oc.Idempotent,
	}
	if oc.Order != nil {
		data["orderId"] = oc.Order.ID
		data["status"] = oc.Order.Status
	}

	if !oc.Success {
		// Still HTTP 200: the webhook was received and handled; the envelope
		// code carries the business result.
		httpx.OKMsg(c, string(oc.Reason), data)
		return
	}
	httpx.OK(c, data)
}

// Callback handles POST /payments/callback, the browser's return trip from
// the gateway. It always ends in a redirect, even when processing panics.
func (h *Handler) Callback(c *gin.Context) {
	defer func() {
		if r := recover(); r != nil {
			c.Redirect(http.StatusFound, h.proc.FailureURL())
		}
	}()

	var cb payu.Callback
	if err := c.ShouldBind(&cb); err != nil {
		c.Redirect(http.StatusFound, h.proc.FailureURL())
		return
	}

	oc := h.proc.Process(c.Request.Context(), cb)
	h.proc.AnnotateRisk(oc)

	c.Redirect(http.StatusFound, h.proc.RedirectURL(oc, cb))
}

// Status handles GET /payments/status?orderId=N, the polling fallback for
// storefronts without a live socket.
func (h *Handler) Status(c *gin.Context) {
	orderID, err := strconv.Atoi(c.Query("orderId"))
	if err != nil || orderID <= 0 {
		httpx.FailErr(c, httpx.ErrParamInvalid("orderId must be a positive integer"))
		return
	}

	order, err := h.svc.Status(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, payment.ErrOrderNotFound) {
			httpx.FailErr(c, httpx.ErrNotFound("order not found"))
			return
		}
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to query order", err))
		return
	}

	httpx.OK(c, gin.H{
		"orderId":       order.ID,
		"transactionId": order.TransactionID,
		"status":        order.Status,
		"retryAttempts": order.RetryAttempts,
		"statusHistory": order.StatusHistory,
	})
}

// RetryRequest represents the retry request body
type RetryRequest struct {
	OrderID     int    `json:"orderId" binding:"required"`
	ProductInfo string `json:"productInfo" binding:"required"`
	FirstName   string `json:"firstname" binding:"required"`
	Email       string `json:"email" binding:"required"`
	Phone       string `json:"phone"`
}

// Retry handles POST /payments/retry
func (h *Handler) Retry(c *gin.Context) {
	var req RetryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body: "+err.Error()))
		return
	}

	order, payReq, err := h.svc.Retry(c.Request.Context(), req.OrderID, payment.RetryParams{
		ProductInfo: req.ProductInfo,
		FirstName:   req.FirstName,
		Email:       req.Email,
		Phone:       req.Phone,
	})
	if err != nil {
		var conflict *payment.StateConflictError
		switch {
		case errors.Is(err, payment.ErrOrderNotFound):
			httpx.FailErr(c, httpx.ErrNotFound("order not found"))
		case errors.As(err, &conflict):
			httpx.FailErr(c, httpx.ErrStateConflict(conflict.Error()).WithData(gin.H{
				"currentStatus": conflict.Current,
			}))
		default:
			httpx.FailErr(c, httpx.ErrInternalError("failed to retry payment", err))
		}
		return
	}

	httpx.OK(c, gin.H{
		"orderId":       order.ID,
		"transactionId": order.TransactionID,
		"status":        order.Status,
		"retryAttempts": order.RetryAttempts,
		"payment":       payReq,
	})
}
