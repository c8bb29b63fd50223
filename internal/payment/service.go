package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"shopgate/internal/model"
	"shopgate/internal/order"
	"shopgate/internal/payu"
)

// ErrOrderNotFound is returned when an order id resolves to nothing
var ErrOrderNotFound = errors.New("order not found")

// StateConflictError rejects a retry against a non-retryable status
type StateConflictError struct {
	Current model.OrderStatus
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("cannot retry order in status %s", e.Current)
}

// Service drives payment initiation, retry and status polling
type Service struct {
	store   order.Store
	gateway *payu.Client
	logger  *logrus.Entry
}

// NewService creates a payment service
func NewService(store order.Store, gateway *payu.Client, logger *logrus.Entry) *Service {
	return &Service{
		store:   store,
		gateway: gateway,
		logger:  logger.WithField("component", "payment-service"),
	}
}

// InitiateParams are the checkout inputs for a new payment attempt
type InitiateParams struct {
	UserID      string
	Products    datatypes.JSON
	Amount      float64
	PaymentMode string
	ProductInfo string
	FirstName   string
	Email       string
	Phone       string
	Domain      string
}

// Initiate creates the order and produces the signed gateway payload. The
// order passes CREATED and lands in PAYMENT_PENDING before the payload is
// returned, so an abandoned checkout is visible to the reaper.
func (s *Service) Initiate(ctx context.Context, p InitiateParams) (*model.Order, *payu.PaymentRequest, error) {
	if p.Amount <= 0 {
		return nil, nil, fmt.Errorf("amount must be positive")
	}

	o := &model.Order{
		UserID:        p.UserID,
		Products:      p.Products,
		TotalAmount:   p.Amount,
		PaymentMode:   p.PaymentMode,
		TransactionID: mintTransactionID(),
		Status:        model.OrderStatusCreated,
		Domain:        p.Domain,
	}
	if err := s.store.Create(o); err != nil {
		return nil, nil, err
	}

	if err := s.store.Transition(o, model.OrderStatusPending, "payment initiated"); err != nil {
		return nil, nil, err
	}

	req := s.buildRequest(o, p.ProductInfo, p.FirstName, p.Email, p.Phone)
	s.logger.WithFields(logrus.Fields{
		"orderId": o.ID,
		"txnid":   o.TransactionID,
		"amount":  payu.FormatAmount(o.TotalAmount),
		"domain":  o.Domain,
	}).Info("Payment initiated")
	return o, req, nil
}

// RetryParams carry the customer fields re-signed into the new attempt
type RetryParams struct {
	ProductInfo string
	FirstName   string
	Email       string
	Phone       string
}

// Retry starts a new payment attempt for a failed, abandoned or never-
// initiated order. Any other status is a conflict naming the current status.
// The attempt gets a fresh transaction id; prior ids are never reused.
func (s *Service) Retry(ctx context.Context, orderID int, p RetryParams) (*model.Order, *payu.PaymentRequest, error) {
	o, err := s.store.FindByID(orderID)
	if err != nil {
		return nil, nil, err
	}
	if o == nil {
		return nil, nil, ErrOrderNotFound
	}

	if !o.IsRetryable() {
		return nil, nil, &StateConflictError{Current: o.Status}
	}

	newTxnID := mintTransactionID()
	reason := fmt.Sprintf("retry attempt %d", o.RetryAttempts+1)
	if err := s.store.BeginRetry(o, newTxnID, reason); err != nil {
		return nil, nil, err
	}

	req := s.buildRequest(o, p.ProductInfo, p.FirstName, p.Email, p.Phone)
	s.logger.WithFields(logrus.Fields{
		"orderId": o.ID,
		"txnid":   o.TransactionID,
		"attempt": o.RetryAttempts,
	}).Info("Payment retry initiated")
	return o, req, nil
}

// Status returns the current order status for the polling endpoint
func (s *Service) Status(ctx context.Context, orderID int) (*model.Order, error) {
	o, err := s.store.FindByID(orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (s *Service) buildRequest(o *model.Order, productInfo, firstName, email, phone string) *payu.PaymentRequest {
	return s.gateway.BuildPaymentRequest(payu.RequestParams{
		TxnID:       o.TransactionID,
		Amount:      payu.FormatAmount(o.TotalAmount),
		ProductInfo: productInfo,
		FirstName:   firstName,
		Email:       email,
		UDF1:        o.Domain,
	}, phone)
}

func mintTransactionID() string {
	return "TXN-" + uuid.New().String()
}
