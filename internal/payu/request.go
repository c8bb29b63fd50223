package payu

// PaymentRequest is the signed form payload the storefront posts to the
// gateway, plus the endpoint to post it to.
type PaymentRequest struct {
	PaymentURL string            `json:"paymentUrl"`
	Fields     map[string]string `json:"fields"`
}

// Client signs initiation payloads for a single merchant key/salt pair. Hash
// generation itself is pure; the client only carries configuration.
type Client struct {
	key        string
	salt       string
	paymentURL string
	successURL string
	failureURL string
}

// NewClient creates a gateway client
func NewClient(key, salt, paymentURL, successURL, failureURL string) *Client {
	return &Client{
		key:        key,
		salt:       salt,
		paymentURL: paymentURL,
		successURL: successURL,
		failureURL: failureURL,
	}
}

// Key returns the merchant key
func (c *Client) Key() string {
	return c.key
}

// Salt returns the merchant salt
func (c *Client) Salt() string {
	return c.salt
}

// BuildPaymentRequest assembles the signed initiation form. Phone is sent
// but not signed; the hash covers exactly the fields RequestHash defines.
func (c *Client) BuildPaymentRequest(p RequestParams, phone string) *PaymentRequest {
	fields := map[string]string{
		"key":         c.key,
		"txnid":       p.TxnID,
		"amount":      p.Amount,
		"productinfo": p.ProductInfo,
		"firstname":   p.FirstName,
		"email":       p.Email,
		"phone":       phone,
		"udf1":        p.UDF1,
		"surl":        c.successURL,
		"furl":        c.failureURL,
		"hash":        RequestHash(p, c.key, c.salt),
	}
	return &PaymentRequest{
		PaymentURL: c.paymentURL,
		Fields:     fields,
	}
}

// Verify recomputes the inbound hash for a callback
func (c *Client) Verify(cb Callback) bool {
	return VerifyResponseHash(cb, c.key, c.salt)
}
