package payu

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
)

// RequestParams are the fields signed into the outbound (initiation) hash.
// Amount must already be the exact 2-decimal string sent to the gateway;
// signing and the form field have to match byte-for-byte.
type RequestParams struct {
	TxnID       string
	Amount      string
	ProductInfo string
	FirstName   string
	Email       string
	UDF1        string // carries the originating tenant domain through the gateway round-trip
}

// Callback is the gateway callback payload, delivered both over the
// server-to-server webhook and the browser redirect. Field names are part of
// the external contract and must not be renamed.
type Callback struct {
	MihPayID          string `form:"mihpayid" json:"mihpayid"`
	Status            string `form:"status" json:"status"`
	TxnID             string `form:"txnid" json:"txnid"`
	Amount            string `form:"amount" json:"amount"`
	Hash              string `form:"hash" json:"hash"`
	ProductInfo       string `form:"productinfo" json:"productinfo"`
	FirstName         string `form:"firstname" json:"firstname"`
	Email             string `form:"email" json:"email"`
	Phone             string `form:"phone" json:"phone"`
	UDF1              string `form:"udf1" json:"udf1"`
	UDF2              string `form:"udf2" json:"udf2"`
	UDF3              string `form:"udf3" json:"udf3"`
	UDF4              string `form:"udf4" json:"udf4"`
	UDF5              string `form:"udf5" json:"udf5"`
	UDF6              string `form:"udf6" json:"udf6"`
	UDF7              string `form:"udf7" json:"udf7"`
	UDF8              string `form:"udf8" json:"udf8"`
	UDF9              string `form:"udf9" json:"udf9"`
	UDF10             string `form:"udf10" json:"udf10"`
	ErrorMessage      string `form:"error_Message" json:"error_Message"`
	AdditionalCharges string `form:"additionalCharges" json:"additionalCharges"`
}

// FormatAmount renders an amount with exactly two decimal places. The
// gateway hashes the amount as a string, so "10.0" and "10.00" are different
// inputs; every amount crossing the gateway boundary goes through here.
func FormatAmount(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

func sha512Hex(input string) string {
	sum := sha512.Sum512([]byte(input))
	return hex.EncodeToString(sum[:])
}

// RequestHash computes the outbound initiation hash:
//
//	key|txnid|amount|productinfo|firstname|email|udf1|<5 empty>|salt
//
// The udf2-udf5 slots are always sent empty; the gateway's v2 checksum
// includes them regardless.
func RequestHash(p RequestParams, key, salt string) string {
	fields := []string{
		key,
		p.TxnID,
		p.Amount,
		p.ProductInfo,
		p.FirstName,
		p.Email,
		p.UDF1,
		"", "", "", "", "",
		salt,
	}
	return sha512Hex(strings.Join(fields, "|"))
}

// ResponseHash computes the inbound callback hash, which is the request
// sequence reversed with the salt first:
//
//	salt|status|udf10|...|udf1|email|firstname|productinfo|amount|txnid|key
//
// When the gateway levies additional charges it prepends them to the
// sequence. Absent udf slots hash as empty strings.
func ResponseHash(cb Callback, key, salt string) string {
	fields := []string{
		salt,
		cb.Status,
		cb.UDF10, cb.UDF9, cb.UDF8, cb.UDF7, cb.UDF6,
		cb.UDF5, cb.UDF4, cb.UDF3, cb.UDF2, cb.UDF1,
		cb.Email,
		cb.FirstName,
		cb.ProductInfo,
		cb.Amount,
		cb.TxnID,
		key,
	}
	sequence := strings.Join(fields, "|")
	if cb.AdditionalCharges != "" {
		sequence = cb.AdditionalCharges + "|" + sequence
	}
	return sha512Hex(sequence)
}

// VerifyResponseHash recomputes the callback hash and compares it against
// the one the gateway supplied. Constant-time comparison; a mismatch means
// tampering or a key/salt misconfiguration and must be audited upstream.
func VerifyResponseHash(cb Callback, key, salt string) bool {
	if cb.Hash == "" {
		return false
	}
	expected := ResponseHash(cb, key, salt)
	supplied := strings.ToLower(strings.TrimSpace(cb.Hash))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(supplied)) == 1
}
