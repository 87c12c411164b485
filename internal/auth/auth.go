// Package auth provides Polymarket L2 API authentication using
// HMAC-SHA256 signatures.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"
)

// Credentials holds the L2 API credentials for signing requests.
// These are consumed as-is; deriving them from a wallet key is out of
// scope for this service.
type Credentials struct {
	Address    string // Proxy wallet address (POLY_ADDRESS header)
	APIKey     string // API key id
	Secret     string // Base64url-encoded HMAC key
	Passphrase string // API passphrase
}

// Complete reports whether every field needed to sign is present.
func (c Credentials) Complete() bool {
	return c.Address != "" && c.APIKey != "" && c.Secret != "" && c.Passphrase != ""
}

// SignRequest generates authentication headers for an authenticated
// API request. body may be nil for GET requests.
func (c Credentials) SignRequest(method, path string, body []byte, at time.Time) (map[string]string, error) {
	timestamp := strconv.FormatInt(at.Unix(), 10)

	signature, err := c.generateSignature(timestamp, method, path, body)
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"POLY_ADDRESS":    c.Address,
		"POLY_API_KEY":    c.APIKey,
		"POLY_PASSPHRASE": c.Passphrase,
		"POLY_TIMESTAMP":  timestamp,
		"POLY_SIGNATURE":  signature,
	}, nil
}

// generateSignature creates an HMAC-SHA256 signature.
// Message format: timestamp + method + path + body
func (c Credentials) generateSignature(timestamp, method, path string, body []byte) (string, error) {
	key, err := base64.URLEncoding.DecodeString(c.Secret)
	if err != nil {
		return "", fmt.Errorf("decode api secret: %w", err)
	}

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(timestamp))
	mac.Write([]byte(method))
	mac.Write([]byte(path))
	mac.Write(body)

	return base64.URLEncoding.EncodeToString(mac.Sum(nil)), nil
}
