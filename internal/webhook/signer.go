// Package webhook verifies and decodes identity provider webhook deliveries.
//
// Deliveries are signed the Svix way: the signed content is
// "{id}.{timestamp}.{body}", the MAC is HMAC-SHA256 keyed with the base64
// payload of a "whsec_" secret, and the signature header carries one or more
// space separated "v1,<base64>" entries.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrMissingHeaders is returned when any signing header is absent.
	ErrMissingHeaders = errors.New("missing webhook signing headers")
	// ErrReplayWindowExceeded is returned when timestamp is outside replay window.
	ErrReplayWindowExceeded = errors.New("timestamp outside replay window")
	// ErrInvalidSignature is returned when signature verification fails.
	ErrInvalidSignature = errors.New("invalid signature")
	// ErrInvalidSecret is returned when the signing secret cannot be decoded.
	ErrInvalidSecret = errors.New("invalid webhook signing secret")
)

const (
	// DefaultReplayWindow is the default replay protection window.
	DefaultReplayWindow = 5 * time.Minute

	secretPrefix     = "whsec_"
	signatureVersion = "v1"
)

// Header names set on signed deliveries.
const (
	HeaderID        = "svix-id"
	HeaderTimestamp = "svix-timestamp"
	HeaderSignature = "svix-signature"
)

// Headers holds the signing headers of one delivery.
type Headers struct {
	ID        string
	Timestamp string
	Signature string
}

// HeadersFromRequest reads the signing headers from h.
func HeadersFromRequest(h http.Header) Headers {
	return Headers{
		ID:        h.Get(HeaderID),
		Timestamp: h.Get(HeaderTimestamp),
		Signature: h.Get(HeaderSignature),
	}
}

// Verifier checks delivery signatures against one signing secret.
type Verifier struct {
	key          []byte
	replayWindow time.Duration
	now          func() time.Time
}

// NewVerifier decodes a "whsec_" secret. The prefix is optional.
func NewVerifier(secret string) (*Verifier, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, secretPrefix))
	if err != nil || len(key) == 0 {
		return nil, ErrInvalidSecret
	}

	return &Verifier{
		key:          key,
		replayWindow: DefaultReplayWindow,
		now:          time.Now,
	}, nil
}

// Verify checks that payload was signed with the verifier's secret within
// the replay window. Any of the "v1" entries in the signature header may match.
func (v *Verifier) Verify(payload []byte, h Headers) error {
	if h.ID == "" || h.Timestamp == "" || h.Signature == "" {
		return ErrMissingHeaders
	}

	ts, err := strconv.ParseInt(h.Timestamp, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}

	if abs(v.now().Unix()-ts) > int64(v.replayWindow.Seconds()) {
		return ErrReplayWindowExceeded
	}

	expected := GenerateSignature(v.key, h.ID, ts, payload)
	for _, entry := range strings.Fields(h.Signature) {
		version, sig, ok := strings.Cut(entry, ",")
		if !ok || version != signatureVersion {
			continue
		}
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return nil
		}
	}

	return ErrInvalidSignature
}

// GenerateSignature returns the base64 HMAC-SHA256 of "{id}.{timestamp}.{payload}".
func GenerateSignature(key []byte, id string, timestamp int64, payload []byte) string {
	mac := hmac.New(sha256.New, key)
	fmt.Fprintf(mac, "%s.%d.", id, timestamp)
	mac.Write(payload)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// SignatureHeader formats a signature as a header entry.
func SignatureHeader(signature string) string {
	return signatureVersion + "," + signature
}

func abs(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}
