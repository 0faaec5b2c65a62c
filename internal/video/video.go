// Package video issues call credentials for the hosted chat/video
// provider.  The lifecycle service depends only on Provider so tests can
// substitute a fake.
package video

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotConfigured is returned when no provider credentials are set.
var ErrNotConfigured = errors.New("video provider not configured")

// Provider mints a user token for a call.
type Provider interface {
	// APIKey is the public key the frontend SDK is initialised with.
	APIKey() string
	// UserToken returns a token scoped to userID.
	UserToken(userID uint64) (string, error)
}

// CallID derives the provider call identifier of a meeting.
func CallID(meetingID uint64) string {
	return "meeting_" + strconv.FormatUint(meetingID, 10)
}

// StreamProvider signs Stream-compatible user tokens: HS256 JWTs carrying a
// string user_id claim, signed with the application secret.
type StreamProvider struct {
	Key    string
	Secret string
	TTL    time.Duration

	now func() time.Time
}

// NewStreamProvider builds a provider.  A zero ttl issues tokens without
// expiry, as the provider allows.
func NewStreamProvider(key, secret string, ttl time.Duration) *StreamProvider {
	return &StreamProvider{Key: key, Secret: secret, TTL: ttl, now: time.Now}
}

func (p *StreamProvider) APIKey() string { return p.Key }

// UserToken signs a token for userID.
func (p *StreamProvider) UserToken(userID uint64) (string, error) {
	if p.Key == "" || p.Secret == "" {
		return "", ErrNotConfigured
	}
	now := p.now().UTC()
	claims := jwt.MapClaims{
		"user_id": strconv.FormatUint(userID, 10),
		"iat":     now.Unix(),
	}
	if p.TTL > 0 {
		claims["exp"] = now.Add(p.TTL).Unix()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(p.Secret))
}
