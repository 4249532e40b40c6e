package syncserver

import (
	"errors"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid device token")
	ErrNoSecret     = errors.New("jwt secret is not configured")
)

type Claims struct {
	Device string `json:"device"`
	jwt.StandardClaims
}

// Issuer signs and checks device tokens handed out at pairing.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

type Pairing struct {
	Device    string    `json:"device"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (i *Issuer) Issue(device string) (*Pairing, error) {
	if len(i.secret) == 0 {
		return nil, ErrNoSecret
	}

	device = strings.TrimSpace(device)
	if device == "" {
		device = "device-" + uuid.NewString()[:8]
	}

	now := i.now()
	expires := now.Add(i.ttl)
	claims := &Claims{
		Device: device,
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.NewString(),
			IssuedAt:  now.Unix(),
			ExpiresAt: expires.Unix(),
			Subject:   device,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return nil, err
	}

	return &Pairing{Device: device, Token: signed, ExpiresAt: time.Unix(expires.Unix(), 0)}, nil
}

func (i *Issuer) Parse(signed string) (*Claims, error) {
	if len(i.secret) == 0 {
		return nil, ErrNoSecret
	}

	token, err := jwt.ParseWithClaims(signed, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Device == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
