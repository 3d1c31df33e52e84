package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/campusvoice/backend/core"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = fmt.Errorf("token expired: %w", ErrTokenInvalid)
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Roles string `json:"roles,omitempty"` // comma-joined role names
}

// TokenService mints and verifies the signed bearer tokens used on every
// authenticated request. Tokens are stateless: nothing is stored server-side
// and there is no revocation before natural expiry.
type TokenService struct {
	issuer string
	secret []byte
	ttl    time.Duration
}

func NewTokenService(conf *core.Config) *TokenService {
	return &TokenService{
		issuer: conf.AppName,
		secret: []byte(conf.SecretKey),
		ttl:    conf.Server.JWTExpirationDelta,
	}
}

// Issue generates a signed JWT carrying the subject and role claims.
func (svc *TokenService) Issue(subject string, roles ...string) (string, error) {
	now := NowFunc()
	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    svc.issuer,
			Subject:   subject,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(svc.ttl).Unix(),
		},
		Roles: strings.Join(roles, ","),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	ss, err := token.SignedString(svc.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return ss, nil
}

// Subject parses and verifies a token and returns its subject claim.
// It fails with ErrTokenInvalid on any signature/parse failure and with
// ErrTokenExpired (which matches ErrTokenInvalid) past expiry.
func (svc *TokenService) Subject(token string) (string, error) {
	claims, err := svc.parse(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// Validate reports whether a token's signature verifies and it has not
// expired. It never fails loudly: all parse/signature/expiry/argument
// failures reduce to false. Callers validate before extracting the subject.
func (svc *TokenService) Validate(token string) bool {
	_, err := svc.parse(token)
	return err == nil
}

func (svc *TokenService) parse(token string) (*Claims, error) {
	claims := new(Claims)
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return svc.secret, nil
	})
	if err != nil {
		if vErr, ok := err.(*jwt.ValidationError); ok && vErr.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
