// Package auth issues and verifies bearer tokens and hashes passwords.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/deliverynotes/internal/common"
	"github.com/dmitrijs2005/deliverynotes/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// issuedAtSkew backdates iat so that slightly skewed clocks accept fresh tokens.
const issuedAtSkew = 30 * time.Second

// Principal is the caller identity carried inside a token.
type Principal struct {
	ID          int64
	Email       string
	Role        models.Role
	EmailStatus int
	Status      models.Status
}

// PrincipalOf captures the current state of a contact.
func PrincipalOf(c *models.Contact) Principal {
	return Principal{
		ID:          c.ID(),
		Email:       c.Email(),
		Role:        c.Role(),
		EmailStatus: c.EmailStatus(),
		Status:      c.Status(),
	}
}

// Claims holds the registered claims plus the principal fields.
type Claims struct {
	jwt.RegisteredClaims
	UserID      int64         `json:"id"`
	Email       string        `json:"email"`
	Role        models.Role   `json:"role"`
	EmailStatus int           `json:"emailstatus"`
	Status      models.Status `json:"status"`
}

var timeNow = time.Now

// GenerateToken signs an HS256 token for p. A zero validity produces a token without expiry.
func GenerateToken(p Principal, secretKey []byte, validity time.Duration) (string, error) {
	now := timeNow()
	rc := jwt.RegisteredClaims{
		ID:       uuid.NewString(),
		IssuedAt: jwt.NewNumericDate(now.Add(-issuedAtSkew)),
	}
	if validity > 0 {
		rc.ExpiresAt = jwt.NewNumericDate(now.Add(validity))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: rc,
		UserID:           p.ID,
		Email:            p.Email,
		Role:             p.Role,
		EmailStatus:      p.EmailStatus,
		Status:           p.Status,
	})

	return token.SignedString(secretKey)
}

// ParseToken verifies tokenString and returns its principal.
// Any failure, including expiry, is reported as ErrInvalidJWT.
func ParseToken(tokenString string, secretKey []byte) (*Principal, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secretKey, nil
	}, jwt.WithTimeFunc(timeNow))
	if err != nil || !token.Valid {
		return nil, common.ErrInvalidJWT
	}

	return &Principal{
		ID:          claims.UserID,
		Email:       claims.Email,
		Role:        claims.Role,
		EmailStatus: claims.EmailStatus,
		Status:      claims.Status,
	}, nil
}

// Issuer binds the signing secret and the default validity.
type Issuer struct {
	secret   []byte
	validity time.Duration
}

func NewIssuer(secret string, validity time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), validity: validity}
}

// Issue returns a token that expires after the configured validity.
func (i *Issuer) Issue(p Principal) (string, error) {
	return GenerateToken(p, i.secret, i.validity)
}

// IssuePermanent returns a token without expiry.
func (i *Issuer) IssuePermanent(p Principal) (string, error) {
	return GenerateToken(p, i.secret, 0)
}

func (i *Issuer) Parse(token string) (*Principal, error) {
	return ParseToken(token, i.secret)
}
