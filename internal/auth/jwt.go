package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token uses carried in the "use" claim.
const (
	UseAccess  = "access"
	UseRefresh = "refresh"
)

// RoleTeacher is the only role issued today.
const RoleTeacher = "teacher"

var (
	ErrNameRequired = errors.New("teacher name required")
	ErrInvalidToken = errors.New("invalid token")
	ErrWrongUse     = errors.New("token not valid for this use")
)

// TokenPair holds access and refresh tokens.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
}

// Claims represents the session JWT payload. Subject is the teacher's
// display name.
type Claims struct {
	Role string `json:"role"`
	Use  string `json:"use"`
	jwt.RegisteredClaims
}

// Issuer signs session tokens with HS256.
type Issuer struct {
	Name       string
	Key        []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	now        func() time.Time
}

// NewIssuer creates an issuer.
func NewIssuer(name, key string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{Name: name, Key: []byte(key), AccessTTL: accessTTL, RefreshTTL: refreshTTL, now: time.Now}
}

// Issue signs an access/refresh pair for teacher.
func (i *Issuer) Issue(teacher string) (TokenPair, error) {
	teacher = strings.TrimSpace(teacher)
	if teacher == "" {
		return TokenPair{}, ErrNameRequired
	}
	now := i.now()
	accessExp := now.Add(i.AccessTTL)
	refreshExp := now.Add(i.RefreshTTL)

	access, err := i.sign(teacher, UseAccess, now, accessExp)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := i.sign(teacher, UseRefresh, now, refreshExp)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
	}, nil
}

// Refresh validates a refresh token and issues a new pair for its subject.
func (i *Issuer) Refresh(refreshToken string) (TokenPair, error) {
	claims, err := i.Parse(refreshToken, UseRefresh)
	if err != nil {
		return TokenPair{}, err
	}
	return i.Issue(claims.Subject)
}

func (i *Issuer) sign(subject, use string, iat, exp time.Time) (string, error) {
	claims := Claims{
		Role: RoleTeacher,
		Use:  use,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.Name,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(iat),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.Key)
}

// Parse validates a token and checks that it was issued for use.
func (i *Issuer) Parse(tokenStr, use string) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return i.Key, nil
	}, jwt.WithIssuer(i.Name), jwt.WithTimeFunc(i.now))
	if err != nil {
		return Claims{}, errors.Join(ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}
	if claims.Use != use {
		return Claims{}, ErrWrongUse
	}
	return *claims, nil
}
