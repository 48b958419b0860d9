package utils // package utils provides helper functions for session token creation and parsing

import (
    "errors" // sentinel errors distinguishing expiry from malformed tokens
    "time"   // time utilities for generating expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// ErrTokenExpired is returned by ParseSessionToken when the token's
// signature is valid but its expiry has passed.
var ErrTokenExpired = errors.New("token expired")

// ErrTokenMalformed is returned by ParseSessionToken for every other
// parse or verification failure (bad signature, wrong algorithm,
// garbage input, missing claims).
var ErrTokenMalformed = errors.New("token malformed")

// SessionToken represents a signed JWT session token along with its expiry.
// The Token field contains the JWT string.  Exp stores the expiration
// timestamp as a time.Time.  Session tokens are long-lived (days) and are
// carried in the Authorization header on every protected request.
type SessionToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// SessionClaims is the decoded identity carried inside a session token.
type SessionClaims struct {
    UserID uint64 // subject of the token
    Email  string // email at issue time
    Name   string // display name at issue time
}

// NewSessionToken builds and signs an HS256 JWT for a user.  It takes the
// signing secret, the user's identity, and a TTL in days.  The JWT carries
// the subject (sub), email, name, expiration (exp) and issued at (iat)
// claims.
func NewSessionToken(secret string, userID uint64, email, name string, ttlDays int) (SessionToken, error) {
    // Calculate the expiration time by adding the TTL to the current UTC time.
    exp := time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour)
    claims := jwt.MapClaims{
        "sub":   userID,
        "email": email,
        "name":  name,
        "exp":   exp.Unix(),
        "iat":   time.Now().UTC().Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return SessionToken{}, err
    }
    return SessionToken{Token: signed, Exp: exp}, nil
}

// ParseSessionToken verifies the signature and expiry of a session token and
// returns the identity claims it carries.  Expired tokens are reported as
// ErrTokenExpired; every other failure is ErrTokenMalformed so callers never
// see library internals.
func ParseSessionToken(secret, raw string) (SessionClaims, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        // Type assert the signing method to HMAC; reject others.
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrTokenMalformed
        }
        return []byte(secret), nil
    })
    if err != nil {
        if errors.Is(err, jwt.ErrTokenExpired) {
            return SessionClaims{}, ErrTokenExpired
        }
        return SessionClaims{}, ErrTokenMalformed
    }
    if !tok.Valid {
        return SessionClaims{}, ErrTokenMalformed
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return SessionClaims{}, ErrTokenMalformed
    }
    sub, ok := claims["sub"].(float64) // JSON numbers decode as float64
    if !ok || sub <= 0 {
        return SessionClaims{}, ErrTokenMalformed
    }
    out := SessionClaims{UserID: uint64(sub)}
    if v, ok := claims["email"].(string); ok {
        out.Email = v
    }
    if v, ok := claims["name"].(string); ok {
        out.Name = v
    }
    return out, nil
}
