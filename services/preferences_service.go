package services

import (
	"errors"
	"rally-metrics-go/models"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// PreferencesCookieName is the cookie holding the signed sort preference
const PreferencesCookieName = "rm_prefs"

// PreferencesClaims represents the claims in the preferences token
type PreferencesClaims struct {
	SortField     models.SortField     `json:"sort"`
	SortDirection models.SortDirection `json:"dir"`
	jwt.RegisteredClaims
}

// PreferencesService signs and reads the sort preference cookie
type PreferencesService struct {
	secret []byte
	expiry time.Duration
}

// NewPreferencesService creates a new preferences service
func NewPreferencesService(secret string) *PreferencesService {
	return &PreferencesService{
		secret: []byte(secret),
		expiry: 90 * 24 * time.Hour,
	}
}

// Expiry returns how long a preferences token stays valid
func (p *PreferencesService) Expiry() time.Duration {
	return p.expiry
}

// GenerateToken signs cfg into a token
func (p *PreferencesService) GenerateToken(cfg models.SortConfig) (string, error) {
	now := time.Now()
	claims := PreferencesClaims{
		SortField:     cfg.Field,
		SortDirection: cfg.Direction,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(p.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "rally-metrics-go",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.secret)
}

// ParseToken validates a token and returns the stored sort config
func (p *PreferencesService) ParseToken(tokenString string) (models.SortConfig, error) {
	token, err := jwt.ParseWithClaims(tokenString, &PreferencesClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid token signing method")
		}
		return p.secret, nil
	})
	if err != nil {
		return models.SortConfig{}, err
	}

	claims, ok := token.Claims.(*PreferencesClaims)
	if !ok || !token.Valid {
		return models.SortConfig{}, errors.New("invalid token")
	}

	field, ok := models.ParseSortField(string(claims.SortField))
	if !ok {
		return models.SortConfig{}, errors.New("invalid sort field in token")
	}
	direction, ok := models.ParseSortDirection(string(claims.SortDirection))
	if !ok {
		return models.SortConfig{}, errors.New("invalid sort direction in token")
	}
	return models.SortConfig{Field: field, Direction: direction}, nil
}

// SortConfigOrDefault parses tokenString, falling back to the default sort
func (p *PreferencesService) SortConfigOrDefault(tokenString string) models.SortConfig {
	if tokenString == "" {
		return models.DefaultSortConfig()
	}
	cfg, err := p.ParseToken(tokenString)
	if err != nil {
		return models.DefaultSortConfig()
	}
	return cfg
}
