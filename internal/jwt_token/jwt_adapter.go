package jwttoken

import (
	"claimflow/internal/platform/middleware"
)

func ToMiddlewareIdentity(claims *PluginClaims) *middleware.PluginIdentity {
	return &middleware.PluginIdentity{
		Plugin: claims.Plugin,
		UserID: claims.UserID,
	}
}

// JWTServiceAdapter exposes JWTService as a middleware.TokenValidator.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*middleware.PluginIdentity, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return ToMiddlewareIdentity(claims), nil
}
