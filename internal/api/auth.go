package api

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// HealthPath is served without a token.
const HealthPath = "/pricing/health"

// TokenHeader carries "<prefix>_<jwt>" on every authenticated request.
const TokenHeader = "token"

// JwtCustomClaims scopes a token to one company. Tokens without a company
// belong to platform operators and may act on any company.
type JwtCustomClaims struct {
	CompanyID string `json:"company_id,omitempty"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates HS256 tokens read from the token header.
func AuthMiddleware(secret, prefix string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(secret),
		TokenLookup: "header:" + TokenHeader + ":" + prefix + "_",
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(JwtCustomClaims)
		},
		Skipper: func(c echo.Context) bool {
			return c.Path() == HealthPath
		},
	})
}

// tokenCompany returns the company the request's token is scoped to, or ""
// when the token is unscoped or the route is not authenticated.
func tokenCompany(c echo.Context) string {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return ""
	}
	claims, ok := token.Claims.(*JwtCustomClaims)
	if !ok {
		return ""
	}
	return claims.CompanyID
}

func companyAllowed(c echo.Context, companyID string) bool {
	scope := tokenCompany(c)
	return scope == "" || scope == companyID
}

func forbidden(c echo.Context) error {
	return c.JSON(http.StatusForbidden, ErrorResponse{Error: "token is not valid for this company"})
}

// CompanyScope rejects requests whose :companyId is not the token's company.
func CompanyScope(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !companyAllowed(c, c.Param("companyId")) {
			return forbidden(c)
		}
		return next(c)
	}
}
