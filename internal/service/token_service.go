package service

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/dvelkov/toystore/internal/handlers"
)

type TokenService struct {
	DB            *gorm.DB
	JWTSecret     []byte
	RefreshSecret []byte
}

func (t *TokenService) RotateToken(rawToken string) (string, string, string, error) {
	claims, err := ValidateRefresh(rawToken, t.RefreshSecret, t.DB)
	if err != nil {
		return "", "", "", err
	}

	userID := uint(claims["sub"].(float64))
	role := claims["role"].(string)

	newAccess, err := SignAccessToken(userID, role, t.JWTSecret)
	if err != nil {
		return "", "", "", err
	}

	newRefresh, err := SignRefreshToken(userID, role, t.RefreshSecret)
	if err != nil {
		return "", "", "", err
	}

	if err := SaveRefreshToken(t.DB, newRefresh, userID, role); err != nil {
		return "", "", "", err
	}

	return newAccess, newRefresh, role, nil
}

// checkCookie validates the access cookie and, when it is expired, rotates
// the refresh pair. newRefresh is empty when no rotation happened.
func (t *TokenService) checkCookie(c echo.Context) (newAccess, newRefresh, role string, err error) {
	asCookie, cerr := c.Cookie("accessToken")
	if cerr == nil {
		token, perr := jwt.Parse(asCookie.Value, func(j *jwt.Token) (interface{}, error) {
			return t.JWTSecret, nil
		})
		if perr == nil && token.Valid {
			claims := token.Claims.(jwt.MapClaims)
			r, _ := claims["role"].(string)
			return asCookie.Value, "", r, nil
		}
	}

	rfCookie, cerr := c.Cookie("refreshToken")
	if cerr != nil {
		return "", "", "", echo.NewHTTPError(http.StatusUnauthorized, "refresh token missing")
	}
	newAccess, newRefresh, role, rerr := t.RotateToken(rfCookie.Value)
	if rerr != nil {
		return "", "", "", echo.NewHTTPError(http.StatusUnauthorized, "cannot rotate token: "+rerr.Error())
	}
	return newAccess, newRefresh, role, nil
}

func (t *TokenService) authorize(c echo.Context, adminOnly bool) error {
	newAccess, newRefresh, role, err := t.checkCookie(c)
	if err != nil {
		return err
	}

	if adminOnly && role != "admin" {
		return echo.NewHTTPError(http.StatusForbidden, "you don't have enough rights")
	}

	if newRefresh != "" {
		c.SetCookie(handlers.CreateCookie("accessToken", newAccess, "/", time.Now().Add(15*time.Minute)))
		c.SetCookie(handlers.CreateCookie("refreshToken", newRefresh, "/", time.Now().Add(7*24*time.Hour)))
	}

	token, _ := jwt.Parse(newAccess, func(j *jwt.Token) (interface{}, error) { return t.JWTSecret, nil })
	setUserContext(c, token.Claims.(jwt.MapClaims))
	return nil
}

// AutoRefreshMiddleware admits any logged-in staff member.
func (t *TokenService) AutoRefreshMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := t.authorize(c, false); err != nil {
			return err
		}
		return next(c)
	}
}

// AutoRefreshMiddlewareAdmin additionally requires the admin role.
func (t *TokenService) AutoRefreshMiddlewareAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := t.authorize(c, true); err != nil {
			return err
		}
		return next(c)
	}
}

func setUserContext(c echo.Context, claims jwt.MapClaims) {
	if sub, ok := claims["sub"].(float64); ok {
		c.Set("userID", uint(sub))
	}
	if role, ok := claims["role"].(string); ok {
		c.Set("role", role)
	}
}
