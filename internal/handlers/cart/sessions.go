package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	cartstore "github.com/dvelkov/toystore/internal/cart"
	"github.com/dvelkov/toystore/internal/checkout"
)

const (
	sessionCookie = "cartSession"
	sessionTTL    = 30 * 24 * time.Hour
)

// Source hands out the cart bound to the caller's session, plus the saved
// checkout auto-fill profile living beside it.
type Source interface {
	CartFor(c echo.Context) *cartstore.Cart
	SaveProfile(ctx context.Context, c echo.Context, p checkout.Profile) error
	LoadProfile(ctx context.Context, c echo.Context) (*checkout.Profile, error)
}

// RedisSessions keys carts and profiles by an anonymous session cookie, the
// server-side stand-in for the browser's local storage.
type RedisSessions struct {
	RDB *redis.Client
}

// SessionID returns the visitor's session id, minting a cookie when absent.
func SessionID(c echo.Context) string {
	if ck, err := c.Cookie(sessionCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	id := uuid.NewString()
	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		Expires:  time.Now().Add(sessionTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (s *RedisSessions) CartFor(c echo.Context) *cartstore.Cart {
	key := "cart:" + SessionID(c)
	return cartstore.New(&cartstore.RedisStorage{RDB: s.RDB, Key: key})
}

func (s *RedisSessions) SaveProfile(ctx context.Context, c echo.Context, p checkout.Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.RDB.Set(ctx, "customer:"+SessionID(c), data, sessionTTL).Err()
}

func (s *RedisSessions) LoadProfile(ctx context.Context, c echo.Context) (*checkout.Profile, error) {
	val, err := s.RDB.Get(ctx, "customer:"+SessionID(c)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var p checkout.Profile
	if err := json.Unmarshal(val, &p); err != nil {
		return nil, nil
	}
	return &p, nil
}
