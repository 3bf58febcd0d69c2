package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	cartstore "github.com/dvelkov/toystore/internal/cart"
	"github.com/dvelkov/toystore/internal/checkout"
	"github.com/dvelkov/toystore/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Product{},
		&models.Customer{},
		&models.Order{},
		&models.SaleRecord{},
		&models.User{},
		&models.RefreshToken{},
	))
	return db
}

func echoNew() *echo.Echo {
	return echo.New()
}

func doJSON(e *echo.Echo, method, target string, body any) (*httptest.ResponseRecorder, echo.Context) {
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, rd)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, c
}

// memSessions pins one in-memory cart to every request, standing in for the
// Redis-backed session source.
type memSessions struct {
	storage *cartstore.MemoryStorage
	profile *checkout.Profile
}

func (s *memSessions) CartFor(c echo.Context) *cartstore.Cart {
	return cartstore.New(s.storage)
}

func (s *memSessions) SaveProfile(ctx context.Context, c echo.Context, p checkout.Profile) error {
	s.profile = &p
	return nil
}

func (s *memSessions) LoadProfile(ctx context.Context, c echo.Context) (*checkout.Profile, error) {
	return s.profile, nil
}

type sentEmail struct {
	To      string
	Subject string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentEmail
}

func (f *fakeSender) Send(ctx context.Context, to, subject, html string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentEmail{To: to, Subject: subject})
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}
