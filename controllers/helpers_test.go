package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-site/database"
	"github.com/yeremiapane/restaurant-site/middlewares"
	"github.com/yeremiapane/restaurant-site/models"
	"github.com/yeremiapane/restaurant-site/services"
	"github.com/yeremiapane/restaurant-site/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	utils.SilenceLoggers()
	os.Exit(m.Run())
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.Models()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// asUser stands in for RequireAuth in handler tests.
func asUser(id uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middlewares.ContextUserID, id)
		c.Next()
	}
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	return doJSONAuth(t, r, method, path, "", body)
}

func doJSONAuth(t *testing.T, r http.Handler, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func decode(t *testing.T, env envelope, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, out))
}

type fakeNotifier struct {
	mu            sync.Mutex
	confirmations []services.BookingConfirmationPayload
	cancellations []services.CancellationPayload
	paymentLinks  []services.PaymentLinkPayload
	err           error
}

func (f *fakeNotifier) SendBookingConfirmation(_ context.Context, p services.BookingConfirmationPayload) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := p.Validate(); err != nil {
		return "", err
	}
	f.confirmations = append(f.confirmations, p)
	return "email_confirm", f.err
}

func (f *fakeNotifier) SendCancellation(_ context.Context, p services.CancellationPayload) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := p.Validate(); err != nil {
		return "", err
	}
	f.cancellations = append(f.cancellations, p)
	return "email_cancel", f.err
}

func (f *fakeNotifier) SendPaymentLink(_ context.Context, p services.PaymentLinkPayload) (*services.PaymentLinkResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	f.paymentLinks = append(f.paymentLinks, p)
	return &services.PaymentLinkResult{SessionID: "cs_1", PaymentURL: "https://pay.test/cs_1", EmailID: "email_link"}, nil
}

func seedMenu(t *testing.T, db *gorm.DB) (dal, naan models.MenuItem) {
	t.Helper()
	dal = models.MenuItem{Name: "Dal Makhani", Price: 220, Category: "Mains", IsAvailable: true, DietaryTags: []string{"vegetarian"}}
	naan = models.MenuItem{Name: "Butter Naan", Price: 45, Category: "Breads", IsAvailable: true, DietaryTags: []string{}}
	require.NoError(t, db.Create(&dal).Error)
	require.NoError(t, db.Create(&naan).Error)
	return dal, naan
}
