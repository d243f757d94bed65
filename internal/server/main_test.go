package server

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"foodgram/internal/config"
	"foodgram/internal/database"
	"foodgram/internal/middleware"
	"foodgram/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
	srv *Server
}

func newTestEnv(t *testing.T, rdb *redis.Client) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		JWTSecret:            testSecret,
		JWTTTLHours:          1,
		PageSize:             6,
		RecipesLimit:         3,
		ShoppingListFilename: "shopping_list.txt",
		FeatureFlags:         "recipe_cache=off",
	}
	srv, err := NewServerWithDeps(cfg, db, rdb)
	require.NoError(t, err)
	return &testEnv{app: srv.NewApp(), db: db, srv: srv}
}

func newMiniredis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

// createUser inserts a user directly and returns it with a bearer token.
func (e *testEnv) createUser(t *testing.T, username string) (models.User, string) {
	t.Helper()
	u := models.User{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: username,
		LastName:  "Tester",
		Password:  "x",
	}
	require.NoError(t, e.db.Create(&u).Error)
	token, err := middleware.IssueToken(testSecret, u.ID, u.Username, time.Hour)
	require.NoError(t, err)
	return u, token
}

type catalog struct {
	breakfast, dinner models.Tag
	flour, milk, egg  models.Ingredient
}

func (e *testEnv) seedCatalog(t *testing.T) catalog {
	t.Helper()
	c := catalog{
		breakfast: models.Tag{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"},
		dinner:    models.Tag{Name: "Dinner", Color: "#49B64E", Slug: "dinner"},
		flour:     models.Ingredient{Name: "flour", MeasurementUnit: "g"},
		milk:      models.Ingredient{Name: "milk", MeasurementUnit: "ml"},
		egg:       models.Ingredient{Name: "egg", MeasurementUnit: "pcs"},
	}
	for _, v := range []any{&c.breakfast, &c.dinner, &c.flour, &c.milk, &c.egg} {
		require.NoError(t, e.db.Create(v).Error)
	}
	return c
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func recipeBody(name string, tags []uint, ingredients ...map[string]any) map[string]any {
	return map[string]any{
		"name":         name,
		"text":         name + " text",
		"image":        "data:image/png;base64,iVBORw0KGgo=",
		"cooking_time": 15,
		"tags":         tags,
		"ingredients":  ingredients,
	}
}

func line(id uint, amount int) map[string]any {
	return map[string]any{"id": id, "amount": amount}
}
