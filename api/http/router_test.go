package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apihttp "github.com/stuimpact/stuimpactweb2/api/http"
	"github.com/stuimpact/stuimpactweb2/api/http/handlers"
	"github.com/stuimpact/stuimpactweb2/pkg/auth"
	"github.com/stuimpact/stuimpactweb2/pkg/contact"
	"github.com/stuimpact/stuimpactweb2/pkg/health"
	"github.com/stuimpact/stuimpactweb2/pkg/opportunity"
	"github.com/stuimpact/stuimpactweb2/pkg/search"
	"github.com/stuimpact/stuimpactweb2/pkg/security/jwt"
)

type memCatalog struct{ items []opportunity.Opportunity }

func (m *memCatalog) Search(_ context.Context, tags []string, limit, offset int) ([]opportunity.Opportunity, error) {
	var out []opportunity.Opportunity
	for _, o := range m.items {
		if containsAll(o.Tags, tags) {
			out = append(out, o)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	return out[offset:min(offset+limit, len(out))], nil
}

func (m *memCatalog) GetByID(_ context.Context, id string) (opportunity.Opportunity, error) {
	for _, o := range m.items {
		if o.ID == id {
			return o, nil
		}
	}
	return opportunity.Opportunity{}, opportunity.ErrNotFound
}

func (m *memCatalog) Upsert(_ context.Context, o opportunity.Opportunity) error {
	m.items = append(m.items, o)
	return nil
}

func containsAll(have, want []string) bool {
	set := map[string]bool{}
	for _, h := range have {
		set[h] = true
	}
	for _, w := range want {
		if !set[w] {
			return false
		}
	}
	return true
}

type nopContact struct{}

func (nopContact) Submit(_ context.Context, name, email, body string) (contact.Message, error) {
	return contact.Message{}, nil
}

type nopAuth struct{}

func (nopAuth) Register(context.Context, string, string) (auth.AuthResult, error) {
	return auth.AuthResult{}, errors.New("not used")
}
func (nopAuth) Login(context.Context, string, string) (auth.AuthResult, error) {
	return auth.AuthResult{}, auth.ErrInvalidCredentials
}
func (nopAuth) Verify(context.Context, string, string) error { return nil }

func newApp(t *testing.T) (*fiber.App, *jwt.Generator) {
	t.Helper()
	repo := &memCatalog{}
	for i := 0; i < 12; i++ {
		repo.items = append(repo.items, opportunity.Opportunity{
			ID:    string(rune('a' + i)),
			Title: "Program",
			Tags:  []string{search.GradeFreshmen, "BIOLOGY"},
		})
	}
	catalog := opportunity.NewService(repo, nil, opportunity.Options{PageSize: 10})
	gen := jwt.NewGenerator("secret", "stuimpact", time.Hour)

	app := fiber.New(fiber.Config{ErrorHandler: apihttp.ErrorHandler})
	apihttp.Register(app, apihttp.Handlers{
		Search:      handlers.NewSearchHandler(catalog),
		Opportunity: handlers.NewOpportunityHandler(catalog),
		Contact:     handlers.NewContactHandler(nopContact{}),
		Auth:        handlers.NewAuthHandler(nopAuth{}),
		Health:      handlers.NewHealthHandler(health.NewService()),
		AdminOnly:   jwt.NewAuthMiddleware(gen, true),
	})
	return app, gen
}

func call(t *testing.T, app *fiber.App, req *http.Request) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp.StatusCode, body
}

func jsonReq(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestRouter_SearchPagesThroughCatalog(t *testing.T) {
	app, _ := newApp(t)

	status, body := call(t, app, jsonReq(http.MethodPost, "/api/v1/search", `{"interest":"BIOLOGY","grade":"9","page":1}`))
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["opportunities"], 10)
	assert.Equal(t, false, body["isLastPage"])

	status, body = call(t, app, jsonReq(http.MethodPost, "/api/v1/search", `{"interest":"BIOLOGY","grade":"9","page":2}`))
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["opportunities"], 2)
	assert.Equal(t, true, body["isLastPage"])

	status, body = call(t, app, jsonReq(http.MethodPost, "/api/v1/search", `{"interest":"BIOLOGY","grade":"9","page":3}`))
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["opportunities"])
	assert.NotNil(t, body["opportunities"], "empty page is [] not null")
}

func TestRouter_Routes(t *testing.T) {
	app, _ := newApp(t)

	status, _ := call(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, status)

	status, _ = call(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/ready", nil))
	assert.Equal(t, http.StatusOK, status)

	status, body := call(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/opportunities/c", nil))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "c", body["id"])

	status, body = call(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/opportunities?interest=BIO&grade=FRESHMEN", nil))
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, body["opportunities"], 10)

	status, _ = call(t, app, jsonReq(http.MethodPost, "/api/v1/contact", `{"name":"a","email":"a@b.co","message":"m"}`))
	assert.Equal(t, http.StatusOK, status)

	status, body = call(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, status)
	assert.NotEmpty(t, body["error"])
}

func TestRouter_CatalogWritesNeedAdmin(t *testing.T) {
	app, gen := newApp(t)
	payload := `{"title":"Debate league","tags":["LAW","SENIORS"]}`

	status, _ := call(t, app, jsonReq(http.MethodPost, "/api/v1/opportunities", payload))
	assert.Equal(t, http.StatusUnauthorized, status)

	student, err := gen.Generate(context.Background(), auth.User{})
	require.NoError(t, err)
	req := jsonReq(http.MethodPost, "/api/v1/opportunities", payload)
	req.Header.Set("Authorization", "Bearer "+student)
	status, _ = call(t, app, req)
	assert.Equal(t, http.StatusForbidden, status)

	admin, err := gen.Generate(context.Background(), auth.User{IsAdmin: true})
	require.NoError(t, err)
	req = jsonReq(http.MethodPost, "/api/v1/opportunities", payload)
	req.Header.Set("Authorization", "Bearer "+admin)
	status, body := call(t, app, req)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, []any{"LAW", "SENIORS"}, body["tags"])

	status, body = call(t, app, jsonReq(http.MethodPost, "/api/v1/search", `{"interest":"LAW","grade":"12"}`))
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["opportunities"], 1)
}
