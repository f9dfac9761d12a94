package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"buildplate.dev/plate-api-gateway/app/domain/auth"
	"buildplate.dev/plate-api-gateway/app/domain/catalog"
	"buildplate.dev/plate-api-gateway/app/domain/healthcheck"
	"buildplate.dev/plate-api-gateway/app/domain/user"
	"buildplate.dev/plate-api-gateway/app/domain/user/usertest"
	"buildplate.dev/plate-api-gateway/app/infrastructure/cache"
	httpserver "buildplate.dev/plate-api-gateway/app/interfaces/http"
	"buildplate.dev/plate-api-gateway/app/interfaces/http/routes/dev"
	devcatalog "buildplate.dev/plate-api-gateway/app/interfaces/http/routes/dev/catalog"
	v1 "buildplate.dev/plate-api-gateway/app/interfaces/http/routes/v1"
	authroute "buildplate.dev/plate-api-gateway/app/interfaces/http/routes/v1/auth"
	"buildplate.dev/plate-api-gateway/app/interfaces/http/routes/v1/users"
	"buildplate.dev/plate-api-gateway/config"
	"buildplate.dev/plate-api-gateway/config/appconfig"
	"buildplate.dev/plate-api-gateway/config/environment_variables"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type memorySource struct {
	mu         sync.Mutex
	schemas    []string
	tables     map[string][]string
	failTables map[string]string
	tableCalls map[string]int
}

func (m *memorySource) ListSchemas(ctx context.Context) ([]string, error) {
	return m.schemas, nil
}

func (m *memorySource) ListTables(ctx context.Context, schema string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tableCalls[schema]++
	if msg, ok := m.failTables[schema]; ok {
		return nil, errors.New(msg)
	}
	return m.tables[schema], nil
}

func newServer(source catalog.Source) *httpserver.HttpServer {
	mem := cache.NewMemoryCacheService()
	userService := user.NewService(usertest.NewMemoryRepository(), mem)
	authService := auth.NewAuthService(userService, mem)
	cfg := appconfig.Default()
	v1Route := v1.NewV1Route(
		authroute.NewAuthRoute(authService),
		users.NewUsersRoute(authService, userService),
		&cfg,
	)
	devRoute := dev.NewDevRoute(devcatalog.NewCatalogRoute(catalog.NewCatalogCache(source)))
	return httpserver.NewHttpServer(v1Route, devRoute, healthcheck.NewService(source, mem))
}

func do(server *httpserver.HttpServer, method, path, body string, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for _, m := range mutate {
		m(req)
	}
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(rec *httptest.ResponseRecorder, v any) {
	ExpectWithOffset(1, json.Unmarshal(rec.Body.Bytes(), v)).To(Succeed())
}

func refreshCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.RefreshTokenKey {
			return c
		}
	}
	return nil
}

var _ = Describe("HttpServer", func() {
	var (
		source *memorySource
		server *httpserver.HttpServer
	)

	BeforeEach(func() {
		environment_variables.EnvironmentVariables.APP_ENV = "development"
		source = &memorySource{
			schemas:    []string{"analytics", "public"},
			tables:     map[string][]string{"public": {"users", "accounts", "profiles"}, "analytics": {}},
			failTables: map[string]string{},
			tableCalls: map[string]int{},
		}
		server = newServer(source)
	})

	It("serves version, config and health", func() {
		rec := do(server, http.MethodGet, "/v1/version", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(config.Version))

		rec = do(server, http.MethodGet, "/v1/config", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		var cfg appconfig.Config
		decode(rec, &cfg)
		Expect(cfg.App.Name).To(Equal("Next.js Build Plate"))
		Expect(cfg.ToastNotification.Position).To(Equal(appconfig.ToastBottomRight))

		Expect(do(server, http.MethodGet, "/health-check", "").Code).To(Equal(http.StatusOK))
	})

	Describe("developer catalog", func() {
		It("lists schemas with the default selection", func() {
			rec := do(server, http.MethodGet, "/dev/catalog/schemas", "")
			Expect(rec.Code).To(Equal(http.StatusOK))
			var body devcatalog.SchemasResponse
			decode(rec, &body)
			Expect(body.Schemas).To(Equal([]string{"analytics", "public"}))
			Expect(body.Selected).To(Equal("public"))
		})

		It("lists tables and reports whether they came from the cache", func() {
			rec := do(server, http.MethodGet, "/dev/catalog/schemas/public/tables", "")
			Expect(rec.Code).To(Equal(http.StatusOK))
			var body devcatalog.TablesResponse
			decode(rec, &body)
			Expect(body).To(Equal(devcatalog.TablesResponse{Schema: "public", Tables: []string{"users", "accounts", "profiles"}, Cached: false}))

			rec = do(server, http.MethodGet, "/dev/catalog/schemas/public/tables", "")
			decode(rec, &body)
			Expect(body.Cached).To(BeTrue())
			Expect(source.tableCalls["public"]).To(Equal(1))
		})

		It("returns an empty list for a schema without tables", func() {
			rec := do(server, http.MethodGet, "/dev/catalog/schemas/analytics/tables", "")
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring(`"tables":[]`))
		})

		It("passes the source message through on failure", func() {
			source.failTables["public"] = "permission denied for schema public"
			rec := do(server, http.MethodGet, "/dev/catalog/schemas/public/tables", "")
			Expect(rec.Code).To(Equal(http.StatusBadGateway))
			Expect(rec.Body.String()).To(ContainSubstring("permission denied for schema public"))
		})

		It("redirects in production", func() {
			environment_variables.EnvironmentVariables.APP_ENV = "production"
			server = newServer(source)
			rec := do(server, http.MethodGet, "/dev/catalog/schemas", "")
			Expect(rec.Code).To(Equal(http.StatusFound))
			Expect(rec.Header().Get("Location")).To(Equal("/"))
			Expect(source.tableCalls).To(BeEmpty())
		})
	})

	Describe("auth and users", func() {
		const signupBody = `{"email":"ada@example.com","password":"correct horse","password_confirm":"correct horse"}`

		bearer := func(token string) func(*http.Request) {
			return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
		}

		signup := func() authroute.AccessTokenResponse {
			rec := do(server, http.MethodPost, "/v1/auth/signup", signupBody)
			Expect(rec.Code).To(Equal(http.StatusCreated))
			var tokens authroute.AccessTokenResponse
			decode(rec, &tokens)
			return tokens
		}

		It("rejects mismatched passwords", func() {
			rec := do(server, http.MethodPost, "/v1/auth/signup", `{"email":"ada@example.com","password":"password1","password_confirm":"password2"}`)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(rec.Body.String()).To(ContainSubstring("Passwords do not match"))
		})

		It("rejects an invalid email and an overlong password with 400", func() {
			rec := do(server, http.MethodPost, "/v1/auth/signup", `{"email":"not-an-email","password":"password1","password_confirm":"password1"}`)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))

			long := strings.Repeat("p", 80)
			rec = do(server, http.MethodPost, "/v1/auth/signup", `{"email":"ada@example.com","password":"`+long+`","password_confirm":"`+long+`"}`)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(rec.Body.String()).To(ContainSubstring("at most 72 bytes"))
		})

		It("signs up, sets the refresh cookie and answers /me", func() {
			rec := do(server, http.MethodPost, "/v1/auth/signup", signupBody)
			Expect(rec.Code).To(Equal(http.StatusCreated))
			cookie := refreshCookie(rec)
			Expect(cookie).NotTo(BeNil())
			Expect(cookie.HttpOnly).To(BeTrue())

			var tokens authroute.AccessTokenResponse
			decode(rec, &tokens)
			Expect(tokens.ExpiresIn).To(BeNumerically("~", 900, 5))

			rec = do(server, http.MethodGet, "/v1/auth/me", "", bearer(tokens.AccessToken))
			Expect(rec.Code).To(Equal(http.StatusOK))
			var me authroute.GetMeResponse
			decode(rec, &me)
			Expect(me.Email).To(Equal("ada@example.com"))
		})

		It("refuses a second signup for the same email", func() {
			signup()
			rec := do(server, http.MethodPost, "/v1/auth/signup", signupBody)
			Expect(rec.Code).To(Equal(http.StatusConflict))
		})

		It("logs in and rejects bad credentials", func() {
			signup()
			rec := do(server, http.MethodPost, "/v1/auth/login", `{"email":"ada@example.com","password":"correct horse"}`)
			Expect(rec.Code).To(Equal(http.StatusOK))

			rec = do(server, http.MethodPost, "/v1/auth/login", `{"email":"ada@example.com","password":"wrong password"}`)
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(rec.Body.String()).To(ContainSubstring("Invalid login credentials"))
		})

		It("refreshes until logout revokes the cookie", func() {
			rec := do(server, http.MethodPost, "/v1/auth/signup", signupBody)
			cookie := refreshCookie(rec)

			withCookie := func(c *http.Cookie) func(*http.Request) {
				return func(r *http.Request) { r.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value}) }
			}

			rec = do(server, http.MethodGet, "/v1/auth/refresh-token", "", withCookie(cookie))
			Expect(rec.Code).To(Equal(http.StatusOK))
			rotated := refreshCookie(rec)
			Expect(rotated.Value).NotTo(Equal(cookie.Value))

			rec = do(server, http.MethodPost, "/v1/auth/logout", "", withCookie(rotated))
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(refreshCookie(rec).MaxAge).To(BeNumerically("<", 0))

			rec = do(server, http.MethodGet, "/v1/auth/refresh-token", "", withCookie(rotated))
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})

		It("requires a refresh cookie", func() {
			Expect(do(server, http.MethodGet, "/v1/auth/refresh-token", "").Code).To(Equal(http.StatusUnauthorized))
		})

		It("updates the current user and reads the profile", func() {
			tokens := signup()
			rec := do(server, http.MethodPatch, "/v1/users/me", `{"name":"Ada Lovelace","bio":"Analyst"}`, bearer(tokens.AccessToken))
			Expect(rec.Code).To(Equal(http.StatusOK))
			var updated users.UserResponse
			decode(rec, &updated)
			Expect(updated.Name).To(Equal("Ada Lovelace"))
			Expect(updated.Profile.Bio).To(Equal("Analyst"))

			rec = do(server, http.MethodGet, "/v1/users/me/profile", "", bearer(tokens.AccessToken))
			Expect(rec.Code).To(Equal(http.StatusOK))
			var profile users.ProfileResponse
			decode(rec, &profile)
			Expect(profile.Bio).To(Equal("Analyst"))
		})

		It("validates avatar urls", func() {
			tokens := signup()
			rec := do(server, http.MethodPatch, "/v1/users/me", `{"avatar_url":"javascript:alert(1)"}`, bearer(tokens.AccessToken))
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("requires authentication for user routes", func() {
			Expect(do(server, http.MethodGet, "/v1/users/me/profile", "").Code).To(Equal(http.StatusUnauthorized))
		})
	})
})
