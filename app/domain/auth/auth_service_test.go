package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"buildplate.dev/plate-api-gateway/app/domain/auth"
	"buildplate.dev/plate-api-gateway/app/domain/user"
	"buildplate.dev/plate-api-gateway/app/domain/user/usertest"
	"buildplate.dev/plate-api-gateway/app/infrastructure/cache"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("AuthService", func() {
	var (
		ctx     context.Context
		repo    *usertest.MemoryRepository
		mem     *cache.MemoryCacheService
		service *auth.AuthService
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = usertest.NewMemoryRepository()
		mem = cache.NewMemoryCacheService()
		service = auth.NewAuthService(user.NewService(repo, mem), mem)
	})

	signup := func(email string) *user.User {
		u, err := service.Signup(ctx, auth.SignupRequest{
			Email:           email,
			Password:        "correct horse",
			PasswordConfirm: "correct horse",
		})
		Expect(err).NotTo(HaveOccurred())
		return u
	}

	Describe("Signup", func() {
		It("rejects mismatched passwords before touching storage", func() {
			_, err := service.Signup(ctx, auth.SignupRequest{
				Email:           "ada@example.com",
				Password:        "password1",
				PasswordConfirm: "password2",
			})
			Expect(err).To(MatchError(auth.ErrPasswordMismatch))
			Expect(repo.Len()).To(BeZero())
		})

		It("validates email and password length", func() {
			_, err := service.Signup(ctx, auth.SignupRequest{Email: "not-an-email", Password: "password1", PasswordConfirm: "password1"})
			Expect(err).To(MatchError(auth.ErrInvalidEmail))

			_, err = service.Signup(ctx, auth.SignupRequest{Email: "ada@example.com", Password: "short", PasswordConfirm: "short"})
			Expect(err).To(MatchError(auth.ErrWeakPassword))
		})

		It("rejects passwords bcrypt cannot hash", func() {
			long := strings.Repeat("p", auth.MaxPasswordBytes+8)
			_, err := service.Signup(ctx, auth.SignupRequest{Email: "ada@example.com", Password: long, PasswordConfirm: long})
			Expect(err).To(MatchError(auth.ErrPasswordTooLong))
			Expect(repo.Len()).To(Equal(0))

			limit := strings.Repeat("p", auth.MaxPasswordBytes)
			_, err = service.Signup(ctx, auth.SignupRequest{Email: "ada@example.com", Password: limit, PasswordConfirm: limit})
			Expect(err).NotTo(HaveOccurred())
		})

		It("stores a bcrypt hash, never the password", func() {
			u := signup("Ada@Example.com")
			Expect(u.Email).To(Equal("ada@example.com"))
			Expect(u.Name).To(Equal("ada"))
			Expect(u.PasswordHash).NotTo(BeEmpty())
			Expect(u.PasswordHash).NotTo(ContainSubstring("correct horse"))
		})

		It("refuses a registered email", func() {
			signup("ada@example.com")
			_, err := service.Signup(ctx, auth.SignupRequest{
				Email:           "ADA@example.com",
				Password:        "another one",
				PasswordConfirm: "another one",
			})
			Expect(err).To(MatchError(user.ErrEmailTaken))
		})

		It("reports a signup already in progress for the email", func() {
			unlock, err := mem.Lock(ctx, "v1:user:lock:ada@example.com", time.Minute)
			Expect(err).NotTo(HaveOccurred())
			defer unlock()

			_, err = service.Signup(ctx, auth.SignupRequest{
				Email:           "ada@example.com",
				Password:        "password1",
				PasswordConfirm: "password1",
			})
			Expect(err).To(MatchError(auth.ErrSignupInProgress))
		})

		It("creates one account under concurrent signups", func() {
			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					_, _ = service.Signup(ctx, auth.SignupRequest{
						Email:           "ada@example.com",
						Password:        "password1",
						PasswordConfirm: "password1",
					})
				}()
			}
			wg.Wait()
			Expect(repo.Len()).To(Equal(1))
		})
	})

	Describe("Login", func() {
		It("accepts the right password", func() {
			created := signup("ada@example.com")
			u, err := service.Login(ctx, "ada@example.com", "correct horse")
			Expect(err).NotTo(HaveOccurred())
			Expect(u.PublicID).To(Equal(created.PublicID))
		})

		It("gives the same error for unknown users and wrong passwords", func() {
			signup("ada@example.com")
			_, err := service.Login(ctx, "ada@example.com", "wrong password")
			Expect(err).To(MatchError(auth.ErrInvalidCredentials))
			_, err = service.Login(ctx, "nobody@example.com", "correct horse")
			Expect(err).To(MatchError(auth.ErrInvalidCredentials))
		})
	})

	Describe("tokens", func() {
		var (
			u    *user.User
			pair *auth.TokenPair
		)

		BeforeEach(func() {
			u = signup("ada@example.com")
			var err error
			pair, err = service.IssueTokens(u)
			Expect(err).NotTo(HaveOccurred())
		})

		It("issues a 15 minute access token and a 7 day refresh token", func() {
			Expect(time.Until(pair.AccessExpiresAt)).To(BeNumerically("~", auth.AccessTokenTTL, time.Minute))
			Expect(time.Until(pair.RefreshExpiresAt)).To(BeNumerically("~", auth.RefreshTokenTTL, time.Minute))

			claims, err := service.ParseToken(pair.AccessToken, auth.TokenKindAccess)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.Subject).To(Equal(u.PublicID))
			Expect(claims.Email).To(Equal("ada@example.com"))
			Expect(claims.Role).To(Equal("user"))
		})

		It("does not accept one kind of token as the other", func() {
			_, err := service.ParseToken(pair.RefreshToken, auth.TokenKindAccess)
			Expect(err).To(MatchError(auth.ErrInvalidToken))
			_, err = service.ParseToken(pair.AccessToken, auth.TokenKindRefresh)
			Expect(err).To(MatchError(auth.ErrInvalidToken))
		})

		It("rejects tokens signed with another algorithm", func() {
			token := jwt.NewWithClaims(jwt.SigningMethodHS512, auth.UserClaim{
				Kind:             auth.TokenKindAccess,
				RegisteredClaims: jwt.RegisteredClaims{Subject: u.PublicID},
			})
			signed, err := token.SignedString([]byte("test-secret"))
			Expect(err).NotTo(HaveOccurred())
			_, err = service.ParseToken(signed, auth.TokenKindAccess)
			Expect(err).To(MatchError(auth.ErrInvalidToken))
		})

		It("rotates refresh tokens", func() {
			next, refreshed, err := service.Refresh(ctx, pair.RefreshToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(refreshed.PublicID).To(Equal(u.PublicID))
			Expect(next.RefreshToken).NotTo(Equal(pair.RefreshToken))

			_, _, err = service.Refresh(ctx, pair.RefreshToken)
			Expect(err).To(MatchError(auth.ErrTokenRevoked))
		})

		It("lets only one concurrent refresh use a token", func() {
			var (
				wg        sync.WaitGroup
				mu        sync.Mutex
				succeeded int
				revoked   int
			)
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					_, _, err := service.Refresh(ctx, pair.RefreshToken)
					mu.Lock()
					defer mu.Unlock()
					if err == nil {
						succeeded++
					} else if errors.Is(err, auth.ErrTokenRevoked) {
						revoked++
					}
				}()
			}
			wg.Wait()
			Expect(succeeded).To(Equal(1))
			Expect(revoked).To(Equal(7))
		})

		It("revokes the refresh token on logout", func() {
			Expect(service.Logout(ctx, pair.RefreshToken)).To(Succeed())
			_, _, err := service.Refresh(ctx, pair.RefreshToken)
			Expect(err).To(MatchError(auth.ErrTokenRevoked))
		})
	})

	Describe("middleware", func() {
		var router *gin.Engine

		BeforeEach(func() {
			router = gin.New()
			router.GET("/me", service.JWTAuthMiddleware(), service.RegisteredUserMiddleware(), func(c *gin.Context) {
				u, ok := auth.GetUserFromContext(c)
				Expect(ok).To(BeTrue())
				c.String(http.StatusOK, u.Email)
			})
		})

		serve := func(header string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			return rec
		}

		It("requires a bearer token", func() {
			Expect(serve("").Code).To(Equal(http.StatusUnauthorized))
			Expect(serve("Basic abc").Code).To(Equal(http.StatusUnauthorized))
			Expect(serve("Bearer garbage").Code).To(Equal(http.StatusUnauthorized))
		})

		It("loads the registered user for a valid access token", func() {
			u := signup("ada@example.com")
			pair, err := service.IssueTokens(u)
			Expect(err).NotTo(HaveOccurred())

			rec := serve("Bearer " + pair.AccessToken)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(Equal("ada@example.com"))
		})

		It("rejects refresh tokens as bearer credentials", func() {
			u := signup("ada@example.com")
			pair, err := service.IssueTokens(u)
			Expect(err).NotTo(HaveOccurred())
			Expect(serve("Bearer " + pair.RefreshToken).Code).To(Equal(http.StatusUnauthorized))
		})
	})
})
