package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/access-management/internal"
	userDatamodel "github.com/frahmantamala/access-management/internal/core/datamodel/user"
	"github.com/frahmantamala/access-management/internal/user"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

// Mock UserRepository for testing
type mockUserRepository struct {
	byID          map[int64]*userDatamodel.User
	nextID        int64
	returnError   bool
	errorToReturn error
}

func newMockUserRepository() *mockUserRepository {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct_password"), bcrypt.MinCost)
	return &mockUserRepository{
		byID: map[int64]*userDatamodel.User{
			1: {ID: 1, Username: "alice", PasswordHash: string(hash), Role: "Employee"},
			2: {ID: 2, Username: "bob", PasswordHash: string(hash), Role: "Manager"},
		},
		nextID: 3,
	}
}

func (m *mockUserRepository) Create(_ context.Context, u *userDatamodel.User) error {
	if m.returnError {
		return m.errorToReturn
	}
	u.ID = m.nextID
	m.nextID++
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *mockUserRepository) GetByID(_ context.Context, id int64) (*userDatamodel.User, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	if u, ok := m.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *mockUserRepository) GetByUsername(_ context.Context, username string) (*userDatamodel.User, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	for _, u := range m.byID {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepository) setError(err error) {
	m.returnError = true
	m.errorToReturn = err
}

var _ = ginkgo.Describe("AuthService", func() {
	var (
		ctx      context.Context
		service  *Service
		mockRepo *mockUserRepository
		tokenGen *JWTTokenGenerator
		secret   = "test-access-secret-with-32-bytes!!"
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		mockRepo = newMockUserRepository()
		tokenGen = NewJWTTokenGenerator(secret, 15*time.Minute)
		service = NewService(mockRepo, tokenGen, bcrypt.MinCost, nil)
	})

	ginkgo.Describe("Signup", func() {
		ginkgo.It("should create an Employee and return a token", func() {
			email := "carol@example.com"
			result, err := service.Signup(ctx, SignupDTO{Username: "carol", Password: "secret1", Email: &email})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(result.Token).ToNot(gomega.BeEmpty())
			gomega.Expect(result.User.Role).To(gomega.Equal(internal.RoleEmployee))
			gomega.Expect(result.User.PasswordHash).ToNot(gomega.Equal("secret1"))

			claims, err := tokenGen.ValidateToken(result.Token)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(claims.UserID).To(gomega.Equal(result.User.ID))
			gomega.Expect(claims.Role).To(gomega.Equal("Employee"))
		})

		ginkgo.It("should reject a taken username with conflict", func() {
			_, err := service.Signup(ctx, SignupDTO{Username: "alice", Password: "secret1"})

			gomega.Expect(errors.Is(err, user.ErrUsernameTaken)).To(gomega.BeTrue())
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.StatusCode).To(gomega.Equal(409))
		})

		ginkgo.It("should reject a short password", func() {
			_, err := service.Signup(ctx, SignupDTO{Username: "dave", Password: "123"})

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(internal.ErrorTypeValidation))
		})

		ginkgo.It("should reject a malformed email", func() {
			email := "not-an-email"
			_, err := service.Signup(ctx, SignupDTO{Username: "dave", Password: "secret1", Email: &email})

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(internal.ErrorTypeValidation))
		})
	})

	ginkgo.Describe("Authenticate", func() {
		ginkgo.It("should return a token for valid credentials", func() {
			result, err := service.Authenticate(ctx, LoginDTO{Username: "bob", Password: "correct_password"})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(result.Token).ToNot(gomega.BeEmpty())
			gomega.Expect(result.User.Role).To(gomega.Equal(internal.RoleManager))
		})

		ginkgo.It("should reject a wrong password", func() {
			_, err := service.Authenticate(ctx, LoginDTO{Username: "bob", Password: "wrong"})
			gomega.Expect(errors.Is(err, internal.ErrInvalidCredentials)).To(gomega.BeTrue())
		})

		ginkgo.It("should reject an unknown user", func() {
			_, err := service.Authenticate(ctx, LoginDTO{Username: "nobody", Password: "correct_password"})
			gomega.Expect(errors.Is(err, internal.ErrInvalidCredentials)).To(gomega.BeTrue())
		})

		ginkgo.It("should reject missing fields with a validation error", func() {
			_, err := service.Authenticate(ctx, LoginDTO{Username: "bob"})

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.StatusCode).To(gomega.Equal(400))
		})

		ginkgo.It("should report repository failures as internal errors", func() {
			mockRepo.setError(errors.New("connection refused"))
			_, err := service.Authenticate(ctx, LoginDTO{Username: "bob", Password: "correct_password"})

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(internal.ErrorTypeInternal))
		})
	})

	ginkgo.Describe("ResolveIdentity", func() {
		ginkgo.It("should use the stored role rather than the token role", func() {
			token, err := tokenGen.GenerateAccessToken(&internal.Identity{UserID: 1, Username: "alice", Role: internal.RoleAdmin})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			identity, err := service.ResolveIdentity(ctx, token)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(identity.UserID).To(gomega.Equal(int64(1)))
			gomega.Expect(identity.Role).To(gomega.Equal(internal.RoleEmployee))
		})

		ginkgo.It("should reject a token whose user no longer exists", func() {
			token, _ := tokenGen.GenerateAccessToken(&internal.Identity{UserID: 99, Username: "ghost", Role: internal.RoleEmployee})

			_, err := service.ResolveIdentity(ctx, token)
			gomega.Expect(errors.Is(err, internal.ErrInvalidToken)).To(gomega.BeTrue())
		})

		ginkgo.It("should reject an empty token", func() {
			_, err := service.ResolveIdentity(ctx, "")
			gomega.Expect(errors.Is(err, internal.ErrMissingToken)).To(gomega.BeTrue())
		})
	})
})

var _ = ginkgo.Describe("JWTTokenGenerator", func() {
	var tokenGen *JWTTokenGenerator

	ginkgo.BeforeEach(func() {
		tokenGen = NewJWTTokenGenerator("test-access-secret-with-32-bytes!!", time.Minute)
	})

	ginkgo.It("should round trip the identity claims", func() {
		token, err := tokenGen.GenerateAccessToken(&internal.Identity{UserID: 7, Username: "erin", Role: internal.RoleManager})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		claims, err := tokenGen.ValidateToken(token)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(claims.UserID).To(gomega.Equal(int64(7)))
		gomega.Expect(claims.Username).To(gomega.Equal("erin"))
		gomega.Expect(claims.Role).To(gomega.Equal("Manager"))
	})

	ginkgo.It("should reject a token signed with another secret", func() {
		other := NewJWTTokenGenerator("another-secret-that-is-32-bytes-long", time.Minute)
		token, _ := other.GenerateAccessToken(&internal.Identity{UserID: 7, Username: "erin", Role: internal.RoleManager})

		_, err := tokenGen.ValidateToken(token)
		gomega.Expect(errors.Is(err, internal.ErrInvalidToken)).To(gomega.BeTrue())
	})

	ginkgo.It("should report expired tokens", func() {
		expired := NewJWTTokenGenerator("test-access-secret-with-32-bytes!!", -time.Minute)
		token, _ := expired.GenerateAccessToken(&internal.Identity{UserID: 7, Username: "erin", Role: internal.RoleManager})

		_, err := tokenGen.ValidateToken(token)
		gomega.Expect(errors.Is(err, internal.ErrTokenExpired)).To(gomega.BeTrue())
	})

	ginkgo.It("should reject garbage", func() {
		_, err := tokenGen.ValidateToken("not.a.jwt")
		gomega.Expect(errors.Is(err, internal.ErrInvalidToken)).To(gomega.BeTrue())
	})
})
