package user_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/frahmantamala/access-management/internal"
	"github.com/frahmantamala/access-management/internal/auth"
	userDatamodel "github.com/frahmantamala/access-management/internal/core/datamodel/user"
	"github.com/frahmantamala/access-management/internal/user"
	userPostgres "github.com/frahmantamala/access-management/internal/user/postgres"
)

func TestUserService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Service Suite")
}

var _ = Describe("User Service", func() {
	var (
		ctx     context.Context
		repo    *userPostgres.UserRepository
		service *user.Service
		admin   *internal.Identity
		manager *internal.Identity
		alice   *userDatamodel.User
	)

	BeforeEach(func() {
		ctx = context.Background()
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Silent),
			TranslateError: true,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&userDatamodel.User{})).To(Succeed())

		repo = userPostgres.NewUserRepository(db)

		authorizer, err := auth.NewPolicyAuthorizer(slogger)
		Expect(err).NotTo(HaveOccurred())
		service = user.NewService(repo, authorizer, slogger)

		adminRecord := &userDatamodel.User{Username: "admin", PasswordHash: "hash", Role: "Admin"}
		bobRecord := &userDatamodel.User{Username: "bob", PasswordHash: "hash", Role: "Manager"}
		alice = &userDatamodel.User{Username: "alice", PasswordHash: "hash", Role: "Employee"}
		for _, u := range []*userDatamodel.User{adminRecord, bobRecord, alice} {
			Expect(repo.Create(ctx, u)).To(Succeed())
		}

		admin = &internal.Identity{UserID: adminRecord.ID, Username: "admin", Role: internal.RoleAdmin}
		manager = &internal.Identity{UserID: bobRecord.ID, Username: "bob", Role: internal.RoleManager}
	})

	Describe("repository", func() {
		It("should reject a taken username", func() {
			err := repo.Create(ctx, &userDatamodel.User{Username: "alice", PasswordHash: "x", Role: "Employee"})
			Expect(errors.Is(err, user.ErrUsernameTaken)).To(BeTrue())
		})

		It("should return nil for unknown users", func() {
			u, err := repo.GetByUsername(ctx, "nobody")
			Expect(err).NotTo(HaveOccurred())
			Expect(u).To(BeNil())
		})
	})

	Describe("GetByID", func() {
		It("should never serialize the password hash", func() {
			u, err := service.GetByID(ctx, alice.ID)
			Expect(err).NotTo(HaveOccurred())

			body, err := json.Marshal(u)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).NotTo(ContainSubstring("hash"))
			Expect(string(body)).NotTo(ContainSubstring("password"))
		})

		It("should return not found for unknown ids", func() {
			_, err := service.GetByID(ctx, 999)
			Expect(errors.Is(err, user.ErrNotFound)).To(BeTrue())
		})
	})

	Describe("ChangeRole", func() {
		It("should promote a user", func() {
			u, err := service.ChangeRole(ctx, admin, alice.ID, internal.RoleManager)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Role).To(Equal(internal.RoleManager))

			stored, err := repo.GetByID(ctx, alice.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Role).To(Equal("Manager"))
		})

		It("should forbid non-admins", func() {
			_, err := service.ChangeRole(ctx, manager, alice.ID, internal.RoleManager)
			Expect(errors.Is(err, internal.ErrInsufficientRole)).To(BeTrue())
		})

		It("should not let an admin change their own role", func() {
			_, err := service.ChangeRole(ctx, admin, admin.UserID, internal.RoleEmployee)
			Expect(errors.Is(err, user.ErrCannotDemoteSelf)).To(BeTrue())
		})

		It("should reject unknown roles", func() {
			_, err := service.ChangeRole(ctx, admin, alice.ID, internal.Role("Owner"))
			Expect(errors.Is(err, user.ErrInvalidRole)).To(BeTrue())
		})

		It("should return not found for unknown users", func() {
			_, err := service.ChangeRole(ctx, admin, 999, internal.RoleManager)
			Expect(errors.Is(err, user.ErrNotFound)).To(BeTrue())
		})
	})
})
