package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/access-management/internal/auth"
	requestDatamodel "github.com/frahmantamala/access-management/internal/core/datamodel/request"
	softwareDatamodel "github.com/frahmantamala/access-management/internal/core/datamodel/software"
	userDatamodel "github.com/frahmantamala/access-management/internal/core/datamodel/user"
	"github.com/frahmantamala/access-management/internal/core/events"
	"github.com/frahmantamala/access-management/internal/request"
	requestPostgres "github.com/frahmantamala/access-management/internal/request/postgres"
	"github.com/frahmantamala/access-management/internal/software"
	softwarePostgres "github.com/frahmantamala/access-management/internal/software/postgres"
	"github.com/frahmantamala/access-management/internal/transport"
	"github.com/frahmantamala/access-management/internal/transport/rest"
	"github.com/frahmantamala/access-management/internal/user"
	userPostgres "github.com/frahmantamala/access-management/internal/user/postgres"
	"github.com/frahmantamala/access-management/pkg/logger"
)

type errorEnvelope struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type authEnvelope struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    user.Summary `json:"user"`
}

var _ = Describe("Access request flow", func() {
	var (
		router *chi.Mux
		tokens map[string]string
		ids    map[string]int64
		crmID  int64
	)

	call := func(method, path, token string, body interface{}) *httptest.ResponseRecorder {
		var payload bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&payload).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, "/api/v1"+path, &payload)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	decode := func(w *httptest.ResponseRecorder, dst interface{}) {
		ExpectWithOffset(1, json.Unmarshal(w.Body.Bytes(), dst)).To(Succeed(), w.Body.String())
	}

	login := func(username string) string {
		w := call(http.MethodPost, "/auth/login", "", map[string]string{"username": username, "password": "password"})
		ExpectWithOffset(1, w.Code).To(Equal(http.StatusOK), w.Body.String())
		var resp authEnvelope
		decode(w, &resp)
		return resp.Token
	}

	BeforeEach(func() {
		ctx := context.Background()
		lg := logger.L()

		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
			TranslateError: true,
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(&userDatamodel.User{}, &softwareDatamodel.Software{}, &requestDatamodel.Request{})).To(Succeed())
		Expect(db.Exec(requestPostgres.PendingTupleIndexSQL).Error).NotTo(HaveOccurred())

		authorizer, err := auth.NewPolicyAuthorizer(lg)
		Expect(err).NotTo(HaveOccurred())

		bus := events.NewEventBus(lg)
		request.NewAuditHandler(lg).Register(bus)

		userRepo := userPostgres.NewUserRepository(db)
		softwareRepo := softwarePostgres.NewSoftwareRepository(db)
		requestRepo := requestPostgres.NewRequestRepository(db)
		statsRepo := requestPostgres.NewStatsRepository(sqlx.NewDb(sqlDB, "sqlite3"))

		tokenGen := auth.NewJWTTokenGenerator("test-secret", time.Hour)
		authService := auth.NewService(userRepo, tokenGen, bcrypt.MinCost, lg)

		base := transport.NewBaseHandler(lg)
		router = rest.NewRouter(rest.Dependencies{
			DB:              sqlDB,
			AuthHandler:     auth.NewHandler(base, authService),
			RBAC:            auth.NewRBACAuthorization(authorizer, lg),
			UserHandler:     user.NewHandler(base, user.NewService(userRepo, authorizer, lg)),
			SoftwareHandler: software.NewHandler(base, software.NewService(softwareRepo, requestRepo, authorizer, lg)),
			RequestHandler:  request.NewHandler(base, request.NewService(requestRepo, softwareRepo, userRepo, statsRepo, authorizer, bus, lg)),
		})

		tokens = map[string]string{}
		ids = map[string]int64{}

		for _, name := range []string{"alice", "carol"} {
			w := call(http.MethodPost, "/auth/signup", "", map[string]interface{}{
				"username": name,
				"password": "password",
				"role":     "Admin",
			})
			Expect(w.Code).To(Equal(http.StatusCreated), w.Body.String())
			var resp authEnvelope
			decode(w, &resp)
			Expect(string(resp.User.Role)).To(Equal("Employee"))
			tokens[name] = resp.Token
			ids[name] = resp.User.ID
		}

		hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())
		for name, role := range map[string]string{"bob": "Manager", "admin": "Admin"} {
			u := &userDatamodel.User{Username: name, PasswordHash: string(hash), Role: role}
			Expect(userRepo.Create(ctx, u)).To(Succeed())
			ids[name] = u.ID
			tokens[name] = login(name)
		}

		w := call(http.MethodPost, "/software", tokens["admin"], map[string]interface{}{
			"name":         "CRM",
			"description":  "Customer relationship management",
			"accessLevels": []string{"Read", "Write"},
		})
		Expect(w.Code).To(Equal(http.StatusCreated), w.Body.String())
		var created software.SoftwareMutationResponse
		decode(w, &created)
		crmID = created.Software.ID
	})

	It("should walk a request from submission to a single review", func() {
		By("alice requesting Write access to CRM")
		w := call(http.MethodPost, "/requests", tokens["alice"], map[string]interface{}{
			"softwareId": crmID,
			"accessType": "Write",
			"reason":     "need it for sales reporting",
		})
		Expect(w.Code).To(Equal(http.StatusCreated), w.Body.String())
		var submitted request.RequestMutationResponse
		decode(w, &submitted)
		Expect(submitted.Request.Status).To(Equal(request.StatusPending))
		Expect(submitted.Request.UserID).To(Equal(ids["alice"]))
		requestID := submitted.Request.ID

		By("alice repeating the identical request before review")
		w = call(http.MethodPost, "/requests", tokens["alice"], map[string]interface{}{
			"softwareId": crmID,
			"accessType": "Write",
			"reason":     "need it for sales reporting",
		})
		Expect(w.Code).To(Equal(http.StatusConflict), w.Body.String())

		By("bob approving the request")
		path := fmt.Sprintf("/requests/%d/status", requestID)
		w = call(http.MethodPatch, path, tokens["bob"], map[string]string{
			"status":        "Approved",
			"reviewComment": "approved for Q3",
		})
		Expect(w.Code).To(Equal(http.StatusOK), w.Body.String())
		var reviewed request.RequestMutationResponse
		decode(w, &reviewed)
		Expect(reviewed.Message).To(Equal("Request approved successfully"))
		Expect(reviewed.Request.Status).To(Equal(request.StatusApproved))
		Expect(*reviewed.Request.ReviewedBy).To(Equal(ids["bob"]))
		Expect(*reviewed.Request.ReviewComment).To(Equal("approved for Q3"))

		By("bob trying to reject the approved request")
		w = call(http.MethodPatch, path, tokens["bob"], map[string]string{"status": "Rejected"})
		Expect(w.Code).To(Equal(http.StatusBadRequest), w.Body.String())
		var conflict errorEnvelope
		decode(w, &conflict)
		Expect(conflict.Error.Code).To(Equal("REQUEST_ALREADY_PROCESSED"))
		Expect(conflict.Error.Message).To(ContainSubstring("already been processed"))

		By("carol viewing alice's request")
		w = call(http.MethodGet, fmt.Sprintf("/requests/%d", requestID), tokens["carol"], nil)
		Expect(w.Code).To(Equal(http.StatusForbidden), w.Body.String())

		By("alice viewing her own request without any password data")
		w = call(http.MethodGet, fmt.Sprintf("/requests/%d", requestID), tokens["alice"], nil)
		Expect(w.Code).To(Equal(http.StatusOK), w.Body.String())
		Expect(w.Body.String()).NotTo(ContainSubstring("password"))
		Expect(w.Body.String()).NotTo(ContainSubstring("$2a$"))
		var own request.RequestResponse
		decode(w, &own)
		Expect(own.Request.Status).To(Equal(request.StatusApproved))
		Expect(own.Request.User.Username).To(Equal("alice"))
	})

	It("should reject unauthenticated and under-privileged callers", func() {
		Expect(call(http.MethodGet, "/requests/my-requests", "", nil).Code).To(Equal(http.StatusUnauthorized))
		Expect(call(http.MethodGet, "/requests/my-requests", "not-a-jwt", nil).Code).To(Equal(http.StatusUnauthorized))
		Expect(call(http.MethodGet, "/requests/pending", tokens["alice"], nil).Code).To(Equal(http.StatusForbidden))
		Expect(call(http.MethodGet, "/requests/stats", tokens["alice"], nil).Code).To(Equal(http.StatusForbidden))
		Expect(call(http.MethodPost, "/software", tokens["bob"], map[string]interface{}{
			"name": "Wiki", "description": "docs", "accessLevels": []string{"Read"},
		}).Code).To(Equal(http.StatusForbidden))
	})

	It("should let managers list pending requests and read stats", func() {
		for _, name := range []string{"alice", "carol"} {
			w := call(http.MethodPost, "/requests", tokens[name], map[string]interface{}{
				"softwareId": crmID, "accessType": "Read", "reason": "onboarding",
			})
			Expect(w.Code).To(Equal(http.StatusCreated), w.Body.String())
		}

		w := call(http.MethodGet, "/requests/pending", tokens["bob"], nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		var pending request.RequestsResponse
		decode(w, &pending)
		Expect(pending.Requests).To(HaveLen(2))
		Expect(pending.Requests[0].User.Username).To(Equal("alice"))

		w = call(http.MethodGet, "/requests/stats", tokens["admin"], nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		var stats request.StatsResponse
		decode(w, &stats)
		Expect(stats.Stats).To(Equal(request.Stats{Pending: 2, Total: 2}))
	})

	It("should block deleting software that requests reference", func() {
		w := call(http.MethodPost, "/requests", tokens["alice"], map[string]interface{}{
			"softwareId": crmID, "accessType": "Read", "reason": "onboarding",
		})
		Expect(w.Code).To(Equal(http.StatusCreated))

		w = call(http.MethodDelete, fmt.Sprintf("/software/%d", crmID), tokens["admin"], nil)
		Expect(w.Code).To(Equal(http.StatusConflict), w.Body.String())
		var resp errorEnvelope
		decode(w, &resp)
		Expect(resp.Error.Code).To(Equal("SOFTWARE_IN_USE"))
	})

	It("should apply role changes on the next request", func() {
		w := call(http.MethodPatch, fmt.Sprintf("/users/%d/role", ids["carol"]), tokens["admin"], map[string]string{"role": "Manager"})
		Expect(w.Code).To(Equal(http.StatusOK), w.Body.String())

		Expect(call(http.MethodGet, "/requests/pending", tokens["carol"], nil).Code).To(Equal(http.StatusOK))

		w = call(http.MethodPatch, fmt.Sprintf("/users/%d/role", ids["admin"]), tokens["admin"], map[string]string{"role": "Employee"})
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should return the current user without credentials", func() {
		w := call(http.MethodGet, "/auth/me", tokens["bob"], nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(`"username":"bob"`))
		Expect(w.Body.String()).NotTo(ContainSubstring("password"))
	})
})
