package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/frahmantamala/access-management/internal"
)

var _ = ginkgo.Describe("PolicyAuthorizer", func() {
	var authorizer *PolicyAuthorizer

	ginkgo.BeforeEach(func() {
		var err error
		authorizer, err = NewPolicyAuthorizer(nil)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
	})

	ginkgo.DescribeTable("role capabilities",
		func(role internal.Role, c internal.Capability, expected bool) {
			gomega.Expect(authorizer.Can(role, c)).To(gomega.Equal(expected))
		},
		ginkgo.Entry("employee creates requests", internal.RoleEmployee, internal.CapCreateRequest, true),
		ginkgo.Entry("employee lists own requests", internal.RoleEmployee, internal.CapListOwnRequests, true),
		ginkgo.Entry("employee reads software", internal.RoleEmployee, internal.CapReadSoftware, true),
		ginkgo.Entry("employee cannot view any request", internal.RoleEmployee, internal.CapViewAnyRequest, false),
		ginkgo.Entry("employee cannot list pending", internal.RoleEmployee, internal.CapListPendingRequests, false),
		ginkgo.Entry("employee cannot review", internal.RoleEmployee, internal.CapReviewRequest, false),
		ginkgo.Entry("employee cannot manage software", internal.RoleEmployee, internal.CapManageSoftware, false),
		ginkgo.Entry("manager inherits create", internal.RoleManager, internal.CapCreateRequest, true),
		ginkgo.Entry("manager reviews", internal.RoleManager, internal.CapReviewRequest, true),
		ginkgo.Entry("manager sees stats", internal.RoleManager, internal.CapRequestStats, true),
		ginkgo.Entry("manager cannot manage software", internal.RoleManager, internal.CapManageSoftware, false),
		ginkgo.Entry("manager cannot manage users", internal.RoleManager, internal.CapManageUsers, false),
		ginkgo.Entry("admin inherits review", internal.RoleAdmin, internal.CapReviewRequest, true),
		ginkgo.Entry("admin inherits own listing", internal.RoleAdmin, internal.CapListOwnRequests, true),
		ginkgo.Entry("admin manages software", internal.RoleAdmin, internal.CapManageSoftware, true),
		ginkgo.Entry("admin manages users", internal.RoleAdmin, internal.CapManageUsers, true),
		ginkgo.Entry("unknown role holds nothing", internal.Role("Guest"), internal.CapReadSoftware, false),
	)

	ginkgo.It("should return ErrInsufficientRole from Authorize", func() {
		err := internal.Authorize(authorizer, &internal.Identity{UserID: 1, Role: internal.RoleEmployee}, internal.CapReviewRequest)
		gomega.Expect(errors.Is(err, internal.ErrInsufficientRole)).To(gomega.BeTrue())
	})

	ginkgo.Describe("RequireCapability", func() {
		var (
			guard  func(http.Handler) http.Handler
			called bool
		)

		ginkgo.BeforeEach(func() {
			called = false
			guard = NewRBACAuthorization(authorizer, nil).RequireCapability(internal.CapListPendingRequests)
		})

		serve := func(identity *internal.Identity) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, "/requests/pending", nil)
			if identity != nil {
				req = req.WithContext(internal.ContextWithIdentity(req.Context(), identity))
			}
			w := httptest.NewRecorder()
			guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			})).ServeHTTP(w, req)
			return w
		}

		ginkgo.It("should pass a manager through", func() {
			w := serve(&internal.Identity{UserID: 2, Role: internal.RoleManager})
			gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(called).To(gomega.BeTrue())
		})

		ginkgo.It("should forbid an employee", func() {
			w := serve(&internal.Identity{UserID: 1, Role: internal.RoleEmployee})
			gomega.Expect(w.Code).To(gomega.Equal(http.StatusForbidden))
			gomega.Expect(called).To(gomega.BeFalse())
		})

		ginkgo.It("should reject a request without identity", func() {
			w := serve(nil)
			gomega.Expect(w.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(called).To(gomega.BeFalse())
		})
	})
})
