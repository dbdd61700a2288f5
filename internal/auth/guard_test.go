package auth_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/prasetyadi/hr-platform/internal"
	"github.com/prasetyadi/hr-platform/internal/auth"
)

var _ = Describe("Guard middleware", func() {
	var (
		guard *auth.Guard
		next  http.Handler
	)

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		guard = auth.NewGuard(logger)
		next = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})

	serve := func(mw func(http.Handler) http.Handler, user *auth.User) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/leave/applications/pending", nil)
		if user != nil {
			req = req.WithContext(auth.ContextWithUser(req.Context(), user))
		}
		rec := httptest.NewRecorder()
		mw(next).ServeHTTP(rec, req)
		return rec
	}

	errorCode := func(rec *httptest.ResponseRecorder) string {
		var body struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		return body.Error.Code
	}

	It("answers 401 when no identity reached the guard", func() {
		rec := serve(guard.RequirePermission(auth.PermissionLeaveRequestRead), nil)

		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		Expect(errorCode(rec)).To(Equal(string(internal.ErrCodeMissingToken)))
	})

	It("answers 403 when the identity lacks the permission", func() {
		user := &auth.User{
			ID:          7,
			Permissions: auth.NewPermissionSet(auth.PermissionLeaveRequestCreate),
		}
		rec := serve(guard.RequirePermission(auth.PermissionLeaveRequestRead), user)

		Expect(rec.Code).To(Equal(http.StatusForbidden))
		Expect(errorCode(rec)).To(Equal(string(internal.ErrCodeForbidden)))
	})

	It("passes the request through when the permission is held", func() {
		user := &auth.User{
			ID:          7,
			Permissions: auth.NewPermissionSet(auth.PermissionLeaveRequestRead),
		}
		rec := serve(guard.RequirePermission(auth.PermissionLeaveRequestRead), user)

		Expect(rec.Code).To(Equal(http.StatusOK))
	})

	It("accepts any of the listed permissions", func() {
		user := &auth.User{
			ID:          7,
			Permissions: auth.NewPermissionSet(auth.PermissionLeaveBalanceRead),
		}
		rec := serve(guard.RequireAnyPermission(
			auth.PermissionLeaveRequestRead,
			auth.PermissionLeaveBalanceRead,
		), user)

		Expect(rec.Code).To(Equal(http.StatusOK))
	})

	It("demands every listed permission", func() {
		user := &auth.User{
			ID:          7,
			Permissions: auth.NewPermissionSet(auth.PermissionLeaveRequestRead),
		}
		rec := serve(guard.RequireAllPermissions(
			auth.PermissionLeaveRequestRead,
			auth.PermissionLeaveRequestUpdate,
		), user)

		Expect(rec.Code).To(Equal(http.StatusForbidden))
	})
})
