package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/metrix-hardline/subscription-service/internal/api/rest/handlers"
	"github.com/metrix-hardline/subscription-service/internal/domain"
)

type fakeReset struct {
	err    error
	emails []string
}

func (f *fakeReset) Resend(_ context.Context, email string) error {
	f.emails = append(f.emails, email)
	return f.err
}

func resetRouter(reset *fakeReset) *gin.Engine {
	r := gin.New()
	h := handlers.NewPasswordResetHandler(reset, testLogger())
	r.POST("/api/v1/password/resend", h.ResendSetupLink)
	return r
}

func postResend(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/password/resend", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestResendSetupLink_MissingEmail(t *testing.T) {
	reset := &fakeReset{}

	w := postResend(resetRouter(reset), `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, reset.emails)
}

func TestResendSetupLink_MalformedBody(t *testing.T) {
	reset := &fakeReset{}

	w := postResend(resetRouter(reset), `not json`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResendSetupLink_Success(t *testing.T) {
	reset := &fakeReset{}

	w := postResend(resetRouter(reset), `{"email":"buyer@example.com"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
	assert.Equal(t, []string{"buyer@example.com"}, reset.emails)
}

func TestResendSetupLink_UnknownEmailLooksLikeSuccess(t *testing.T) {
	// Сервис молчит про неизвестные email, хендлер тоже
	reset := &fakeReset{}

	w := postResend(resetRouter(reset), `{"email":"nobody@example.com"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}

func TestResendSetupLink_InactiveSubscription(t *testing.T) {
	reset := &fakeReset{err: domain.ErrSubscriptionInactive}

	w := postResend(resetRouter(reset), `{"email":"buyer@example.com"}`)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestResendSetupLink_TransportFailure(t *testing.T) {
	reset := &fakeReset{err: errors.New("resend unavailable")}

	w := postResend(resetRouter(reset), `{"email":"buyer@example.com"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
