package application_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-cto/internal/application"
	applicationerrors "go-cto/internal/application/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *apiError       `json:"error"`
}

func decodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	err := json.Unmarshal(body, &env)
	assert.NoError(t, err)
	return env
}

type fakeApplicationService struct {
	submitFn  func(ctx context.Context, req application.SubmitApplicationRequest) (application.ApplicationResponse, error)
	decideFn  func(ctx context.Context, applicationID string, req application.DecideRequest) (application.ApplicationResponse, error)
	getByIDFn func(ctx context.Context, id string) (application.ApplicationResponse, error)
}

func (f *fakeApplicationService) Submit(ctx context.Context, req application.SubmitApplicationRequest) (application.ApplicationResponse, error) {
	return f.submitFn(ctx, req)
}
func (f *fakeApplicationService) Decide(ctx context.Context, applicationID string, req application.DecideRequest) (application.ApplicationResponse, error) {
	return f.decideFn(ctx, applicationID, req)
}
func (f *fakeApplicationService) GetAll(ctx context.Context) ([]application.ApplicationResponse, error) {
	return nil, nil
}
func (f *fakeApplicationService) GetMine(ctx context.Context) ([]application.ApplicationResponse, error) {
	return nil, nil
}
func (f *fakeApplicationService) GetPendingForApprover(ctx context.Context) ([]application.ApplicationResponse, error) {
	return nil, nil
}
func (f *fakeApplicationService) GetByID(ctx context.Context, id string) (application.ApplicationResponse, error) {
	return f.getByIDFn(ctx, id)
}

func TestApplicationHandler_Submit(t *testing.T) {
	t.Run("success returns the created application", func(t *testing.T) {
		svc := &fakeApplicationService{
			submitFn: func(ctx context.Context, req application.SubmitApplicationRequest) (application.ApplicationResponse, error) {
				assert.InDelta(t, 4.0, req.RequestedHours, 0.001)
				return application.ApplicationResponse{
					ID:             uuid.New().String(),
					RequestedHours: req.RequestedHours,
					Status:         application.StatusPending,
				}, nil
			},
		}

		h := application.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"requested_hours":4,"reason":"time off after inventory weekend"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/applications", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Submit(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var got application.ApplicationResponse
		assert.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, application.StatusPending, got.Status)
	})

	t.Run("negative insufficient balance maps to its error code", func(t *testing.T) {
		svc := &fakeApplicationService{
			submitFn: func(ctx context.Context, req application.SubmitApplicationRequest) (application.ApplicationResponse, error) {
				return application.ApplicationResponse{}, applicationerrors.ErrInsufficientBalance
			},
		}

		h := application.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"requested_hours":500}`
		c.Request = httptest.NewRequest(http.MethodPost, "/applications", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Submit(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.Equal(t, "INSUFFICIENT_BALANCE", env.Error.Code)
	})

	t.Run("negative missing hours fail request binding", func(t *testing.T) {
		h := application.NewHandler(&fakeApplicationService{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/applications", strings.NewReader(`{}`))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Submit(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
	})
}

func TestApplicationHandler_Decide(t *testing.T) {
	t.Run("success passes decision and remarks through", func(t *testing.T) {
		appID := uuid.New().String()
		svc := &fakeApplicationService{
			decideFn: func(ctx context.Context, applicationID string, req application.DecideRequest) (application.ApplicationResponse, error) {
				assert.Equal(t, appID, applicationID)
				assert.Equal(t, "REJECT", req.Decision)
				assert.Equal(t, "overlapping field work", req.Remarks)
				return application.ApplicationResponse{ID: appID, Status: application.StatusRejected}, nil
			},
		}

		h := application.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"decision":"REJECT","remarks":"overlapping field work"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/applications/"+appID+"/decision", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Params = gin.Params{{Key: "id", Value: appID}}

		h.Decide(c)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
	})

	t.Run("negative out of order decision returns invalid state", func(t *testing.T) {
		appID := uuid.New().String()
		svc := &fakeApplicationService{
			decideFn: func(ctx context.Context, applicationID string, req application.DecideRequest) (application.ApplicationResponse, error) {
				return application.ApplicationResponse{}, applicationerrors.OutOfOrder(1)
			},
		}

		h := application.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/applications/"+appID+"/decision", strings.NewReader(`{"decision":"APPROVE"}`))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Params = gin.Params{{Key: "id", Value: appID}}

		h.Decide(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.Equal(t, "INVALID_STATE", env.Error.Code)
		assert.Equal(t, "level 1 must approve first", env.Error.Message)
	})
}
