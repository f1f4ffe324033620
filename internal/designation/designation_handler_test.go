package designation_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-cto/internal/designation"
	designationerrors "go-cto/internal/designation/errors"

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

type fakeDesignationService struct {
	createFn  func(ctx context.Context, req designation.UpsertDesignationRequest) (designation.DesignationResponse, error)
	updateFn  func(ctx context.Context, id string, req designation.UpsertDesignationRequest) (designation.DesignationResponse, error)
	resolveFn func(ctx context.Context, designationID string) (designation.ApproverChain, error)
}

func (f *fakeDesignationService) Resolve(ctx context.Context, designationID string) (designation.ApproverChain, error) {
	return f.resolveFn(ctx, designationID)
}
func (f *fakeDesignationService) Create(ctx context.Context, req designation.UpsertDesignationRequest) (designation.DesignationResponse, error) {
	return f.createFn(ctx, req)
}
func (f *fakeDesignationService) GetAll(ctx context.Context) ([]designation.DesignationResponse, error) {
	return nil, nil
}
func (f *fakeDesignationService) GetByID(ctx context.Context, id string) (designation.DesignationResponse, error) {
	return designation.DesignationResponse{}, nil
}
func (f *fakeDesignationService) Update(ctx context.Context, id string, req designation.UpsertDesignationRequest) (designation.DesignationResponse, error) {
	return f.updateFn(ctx, id, req)
}
func (f *fakeDesignationService) Delete(ctx context.Context, id string) error {
	return nil
}

func TestDesignationHandler_Create(t *testing.T) {
	t.Run("success returns the created designation", func(t *testing.T) {
		l1 := uuid.NewString()
		svc := &fakeDesignationService{
			createFn: func(ctx context.Context, req designation.UpsertDesignationRequest) (designation.DesignationResponse, error) {
				assert.Equal(t, "Field Engineer", req.Name)
				assert.NotNil(t, req.Level1ApproverID)
				return designation.DesignationResponse{
					ID:               uuid.NewString(),
					Name:             req.Name,
					Level1ApproverID: req.Level1ApproverID,
				}, nil
			},
		}

		h := designation.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"name":"Field Engineer","level1_approver_id":"` + l1 + `"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/designations", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
	})

	t.Run("negative malformed approver id fails binding", func(t *testing.T) {
		h := designation.NewHandler(&fakeDesignationService{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"name":"Field Engineer","level1_approver_id":"not-a-uuid"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/designations", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
	})
}

func TestDesignationHandler_Update(t *testing.T) {
	t.Run("negative unknown designation maps to not found", func(t *testing.T) {
		svc := &fakeDesignationService{
			updateFn: func(ctx context.Context, id string, req designation.UpsertDesignationRequest) (designation.DesignationResponse, error) {
				return designation.DesignationResponse{}, designationerrors.ErrDesignationNotFound
			},
		}

		h := designation.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		id := uuid.NewString()
		body := `{"name":"Senior Clerk"}`
		c.Request = httptest.NewRequest(http.MethodPut, "/designations/"+id, strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Params = gin.Params{{Key: "id", Value: id}}

		h.Update(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "NOT_FOUND", env.Error.Code)
	})
}
