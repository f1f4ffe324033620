package credit_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-cto/internal/credit"
	crediterrors "go-cto/internal/credit/errors"

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

type fakeCreditService struct {
	issueFn    func(ctx context.Context, req credit.IssueCreditRequest) (credit.CreditResponse, error)
	rollbackFn func(ctx context.Context, creditID string) (credit.CreditResponse, error)
}

func (f *fakeCreditService) Issue(ctx context.Context, req credit.IssueCreditRequest) (credit.CreditResponse, error) {
	return f.issueFn(ctx, req)
}
func (f *fakeCreditService) Rollback(ctx context.Context, creditID string) (credit.CreditResponse, error) {
	return f.rollbackFn(ctx, creditID)
}
func (f *fakeCreditService) GetAll(ctx context.Context) ([]credit.CreditResponse, error) {
	return nil, nil
}
func (f *fakeCreditService) GetByID(ctx context.Context, id string) (credit.CreditResponse, error) {
	return credit.CreditResponse{}, nil
}
func (f *fakeCreditService) GetEmployeeCredits(ctx context.Context, employeeID string) (credit.EmployeeCreditSummary, error) {
	return credit.EmployeeCreditSummary{}, nil
}

func TestCreditHandler_Issue(t *testing.T) {
	t.Run("success returns the created batch", func(t *testing.T) {
		emplID := uuid.New().String()
		svc := &fakeCreditService{
			issueFn: func(ctx context.Context, req credit.IssueCreditRequest) (credit.CreditResponse, error) {
				assert.Equal(t, []string{emplID}, req.EmployeeIDs)
				assert.Equal(t, "MEMO-2026-031", req.MemoNo)
				return credit.CreditResponse{
					ID:         uuid.New().String(),
					MemoNo:     req.MemoNo,
					TotalHours: 8,
					Status:     credit.StatusCredited,
				}, nil
			},
		}

		h := credit.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"employee_ids":["` + emplID + `"],"duration":{"hours":8,"minutes":0},"memo_no":"MEMO-2026-031"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/credits", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Issue(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
	})

	t.Run("negative missing memo_no fails binding", func(t *testing.T) {
		h := credit.NewHandler(&fakeCreditService{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"employee_ids":["` + uuid.New().String() + `"],"duration":{"hours":8,"minutes":0}}`
		c.Request = httptest.NewRequest(http.MethodPost, "/credits", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Issue(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
	})
}

func TestCreditHandler_Rollback(t *testing.T) {
	t.Run("negative batch with usage maps to conflict", func(t *testing.T) {
		creditID := uuid.New().String()
		svc := &fakeCreditService{
			rollbackFn: func(ctx context.Context, id string) (credit.CreditResponse, error) {
				assert.Equal(t, creditID, id)
				return credit.CreditResponse{}, crediterrors.ErrCreditInUse
			},
		}

		h := credit.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/credits/"+creditID+"/rollback", nil)
		c.Params = gin.Params{{Key: "id", Value: creditID}}

		h.Rollback(c)

		assert.Equal(t, http.StatusConflict, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.Equal(t, "CONFLICT", env.Error.Code)
	})
}
