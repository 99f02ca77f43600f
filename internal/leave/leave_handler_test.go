package leave_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"leave-engine/internal/impact"
	"leave-engine/internal/leave"
	leaveerrors "leave-engine/internal/leave/errors"
	ledgererrors "leave-engine/internal/ledger/errors"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeService struct {
	calculateFn func(ctx context.Context, companyID, employeeID string, req leave.CalculateRequest) (leave.CalculateResponse, error)
	submitFn    func(ctx context.Context, companyID, actorID, actorRole string, req leave.SubmitRequest) (leave.LeaveResponse, error)
	approveFn   func(ctx context.Context, companyID, actorID, actorRole, id string, req leave.ApproveRequest) (leave.LeaveResponse, error)
	getByIDFn   func(ctx context.Context, companyID, actorID, actorRole, id string) (leave.LeaveDetailResponse, error)
}

func (f *fakeService) Calculate(ctx context.Context, companyID, employeeID string, req leave.CalculateRequest) (leave.CalculateResponse, error) {
	return f.calculateFn(ctx, companyID, employeeID, req)
}

func (f *fakeService) Submit(ctx context.Context, companyID, actorID, actorRole string, req leave.SubmitRequest) (leave.LeaveResponse, error) {
	return f.submitFn(ctx, companyID, actorID, actorRole, req)
}

func (f *fakeService) Approve(ctx context.Context, companyID, actorID, actorRole, id string, req leave.ApproveRequest) (leave.LeaveResponse, error) {
	return f.approveFn(ctx, companyID, actorID, actorRole, id, req)
}

func (f *fakeService) Reject(ctx context.Context, companyID, actorID, actorRole, id string, req leave.RejectRequest) (leave.LeaveResponse, error) {
	return leave.LeaveResponse{}, nil
}

func (f *fakeService) Cancel(ctx context.Context, companyID, actorID, id string) (leave.LeaveResponse, error) {
	return leave.LeaveResponse{}, nil
}

func (f *fakeService) GetByID(ctx context.Context, companyID, actorID, actorRole, id string) (leave.LeaveDetailResponse, error) {
	return f.getByIDFn(ctx, companyID, actorID, actorRole, id)
}

func (f *fakeService) ListByEmployee(ctx context.Context, companyID, employeeID string, page, perPage int) ([]leave.LeaveResponse, int64, error) {
	return nil, 0, nil
}

type fakeImpactService struct {
	analyzeFn func(ctx context.Context, in impact.AnalyzeInput) (impact.Report, error)
}

func (f *fakeImpactService) Analyze(ctx context.Context, in impact.AnalyzeInput) (impact.Report, error) {
	return f.analyzeFn(ctx, in)
}

func testContext(t *testing.T, method, target, body string) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("company_id", uuid.New().String())
	c.Set("employee_id", uuid.New().String())
	c.Set("role", "EMPLOYEE")

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
		c.Request = httptest.NewRequest(method, target, reader)
		c.Request.Header.Set("Content-Type", "application/json")
	} else {
		c.Request = httptest.NewRequest(method, target, nil)
	}
	return w, c
}

func TestHandler_CalculateEnvelopesPlan(t *testing.T) {
	svc := &fakeService{
		calculateFn: func(ctx context.Context, companyID, employeeID string, req leave.CalculateRequest) (leave.CalculateResponse, error) {
			assert.Equal(t, "ANNUAL", req.LeaveType)
			return leave.CalculateResponse{WorkingDays: 5, NeedsSplit: true}, nil
		},
	}
	h := leave.NewHandler(svc, &fakeImpactService{})

	w, c := testContext(t, http.MethodPost, "/leave/calculate",
		`{"leave_type":"ANNUAL","start_date":"2026-03-02","end_date":"2026-03-06"}`)
	h.Calculate(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok":true`)
	assert.Contains(t, w.Body.String(), `"needs_split":true`)
}

func TestHandler_SubmitRejectsMissingReason(t *testing.T) {
	h := leave.NewHandler(&fakeService{}, &fakeImpactService{})

	w, c := testContext(t, http.MethodPost, "/leave",
		`{"leave_type":"ANNUAL","start_date":"2026-03-02","end_date":"2026-03-06"}`)
	h.Submit(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"ok":false`)
}

func TestHandler_SubmitMapsDomainErrors(t *testing.T) {
	svc := &fakeService{
		submitFn: func(ctx context.Context, companyID, actorID, actorRole string, req leave.SubmitRequest) (leave.LeaveResponse, error) {
			return leave.LeaveResponse{}, ledgererrors.ErrInsufficientBalance
		},
	}
	h := leave.NewHandler(svc, &fakeImpactService{})

	w, c := testContext(t, http.MethodPost, "/leave",
		`{"leave_type":"ANNUAL","start_date":"2026-03-02","end_date":"2026-03-06","reason":"trip"}`)
	h.Submit(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "INSUFFICIENT_BALANCE")
}

func TestHandler_SubmitCachesIdempotentResponse(t *testing.T) {
	rdb, redisMock := redismock.NewClientMock()

	submitted := leave.LeaveResponse{
		ID:        uuid.New().String(),
		Reference: "LV-2026-00042",
		Status:    leave.StatusSubmitted,
	}
	svc := &fakeService{
		submitFn: func(ctx context.Context, companyID, actorID, actorRole string, req leave.SubmitRequest) (leave.LeaveResponse, error) {
			return submitted, nil
		},
	}
	h := leave.NewHandlerWithRedis(svc, &fakeImpactService{}, rdb)

	w, c := testContext(t, http.MethodPost, "/leave",
		`{"leave_type":"ANNUAL","start_date":"2026-03-02","end_date":"2026-03-06","reason":"trip"}`)
	c.Set("idempotency_cache_key", "idemp:/leave:emp:key-1")
	c.Set("idempotency_lock_key", "idemp:/leave:emp:key-1:lock")

	payload, err := json.Marshal(submitted)
	assert.NoError(t, err)
	redisMock.ExpectSet("idemp:/leave:emp:key-1", payload, 24*time.Hour).SetVal("OK")
	redisMock.ExpectDel("idemp:/leave:emp:key-1:lock").SetVal(1)

	h.Submit(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "LV-2026-00042")
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestHandler_SubmitFailureReleasesIdempotencyLock(t *testing.T) {
	rdb, redisMock := redismock.NewClientMock()

	svc := &fakeService{
		submitFn: func(ctx context.Context, companyID, actorID, actorRole string, req leave.SubmitRequest) (leave.LeaveResponse, error) {
			return leave.LeaveResponse{}, ledgererrors.ErrInsufficientBalance
		},
	}
	h := leave.NewHandlerWithRedis(svc, &fakeImpactService{}, rdb)

	w, c := testContext(t, http.MethodPost, "/leave",
		`{"leave_type":"ANNUAL","start_date":"2026-03-02","end_date":"2026-03-06","reason":"trip"}`)
	c.Set("idempotency_cache_key", "idemp:/leave:emp:key-2")
	c.Set("idempotency_lock_key", "idemp:/leave:emp:key-2:lock")

	// Only the lock goes away; nothing gets cached for a failed submit.
	redisMock.ExpectDel("idemp:/leave:emp:key-2:lock").SetVal(1)

	h.Submit(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestHandler_ApproveSurfacesConflict(t *testing.T) {
	svc := &fakeService{
		approveFn: func(ctx context.Context, companyID, actorID, actorRole, id string, req leave.ApproveRequest) (leave.LeaveResponse, error) {
			return leave.LeaveResponse{}, ledgererrors.ErrBalanceConflict
		},
	}
	h := leave.NewHandler(svc, &fakeImpactService{})

	w, c := testContext(t, http.MethodPost, "/leave/abc/approve", `{"approve_all":true}`)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	h.Approve(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "CONFLICT")
}

func TestHandler_ImpactRunsAnalysisForRequestWindow(t *testing.T) {
	requestID := uuid.New().String()
	employeeID := uuid.New().String()

	svc := &fakeService{
		getByIDFn: func(ctx context.Context, companyID, actorID, actorRole, id string) (leave.LeaveDetailResponse, error) {
			assert.Equal(t, requestID, id)
			return leave.LeaveDetailResponse{
				LeaveResponse: leave.LeaveResponse{
					EmployeeID: employeeID,
					StartDate:  "2026-03-02",
					EndDate:    "2026-03-06",
				},
			}, nil
		},
	}
	impacts := &fakeImpactService{
		analyzeFn: func(ctx context.Context, in impact.AnalyzeInput) (impact.Report, error) {
			assert.Equal(t, employeeID, in.EmployeeID)
			assert.Equal(t, "2026-03-02", in.StartDate.Format("2006-01-02"))
			return impact.Report{RiskScore: 12, RiskLevel: impact.RiskLow}, nil
		},
	}
	h := leave.NewHandler(svc, impacts)

	w, c := testContext(t, http.MethodGet, "/leave/"+requestID+"/impact", "")
	c.Params = gin.Params{{Key: "id", Value: requestID}}
	h.Impact(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"risk_level":"Low"`)
}

func TestHandler_GetByIDNotFound(t *testing.T) {
	svc := &fakeService{
		getByIDFn: func(ctx context.Context, companyID, actorID, actorRole, id string) (leave.LeaveDetailResponse, error) {
			return leave.LeaveDetailResponse{}, leaveerrors.ErrLeaveNotFound
		},
	}
	h := leave.NewHandler(svc, &fakeImpactService{})

	w, c := testContext(t, http.MethodGet, "/leave/"+uuid.New().String(), "")
	c.Params = gin.Params{{Key: "id", Value: uuid.New().String()}}
	h.GetByID(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}
