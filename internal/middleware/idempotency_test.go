package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"leave-engine/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

func idempContext(t *testing.T, key string) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/leave", nil)
	if key != "" {
		c.Request.Header.Set("Idempotency-Key", key)
	}
	c.Set("employee_id", "emp-1")
	return w, c
}

func TestIdempotency_ReplaysCachedResponse(t *testing.T) {
	rdb, redisMock := redismock.NewClientMock()

	cached, err := json.Marshal(map[string]string{"reference": "LV-2026-00042"})
	assert.NoError(t, err)
	redisMock.ExpectGet("idemp::emp-1:key-1").SetVal(string(cached))

	w, c := idempContext(t, "key-1")
	middleware.Idempotency(rdb)(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok":true`)
	assert.Contains(t, w.Body.String(), "LV-2026-00042")
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestIdempotency_InFlightKeyConflicts(t *testing.T) {
	rdb, redisMock := redismock.NewClientMock()

	redisMock.ExpectGet("idemp::emp-1:key-1").RedisNil()
	redisMock.ExpectSetNX("idemp::emp-1:key-1:lock", "locked", 30*time.Second).SetVal(false)

	w, c := idempContext(t, "key-1")
	middleware.Idempotency(rdb)(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestIdempotency_FirstRequestTakesLockAndProceeds(t *testing.T) {
	rdb, redisMock := redismock.NewClientMock()

	redisMock.ExpectGet("idemp::emp-1:key-1").RedisNil()
	redisMock.ExpectSetNX("idemp::emp-1:key-1:lock", "locked", 30*time.Second).SetVal(true)

	_, c := idempContext(t, "key-1")
	middleware.Idempotency(rdb)(c)

	assert.False(t, c.IsAborted())
	assert.Equal(t, "idemp::emp-1:key-1", c.GetString("idempotency_cache_key"))
	assert.Equal(t, "idemp::emp-1:key-1:lock", c.GetString("idempotency_lock_key"))
	assert.NoError(t, redisMock.ExpectationsWereMet())
}
