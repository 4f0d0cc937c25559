package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSetupRoutes tests that routes are properly registered by checking the route tree
func TestSetupRoutes(t *testing.T) {
	server, err := NewServer(newTestConfig(t))
	require.NoError(t, err)

	router := gin.New()
	server.setupRoutes(router)

	expectedRoutes := []string{
		"GET /metrics",
		"GET /api/v1/health",
		"POST /api/v1/tasks",
		"GET /api/v1/tasks",
		"GET /api/v1/tasks/:id",
		"POST /api/v1/tasks/:id/cancel",
		"GET /api/v1/tasks/:id/failures",
		"GET /api/v1/variants",
	}

	registered := make(map[string]bool)
	for _, route := range router.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	for _, route := range expectedRoutes {
		t.Run(route, func(t *testing.T) {
			if !registered[route] {
				t.Errorf("Route %s not registered", route)
			}
		})
	}
}

// TestBatchLifecycle submits a spreadsheet against a stub store, waits for the
// task to finish and downloads the failure file.
func TestBatchLifecycle(t *testing.T) {
	var created atomic.Int32
	store := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/admin/api/2024-01/orders.json":
			id := 1000 + created.Add(1)
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"order":{"id":` + strconv.Itoa(int(id)) + `}}`))
		default:
			_, _ = w.Write([]byte(`{"data":{"paymentTermsCreate":{"userErrors":[]}}}`))
		}
	}))
	defer store.Close()

	cfg := newTestConfig(t)
	server, err := NewServer(cfg)
	require.NoError(t, err)
	handler := server.Handler()

	csvBody := "Shipping Name,Shipping Address1,Shipping Phone,Lineitem quantity\n" +
		"Asha Rao,12 MG Road,9876543210,1\n" +
		"Ravi Kumar,4 Park St,12345,1\n"

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", "orders.csv")
	require.NoError(t, err)
	_, _ = io.WriteString(part, csvBody)
	_ = mw.WriteField("variant_id", "4242")
	_ = mw.WriteField("store_url", store.URL)
	_ = mw.WriteField("access_token", "shpat_test")
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	var submitted struct {
		TaskID string `json:"task_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &submitted))
	require.NotEmpty(t, submitted.TaskID)

	var status struct {
		Status  string           `json:"status"`
		Results []map[string]any `json:"results"`
		Skipped []map[string]any `json:"skipped_orders"`
	}
	require.Eventually(t, func() bool {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/tasks/"+submitted.TaskID, nil))
		if w.Code != http.StatusOK {
			return false
		}
		if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
			return false
		}
		return status.Status == "Completed"
	}, 5*time.Second, 10*time.Millisecond)

	require.Len(t, status.Results, 2)
	require.Len(t, status.Skipped, 1)
	assert.Equal(t, "Ravi Kumar", status.Skipped[0]["name"])
	assert.Equal(t, int32(1), created.Load())

	// The failure file is written right after completion.
	var csvOut string
	require.Eventually(t, func() bool {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/tasks/"+submitted.TaskID+"/failures", nil))
		csvOut = w.Body.String()
		return w.Code == http.StatusOK
	}, 5*time.Second, 10*time.Millisecond)
	assert.Contains(t, csvOut, "Ravi Kumar")
	assert.Contains(t, csvOut, "invalid phone number")

	// Completed tasks cannot be cancelled.
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/tasks/"+submitted.TaskID+"/cancel", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Metrics reflect the processed records.
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.True(t, strings.Contains(w.Body.String(), `orderpace_records_total{outcome="success"} 1`))
}
