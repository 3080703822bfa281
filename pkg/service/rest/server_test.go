//
//  Copyright © Manetu Inc. All rights reserved.
//

package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/manetu/tablevalidator/internal/oracle/mock"
	"github.com/manetu/tablevalidator/internal/test"
	"github.com/manetu/tablevalidator/pkg/metrics"
	"github.com/manetu/tablevalidator/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const organ = "obo:UBERON_0000062"

func setupHandler(t *testing.T) (*echo.Echo, *metrics.Metrics) {
	t.Helper()

	k, err := test.LoadKnowledgeBase()
	require.NoError(t, err)

	m := metrics.New("", nil)
	o := mock.New(mock.NewScript().Answer(mock.OpSubClasses, organ, "obo:UBERON_0000948"))
	return NewHandler(validator.New(k, o, validator.WithMetrics(m)), m), m
}

func post(t *testing.T, e *echo.Echo, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/validate", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func request(rows ...[]string) string {
	body, _ := json.Marshal(ValidateRequest{Tables: []TableBody{{Name: "t.csv", Rows: rows}}})
	return string(body)
}

func TestValidate_Valid(t *testing.T) {
	e, _ := setupHandler(t)

	rec := post(t, e, request([]string{"Label"}, []string{"subclass-of organ"}, []string{"heart"}))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ValidateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Valid)
	assert.NotEmpty(t, resp.RunID)
	assert.Empty(t, resp.Errors)
	assert.Empty(t, resp.InvalidTables)
}

func TestValidate_Invalid(t *testing.T) {
	e, m := setupHandler(t)

	rec := post(t, e, request([]string{"Label"}, []string{"subclass-of organ"}, []string{"heart"}, []string{"liver"}))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ValidateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
	assert.Equal(t, []string{"t.csv"}, resp.InvalidTables)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "A4", resp.Errors[0].Cell)
	assert.Equal(t, "t!A2", resp.Errors[0].RuleID)
	assert.Equal(t, resp.RunID, resp.Errors[0].RunID)

	scrape := httptest.NewRecorder()
	e.ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, scrape.Code)
	assert.Contains(t, scrape.Body.String(), `mtv_validation_errors_total{level="error",table="t.csv"} 1`)
	assert.NotNil(t, m.Registry())
}

func TestValidate_StructuralError(t *testing.T) {
	e, _ := setupHandler(t)

	rec := post(t, e, request([]string{"Label"}, []string{"frobnicate organ"}, []string{"heart"}))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "UNRECOGNIZED RULE TYPE")
}

func TestValidate_BadRequests(t *testing.T) {
	e, _ := setupHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"tables": json}`},
		{"no tables", `{"tables": []}`},
		{"no name", `{"tables": [{"rows": [["a"], ["is-required"]]}]}`},
		{"no rule row", `{"tables": [{"name": "t.csv", "rows": [["a"]]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, e, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHealthz(t *testing.T) {
	e, _ := setupHandler(t)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestCreateServer(t *testing.T) {
	k, err := test.LoadKnowledgeBase()
	require.NoError(t, err)

	// Use a high port number to avoid conflicts
	port := 19000 + (os.Getpid() % 1000)

	server, err := CreateServer(validator.New(k, mock.New(nil)), nil, port)
	require.NoError(t, err)

	url := fmt.Sprintf("http://localhost:%d", port)
	var resp *http.Response
	for i := 0; i < 20; i++ {
		resp, err = http.Post(url+"/v1/validate", echo.MIMEApplicationJSON,
			bytes.NewBufferString(request([]string{"Label"}, []string{"is-required"}, []string{"heart"})))
		if err == nil {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	require.NoError(t, err, "server did not become ready")
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, server.Stop(ctx))
}
