package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/jekabolt/grbpwr-analytics/internal/engine"
	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLedger struct {
	rows      []entity.RawOrderLine
	products  []entity.Product
	customers []entity.Customer
}

func (s *stubLedger) LoadRawOrderLines(context.Context) ([]entity.RawOrderLine, error) {
	return s.rows, nil
}
func (s *stubLedger) LoadProducts(context.Context) ([]entity.Product, error) {
	return s.products, nil
}
func (s *stubLedger) LoadCustomers(context.Context) ([]entity.Customer, error) {
	return s.customers, nil
}
func (s *stubLedger) Close() {}

func testServer() *Server {
	ledger := &stubLedger{
		rows: []entity.RawOrderLine{
			{
				OrderID:     "O-1",
				OrderDate:   "2024-01-15",
				CustomerID:  "C1",
				ProductID:   "P-1",
				Quantity:    "1",
				UnitPrice:   "100",
				TotalAmount: sql.NullString{String: "100", Valid: true},
				OrderStatus: "completed",
			},
			{
				OrderID:     "O-2",
				OrderDate:   "2024-02-10",
				CustomerID:  "C1",
				ProductID:   "P-1",
				Quantity:    "1",
				UnitPrice:   "200",
				TotalAmount: sql.NullString{String: "200", Valid: true},
				OrderStatus: "completed",
			},
			{
				OrderID:     "O-BAD",
				OrderDate:   "never",
				CustomerID:  "C1",
				ProductID:   "P-1",
				Quantity:    "1",
				UnitPrice:   "10",
				OrderStatus: "completed",
			},
		},
		products: []entity.Product{
			{ProductID: "P-1", ProductName: "Hoodie", Category: "Apparel", SubCategory: "Tops"},
		},
		customers: []entity.Customer{
			{CustomerID: "C1", CustomerName: "Anna", CustomerSegment: "Consumer"},
		},
	}
	return New(&Config{}, engine.Config{DefaultGranularity: "month"}, ledger)
}

func testRouter(s *Server) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/analytics/report", s.handleReport)
	r.Get("/api/analytics/report/{table}", s.handleTable)
	return r
}

func TestHandleReport(t *testing.T) {
	r := testRouter(testServer())

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/report?as_of=2024-06-01", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var report entity.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))

	assert.Equal(t, 2, report.KPI.TotalOrders)
	assert.Len(t, report.TimeSeries, 2)
	require.Len(t, report.Rejections, 1, "malformed row reported alongside valid output")
	assert.Equal(t, "O-BAD", report.Rejections[0].OrderID)
}

func TestHandleSingleTable(t *testing.T) {
	r := testRouter(testServer())

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/report/kpi_summary?as_of=2024-06-01", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var kpi entity.KPISummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &kpi))
	assert.Equal(t, 2, kpi.TotalOrders)
	assert.Equal(t, "300", kpi.TotalSales.String())
}

func TestHandleUnknownTable(t *testing.T) {
	r := testRouter(testServer())

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/report/nope", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleBadAsOf(t *testing.T) {
	r := testRouter(testServer())

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/report?as_of=yesterday", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
