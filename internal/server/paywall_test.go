package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	paywalldomain "github.com/pulsehub/pulsehub/internal/paywall/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPaywall struct {
	paywall *paywalldomain.Paywall
	err     error
}

func (s stubPaywall) Get(ctx context.Context, entityID, kind string) (*paywalldomain.Paywall, error) {
	return s.paywall, s.err
}

func (s stubPaywall) Upsert(ctx context.Context, req paywalldomain.UpsertPaywallRequest) (*paywalldomain.Paywall, error) {
	return nil, nil
}

func (s stubPaywall) Delete(ctx context.Context, entityID, kind string) error {
	return nil
}

func (s stubPaywall) InitiateCoursePurchase(ctx context.Context, courseID, buyerID string) (paywalldomain.PurchaseResult, error) {
	return paywalldomain.PurchaseResult{}, nil
}

func getPaywall(svc paywalldomain.Service, query string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandlingMiddleware())
	srv := &Server{paywallSvc: svc}
	r.GET("/paywalls", srv.GetPaywall)

	req := httptest.NewRequest(http.MethodGet, "/paywalls?"+query, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetPaywallAbsentIsNotAnError(t *testing.T) {
	w := getPaywall(stubPaywall{}, "entity_id=7&kind=course")

	assert.Equal(t, http.StatusOK, w.Code)

	var payload struct {
		Data *paywalldomain.Paywall `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Nil(t, payload.Data)
}

func TestGetPaywallReturnsPrice(t *testing.T) {
	courseID := snowflake.ID(7)
	w := getPaywall(stubPaywall{paywall: &paywalldomain.Paywall{
		ID:         snowflake.ID(1),
		SpaceID:    snowflake.ID(2),
		CourseID:   &courseID,
		PriceCents: 4900,
		Currency:   "USD",
	}}, "entity_id=7&kind=course")

	assert.Equal(t, http.StatusOK, w.Code)

	var payload struct {
		Data *paywalldomain.Paywall `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.NotNil(t, payload.Data)
	assert.Equal(t, int64(4900), payload.Data.PriceCents)
}
