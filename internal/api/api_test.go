package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insurance-pricing-service/internal/catalog"
	"insurance-pricing-service/internal/repository"
	"insurance-pricing-service/internal/resolver"
	"insurance-pricing-service/internal/service"
)

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	store := repository.NewMemoryStore()
	c, err := catalog.New(catalog.DefaultCategories())
	require.NoError(t, err)

	roads := service.NewRoadServiceService(store, nil)
	pricing := service.NewPricingService(store, nil, c, resolver.New(c, roads), nil)
	pricingTypes := service.NewPricingTypeService(store, c, catalog.DefaultCategories(), nil)

	e := echo.New()
	h := NewPricingHandler(pricing, pricingTypes, roads)
	e.GET("/pricing/health", h.Health)
	h.Register(e.Group(""))
	return e
}

func do(t *testing.T, e *echo.Echo, method, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec.Code, out
}

const thirdPartyBody = `{
	"pricing_type_id": "third_party",
	"rules": {"matrix": [
		{"vehicle_type": "car", "driver_age_group": "above_24", "offer_amount_min": 0, "offer_amount_max": 10000, "price": 500},
		{"vehicle_type": "car", "driver_age_group": "above_24", "offer_amount_min": 10000, "offer_amount_max": 20000, "price": 800}
	]}
}`

func TestUpsertAndFetchMatrix(t *testing.T) {
	e := newTestServer(t)

	code, body := do(t, e, http.MethodPost, "/pricing/acme", thirdPartyBody)
	require.Equal(t, http.StatusOK, code)
	pricing := body["pricing"].(map[string]any)
	assert.Equal(t, "acme", pricing["company_id"])
	assert.Equal(t, "matrix", pricing["strategy"])

	code, body = do(t, e, http.MethodGet, "/pricing/acme/third_party", "")
	require.Equal(t, http.StatusOK, code)
	rules := body["pricing"].(map[string]any)["rules"].(map[string]any)["matrix"].([]any)
	require.Len(t, rules, 2)
	first := rules[0].(map[string]any)
	assert.Equal(t, "car", first["vehicle_type"])
	assert.EqualValues(t, 500, first["price"])
}

func TestUpsertFixedAmountAndManualEntry(t *testing.T) {
	e := newTestServer(t)

	code, body := do(t, e, http.MethodPost, "/pricing/acme", `{"pricing_type_id":"compulsory","rules":{"fixedAmount":1500.5}}`)
	require.Equal(t, http.StatusOK, code)
	rules := body["pricing"].(map[string]any)["rules"].(map[string]any)
	assert.EqualValues(t, 1500.5, rules["fixedAmount"])

	code, body = do(t, e, http.MethodPost, "/pricing/acme", `{"pricing_type_id":"accident_fee_waiver","rules":{"fixedAmount":3}}`)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["pricing"].(map[string]any)["rules"])

	code, body = do(t, e, http.MethodGet, "/pricing/company/acme", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["pricing"], 2)
}

func TestUpsertValidationErrors(t *testing.T) {
	e := newTestServer(t)

	code, body := do(t, e, http.MethodPost, "/pricing/acme", `{"pricing_type_id":"compulsory","rules":{"fixedAmount":0}}`)
	require.Equal(t, http.StatusBadRequest, code)
	fields := body["fields"].([]any)
	require.Len(t, fields, 1)
	assert.Equal(t, "fixedAmount", fields[0].(map[string]any)["field"])

	code, body = do(t, e, http.MethodPost, "/pricing/acme", `{"pricing_type_id":"third_party","rules":{"matrix":[
		{"vehicle_type":"car","driver_age_group":"above_24","offer_amount_min":100,"offer_amount_max":100,"price":5}]}}`)
	require.Equal(t, http.StatusBadRequest, code)
	assert.EqualValues(t, 0, body["fields"].([]any)[0].(map[string]any)["index"])

	code, _ = do(t, e, http.MethodGet, "/pricing/acme/compulsory", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestUpsertErrorStatuses(t *testing.T) {
	e := newTestServer(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"unknown pricing type", `{"pricing_type_id":"pet_insurance","rules":{}}`, http.StatusNotFound},
		{"road service", `{"pricing_type_id":"road_service","rules":{}}`, http.StatusConflict},
		{"missing pricing type", `{"rules":{}}`, http.StatusBadRequest},
		{"malformed", `{"pricing_type_id":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := do(t, e, http.MethodPost, "/pricing/acme", tt.body)
			assert.Equal(t, tt.want, code)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	e := newTestServer(t)

	code, _ := do(t, e, http.MethodPost, "/pricing/acme", thirdPartyBody)
	require.Equal(t, http.StatusOK, code)

	for i := 0; i < 2; i++ {
		code, _ = do(t, e, http.MethodDelete, "/pricing/acme/third_party", "")
		assert.Equal(t, http.StatusOK, code)
	}
	code, _ = do(t, e, http.MethodGet, "/pricing/acme/third_party", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestCalculate(t *testing.T) {
	e := newTestServer(t)
	code, _ := do(t, e, http.MethodPost, "/pricing/acme", thirdPartyBody)
	require.Equal(t, http.StatusOK, code)

	quote := func(pricingType string, amount int) map[string]any {
		body := `{"company_id":"acme","pricing_type_id":"` + pricingType +
			`","vehicle_type":"car","driver_age_group":"above_24","offer_amount":` + strconv.Itoa(amount) + `}`
		code, out := do(t, e, http.MethodPost, "/pricing/calculate", body)
		require.Equal(t, http.StatusOK, code)
		return out["result"].(map[string]any)
	}

	// The shared bound belongs to the first rule.
	result := quote("third_party", 10000)
	assert.Equal(t, true, result["matched"])
	assert.EqualValues(t, 500, result["price"])
	assert.EqualValues(t, 0, result["rule_index"])

	result = quote("third_party", 15000)
	assert.EqualValues(t, 800, result["price"])
	assert.EqualValues(t, 1, result["rule_index"])

	result = quote("third_party", 25000)
	assert.Equal(t, false, result["matched"])
	assert.Equal(t, "no_band_covers", result["reason"])
	assert.NotContains(t, result, "price")

	result = quote("accident_fee_waiver", 1)
	assert.Equal(t, "requires_manual_entry", result["reason"])

	result = quote("comprehensive", 1)
	assert.Equal(t, "not_configured", result["reason"])

	code, _ = do(t, e, http.MethodPost, "/pricing/calculate", `{"company_id":"acme","pricing_type_id":"nope"}`)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestPricingTypes(t *testing.T) {
	e := newTestServer(t)

	code, body := do(t, e, http.MethodGet, "/pricing-type/all", "")
	require.Equal(t, http.StatusOK, code)
	types := body["pricingTypes"].([]any)
	require.Len(t, types, 5)
	thirdParty := types[1].(map[string]any)
	assert.Equal(t, "third_party", thirdParty["_id"])
	assert.Equal(t, true, thirdParty["requiresPricingTable"])

	code, body = do(t, e, http.MethodPost, "/pricing-type/initialize", "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 5, body["inserted"])
	assert.EqualValues(t, 0, body["updated"])

	code, body = do(t, e, http.MethodPost, "/pricing-type/initialize", "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 0, body["inserted"])
	assert.EqualValues(t, 5, body["updated"])
}

func TestRoadServiceLifecycle(t *testing.T) {
	e := newTestServer(t)

	code, body := do(t, e, http.MethodPost, "/road-service/acme",
		`{"name":"Towing","description":"24h","normal_price":300,"old_car_price":450,"cutoff_year":2010}`)
	require.Equal(t, http.StatusCreated, code)
	id := body["roadService"].(map[string]any)["_id"].(string)

	quote := `{"company_id":"acme","pricing_type_id":"road_service","offer_amount":0,"manufacture_year":2005,"road_service_id":"` + id + `"}`
	code, body = do(t, e, http.MethodPost, "/pricing/calculate", quote)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 450, body["result"].(map[string]any)["price"])

	code, body = do(t, e, http.MethodPost, "/pricing/calculate",
		`{"company_id":"acme","pricing_type_id":"road_service","road_service_id":"`+id+`"}`)
	require.Equal(t, http.StatusOK, code)
	result := body["result"].(map[string]any)
	assert.Equal(t, false, result["matched"])
	assert.Equal(t, "manufacture_year_required", result["reason"])
	assert.NotContains(t, result, "price")

	code, _ = do(t, e, http.MethodPut, "/road-service/acme/"+id,
		`{"name":"Towing","normal_price":350,"old_car_price":500,"cutoff_year":2000}`)
	require.Equal(t, http.StatusOK, code)

	code, body = do(t, e, http.MethodPost, "/pricing/calculate", quote)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 350, body["result"].(map[string]any)["price"])

	code, body = do(t, e, http.MethodGet, "/road-service/company/acme", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["roadServices"], 1)

	code, _ = do(t, e, http.MethodDelete, "/road-service/acme/"+id, "")
	require.Equal(t, http.StatusOK, code)

	code, body = do(t, e, http.MethodPost, "/pricing/calculate", quote)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "no_road_service", body["result"].(map[string]any)["reason"])

	code, _ = do(t, e, http.MethodPut, "/road-service/acme/"+id, `{"name":"Towing","cutoff_year":2000}`)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, e, http.MethodPost, "/road-service/acme", `{"normal_price":1}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestHealth(t *testing.T) {
	e := newTestServer(t)
	code, body := do(t, e, http.MethodGet, "/pricing/health", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestWireRoundTrip(t *testing.T) {
	e := newTestServer(t)
	_, body := do(t, e, http.MethodPost, "/pricing/acme", thirdPartyBody)

	raw, err := json.Marshal(body["pricing"])
	require.NoError(t, err)
	var wire PricingJSON
	require.NoError(t, json.Unmarshal(raw, &wire))

	config, err := wire.Configuration()
	require.NoError(t, err)
	require.Len(t, config.Rules(), 2)
	assert.Equal(t, "800", config.Rules()[1].Price.String())
}

func signToken(t *testing.T, secret, companyID string) string {
	t.Helper()
	claims := &JwtCustomClaims{
		CompanyID: companyID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func newAuthServer(t *testing.T) *echo.Echo {
	t.Helper()
	store := repository.NewMemoryStore()
	c, err := catalog.New(catalog.DefaultCategories())
	require.NoError(t, err)
	roads := service.NewRoadServiceService(store, nil)
	h := NewPricingHandler(
		service.NewPricingService(store, nil, c, resolver.New(c, roads), nil),
		service.NewPricingTypeService(store, c, catalog.DefaultCategories(), nil),
		roads,
	)

	e := echo.New()
	e.Use(AuthMiddleware("secret", "Bearer"))
	e.GET(HealthPath, h.Health)
	h.Register(e.Group(""))
	return e
}

func TestAuthMiddleware(t *testing.T) {
	e := newAuthServer(t)
	token := signToken(t, "secret", "acme")
	forged := signToken(t, "other", "acme")

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"valid token", "/pricing-type/all", "Bearer_" + token, http.StatusOK},
		{"missing token", "/pricing-type/all", "", http.StatusUnauthorized},
		{"wrong prefix", "/pricing-type/all", "Basic_" + token, http.StatusUnauthorized},
		{"wrong secret", "/pricing-type/all", "Bearer_" + forged, http.StatusUnauthorized},
		{"health is open", HealthPath, "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(TokenHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestCompanyScope(t *testing.T) {
	e := newAuthServer(t)
	acme := "Bearer_" + signToken(t, "secret", "acme")
	operator := "Bearer_" + signToken(t, "secret", "")
	roadServiceID := "/road-service/globex/3f2c9a54-9a4e-4c55-8f1e-2b1d6f0a7c11"

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		header string
		want   int
	}{
		{"own company upsert", http.MethodPost, "/pricing/acme", `{"pricing_type_id":"compulsory","rules":{"fixedAmount":100}}`, acme, http.StatusOK},
		{"other company upsert", http.MethodPost, "/pricing/globex", `{"pricing_type_id":"compulsory","rules":{"fixedAmount":100}}`, acme, http.StatusForbidden},
		{"other company list", http.MethodGet, "/pricing/company/globex", "", acme, http.StatusForbidden},
		{"other company fetch", http.MethodGet, "/pricing/globex/compulsory", "", acme, http.StatusForbidden},
		{"other company remove", http.MethodDelete, "/pricing/globex/compulsory", "", acme, http.StatusForbidden},
		{"other company road service delete", http.MethodDelete, roadServiceID, "", acme, http.StatusForbidden},
		{"other company road services", http.MethodGet, "/road-service/company/globex", "", acme, http.StatusForbidden},
		{"other company calculate", http.MethodPost, "/pricing/calculate",
			`{"company_id":"globex","pricing_type_id":"compulsory","offer_amount":1}`, acme, http.StatusForbidden},
		{"own company calculate", http.MethodPost, "/pricing/calculate",
			`{"company_id":"acme","pricing_type_id":"compulsory","offer_amount":1}`, acme, http.StatusOK},
		{"shared catalog", http.MethodGet, "/pricing-type/all", "", acme, http.StatusOK},
		{"operator token", http.MethodPost, "/pricing/globex", `{"pricing_type_id":"compulsory","rules":{"fixedAmount":100}}`, operator, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			req.Header.Set(TokenHeader, tt.header)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
