// Package client calls the pricing API the way the dashboard does.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"insurance-pricing-service/internal/api"
	"insurance-pricing-service/internal/entity"
	"insurance-pricing-service/internal/service"
	"insurance-pricing-service/internal/validator"
)

// Session carries the caller's credentials. The token is sent as
// "<Prefix>_<Token>" in the token header.
type Session struct {
	Prefix string
	Token  string
}

func (s Session) header() string {
	return s.Prefix + "_" + s.Token
}

// StatusError is returned for any non-2xx reply the caller must handle.
type StatusError struct {
	StatusCode int
	Message    string
	Fields     []validator.FieldError
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("pricing api: %d %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	session    Session
}

func New(baseURL string, session Session, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		session:    session,
	}
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) (int, error) {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return 0, err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.session.Token != "" {
		req.Header.Set(api.TokenHeader, c.session.header())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var errBody api.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errBody); err == nil && errBody.Error != "" {
			statusErr.Message = errBody.Error
			statusErr.Fields = errBody.Fields
		}
		return resp.StatusCode, statusErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decoding %s %s: %w", method, path, err)
		}
	}
	return resp.StatusCode, nil
}

// UpsertPricing replaces the company's configuration for a pricing type.
func (c *Client) UpsertPricing(ctx context.Context, companyID, pricingTypeID string, rules api.RulesJSON) (*entity.PricingConfiguration, error) {
	var out struct {
		Pricing api.PricingJSON `json:"pricing"`
	}
	req := api.UpsertPricingRequest{PricingTypeID: pricingTypeID, Rules: rules}
	if _, err := c.do(ctx, http.MethodPost, "/pricing/"+companyID, req, &out); err != nil {
		return nil, err
	}
	return out.Pricing.Configuration()
}

// FetchPricing reports found=false when the company has no configuration
// for the pricing type. Every other failure is an error.
func (c *Client) FetchPricing(ctx context.Context, companyID, pricingTypeID string) (*entity.PricingConfiguration, bool, error) {
	var out struct {
		Pricing api.PricingJSON `json:"pricing"`
	}
	_, err := c.do(ctx, http.MethodGet, "/pricing/"+companyID+"/"+pricingTypeID, nil, &out)
	if isNotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	config, err := out.Pricing.Configuration()
	if err != nil {
		return nil, false, err
	}
	return config, true, nil
}

// isNotFound only accepts the handler's own 404. A 404 from a wrong base
// URL or route must surface as a StatusError.
func isNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) &&
		statusErr.StatusCode == http.StatusNotFound &&
		statusErr.Message == api.MsgConfigurationNotFound
}

func (c *Client) ListPricing(ctx context.Context, companyID string) ([]*entity.PricingConfiguration, error) {
	var out struct {
		Pricing []api.PricingJSON `json:"pricing"`
	}
	if _, err := c.do(ctx, http.MethodGet, "/pricing/company/"+companyID, nil, &out); err != nil {
		return nil, err
	}
	configs := make([]*entity.PricingConfiguration, 0, len(out.Pricing))
	for _, p := range out.Pricing {
		config, err := p.Configuration()
		if err != nil {
			return nil, err
		}
		configs = append(configs, config)
	}
	return configs, nil
}

func (c *Client) RemovePricing(ctx context.Context, companyID, pricingTypeID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/pricing/"+companyID+"/"+pricingTypeID, nil, nil)
	return err
}

func (c *Client) Calculate(ctx context.Context, req entity.QuoteRequest) (entity.Resolution, error) {
	var out struct {
		Result api.ResolutionJSON `json:"result"`
	}
	if _, err := c.do(ctx, http.MethodPost, "/pricing/calculate", req, &out); err != nil {
		return entity.Resolution{}, err
	}
	return out.Result.Resolution(), nil
}

func (c *Client) ListPricingTypes(ctx context.Context) ([]api.PricingTypeJSON, error) {
	var out struct {
		PricingTypes []api.PricingTypeJSON `json:"pricingTypes"`
	}
	if _, err := c.do(ctx, http.MethodGet, "/pricing-type/all", nil, &out); err != nil {
		return nil, err
	}
	return out.PricingTypes, nil
}

func (c *Client) InitializePricingTypes(ctx context.Context) (service.InitializeResult, error) {
	var out service.InitializeResult
	_, err := c.do(ctx, http.MethodPost, "/pricing-type/initialize", nil, &out)
	return out, err
}

func (c *Client) CreateRoadService(ctx context.Context, rs *entity.RoadService) (*entity.RoadService, error) {
	var out struct {
		RoadService *entity.RoadService `json:"roadService"`
	}
	if _, err := c.do(ctx, http.MethodPost, "/road-service/"+rs.CompanyID, rs, &out); err != nil {
		return nil, err
	}
	return out.RoadService, nil
}

func (c *Client) UpdateRoadService(ctx context.Context, rs *entity.RoadService) (*entity.RoadService, error) {
	var out struct {
		RoadService *entity.RoadService `json:"roadService"`
	}
	if _, err := c.do(ctx, http.MethodPut, "/road-service/"+rs.CompanyID+"/"+rs.ID.String(), rs, &out); err != nil {
		return nil, err
	}
	return out.RoadService, nil
}

func (c *Client) DeleteRoadService(ctx context.Context, companyID string, id uuid.UUID) error {
	_, err := c.do(ctx, http.MethodDelete, "/road-service/"+companyID+"/"+id.String(), nil, nil)
	return err
}

func (c *Client) ListRoadServices(ctx context.Context, companyID string) ([]*entity.RoadService, error) {
	var out struct {
		RoadServices []*entity.RoadService `json:"roadServices"`
	}
	if _, err := c.do(ctx, http.MethodGet, "/road-service/company/"+companyID, nil, &out); err != nil {
		return nil, err
	}
	return out.RoadServices, nil
}
