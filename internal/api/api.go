package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"insurance-pricing-service/internal/entity"
	"insurance-pricing-service/internal/service"
	"insurance-pricing-service/internal/validator"
)

type PricingService interface {
	Upsert(ctx context.Context, companyID, pricingTypeID string, draft entity.Draft) (*entity.PricingConfiguration, error)
	Remove(ctx context.Context, companyID, pricingTypeID string) error
	Fetch(ctx context.Context, companyID, pricingTypeID string) (*entity.PricingConfiguration, bool, error)
	ListByCompany(ctx context.Context, companyID string) ([]*entity.PricingConfiguration, error)
	Calculate(ctx context.Context, req entity.QuoteRequest) (entity.Resolution, error)
}

type PricingTypeService interface {
	List(ctx context.Context) []entity.PricingTypeCategory
	Initialize(ctx context.Context) (service.InitializeResult, error)
}

type RoadServiceService interface {
	Create(ctx context.Context, rs *entity.RoadService) (*entity.RoadService, error)
	Update(ctx context.Context, rs *entity.RoadService) (*entity.RoadService, error)
	Delete(ctx context.Context, companyID string, id uuid.UUID) error
	ListByCompany(ctx context.Context, companyID string) ([]*entity.RoadService, error)
}

// MsgConfigurationNotFound tells a missing configuration apart from an
// unknown route, which echo also answers with 404.
const MsgConfigurationNotFound = "pricing configuration not found"

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error  string                 `json:"error"`
	Fields []validator.FieldError `json:"fields,omitempty"`
}

// PricingHandler serves pricing configuration, pricing type and road
// service requests from the dashboard.
type PricingHandler struct {
	pricing      PricingService
	pricingTypes PricingTypeService
	roadServices RoadServiceService
}

func NewPricingHandler(pricing PricingService, pricingTypes PricingTypeService, roadServices RoadServiceService) *PricingHandler {
	return &PricingHandler{
		pricing:      pricing,
		pricingTypes: pricingTypes,
		roadServices: roadServices,
	}
}

// Register mounts every route except the health check on g. Static segments take priority in echo's
// router so /pricing/calculate never reaches the :companyId routes.
func (h *PricingHandler) Register(g *echo.Group) {
	g.POST("/pricing/calculate", h.Calculate)
	g.GET("/pricing/company/:companyId", h.ListPricing, CompanyScope)
	g.POST("/pricing/:companyId", h.UpsertPricing, CompanyScope)
	g.GET("/pricing/:companyId/:pricingTypeId", h.GetPricing, CompanyScope)
	g.DELETE("/pricing/:companyId/:pricingTypeId", h.RemovePricing, CompanyScope)

	g.GET("/pricing-type/all", h.ListPricingTypes)
	g.POST("/pricing-type/initialize", h.InitializePricingTypes)

	g.POST("/road-service/:companyId", h.CreateRoadService, CompanyScope)
	g.GET("/road-service/company/:companyId", h.ListRoadServices, CompanyScope)
	g.PUT("/road-service/:companyId/:id", h.UpdateRoadService, CompanyScope)
	g.DELETE("/road-service/:companyId/:id", h.DeleteRoadService, CompanyScope)
}

func (h *PricingHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"service": "insurance-pricing-service",
		"time":    time.Now().Format(time.RFC3339),
	})
}

func (h *PricingHandler) UpsertPricing(c echo.Context) error {
	var req UpsertPricingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request payload"})
	}
	if req.PricingTypeID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "pricing_type_id is required"})
	}

	config, err := h.pricing.Upsert(c.Request().Context(), c.Param("companyId"), req.PricingTypeID, req.Rules.Draft())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]PricingJSON{"pricing": NewPricingJSON(config)})
}

func (h *PricingHandler) GetPricing(c echo.Context) error {
	config, found, err := h.pricing.Fetch(c.Request().Context(), c.Param("companyId"), c.Param("pricingTypeId"))
	if err != nil {
		return writeError(c, err)
	}
	if !found {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: MsgConfigurationNotFound})
	}
	return c.JSON(http.StatusOK, map[string]PricingJSON{"pricing": NewPricingJSON(config)})
}

func (h *PricingHandler) ListPricing(c echo.Context) error {
	configs, err := h.pricing.ListByCompany(c.Request().Context(), c.Param("companyId"))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]PricingJSON, len(configs))
	for i, config := range configs {
		out[i] = NewPricingJSON(config)
	}
	return c.JSON(http.StatusOK, map[string][]PricingJSON{"pricing": out})
}

func (h *PricingHandler) RemovePricing(c echo.Context) error {
	if err := h.pricing.Remove(c.Request().Context(), c.Param("companyId"), c.Param("pricingTypeId")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "pricing configuration removed"})
}

func (h *PricingHandler) Calculate(c echo.Context) error {
	var req entity.QuoteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request payload"})
	}
	if req.CompanyID == "" || req.PricingTypeID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "company_id and pricing_type_id are required"})
	}
	if !companyAllowed(c, req.CompanyID) {
		return forbidden(c)
	}

	result, err := h.pricing.Calculate(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]ResolutionJSON{"result": NewResolutionJSON(result)})
}

func (h *PricingHandler) ListPricingTypes(c echo.Context) error {
	categories := h.pricingTypes.List(c.Request().Context())
	out := make([]PricingTypeJSON, len(categories))
	for i, category := range categories {
		out[i] = NewPricingTypeJSON(category)
	}
	return c.JSON(http.StatusOK, map[string][]PricingTypeJSON{"pricingTypes": out})
}

func (h *PricingHandler) InitializePricingTypes(c echo.Context) error {
	result, err := h.pricingTypes.Initialize(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *PricingHandler) CreateRoadService(c echo.Context) error {
	var rs entity.RoadService
	if err := c.Bind(&rs); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request payload"})
	}
	rs.CompanyID = c.Param("companyId")

	created, err := h.roadServices.Create(c.Request().Context(), &rs)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]*entity.RoadService{"roadService": created})
}

func (h *PricingHandler) ListRoadServices(c echo.Context) error {
	services, err := h.roadServices.ListByCompany(c.Request().Context(), c.Param("companyId"))
	if err != nil {
		return writeError(c, err)
	}
	if services == nil {
		services = []*entity.RoadService{}
	}
	return c.JSON(http.StatusOK, map[string][]*entity.RoadService{"roadServices": services})
}

func (h *PricingHandler) UpdateRoadService(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid road service id"})
	}
	var rs entity.RoadService
	if err := c.Bind(&rs); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request payload"})
	}
	rs.ID = id
	rs.CompanyID = c.Param("companyId")

	updated, err := h.roadServices.Update(c.Request().Context(), &rs)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]*entity.RoadService{"roadService": updated})
}

func (h *PricingHandler) DeleteRoadService(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid road service id"})
	}
	if err := h.roadServices.Delete(c.Request().Context(), c.Param("companyId"), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "road service removed"})
}

func writeError(c echo.Context, err error) error {
	var validationErr *validator.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid pricing configuration", Fields: validationErr.Fields})
	case errors.Is(err, service.ErrInvalidRoadService):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, entity.ErrWrongSubsystem):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, entity.ErrUnknownPricingType), errors.Is(err, entity.ErrRoadServiceNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}
