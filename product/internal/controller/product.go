package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/common/response"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/session"
	"github.com/Alturino/storefront/product/internal/otel"
	"github.com/Alturino/storefront/product/internal/service"
)

type ProductController struct {
	service *service.ProductService
}

type selectCategory struct {
	Category *string `json:"category"`
}

func AttachProductController(mux *mux.Router, service *service.ProductService) {
	controller := ProductController{service}

	router := mux.PathPrefix("/products").Subrouter()
	router.HandleFunc("", controller.GetCatalog).Methods(http.MethodGet)
	router.HandleFunc("/{productId}", controller.FindProductById).Methods(http.MethodGet)

	categoryRouter := mux.PathPrefix("/categories").Subrouter()
	categoryRouter.HandleFunc("", controller.GetCategories).Methods(http.MethodGet)
	categoryRouter.HandleFunc("/selected", controller.SelectCategory).Methods(http.MethodPut)
	categoryRouter.HandleFunc("/{category}/toggle", controller.ToggleCategory).
		Methods(http.MethodPost)
}

func currentSession(r *http.Request) (*session.Session, error) {
	s, ok := session.FromContext(r.Context())
	if !ok {
		return nil, commonErrors.ErrSessionNotFound
	}
	return s, nil
}

func (p ProductController) GetCatalog(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController GetCatalog")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductController GetCatalog").
		Logger()

	s, err := currentSession(r)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteJsonResponse(c, w, map[string]string{}, response.Failed(http.StatusInternalServerError, err.Error()))
		return
	}

	wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))
	c = logger.WithContext(c)
	page := p.service.GetCatalog(c, s, wait)
	response.WriteJsonResponse(c, w, map[string]string{}, response.Success("rendered catalog", map[string]interface{}{
		"catalog": page,
	}))
}

func (p ProductController) FindProductById(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController FindProductById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductController FindProductById").
		Logger()

	s, err := currentSession(r)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteJsonResponse(c, w, map[string]string{}, response.Failed(http.StatusInternalServerError, err.Error()))
		return
	}

	logger = logger.With().Str(log.KeyProcess, "parsing productId").Logger()
	logger.Trace().Msg("parsing productId")
	raw := mux.Vars(r)["productId"]
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		err = fmt.Errorf("%w productId=%s", commonErrors.ErrInvalidProductID, raw)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteJsonResponse(c, w, map[string]string{}, response.Failed(http.StatusBadRequest, err.Error()))
		return
	}
	span.SetAttributes(attribute.Int(log.KeyProductID, id))
	logger = logger.With().Int(log.KeyProductID, id).Logger()
	logger.Trace().Msg("parsed productId")

	logger = logger.With().Str(log.KeyProcess, "finding product").Logger()
	c = logger.WithContext(c)
	detail, err := p.service.FindProductById(c, s, id)
	if err != nil {
		// A failed catalog fetch is presented the same way as an unknown id.
		response.WriteJsonResponse(c, w, map[string]string{}, response.Failed(
			http.StatusNotFound,
			commonErrors.ErrProductNotFound.Error(),
		))
		return
	}

	response.WriteJsonResponse(c, w, map[string]string{}, response.Success("found product", map[string]interface{}{
		"product":     detail.Product,
		"quantity":    detail.Quantity,
		"control":     detail.Control,
		"recommended": detail.Recommended,
	}))
}

func (p ProductController) GetCategories(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController GetCategories")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductController GetCategories").
		Logger()

	s, err := currentSession(r)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteJsonResponse(c, w, map[string]string{}, response.Failed(http.StatusInternalServerError, err.Error()))
		return
	}

	categories := p.service.GetCategories(c, s)
	response.WriteJsonResponse(c, w, map[string]string{}, response.Success("found categories", map[string]interface{}{
		"categories": categories,
	}))
}

func (p ProductController) SelectCategory(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController SelectCategory")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductController SelectCategory").
		Logger()

	s, err := currentSession(r)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteJsonResponse(c, w, map[string]string{}, response.Failed(http.StatusInternalServerError, err.Error()))
		return
	}

	logger = logger.With().Str(log.KeyProcess, "decoding requestbody").Logger()
	logger.Trace().Msg("decoding requestbody")
	reqBody := selectCategory{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteJsonResponse(c, w, map[string]string{}, response.Failed(http.StatusBadRequest, err.Error()))
		return
	}
	logger.Trace().Msg("decoded request body")

	c = logger.WithContext(c)
	categories := p.service.SelectCategory(c, s, reqBody.Category)
	response.WriteJsonResponse(c, w, map[string]string{}, response.Success("selected category", map[string]interface{}{
		"categories": categories,
	}))
}

func (p ProductController) ToggleCategory(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController ToggleCategory")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductController ToggleCategory").
		Logger()

	s, err := currentSession(r)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteJsonResponse(c, w, map[string]string{}, response.Failed(http.StatusInternalServerError, err.Error()))
		return
	}

	c = logger.WithContext(c)
	categories, err := p.service.ToggleCategory(c, s, mux.Vars(r)["category"])
	if err != nil {
		response.WriteJsonResponse(c, w, map[string]string{}, response.Failed(http.StatusNotFound, err.Error()))
		return
	}
	response.WriteJsonResponse(c, w, map[string]string{}, response.Success("toggled category", map[string]interface{}{
		"categories": categories,
	}))
}
