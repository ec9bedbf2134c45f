package location

import (
	"errors"
	"net/http"

	"kampalabites/internal/eta"
	"kampalabites/internal/geolocate"
	"kampalabites/internal/locsession"
	"kampalabites/internal/responses"
	"kampalabites/internal/structs"
	"kampalabites/pkg/logger"
	"kampalabites/pkg/reply"
	"kampalabites/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	Module = fx.Provide(New)
)

type (
	Handler interface {
		Search(c *gin.Context)
		Detect(c *gin.Context)
		Select(c *gin.Context)
		Eta(c *gin.Context)
		GetRecent(c *gin.Context)
		ClearRecent(c *gin.Context)
	}

	Params struct {
		fx.In
		Logger     logger.Logger
		Session    *locsession.Service
		EtaService eta.Service
	}

	handler struct {
		logger     logger.Logger
		session    *locsession.Service
		etaService eta.Service
	}
)

func New(p Params) Handler {
	return &handler{
		logger:     p.Logger,
		session:    p.Session,
		etaService: p.EtaService,
	}
}

func owner(c *gin.Context) string {
	if id := c.GetHeader("X-Device-Id"); id != "" {
		return id
	}
	return "default"
}

// Search resolves free text into classified suggestions. Geocoder outages are
// absorbed below this layer, so the response is always 200 with a (possibly
// empty) list.
func (h *handler) Search(c *gin.Context) {
	var (
		response structs.Response
		query    = c.Query("q")
		limit    = cast.ToInt(c.Query("limit"))
	)

	defer reply.Json(c.Writer, http.StatusOK, &response)

	results := h.session.ResolveFreeText(c.Request.Context(), query)
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	response = responses.Success
	response.Payload = results
}

type detectRequest struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Accuracy  float64 `json:"accuracy"`
	ErrorCode string  `json:"errorCode"`
}

// Detect resolves a device-reported position (or a device geolocation error
// code) into a zone assignment or a NotServiceable outcome.
func (h *handler) Detect(c *gin.Context) {
	var (
		response structs.Response
		request  detectRequest
		ctx      = c.Request.Context()
	)

	defer reply.Json(c.Writer, http.StatusOK, &response)

	err := c.ShouldBindJSON(&request)
	if err != nil {
		h.logger.Warn(ctx, " error parse request", zap.Error(err))
		response = responses.BadRequest
		return
	}

	if request.ErrorCode != "" {
		lerr := geolocate.CategoryError(request.ErrorCode)
		response = structs.Response{Status: "error", Message: lerr.Message}
		response.Payload = lerr
		return
	}

	resolved := h.session.ResolvePosition(structs.GeoPoint{Lat: request.Lat, Lng: request.Lng})

	response = responses.Success
	if !resolved.Serviceable {
		response.Message = structs.ErrOutOfDeliveryZone.Error()
	}
	response.Payload = resolved
}

type selectRequest struct {
	Zone   string `json:"zone"`
	Source string `json:"source"`
}

func (h *handler) Select(c *gin.Context) {
	var (
		response structs.Response
		request  selectRequest
		ctx      = c.Request.Context()
	)

	defer reply.Json(c.Writer, http.StatusOK, &response)

	err := c.ShouldBindJSON(&request)
	if err != nil {
		h.logger.Warn(ctx, " error parse request", zap.Error(err))
		response = responses.BadRequest
		return
	}

	resolved, err := h.session.Select(ctx, owner(c), request.Zone, structs.LocationSource(request.Source))
	if err != nil {
		if errors.Is(err, structs.ErrNotFound) {
			response = responses.NotFound
			return
		}
		h.logger.Error(ctx, " err on h.session.Select", zap.Error(err))
		response = responses.InternalErr
		return
	}

	response = responses.Success
	response.Payload = resolved
}

type etaPayload struct {
	Zone        structs.DeliveryZone `json:"zone"`
	AdjustedEta string               `json:"adjustedEta"`
}

func (h *handler) Eta(c *gin.Context) {
	var (
		response structs.Response
		zoneName = c.Query("zone")
		ctx      = c.Request.Context()
	)

	defer reply.Json(c.Writer, http.StatusOK, &response)

	if utils.StrEmpty(zoneName) {
		response = responses.BadRequest
		return
	}

	zone, adjusted, err := h.etaService.AdjustedEta(zoneName)
	if err != nil {
		if errors.Is(err, structs.ErrNotFound) {
			response = responses.NotFound
			return
		}
		h.logger.Error(ctx, " err on h.etaService.AdjustedEta", zap.Error(err))
		response = responses.InternalErr
		return
	}

	response = responses.Success
	response.Payload = etaPayload{Zone: zone, AdjustedEta: adjusted}
}

func (h *handler) GetRecent(c *gin.Context) {
	var (
		response structs.Response
		ctx      = c.Request.Context()
	)

	defer reply.Json(c.Writer, http.StatusOK, &response)

	names, err := h.session.Recent(ctx, owner(c))
	if err != nil {
		h.logger.Error(ctx, " err on h.session.Recent", zap.Error(err))
		response = responses.InternalErr
		return
	}

	response = responses.Success
	response.Payload = names
}

func (h *handler) ClearRecent(c *gin.Context) {
	var (
		response structs.Response
		ctx      = c.Request.Context()
	)

	defer reply.Json(c.Writer, http.StatusOK, &response)

	if err := h.session.ClearRecent(ctx, owner(c)); err != nil {
		h.logger.Error(ctx, " err on h.session.ClearRecent", zap.Error(err))
		response = responses.InternalErr
		return
	}

	response = responses.Success
}
