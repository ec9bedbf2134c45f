package locationws

import (
	"context"
	"encoding/json"
	"net/http"

	"kampalabites/internal/geolocate"
	"kampalabites/internal/locsession"
	"kampalabites/internal/structs"
	"kampalabites/internal/ws"
	"kampalabites/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Provide(New)

type (
	Handler interface {
		Serve(c *gin.Context)
	}

	Params struct {
		fx.In
		Logger  logger.Logger
		Service *locsession.Service
	}

	handler struct {
		logger  logger.Logger
		service *locsession.Service
	}
)

func New(p Params) Handler {
	return &handler{
		logger:  p.Logger,
		service: p.Service,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// inbound frames from the storefront
type clientFrame struct {
	Type     string  `json:"type"`
	Text     string  `json:"text,omitempty"`
	Zone     string  `json:"zone,omitempty"`
	Source   string  `json:"source,omitempty"`
	ID       string  `json:"id,omitempty"`
	Lat      float64 `json:"lat,omitempty"`
	Lng      float64 `json:"lng,omitempty"`
	Accuracy float64 `json:"accuracy,omitempty"`
	Code     string  `json:"code,omitempty"`
}

// outbound frames
type resultsFrame struct {
	Type string `json:"type"`
	locsession.Update
}

type resolvedFrame struct {
	Type    string                   `json:"type"`
	Payload structs.ResolvedLocation `json:"payload"`
}

type locateErrorFrame struct {
	Type    string           `json:"type"`
	Payload *geolocate.Error `json:"payload"`
}

// Serve hosts one location session per connection. Keystrokes stream in as
// "query" frames and settled suggestion sets stream back out; the session's
// generation discipline means the storefront just renders the latest frame.
func (h *handler) Serve(c *gin.Context) {
	ctx := c.Request.Context()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn(ctx, "ws upgrade failed", zap.Error(err))
		return
	}

	owner := c.Query("device")
	if owner == "" {
		owner = "default"
	}

	provider := newProvider()
	session := h.service.NewSession(provider)

	var wsc *ws.Conn
	wsc = ws.NewConn(conn, func(msg []byte) {
		h.dispatch(wsc, session, provider, owner, msg)
	})
	provider.send = wsc.Send

	done := make(chan struct{})
	go func() {
		defer close(done)
		for u := range session.Updates() {
			wsc.Send(resultsFrame{Type: "results", Update: u})
		}
	}()

	wsc.Run()
	session.Close()
	<-done
}

func (h *handler) dispatch(wsc *ws.Conn, session *locsession.Session, provider *wsProvider, owner string, msg []byte) {
	var frame clientFrame
	if err := json.Unmarshal(msg, &frame); err != nil {
		h.logger.Warn(context.TODO(), "ws: malformed frame", zap.Error(err))
		return
	}

	switch frame.Type {
	case "query":
		session.Input(frame.Text)

	case "locate":
		go func() {
			resolved, lerr := session.Locate(context.Background())
			if lerr != nil {
				wsc.Send(locateErrorFrame{Type: "locate_error", Payload: lerr})
				return
			}
			wsc.Send(resolvedFrame{Type: "resolved", Payload: resolved})
		}()

	case "select":
		go func() {
			resolved, err := h.service.Select(context.Background(), owner, frame.Zone, structs.LocationSource(frame.Source))
			if err != nil {
				wsc.Send(locateErrorFrame{Type: "select_error", Payload: &geolocate.Error{
					Category: geolocate.Unknown,
					Message:  "Unknown delivery zone.",
				}})
				return
			}
			wsc.Send(resolvedFrame{Type: "selected", Payload: resolved})
		}()

	case "position":
		provider.resolvePosition(frame.ID, geolocate.Position{
			Point:    structs.GeoPoint{Lat: frame.Lat, Lng: frame.Lng},
			Accuracy: frame.Accuracy,
		})

	case "position_error":
		provider.resolveError(frame.ID, frame.Code)

	default:
		h.logger.Debug(context.TODO(), "ws: unknown frame type", zap.String("type", frame.Type))
	}
}
