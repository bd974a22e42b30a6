package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/go-chi/jwtauth"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/widmerroger/cardlock/internal/comm"
	"github.com/widmerroger/cardlock/internal/lockersvc/service"
	"github.com/widmerroger/cardlock/internal/lockersvc/supervisor"
	"github.com/widmerroger/cardlock/internal/lockersvc/ws"
)

// Handler exposes the interactive surface over HTTP: register an app by
// name, remove one, re-arm supervision, and the websocket feed the operator
// UI listens on.
type Handler struct {
	tokenAuth    *jwtauth.JWTAuth
	upgrader     websocket.Upgrader
	registration *service.RegistrationService
	registry     *service.RegistryService
	manager      *supervisor.Manager
	ws           *ws.Ws
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error,omitempty"`
}

func NewHandler(registration *service.RegistrationService, registry *service.RegistryService,
	manager *supervisor.Manager, s *ws.Ws) *Handler {
	return &Handler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		registration: registration,
		registry:     registry,
		manager:      manager,
		ws:           s,
	}
}

func (h *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)

	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	rsp := Response{
		Message: "locker service is running at port " + os.Getenv("LOCKER_SERVICE_PORT"),
		Code:    200,
		Data:    nil,
	}
	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("Failed to encode health response: %v", err)
	}
}

// RegisterHandler starts a registration: the duplicate check happens here,
// the card wait continues in the background and reports through the ws feed.
func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req comm.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.CreateResponse(w, Response{Message: "invalid request body", Code: http.StatusBadRequest, Error: err.Error()})
		return
	}

	err := h.registration.Register(r.Context(), req.AppName)
	switch {
	case err == nil:
		h.CreateResponse(w, Response{
			Message: "awaiting card scan for " + req.AppName,
			Code:    http.StatusAccepted,
		})
	case errors.Is(err, service.ErrValidation):
		h.CreateResponse(w, Response{Message: "Please enter an application name.", Code: http.StatusBadRequest, Error: err.Error()})
	case errors.Is(err, service.ErrDuplicateRegistration):
		h.CreateResponse(w, Response{Message: "Application is already registered with another card.", Code: http.StatusConflict, Error: err.Error()})
	default:
		log.Errorf("Error [Handler.RegisterHandler] %s", err)
		h.CreateResponse(w, Response{Message: "registration failed", Code: http.StatusInternalServerError, Error: err.Error()})
	}
}

func (h *Handler) RemoveHandler(w http.ResponseWriter, r *http.Request) {
	var req comm.RemoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.CreateResponse(w, Response{Message: "invalid request body", Code: http.StatusBadRequest, Error: err.Error()})
		return
	}

	found, err := h.registration.Remove(r.Context(), req.AppName)
	switch {
	case errors.Is(err, service.ErrValidation):
		h.CreateResponse(w, Response{Message: "Please enter an application name to remove.", Code: http.StatusBadRequest, Error: err.Error()})
	case err != nil:
		log.Errorf("Error [Handler.RemoveHandler] %s", err)
		h.CreateResponse(w, Response{Message: "removal failed", Code: http.StatusInternalServerError, Error: err.Error()})
	case !found:
		h.CreateResponse(w, Response{Message: "Application not found.", Code: http.StatusNotFound})
	default:
		h.CreateResponse(w, Response{Message: "Application " + req.AppName + " removed.", Code: http.StatusOK})
	}
}

// RearmHandler re-arms supervisors for all known apps, the hotkey analogue.
func (h *Handler) RearmHandler(w http.ResponseWriter, r *http.Request) {
	names, err := h.registry.LoadAllAppNames(r.Context())
	if err != nil {
		log.Errorf("Error [Handler.RearmHandler] %s", err)
		h.CreateResponse(w, Response{Message: "rearm failed", Code: http.StatusInternalServerError, Error: err.Error()})
		return
	}

	h.manager.ArmAll(names)
	h.CreateResponse(w, Response{Message: "Monitoring started.", Code: http.StatusOK, Data: names})
}

// HandleWebSocket attaches an operator UI to the event feed.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	c, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("Failed to upgrade to WebSocket: %v", err)
		http.Error(w, "Failed to upgrade to WebSocket", http.StatusInternalServerError)
		return
	}

	socketId := uuid.New().String()
	h.ws.StoreConnection(socketId, c)

	log.Infof("New WebSocket connection established: %s", socketId)

	go h.handleConnection(c, socketId)
}

func (h *Handler) handleConnection(c *websocket.Conn, socketId string) {
	defer func() {
		log.Infof("Closing WebSocket connection: %s", socketId)
		c.Close()
		h.ws.HandleDisconnect(socketId)
	}()

	// the feed is push-only; reads only detect disconnects
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Errorf("WebSocket unexpected close error for socket %s: %v", socketId, err)
			} else {
				log.Infof("WebSocket connection closed normally for socket: %s", socketId)
			}
			return
		}
	}
}
