package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	cpnet "github.com/peterkuimelis/careerpoker/internal/net"
	"github.com/peterkuimelis/careerpoker/internal/room"
)

// RoomInfo is the JSON representation of a room for the /api/rooms endpoint.
type RoomInfo struct {
	ID      string   `json:"id"`
	Live    bool     `json:"live"`
	Players []string `json:"players,omitempty"`
}

// Server is the careerpoker HTTP server.
type Server struct {
	rooms *room.Manager
	log   logrus.FieldLogger
	mux   *http.ServeMux
}

// NewServer creates a new web server backed by rooms.
func NewServer(rooms *room.Manager, logger logrus.FieldLogger) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s := &Server{
		rooms: rooms,
		log:   logger,
		mux:   http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /api/rules", s.handleRules)
	s.mux.HandleFunc("GET /api/rooms", s.handleRooms)
	s.mux.HandleFunc("GET /api/rooms/{id}", s.handleRoom)
	s.mux.HandleFunc("DELETE /api/rooms/{id}", s.handleDeleteRoom)

	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.rooms.Rules())
}

func (s *Server) handleRooms(w http.ResponseWriter, r *http.Request) {
	ids, err := s.rooms.List(r.Context())
	if err != nil {
		s.log.WithError(err).Error("list rooms")
		http.Error(w, "could not list rooms", http.StatusInternalServerError)
		return
	}
	rooms := make([]RoomInfo, 0, len(ids))
	for _, id := range ids {
		info := RoomInfo{ID: id}
		if rm, ok := s.rooms.Lookup(id); ok {
			info.Live = true
			if gs, err := rm.State(r.Context()); err == nil {
				info.Players = gs.Players
			}
		}
		rooms = append(rooms, info)
	}
	writeJSON(w, http.StatusOK, rooms)
}

// handleRoom shows a room as a spectator sees it: counts only, no hands.
func (s *Server) handleRoom(w http.ResponseWriter, r *http.Request) {
	rm, ok := s.rooms.Lookup(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	gs, err := rm.State(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, cpnet.BuildStateView(gs, ""))
}

func (s *Server) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.rooms.Remove(r.Context(), id); err != nil {
		s.log.WithError(err).WithField("room", id).Error("remove room")
		http.Error(w, "could not remove room", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleWebSocket seats ?player= at ?room= and hands the connection to a
// session.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room")
	player := r.URL.Query().Get("player")
	if roomID == "" || player == "" {
		http.Error(w, "room and player are required", http.StatusBadRequest)
		return
	}

	rm, err := s.rooms.Open(r.Context(), roomID)
	if err != nil {
		s.log.WithError(err).WithField("room", roomID).Error("open room")
		http.Error(w, "could not open room", http.StatusInternalServerError)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Allow connections from any origin
	})
	if err != nil {
		s.log.WithError(err).Warn("websocket accept")
		return
	}
	defer conn.CloseNow()

	sess := cpnet.NewSession(conn, rm, player, s.log)
	err = sess.Run(r.Context())
	switch {
	case err == nil:
		conn.Close(websocket.StatusNormalClosure, "")
	case errors.Is(err, room.ErrClosed):
		conn.Close(websocket.StatusGoingAway, "room closed")
	case websocket.CloseStatus(err) != -1:
		// Client already closed.
	default:
		s.log.WithError(err).WithFields(logrus.Fields{"room": roomID, "player": player}).Warn("session ended")
		conn.Close(websocket.StatusInternalError, "session error")
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	s.log.WithField("addr", addr).Info("careerpoker listening")
	return http.ListenAndServe(addr, s.mux)
}

