package platform

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/converseworks/convkit/internal/connector"
	"github.com/converseworks/convkit/internal/dialogue"
	"github.com/converseworks/convkit/internal/participant"
	logx "github.com/converseworks/convkit/pkg/logger"
)

// Frame is the JSON message exchanged over a websocket session. Outbound
// frames carry the sender and, when present, the utterance intent; inbound
// frames only need the message text.
type Frame struct {
	Message string `json:"message"`
	Sender  string `json:"sender,omitempty"`
	Intent  string `json:"intent,omitempty"`
}

// SocketConfig wires a websocket platform.
type SocketConfig struct {
	// NewAgent builds a fresh agent per connected user; two sessions never
	// share an agent.
	NewAgent func() participant.Agent
	// Store receives finished dialogues when SaveDialogueHistory is set.
	Store               connector.Store
	SaveDialogueHistory bool
}

// Socket serves one dialogue connector per connected end-user over
// websockets. Sessions are keyed by user id; connectors never share state.
type Socket struct {
	cfg      SocketConfig
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[string]*websocket.Conn
}

// NewSocket creates a websocket platform.
func NewSocket(cfg SocketConfig) *Socket {
	return &Socket{
		cfg:      cfg,
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		conns:    make(map[string]*websocket.Conn),
	}
}

// Routes mounts the websocket endpoint on a chi router.
func (s *Socket) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/ws", s.handleWS)
	return r
}

func (s *Socket) handleWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		userID = uuid.NewString()
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logx.Error().Err(err).Str("user_id", userID).Msg("websocket upgrade failed")
		return
	}

	if err := s.Connect(userID); err != nil {
		conn.Close()
		return
	}
	s.mu.Lock()
	s.conns[userID] = conn
	s.mu.Unlock()

	s.serveSession(userID, conn)
}

// serveSession runs one user's conversation to completion. The session owns
// its connector; utterances are processed one at a time on this goroutine.
func (s *Socket) serveSession(userID string, conn *websocket.Conn) {
	defer func() {
		s.mu.Lock()
		delete(s.conns, userID)
		s.mu.Unlock()
		conn.Close()
		if err := s.Disconnect(userID); err != nil {
			logx.Warn().Err(err).Str("user_id", userID).Msg("disconnect cleanup failed")
		}
	}()

	user := participant.NewHumanUser(userID)
	dc := connector.New(connector.Config{
		Agent:               s.cfg.NewAgent(),
		User:                user,
		Platform:            s,
		Store:               s.cfg.Store,
		SaveDialogueHistory: s.cfg.SaveDialogueHistory,
	})

	if err := dc.Start(); err != nil {
		logx.Error().Err(err).Str("user_id", userID).Msg("failed to start dialogue")
		return
	}

	for !dc.Closed() {
		var frame Frame
		if err := conn.ReadJSON(&frame); err != nil {
			// Transport closed mid-conversation; flush what we have.
			logx.Debug().Err(err).Str("user_id", userID).Msg("websocket read ended")
			if cerr := dc.Close(); cerr != nil {
				logx.Error().Err(cerr).Str("user_id", userID).Msg("close after disconnect failed")
			}
			return
		}
		if _, err := user.HandleInput(frame.Message); err != nil {
			logx.Error().Err(err).Str("user_id", userID).Msg("failed to process input")
			return
		}
	}
}

func (s *Socket) Connect(userID string) error {
	logx.Info().Str("user_id", userID).Msg("user connected")
	return nil
}

func (s *Socket) Disconnect(userID string) error {
	logx.Info().Str("user_id", userID).Msg("user disconnected")
	return nil
}

// Message writes a free-form text frame to the user's connection.
func (s *Socket) Message(userID, text string) error {
	return s.write(userID, Frame{Message: text})
}

func (s *Socket) DisplayAgentUtterance(u *dialogue.AnnotatedUtterance, agentID, userID string) error {
	frame := Frame{Message: u.Text(), Sender: agentID}
	if u.Intent() != nil {
		frame.Intent = u.Intent().Label()
	}
	return s.write(userID, frame)
}

// DisplayUserUtterance is a no-op for sockets: the client renders its own
// input locally.
func (s *Socket) DisplayUserUtterance(u *dialogue.AnnotatedUtterance, userID string) error {
	return nil
}

func (s *Socket) write(userID string, frame Frame) error {
	s.mu.Lock()
	conn, ok := s.conns[userID]
	s.mu.Unlock()
	if !ok {
		// Transport already gone; the dialogue record is still intact.
		logx.Warn().Str("user_id", userID).Msg("no open connection for user")
		return nil
	}
	return conn.WriteJSON(frame)
}

var _ Platform = (*Socket)(nil)
