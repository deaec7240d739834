// Package mockapi is a stand-in for the public status API, used by the
// examples. The simulated server drifts between online and offline and
// players come and go.
package mockapi

import (
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"slices"
	"sync"
	"time"
)

var roster = []string{"Steve", "Alex", "Notch", "Herobrine", "Jeb", "Dinnerbone"}

// player mirrors one entry of the API's players.list.
type player struct {
	Name string `json:"name"`
	UUID string `json:"uuid,omitempty"`
}

type players struct {
	Online int      `json:"online"`
	Max    int      `json:"max"`
	List   []player `json:"list,omitempty"`
}

type lines struct {
	Clean []string `json:"clean"`
}

type response struct {
	Online  bool     `json:"online"`
	IP      string   `json:"ip,omitempty"`
	Port    int      `json:"port,omitempty"`
	MOTD    *lines   `json:"motd,omitempty"`
	Version string   `json:"version,omitempty"`
	Players *players `json:"players,omitempty"`
	Info    *lines   `json:"info,omitempty"`
}

// server is the simulated state of one looked-up target.
type server struct {
	online       bool
	connected    []string
	nextChangeAt time.Time
}

// Mock serves GET /3/{target}.
type Mock struct {
	mu      sync.Mutex
	servers map[string]*server
	rng     *rand.Rand
	logger  *slog.Logger
}

// New creates a Mock. A nil logger uses slog.Default.
func New(logger *slog.Logger) *Mock {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mock{
		servers: make(map[string]*server),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:  logger,
	}
}

// Handler returns the API routes.
func (m *Mock) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /3/{target}", m.handleLookup)
	return mux
}

func (m *Mock) handleLookup(w http.ResponseWriter, r *http.Request) {
	target := r.PathValue("target")

	// simulate small latency variance
	time.Sleep(time.Duration(50+m.intn(150)) * time.Millisecond)

	resp := m.lookup(target)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		m.logger.Error("failed to write response", "error", err)
	}
}

func (m *Mock) intn(n int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rng.Intn(n)
}

// lookup advances the target's simulation and reports it.
func (m *Mock) lookup(target string) response {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.servers[target]
	if !ok {
		s = &server{online: true, connected: []string{roster[0]}}
		s.nextChangeAt = m.nextChange()
		m.servers[target] = s
	}

	if time.Now().After(s.nextChangeAt) {
		m.step(target, s)
		s.nextChangeAt = m.nextChange()
	}

	if !s.online {
		return response{Online: false}
	}

	list := make([]player, len(s.connected))
	for i, name := range s.connected {
		list[i] = player{Name: name}
	}
	return response{
		Online:  true,
		MOTD:    &lines{Clean: []string{"Mock Survival Server", "running on mockapi"}},
		Version: "1.20.4",
		Players: &players{Online: len(s.connected), Max: 20, List: list},
	}
}

// step flips the server offline now and then, otherwise a player joins or
// leaves.
func (m *Mock) step(target string, s *server) {
	switch {
	case !s.online:
		s.online = true
		m.logger.Info("server back online", "target", target)
	case m.rng.Intn(5) == 0:
		s.online = false
		m.logger.Info("server went offline", "target", target)
	case len(s.connected) > 0 && m.rng.Intn(2) == 0:
		i := m.rng.Intn(len(s.connected))
		m.logger.Info("player left", "target", target, "player", s.connected[i])
		s.connected = append(s.connected[:i], s.connected[i+1:]...)
	default:
		for _, name := range roster {
			if !slices.Contains(s.connected, name) {
				s.connected = append(s.connected, name)
				m.logger.Info("player joined", "target", target, "player", name)
				break
			}
		}
	}
}

// nextChange schedules the next state change in 20-60 seconds.
func (m *Mock) nextChange() time.Time {
	return time.Now().Add(time.Duration(20+m.rng.Intn(41)) * time.Second)
}
