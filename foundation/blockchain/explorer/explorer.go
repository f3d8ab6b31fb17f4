// Package explorer serves the node's read-only HTTP surface: chain
// status, block lookups, a live WebSocket feed, and Prometheus
// metrics. It renders nothing; a graphical dashboard is out of scope.
package explorer

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dimfeld/httptreemux/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ardanlabs/gambit/foundation/blockchain/chain"
	"github.com/ardanlabs/gambit/foundation/events"
	"github.com/ardanlabs/gambit/foundation/metrics"
)

// Server exposes the explorer HTTP surface.
type Server struct {
	chain   *chain.Blockchain
	events  *events.Events
	metrics *metrics.Metrics
	handler http.Handler
}

// New constructs a Server backed by bc, publishing events on evt and
// gauges to reg.
func New(bc *chain.Blockchain, evt *events.Events, reg prometheus.Registerer, corsOrigin string) *Server {
	s := &Server{
		chain:   bc,
		events:  evt,
		metrics: metrics.New(reg),
	}

	mux := httptreemux.NewContextMux()
	mux.GET("/v1/status", s.handleStatus)
	mux.GET("/v1/blocks/:number", s.handleBlock)
	mux.GET("/v1/ws", s.handleWS)
	mux.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(prometheusGatherer(reg), promhttp.HandlerOpts{}))

	s.handler = cors(corsOrigin)(mux)

	return s
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// cors sets the response headers needed for Cross-Origin Resource
// Sharing so the explorer's endpoints can be called from a browser
// dashboard served from a different origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Origin, Accept, Content-Type, Content-Length, Accept-Encoding")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func prometheusGatherer(reg prometheus.Registerer) prometheus.Gatherer {
	if g, ok := reg.(prometheus.Gatherer); ok {
		return g
	}
	return prometheus.DefaultGatherer
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type statusResponse struct {
	ChainID     uint64 `json:"chainId"`
	Height      uint64 `json:"height"`
	MempoolSize int    `json:"mempoolSize"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.metrics.ChainHeight.Set(float64(s.chain.Height()))
	s.metrics.MempoolSize.Set(float64(s.chain.MempoolLen()))

	writeJSON(w, http.StatusOK, statusResponse{
		ChainID:     s.chain.ChainID(),
		Height:      s.chain.Height(),
		MempoolSize: s.chain.MempoolLen(),
	})
}

func (s *Server) handleBlock(w http.ResponseWriter, r *http.Request) {
	params := httptreemux.ContextParams(r.Context())

	number, err := strconv.ParseUint(params["number"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid block number"})
		return
	}

	b, ok := s.chain.Block(number)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "block not found"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"index":     b.Index,
		"hash":      b.Hash,
		"prevHash":  b.PrevHash,
		"txCount":   len(b.Transactions),
		"timestamp": b.Timestamp,
	})
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWS upgrades the connection and streams every event published
// on the node's events hub until the client disconnects.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	subID := uuid.NewString()
	ch := s.events.Acquire(subID)
	defer s.events.Release(subID)

	for msg := range ch {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			return
		}
	}
}

