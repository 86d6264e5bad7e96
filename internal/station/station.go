// Package station exposes the planner over a TCP socket speaking
// newline-delimited JSON, so a ground-station frontend can request plans
// and replans for a live incident without linking the planner in.
package station

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"sync"

	"github.com/elektrokombinacija/firefront-research/internal/planner"
	"github.com/elektrokombinacija/firefront-research/internal/store"
	"github.com/elektrokombinacija/firefront-research/internal/vns"
)

// MaxLineSize bounds a single request line; scenario rasters dominate.
const MaxLineSize = 16 << 20

// Request is one line from the client. Type selects the operation,
// the remaining fields are filled per type.
type Request struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Scenario  json.RawMessage `json:"scenario,omitempty"`
	Config    json.RawMessage `json:"config,omitempty"`
	EpisodeID string          `json:"episode_id,omitempty"`
	Cutoff    float64         `json:"cutoff,omitempty"`
}

// Response mirrors Request: one JSON line per request, in order.
type Response struct {
	Type         string   `json:"type"`
	RequestID    string   `json:"request_id,omitempty"`
	Error        string   `json:"error,omitempty"`
	EpisodeID    string   `json:"episode_id,omitempty"`
	EpisodeIDs   []string `json:"episode_ids,omitempty"`
	InitialCost  float64  `json:"initial_cost,omitempty"`
	FinalCost    float64  `json:"final_cost,omitempty"`
	Iterations   int      `json:"iterations,omitempty"`
	Improvements int      `json:"improvements,omitempty"`
	PlanningTime float64  `json:"planning_time,omitempty"`
}

// Server accepts planner clients. Finished episodes stay addressable by
// id for follow-up replan requests, and are mirrored to the store when
// one is configured.
type Server struct {
	ln   net.Listener
	conf planner.Config
	db   *store.Store

	mu       sync.Mutex
	episodes map[string]*vns.SearchResult

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// Listen binds a server to addr. db may be nil to disable persistence.
func Listen(addr string, conf planner.Config, db *store.Store) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("station: failed to bind: %w", err)
	}
	return &Server{
		ln:       ln,
		conf:     conf,
		db:       db,
		episodes: make(map[string]*vns.SearchResult),
		stopCh:   make(chan struct{}),
	}, nil
}

// Addr returns the bound listen address.
func (s *Server) Addr() net.Addr { return s.ln.Addr() }

// Start begins accepting connections in the background.
func (s *Server) Start() {
	s.wg.Add(1)
	go s.acceptLoop()
}

// Stop closes the listener and waits for in-flight connections.
func (s *Server) Stop() {
	close(s.stopCh)
	s.ln.Close()
	s.wg.Wait()
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			select {
			case <-s.stopCh:
				return
			default:
				log.Printf("[WARN] station: accept error: %v", err)
				continue
			}
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	remote := conn.RemoteAddr()
	log.Printf("station: client connected from %s", remote)

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), MaxLineSize)
	enc := json.NewEncoder(conn)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			log.Printf("[WARN] station: bad request from %s: %v", remote, err)
			s.reply(enc, remote, Response{Type: "error", Error: "malformed request"})
			continue
		}
		s.reply(enc, remote, s.dispatch(&req))
	}
	if err := scanner.Err(); err != nil {
		log.Printf("[WARN] station: connection from %s dropped: %v", remote, err)
	}
	log.Printf("station: client %s disconnected", remote)
}

func (s *Server) reply(enc *json.Encoder, remote net.Addr, resp Response) {
	if err := enc.Encode(resp); err != nil {
		log.Printf("[WARN] station: failed to reply to %s: %v", remote, err)
	}
}

func (s *Server) dispatch(req *Request) Response {
	switch req.Type {
	case "plan":
		return s.handlePlan(req)
	case "replan":
		return s.handleReplan(req)
	case "list_episodes":
		return s.handleList(req)
	case "ping":
		return Response{Type: "pong", RequestID: req.RequestID}
	default:
		log.Printf("[WARN] station: unknown request type %q", req.Type)
		return Response{
			Type:      "error",
			RequestID: req.RequestID,
			Error:     fmt.Sprintf("unknown request type %q", req.Type),
		}
	}
}

func (s *Server) handlePlan(req *Request) Response {
	scen, conf, errResp := s.decodePlanInputs(req)
	if errResp != nil {
		return *errResp
	}
	res, err := planner.PlanScenario(scen, conf)
	if err != nil {
		return errorResponse(req, err)
	}
	s.remember(res)
	return resultResponse(req, "plan_result", res)
}

func (s *Server) handleReplan(req *Request) Response {
	scen, conf, errResp := s.decodePlanInputs(req)
	if errResp != nil {
		return *errResp
	}
	s.mu.Lock()
	prior, ok := s.episodes[req.EpisodeID]
	s.mu.Unlock()
	if !ok {
		return errorResponse(req, fmt.Errorf("unknown episode %q", req.EpisodeID))
	}
	arrival, elevation, err := scen.Grids()
	if err != nil {
		return errorResponse(req, err)
	}
	res, err := planner.Replan(prior, req.Cutoff, arrival, elevation, conf)
	if err != nil {
		return errorResponse(req, err)
	}
	s.remember(res)
	return resultResponse(req, "replan_result", res)
}

func (s *Server) handleList(req *Request) Response {
	s.mu.Lock()
	ids := make([]string, 0, len(s.episodes))
	for id := range s.episodes {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	return Response{Type: "episode_list", RequestID: req.RequestID, EpisodeIDs: ids}
}

// decodePlanInputs parses the scenario and the per-request planner
// configuration, falling back to the server's configuration when the
// request carries none.
func (s *Server) decodePlanInputs(req *Request) (*planner.Scenario, planner.Config, *Response) {
	if len(req.Scenario) == 0 {
		resp := errorResponse(req, fmt.Errorf("request carries no scenario"))
		return nil, planner.Config{}, &resp
	}
	scen, err := planner.ParseScenario(req.Scenario)
	if err != nil {
		resp := errorResponse(req, err)
		return nil, planner.Config{}, &resp
	}
	conf := s.conf
	if len(req.Config) > 0 {
		conf, err = planner.ParseConfig(req.Config)
		if err != nil {
			resp := errorResponse(req, err)
			return nil, planner.Config{}, &resp
		}
	}
	return scen, conf, nil
}

func (s *Server) remember(res *vns.SearchResult) {
	s.mu.Lock()
	s.episodes[res.Metadata.EpisodeID] = res
	s.mu.Unlock()
	if s.db != nil {
		if err := s.db.SaveEpisode(res); err != nil {
			log.Printf("[WARN] station: failed to persist episode %s: %v",
				res.Metadata.EpisodeID, err)
		}
	}
}

func errorResponse(req *Request, err error) Response {
	return Response{Type: "error", RequestID: req.RequestID, Error: err.Error()}
}

func resultResponse(req *Request, typ string, res *vns.SearchResult) Response {
	return Response{
		Type:         typ,
		RequestID:    req.RequestID,
		EpisodeID:    res.Metadata.EpisodeID,
		InitialCost:  res.InitialPlan.Cost(),
		FinalCost:    res.FinalPlan.Cost(),
		Iterations:   res.Metadata.Iterations,
		Improvements: res.Metadata.Improvements,
		PlanningTime: res.Metadata.PlanningTime,
	}
}
