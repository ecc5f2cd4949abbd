// Package server serves the CashnGo collections over HTTP and pushes every
// change to connected views over a WebSocket.
//
// Each view receives a snapshot of every collection when it connects and a
// fresh snapshot of a collection whenever it changes, whether the write came
// from this server, another process sharing the store, or a catalog unlock.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/teranos/cashngo/board"
	"github.com/teranos/cashngo/catalog"
	"github.com/teranos/cashngo/logger"
	"github.com/teranos/cashngo/storage"
	"github.com/teranos/cashngo/unlock"
)

// Message types sent to views
const (
	MessageSnapshot = "snapshot"
	MessageGate     = "gate"
)

// Message is one frame pushed to a view
type Message struct {
	Type  string          `json:"type"`
	Key   string          `json:"key,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
	GigID string          `json:"gigId,omitempty"`
	State unlock.State    `json:"state,omitempty"`
}

// Options configures a Server
type Options struct {
	AllowedOrigins []string
	// Backend names the storage backend in /health
	Backend string
	// Verbosity is the CLI -v count
	Verbosity int
}

// Server is the HTTP/WebSocket front of one store
type Server struct {
	board   *board.Board
	catalog *catalog.Service
	opts    Options
	log     *zap.SugaredLogger

	// snapshotters encode the current value of each collection
	snapshotters []func(ctx context.Context) Message
	releases     []func()

	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan Message
	mu         sync.RWMutex
	clientSeq  atomic.Int64
	drops      atomic.Int64

	httpServer *http.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a server over b and cat. Call Start to run the hub.
func New(b *board.Board, cat *catalog.Service, opts Options) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		board:      b,
		catalog:    cat,
		opts:       opts,
		log:        logger.ComponentLogger("server"),
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Message, 256),
		ctx:        ctx,
		cancel:     cancel,
	}

	cols := b.Collections()
	watchKey(s, cols.PostedGigs)
	watchKey(s, cols.Applications)
	watchKey(s, cols.CurrentCourseID)
	watchKey(s, cols.GuideShown)

	if cat != nil {
		s.releases = append(s.releases, cat.Gate().OnChange(func(gigID string, state unlock.State) {
			s.publish(Message{Type: MessageGate, GigID: gigID, State: state})
		}))
	}
	return s
}

// watchKey registers k for connect-time snapshots and change broadcasts
func watchKey[T any](s *Server, k *storage.Key[T]) {
	encode := func(v T) Message {
		raw, err := json.Marshal(v)
		if err != nil {
			s.log.Errorw("Failed to encode snapshot", logger.FieldKey, k.Name(), logger.FieldError, err)
			raw = []byte("null")
		}
		return Message{Type: MessageSnapshot, Key: k.Name(), Value: raw}
	}
	s.snapshotters = append(s.snapshotters, func(ctx context.Context) Message {
		return encode(k.Read(ctx))
	})
	s.releases = append(s.releases, k.Subscribe(func(v T) {
		s.publish(encode(v))
	}))
}

// publish queues msg for every client; it never blocks the writer
func (s *Server) publish(msg Message) {
	select {
	case s.broadcast <- msg:
	case <-s.ctx.Done():
	default:
		s.drops.Add(1)
		s.log.Warnw("Broadcast queue full, dropping update", logger.FieldKey, msg.Key)
	}
}

// Start runs the hub loop in the background
func (s *Server) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run()
	}()
}

func (s *Server) run() {
	for {
		select {
		case <-s.ctx.Done():
			s.log.Debugw("Hub stopping")
			return
		case client := <-s.register:
			s.handleClientRegister(client)
		case client := <-s.unregister:
			s.handleClientUnregister(client)
		case msg := <-s.broadcast:
			s.handleBroadcast(msg)
		}
	}
}

// handleClientRegister adds client and queues a snapshot of every collection
func (s *Server) handleClientRegister(client *Client) {
	if client.closed {
		return
	}
	s.mu.Lock()
	s.clients[client] = true
	total := len(s.clients)
	s.mu.Unlock()

	for _, snapshot := range s.snapshotters {
		select {
		case client.send <- snapshot(s.ctx):
		default:
			s.log.Warnw("Client send buffer full during snapshot", logger.FieldClientID, client.id)
		}
	}

	if logger.ShouldOutput(s.opts.Verbosity, logger.OutputProgress) {
		s.log.Infow("Client connected",
			logger.FieldClientID, client.id,
			logger.FieldCount, total,
		)
	}
}

func (s *Server) handleClientUnregister(client *Client) {
	s.mu.Lock()
	if _, ok := s.clients[client]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.clients, client)
	total := len(s.clients)
	s.mu.Unlock()

	client.close()
	if logger.ShouldOutput(s.opts.Verbosity, logger.OutputProgress) {
		s.log.Infow("Client disconnected",
			logger.FieldClientID, client.id,
			logger.FieldCount, total,
		)
	}
}

// handleBroadcast runs on the hub goroutine, the only writer to client.send
func (s *Server) handleBroadcast(msg Message) {
	s.mu.RLock()
	var slow []*Client
	for client := range s.clients {
		select {
		case client.send <- msg:
		default:
			slow = append(slow, client)
		}
	}
	s.mu.RUnlock()

	for _, client := range slow {
		s.log.Warnw("Client too slow, disconnecting", logger.FieldClientID, client.id)
		s.handleClientUnregister(client)
	}
}

// ClientCount returns the number of connected views
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}
