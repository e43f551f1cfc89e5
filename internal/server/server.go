package server

import (
	"bufio"
	"context"
	"io"
	"net"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/devwelkin/hermes-submit/internal/request"
	"github.com/devwelkin/hermes-submit/internal/response"
)

// Handler produces the response for one parsed request. Writing nothing is
// a valid answer: the client then only sees the connection close.
type Handler interface {
	Handle(w *response.Writer, req *request.Request) error
}

type HandlerFunc func(w *response.Writer, req *request.Request) error

func (f HandlerFunc) Handle(w *response.Writer, req *request.Request) error {
	return f(w, req)
}

type Options struct {
	Addr    string
	Spawner Spawner // Unbounded when nil
	Logger  zerolog.Logger
	// LingerTimeout bounds the drain of unread request bytes after the
	// response; 0 closes straight away.
	LingerTimeout time.Duration
}

// Server holds the state for our http server
type Server struct {
	listener net.Listener
	handler  Handler
	spawner  Spawner
	log      zerolog.Logger
	linger   time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	closed atomic.Bool
	conns  sync.WaitGroup
}

// Serve binds opts.Addr and starts accepting in the background. A bind
// failure is returned to the caller.
func Serve(opts Options, handler Handler) (*Server, error) {
	listener, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return nil, err
	}

	spawner := opts.Spawner
	if spawner == nil {
		spawner = Unbounded{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		listener: listener,
		handler:  handler,
		spawner:  spawner,
		log:      opts.Logger,
		linger:   opts.LingerTimeout,
		ctx:      ctx,
		cancel:   cancel,
	}

	go s.listen()

	return s, nil
}

func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Close stops accepting. Connections already being handled run to
// completion; Wait blocks until they have.
func (s *Server) Close() error {
	s.closed.Store(true)
	s.cancel()
	return s.listener.Close()
}

func (s *Server) Wait() {
	s.conns.Wait()
}

// listen is the main accept loop
func (s *Server) listen() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.closed.Load() {
				s.log.Info().Msg("listener closed, server shutting down")
				return
			}
			s.log.Error().Err(err).Msg("error accepting connection")
			continue
		}

		s.conns.Add(1)
		err = s.spawner.Spawn(s.ctx, func() {
			defer s.conns.Done()
			s.handle(conn)
		})
		if err != nil {
			s.conns.Done()
			conn.Close()
			s.log.Warn().Err(err).Msg("dropping connection")
		}
	}
}

func (s *Server) handle(conn net.Conn) {
	log := s.log.With().Str("remote", conn.RemoteAddr().String()).Logger()
	log.Debug().Msg("connection opened")

	defer func() {
		conn.Close()
		log.Debug().Msg("connection closed")
	}()
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("handler panicked")
		}
	}()

	req, err := request.FromReader(bufio.NewReader(conn))
	if err != nil {
		log.Warn().Err(err).Msg("error parsing request")
		return
	}

	w := response.NewWriter(conn)
	if err := s.handler.Handle(w, req); err != nil {
		log.Error().Err(err).
			Str("method", req.RequestLine.Method).
			Str("path", req.RequestLine.Path).
			Msg("error handling request")
		return
	}
	if err := w.Flush(); err != nil {
		log.Warn().Err(err).Msg("error flushing response")
		return
	}
	if !w.Written() {
		log.Debug().Str("path", req.RequestLine.Path).Msg("closing without a response")
	}

	s.lingerClose(conn)
}

// lingerClose half-closes the connection and discards whatever the client
// sent that was never read, so the client sees the response instead of a
// reset.
func (s *Server) lingerClose(conn net.Conn) {
	if s.linger <= 0 {
		return
	}
	tcp, ok := conn.(*net.TCPConn)
	if !ok {
		return
	}
	if err := tcp.CloseWrite(); err != nil {
		return
	}
	tcp.SetReadDeadline(time.Now().Add(s.linger))
	io.Copy(io.Discard, io.LimitReader(tcp, 256<<10))
}
