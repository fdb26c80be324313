package httpserver

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rzbill/pollbus/internal/runtime"
	"github.com/rzbill/pollbus/internal/server/http/controllers"
	logpkg "github.com/rzbill/pollbus/pkg/log"
)

// RequestIDHeader carries the request id on requests and responses.
const RequestIDHeader = "X-Request-ID"

type Server struct {
	rt       *runtime.Runtime
	srv      *http.Server
	lis      net.Listener
	registry *controllers.ControllerRegistry
	logger   logpkg.Logger

	// baseCtx parents every request context; cancelling it releases parked
	// long-polls on shutdown.
	baseCtx    context.Context
	cancelBase context.CancelFunc
}

func New(rt *runtime.Runtime, logger logpkg.Logger) *Server {
	if logger == nil {
		logger = logpkg.NewLogger(logpkg.WithOutput(logpkg.NullOutput{}))
	}
	logger = logger.WithComponent("http")
	mux := http.NewServeMux()
	registry := controllers.NewControllerRegistry(rt, logger)
	registry.RegisterAllRoutes(mux)

	baseCtx, cancelBase := context.WithCancel(context.Background())
	s := &Server{
		rt:         rt,
		registry:   registry,
		logger:     logger,
		baseCtx:    baseCtx,
		cancelBase: cancelBase,
	}
	s.srv = &http.Server{
		Handler:           requestID(cors(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return s.baseCtx },
	}
	return s
}

// Handler exposes the routed handler, mainly for tests and embedding.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.lis = l
	s.logger.Info("http listening", logpkg.Str("addr", l.Addr().String()))
	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(l) }()
	select {
	case <-ctx.Done():
		s.cancelBase()
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(cctx)
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) Close() {
	s.cancelBase()
	if s.lis != nil {
		_ = s.lis.Close()
	}
	s.registry.Close()
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+RequestIDHeader)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestID propagates or mints a request id and stores it in the request
// context for logging.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logpkg.ContextWithRequestID(r.Context(), id)))
	})
}
