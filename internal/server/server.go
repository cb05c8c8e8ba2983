// Package server serves the validator over gRPC.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/ppiankov/icscheck/internal/audit"
	"github.com/ppiankov/icscheck/internal/model"
	"github.com/ppiankov/icscheck/internal/ratelimit"
	"github.com/ppiankov/icscheck/internal/validate"
)

// Config holds gRPC server configuration.
type Config struct {
	Port          int
	Options       validate.Options
	MaxInputBytes int64
	RateLimit     ratelimit.Limit
	ConfigHash    string
	AuditLogPath  string
	Logger        *zap.Logger
}

// Server implements the Validator gRPC service.
type Server struct {
	cfg        Config
	maxBytes   int64
	mu         sync.RWMutex
	opts       validate.Options
	configHash string
	auditLog   *audit.Log
	logger     *zap.Logger
	limiter    *ratelimit.Limiter
	health     *health.Server
	grpcServer *grpc.Server
}

// New creates a gRPC server with the Validator and health services
// registered.
func New(cfg Config) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxBytes := cfg.MaxInputBytes
	if maxBytes <= 0 {
		maxBytes = validate.DefaultMaxInputBytes
	}

	var auditLog *audit.Log
	if cfg.AuditLogPath != "" {
		l, err := audit.Open(cfg.AuditLogPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit log: %w", err)
		}
		auditLog = l
	}

	s := &Server{
		cfg:        cfg,
		maxBytes:   maxBytes,
		opts:       cfg.Options,
		configHash: cfg.ConfigHash,
		auditLog:   auditLog,
		logger:     logger.Named("grpc"),
		limiter:    ratelimit.New(cfg.RateLimit),
		health:     health.NewServer(),
	}
	s.grpcServer = grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.logUnary, s.limitUnary),
		// Leave room for protobuf framing around the instruction.
		grpc.MaxRecvMsgSize(int(maxBytes)+4096),
	)

	RegisterValidatorServer(s.grpcServer, s)
	healthpb.RegisterHealthServer(s.grpcServer, s.health)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	return s, nil
}

// Serve starts the gRPC server on the configured port. Blocks until stopped.
func (s *Server) Serve() error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.cfg.Port, err)
	}
	return s.ServeOn(lis)
}

// ServeOn starts the gRPC server on the given listener.
func (s *Server) ServeOn(lis net.Listener) error {
	s.logger.Info("serving", zap.String("addr", lis.Addr().String()))
	return s.grpcServer.Serve(lis)
}

// GracefulStop marks the server as not serving and drains in-flight calls.
func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}

// Close cleans up resources.
func (s *Server) Close() error {
	if s.auditLog != nil {
		return s.auditLog.Close()
	}
	return nil
}

// Validate implements the Validate RPC.
func (s *Server) Validate(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	text := req.GetValue()
	if int64(len(text)) > s.maxBytes {
		return nil, status.Errorf(codes.ResourceExhausted, "%v: %d bytes (limit %d)", validate.ErrInputTooLarge, len(text), s.maxBytes)
	}
	if _, err := validate.Decode([]byte(text)); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	opts, configHash := s.current()
	r := validate.Validate(text, opts)
	if s.auditLog != nil {
		if err := s.auditLog.Record(audit.NewEntry("", "grpc", text, r, configHash)); err != nil {
			s.logger.Warn("audit record failed", zap.Error(err))
		}
	}

	out, err := ReportToStruct(r)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// Reload swaps the validator options used by subsequent calls.
func (s *Server) Reload(opts validate.Options, configHash string) {
	s.mu.Lock()
	s.opts = opts
	s.configHash = configHash
	s.mu.Unlock()
}

func (s *Server) current() (validate.Options, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opts, s.configHash
}

func (s *Server) logUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Debug("rpc",
		zap.String("method", info.FullMethod),
		zap.Duration("duration", time.Since(start)),
		zap.Stringer("code", status.Code(err)))
	return resp, err
}

// limitUnary rejects Validate calls from peers over their request budget.
// Health checks are never limited.
func (s *Server) limitUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if info.FullMethod != ValidateMethod {
		return handler(ctx, req)
	}
	key := peerKey(ctx)
	if result := s.limiter.Allow(key, time.Now()); result.Exceeded {
		s.logger.Warn("rate limited", zap.String("peer", key), zap.Int("limit", result.Limit))
		return nil, status.Error(codes.ResourceExhausted, result.Reason)
	}
	return handler(ctx, req)
}

// peerKey identifies the caller by host so reconnects share a window.
func peerKey(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return "unknown"
	}
	addr := p.Addr.String()
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

// ReportToStruct converts a report to its JSON shape as a Struct.
func ReportToStruct(r *model.Report) (*structpb.Struct, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	return structpb.NewStruct(m)
}

// StructToReport is the inverse of ReportToStruct.
func StructToReport(s *structpb.Struct) (*model.Report, error) {
	if s == nil {
		return nil, errors.New("empty report")
	}
	data, err := json.Marshal(s.AsMap())
	if err != nil {
		return nil, fmt.Errorf("marshal struct: %w", err)
	}
	var r model.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	if r.Violations == nil {
		r.Violations = []model.Violation{}
	}
	return &r, nil
}
