package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	loginMethod    = "/gophauth.v1.AuthService/Login"
	registerMethod = "/gophauth.v1.AuthService/Register"
)

type GRPCClient struct {
	target  string
	timeout time.Duration
	conn    *grpc.ClientConn
	invoker grpc.ClientConnInterface
	health  healthpb.HealthClient
}

func withRequestID(ctx context.Context, id string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.RequestIDHeaderName, id)

	return metadata.NewOutgoingContext(ctx, md)
}

func requestIDInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	return invoker(withRequestID(ctx, uuid.NewString()), method, req, reply, cc, opts...)
}

// NewGRPCClient creates a client for target. The connection is established
// lazily on the first call. Extra dial options are appended to the defaults.
func NewGRPCClient(target string, timeout time.Duration, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{target: target, timeout: timeout}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(requestIDInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.invoker = conn
	c.health = healthpb.NewHealthClient(conn)
	return c, nil
}

func (s *GRPCClient) Login(ctx context.Context, creds models.LoginCredentials) (models.AuthResponse, error) {
	return s.call(ctx, loginMethod, creds)
}

func (s *GRPCClient) Register(ctx context.Context, reg models.Registration) (models.AuthResponse, error) {
	return s.call(ctx, registerMethod, reg)
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.health.Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		return s.mapError(err)
	}

	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return ErrUnavailable
	}

	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) call(ctx context.Context, method string, payload any) (models.AuthResponse, error) {
	req, err := toStruct(payload)
	if err != nil {
		return models.AuthResponse{}, fmt.Errorf("encode request: %w", err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	reply := &structpb.Struct{}
	if err := s.invoker.Invoke(ctx, method, req, reply); err != nil {
		return models.AuthResponse{}, s.mapError(err)
	}

	out, err := fromStruct(reply)
	if err != nil {
		return models.AuthResponse{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if !out.Complete() {
		return models.AuthResponse{}, fmt.Errorf("%w: missing email or token", ErrMalformedResponse)
	}
	return out, nil
}

func (s *GRPCClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.InvalidArgument, codes.AlreadyExists, codes.NotFound, codes.FailedPrecondition:
		return fmt.Errorf("%w: %s", ErrRejected, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

// toStruct converts a JSON-tagged payload into a structpb.Struct so that
// both transports share the same field names.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	st := &structpb.Struct{}
	if err := protojson.Unmarshal(b, st); err != nil {
		return nil, err
	}
	return st, nil
}

func fromStruct(st *structpb.Struct) (models.AuthResponse, error) {
	var out models.AuthResponse
	b, err := protojson.Marshal(st)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(b, &out)
	return out, err
}
