package server

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/xtding233/enhance-cost/internal/estimate"
	"github.com/xtding233/enhance-cost/internal/model"
	"github.com/xtding233/enhance-cost/internal/pricing"
	"github.com/xtding233/enhance-cost/internal/service"
)

const ServiceName = "enhancecost.v1.Estimator"

const (
	MethodReinforcement = "/" + ServiceName + "/Reinforcement"
	MethodQuality       = "/" + ServiceName + "/Quality"
	MethodBundle        = "/" + ServiceName + "/Bundle"
)

// EstimatorServer is the server API of enhancecost.v1.Estimator. Messages are
// google.protobuf.Struct so no generated code is needed.
type EstimatorServer interface {
	Reinforcement(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Quality(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Bundle(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(EstimatorServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryCall) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(EstimatorServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(EstimatorServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc describes enhancecost.v1.Estimator for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EstimatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Reinforcement", Handler: unaryHandler(MethodReinforcement, EstimatorServer.Reinforcement)},
		{MethodName: "Quality", Handler: unaryHandler(MethodQuality, EstimatorServer.Quality)},
		{MethodName: "Bundle", Handler: unaryHandler(MethodBundle, EstimatorServer.Bundle)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "enhancecost/v1/estimator.proto",
}

// Register adds the estimator to a gRPC server.
func Register(r grpc.ServiceRegistrar, srv EstimatorServer) {
	r.RegisterService(&ServiceDesc, srv)
}

// Estimator serves service.Service over gRPC.
type Estimator struct {
	svc *service.Service
	log *zap.Logger
}

func NewEstimator(svc *service.Service, logger *zap.Logger) *Estimator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Estimator{svc: svc, log: logger}
}

func (e *Estimator) Reinforcement(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return e.serve(ctx, in, e.reinforcement)
}

func (e *Estimator) Quality(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return e.serve(ctx, in, e.quality)
}

func (e *Estimator) Bundle(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return e.serve(ctx, in, e.bundle)
}

func (e *Estimator) reinforcement(ctx context.Context, m map[string]any) (map[string]any, error) {
	q, err := decodeReinforcement(m)
	if err != nil {
		return nil, err
	}
	res, err := e.svc.Reinforcement(ctx, q)
	if err != nil {
		return nil, err
	}
	return encodeReinforcement(res), nil
}

func (e *Estimator) quality(ctx context.Context, m map[string]any) (map[string]any, error) {
	q, err := decodeQuality(m)
	if err != nil {
		return nil, err
	}
	res, err := e.svc.Quality(ctx, q)
	if err != nil {
		return nil, err
	}
	return encodeQuality(res), nil
}

func (e *Estimator) bundle(ctx context.Context, m map[string]any) (map[string]any, error) {
	q, err := decodeBundle(m)
	if err != nil {
		return nil, err
	}
	res, err := e.svc.Bundle(ctx, q)
	if err != nil {
		return nil, err
	}
	return encodeBundle(res), nil
}

func (e *Estimator) serve(ctx context.Context, in *structpb.Struct, fn endpoint) (*structpb.Struct, error) {
	out, err := fn(ctx, in.AsMap())
	if err != nil {
		return nil, toStatus(err)
	}
	return e.reply(out)
}

func (e *Estimator) reply(m map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		e.log.Error("encode reply", zap.Error(err))
		return nil, status.Error(codes.Internal, "encode reply")
	}
	return out, nil
}

// Code maps estimator errors to gRPC codes.
func Code(err error) codes.Code {
	switch {
	case err == nil:
		return codes.OK
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, pricing.ErrTimeframe),
		errors.Is(err, model.ErrUnknownTier),
		errors.Is(err, estimate.ErrInvalidTarget),
		errors.Is(err, estimate.ErrInvalidStart),
		errors.Is(err, estimate.ErrInvalidTier),
		errors.Is(err, estimate.ErrInvalidPrice):
		return codes.InvalidArgument
	case errors.Is(err, estimate.ErrMissingPrice):
		return codes.FailedPrecondition
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	default:
		return codes.Internal
	}
}

func toStatus(err error) error {
	return status.Error(Code(err), err.Error())
}

func httpStatus(err error) int {
	switch Code(err) {
	case codes.OK:
		return http.StatusOK
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.FailedPrecondition:
		return http.StatusNotFound
	case codes.Canceled:
		return http.StatusServiceUnavailable
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Client calls enhancecost.v1.Estimator.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client { return &Client{cc: cc} }

func (c *Client) call(ctx context.Context, method string, req map[string]any, opts ...grpc.CallOption) (map[string]any, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}

func (c *Client) Reinforcement(ctx context.Context, req map[string]any, opts ...grpc.CallOption) (map[string]any, error) {
	return c.call(ctx, MethodReinforcement, req, opts...)
}

func (c *Client) Quality(ctx context.Context, req map[string]any, opts ...grpc.CallOption) (map[string]any, error) {
	return c.call(ctx, MethodQuality, req, opts...)
}

func (c *Client) Bundle(ctx context.Context, req map[string]any, opts ...grpc.CallOption) (map[string]any, error) {
	return c.call(ctx, MethodBundle, req, opts...)
}
