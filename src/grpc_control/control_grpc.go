package grpc_control

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "dashboard.control.v1.DashboardControl"

const (
	methodGetStatus    = "/" + ServiceName + "/GetStatus"
	methodPollNow      = "/" + ServiceName + "/PollNow"
	methodRefreshToken = "/" + ServiceName + "/RefreshToken"
)

// -----------------------------------------------------------------------------
// Server side
// -----------------------------------------------------------------------------

// DashboardControlServer is the control plane of a running dashboard.
// Messages are protobuf well-known types, so no generated code is needed.
type DashboardControlServer interface {
	GetStatus(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	PollNow(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	RefreshToken(context.Context, *emptypb.Empty) (*wrapperspb.BoolValue, error)
}

func RegisterDashboardControlServer(s grpc.ServiceRegistrar, srv DashboardControlServer) {
	s.RegisterService(&DashboardControl_ServiceDesc, srv)
}

// -----------------------------------------------------------------------------

func unaryHandler[Resp any](method string, call func(DashboardControlServer, context.Context, *emptypb.Empty) (Resp, error)) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(emptypb.Empty)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(DashboardControlServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(DashboardControlServer), ctx, req.(*emptypb.Empty))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// DashboardControl_ServiceDesc describes the service for grpc.Server.
var DashboardControl_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DashboardControlServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetStatus",
			Handler:    unaryHandler(methodGetStatus, DashboardControlServer.GetStatus),
		},
		{
			MethodName: "PollNow",
			Handler:    unaryHandler(methodPollNow, DashboardControlServer.PollNow),
		},
		{
			MethodName: "RefreshToken",
			Handler:    unaryHandler(methodRefreshToken, DashboardControlServer.RefreshToken),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "dashboard/control/v1/control.proto",
}

// -----------------------------------------------------------------------------
// Client side
// -----------------------------------------------------------------------------

type DashboardControlClient struct {
	cc grpc.ClientConnInterface
}

func NewDashboardControlClient(cc grpc.ClientConnInterface) *DashboardControlClient {
	return &DashboardControlClient{cc: cc}
}

func (c *DashboardControlClient) GetStatus(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodGetStatus, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DashboardControlClient) PollNow(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodPollNow, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DashboardControlClient) RefreshToken(ctx context.Context, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, methodRefreshToken, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
