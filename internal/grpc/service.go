package grpc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "swapd.v1.Swap"

// SwapServer is the server API of the swap service.
type SwapServer interface {
	Initiate(context.Context, *SubmitRequest) (*SubmitResponse, error)
	Redeem(context.Context, *SubmitRequest) (*SubmitResponse, error)
	Refund(context.Context, *SubmitRequest) (*SubmitResponse, error)
	InstantRefund(context.Context, *SubmitRequest) (*SubmitResponse, error)
	GetSwap(context.Context, *GetSwapRequest) (*SwapResponse, error)
	GetAccount(context.Context, *GetAccountRequest) (*AccountResponse, error)
	GetTick(context.Context, *GetTickRequest) (*TickResponse, error)
	WatchSwaps(*WatchSwapsRequest, grpc.ServerStream) error
}

// FullMethod returns the wire path of a method of the swap service.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// unary adapts a typed method to grpc.MethodHandler.
func unary[Req any, Resp any](method string, call func(SwapServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			resp, err := call(srv.(SwapServer), ctx, req.(*Req))
			if err != nil {
				return nil, err
			}
			return resp, nil
		}
		if interceptor == nil {
			return handler(ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
		return interceptor(ctx, in, info, handler)
	}
}

func watchSwapsHandler(srv interface{}, stream grpc.ServerStream) error {
	in := new(WatchSwapsRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(SwapServer).WatchSwaps(in, stream)
}

// serviceDesc describes the swap service without generated code; messages
// travel through the json codec.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SwapServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Initiate", Handler: unary("Initiate", SwapServer.Initiate)},
		{MethodName: "Redeem", Handler: unary("Redeem", SwapServer.Redeem)},
		{MethodName: "Refund", Handler: unary("Refund", SwapServer.Refund)},
		{MethodName: "InstantRefund", Handler: unary("InstantRefund", SwapServer.InstantRefund)},
		{MethodName: "GetSwap", Handler: unary("GetSwap", SwapServer.GetSwap)},
		{MethodName: "GetAccount", Handler: unary("GetAccount", SwapServer.GetAccount)},
		{MethodName: "GetTick", Handler: unary("GetTick", SwapServer.GetTick)},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "WatchSwaps", Handler: watchSwapsHandler, ServerStreams: true},
	},
	Metadata: "swapd/v1/swap",
}
