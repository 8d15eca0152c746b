package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"

	"github.com/LeJamon/goswapd/internal/events"
)

// Client calls the swap service over a gRPC connection using the json codec.
type Client struct {
	conn *grpc.ClientConn
}

// NewClient connects to target. opts must carry transport credentials.
func NewClient(target string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
	}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc client %s: %w", target, err)
	}
	return &Client{conn: conn}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Call invokes a unary method of the swap service by name.
func (c *Client) Call(ctx context.Context, method string, req, resp interface{}) error {
	return c.conn.Invoke(ctx, FullMethod(method), req, resp)
}

// Watch is an open WatchSwaps stream.
type Watch struct {
	stream grpc.ClientStream
}

// WatchSwaps opens a notification stream. Cancel ctx to end it.
func (c *Client) WatchSwaps(ctx context.Context, req *WatchSwapsRequest) (*Watch, error) {
	desc := &grpc.StreamDesc{StreamName: "WatchSwaps", ServerStreams: true}
	stream, err := c.conn.NewStream(ctx, desc, FullMethod("WatchSwaps"))
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(req); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &Watch{stream: stream}, nil
}

// Recv blocks for the next notification.
func (w *Watch) Recv() (events.Event, error) {
	var ev events.Event
	err := w.stream.RecvMsg(&ev)
	return ev, err
}
