package grpc

import (
	"context"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/LeJamon/goswapd/internal/events"
)

type watchFilter struct {
	swapID  string
	account string
	types   map[events.Type]bool
}

func newWatchFilter(req *WatchSwapsRequest) watchFilter {
	f := watchFilter{swapID: req.SwapID, account: req.Account}
	if len(req.Types) > 0 {
		f.types = make(map[events.Type]bool, len(req.Types))
		for _, t := range req.Types {
			f.types[t] = true
		}
	}
	return f
}

func (f watchFilter) match(ev events.Event) bool {
	if f.swapID != "" && f.swapID != ev.SwapID {
		return false
	}
	if f.account != "" && f.account != ev.Initiator && f.account != ev.Redeemer {
		return false
	}
	if f.types != nil && !f.types[ev.Type] {
		return false
	}
	return true
}

// subscriber is one WatchSwaps stream. The events channel is never closed;
// overflow is signalled once through its own channel.
type subscriber struct {
	filter   watchFilter
	events   chan events.Event
	overflow chan struct{}
	once     sync.Once
}

func (sub *subscriber) fellBehind() {
	sub.once.Do(func() { close(sub.overflow) })
}

// Publish delivers ev to every matching stream without blocking. A stream
// whose queue is full is ended with codes.ResourceExhausted.
func (s *Server) Publish(_ context.Context, ev events.Event) error {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for sub := range s.subs {
		if !sub.filter.match(ev) {
			continue
		}
		select {
		case sub.events <- ev:
		default:
			sub.fellBehind()
		}
	}
	return nil
}

// Subscribers returns the number of open WatchSwaps streams.
func (s *Server) Subscribers() int {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	return len(s.subs)
}

func (s *Server) subscribe(f watchFilter) *subscriber {
	sub := &subscriber{
		filter:   f,
		events:   make(chan events.Event, s.config.StreamQueueLimit),
		overflow: make(chan struct{}),
	}
	s.subsMu.Lock()
	s.subs[sub] = struct{}{}
	s.subsMu.Unlock()
	return sub
}

func (s *Server) unsubscribe(sub *subscriber) {
	s.subsMu.Lock()
	delete(s.subs, sub)
	s.subsMu.Unlock()
}

// WatchSwaps streams notifications matching the request until the client
// goes away, the server stops or the stream falls behind.
func (s *Server) WatchSwaps(req *WatchSwapsRequest, stream grpc.ServerStream) error {
	sub := s.subscribe(newWatchFilter(req))
	defer s.unsubscribe(sub)

	ctx := stream.Context()
	for {
		select {
		case ev := <-sub.events:
			if err := stream.SendMsg(&ev); err != nil {
				return err
			}
		case <-sub.overflow:
			return status.Error(codes.ResourceExhausted, "notification queue overflow")
		case <-s.done:
			return status.Error(codes.Unavailable, "server shutting down")
		case <-ctx.Done():
			return status.FromContextError(ctx.Err()).Err()
		}
	}
}
