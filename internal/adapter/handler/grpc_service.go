package handler

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

// The Bot service carries plain JSON messages instead of protobuf. Clients
// select the codec with the "json" content subtype.

const (
	botServiceName   = "inventorybot.Bot"
	handleFullMethod = "/" + botServiceName + "/Handle"
)

type HandleRequest struct {
	SessionID string `json:"session_id"`
	UpdateID  string `json:"update_id,omitempty"`
	Text      string `json:"text"`
}

type HandleResponse struct {
	Text    string   `json:"text"`
	Options []string `json:"options,omitempty"`
	Alarm   bool     `json:"alarm,omitempty"`
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return "json" }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type BotServer interface {
	Handle(context.Context, *HandleRequest) (*HandleResponse, error)
}

func RegisterBotServer(s grpc.ServiceRegistrar, srv BotServer) {
	s.RegisterService(&botServiceDesc, srv)
}

var botServiceDesc = grpc.ServiceDesc{
	ServiceName: botServiceName,
	HandlerType: (*BotServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Handle", Handler: botHandleHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "inventorybot",
}

func botHandleHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(HandleRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BotServer).Handle(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: handleFullMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(BotServer).Handle(ctx, req.(*HandleRequest))
	}
	return interceptor(ctx, in, info, handler)
}

type BotClient struct {
	cc grpc.ClientConnInterface
}

func NewBotClient(cc grpc.ClientConnInterface) *BotClient {
	return &BotClient{cc: cc}
}

func (c *BotClient) Handle(ctx context.Context, in *HandleRequest, opts ...grpc.CallOption) (*HandleResponse, error) {
	out := new(HandleResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype("json")}, opts...)
	if err := c.cc.Invoke(ctx, handleFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
