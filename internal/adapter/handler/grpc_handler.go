package handler

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type GRPCHandler struct {
	dispatcher *Dispatcher
}

func NewGRPCHandler(dispatcher *Dispatcher) *GRPCHandler {
	return &GRPCHandler{dispatcher: dispatcher}
}

func (h *GRPCHandler) Handle(ctx context.Context, req *HandleRequest) (*HandleResponse, error) {
	if req.SessionID == "" {
		return nil, status.Error(codes.InvalidArgument, "session_id required")
	}

	reply, err := h.dispatcher.Dispatch(ctx, Message{
		UpdateID:  req.UpdateID,
		SessionID: req.SessionID,
		Text:      req.Text,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateUpdate) {
			return nil, status.Error(codes.AlreadyExists, "duplicate update")
		}
		return nil, status.Error(codes.Internal, reply.Text)
	}

	return &HandleResponse{
		Text:    reply.Text,
		Options: reply.Options,
		Alarm:   reply.Alarm,
	}, nil
}
