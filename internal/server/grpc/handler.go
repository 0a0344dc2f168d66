package grpc

import (
	"context"
	"errors"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dmitrijs2005/careermemory/internal/server/flow"
)

// lookup resolves the caller's flow named by the flow_id field.
func (s *GRPCServer) lookup(ctx context.Context, req *structpb.Struct) (*flow.Flow, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	f, err := s.flows.Get(userID, str(req, "flow_id"))
	if err != nil {
		return nil, toStatus(err)
	}
	return f, nil
}

func (s *GRPCServer) view(f *flow.Flow) (*structpb.Struct, error) {
	return toStruct(flowView(f.Snapshot()))
}

// StartFlow opens a flow in the input state. Response: flow view.
func (s *GRPCServer) StartFlow(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	f, err := s.flows.Start(userID)
	if err != nil {
		return nil, toStatus(err)
	}
	s.logger.Info(ctx, "flow started", "flow_id", f.ID(), "user_id", userID)
	return s.view(f)
}

// Submit takes flow_id, main_text, answers{key: text} and the optional
// project_id, company_id, company_name, role_title. Save and synthesis
// failures are part of the flow state, not RPC errors.
func (s *GRPCServer) Submit(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f, err := s.lookup(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := stateful(s.ctrl.Submit(ctx, f, draftFromRequest(req))); err != nil {
		return nil, err
	}
	return s.view(f)
}

// stateful keeps errors the flow already recorded in its state out of the
// RPC status.
func stateful(err error) error {
	var saveErr *flow.SaveError
	var synthErr *flow.SynthesisError
	if err == nil || errors.As(err, &saveErr) || errors.As(err, &synthErr) {
		return nil
	}
	return toStatus(err)
}

func (s *GRPCServer) Retry(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f, err := s.lookup(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := stateful(s.ctrl.Retry(ctx, f)); err != nil {
		return nil, err
	}
	return s.view(f)
}

func (s *GRPCServer) Skip(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.step(ctx, req, s.ctrl.Skip)
}

func (s *GRPCServer) Save(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.step(ctx, req, s.ctrl.Save)
}

func (s *GRPCServer) AddAnother(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.step(ctx, req, s.ctrl.AddAnother)
}

func (s *GRPCServer) step(ctx context.Context, req *structpb.Struct, fn func(context.Context, *flow.Flow) error) (*structpb.Struct, error) {
	f, err := s.lookup(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := fn(ctx, f); err != nil {
		return nil, toStatus(err)
	}
	return s.view(f)
}

// EditReview takes flow_id and any of name, paragraph, bullets[],
// situation, task, action, result.
func (s *GRPCServer) EditReview(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f, err := s.lookup(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.ctrl.EditReview(ctx, f, editFromRequest(req)); err != nil {
		return nil, toStatus(err)
	}
	return s.view(f)
}

func (s *GRPCServer) GetFlow(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f, err := s.lookup(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.view(f)
}

// SuggestName takes flow_id and optional text. Response: {name}.
func (s *GRPCServer) SuggestName(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f, err := s.lookup(ctx, req)
	if err != nil {
		return nil, err
	}
	name, err := s.ctrl.SuggestName(ctx, f, str(req, "text"))
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(map[string]any{"name": name})
}

// CreateProject takes name and optional description.
// Response: {project_id, name, status}.
func (s *GRPCServer) CreateProject(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.projects.Create(ctx, userID, str(req, "name"), optStr(req, "description"))
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(map[string]any{"project_id": p.ID, "name": p.Name, "status": string(p.Status)})
}

// EditProjectSummary takes project_id and summary. Response: {project_id}.
func (s *GRPCServer) EditProjectSummary(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	projectID := str(req, "project_id")
	if err := s.projects.EditSummary(ctx, userID, projectID, str(req, "summary")); err != nil {
		return nil, toStatus(err)
	}
	return toStruct(map[string]any{"project_id": projectID})
}

func (s *GRPCServer) Ping(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return toStruct(map[string]any{"status": "OK"})
}
