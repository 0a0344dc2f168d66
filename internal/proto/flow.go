// Package proto declares the careermemory.v1.FlowService gRPC service.
// Requests and responses are google.protobuf.Struct values; the field
// names are documented on each handler in internal/server/grpc.
package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "careermemory.v1.FlowService"

const (
	FlowService_StartFlow_FullMethodName          = "/careermemory.v1.FlowService/StartFlow"
	FlowService_Submit_FullMethodName             = "/careermemory.v1.FlowService/Submit"
	FlowService_Retry_FullMethodName              = "/careermemory.v1.FlowService/Retry"
	FlowService_Skip_FullMethodName               = "/careermemory.v1.FlowService/Skip"
	FlowService_EditReview_FullMethodName         = "/careermemory.v1.FlowService/EditReview"
	FlowService_Save_FullMethodName               = "/careermemory.v1.FlowService/Save"
	FlowService_AddAnother_FullMethodName         = "/careermemory.v1.FlowService/AddAnother"
	FlowService_GetFlow_FullMethodName            = "/careermemory.v1.FlowService/GetFlow"
	FlowService_EditProjectSummary_FullMethodName = "/careermemory.v1.FlowService/EditProjectSummary"
	FlowService_SuggestName_FullMethodName        = "/careermemory.v1.FlowService/SuggestName"
	FlowService_CreateProject_FullMethodName      = "/careermemory.v1.FlowService/CreateProject"
	FlowService_Ping_FullMethodName               = "/careermemory.v1.FlowService/Ping"
)

// FlowServiceServer is the server API for FlowService.
type FlowServiceServer interface {
	StartFlow(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Submit(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Retry(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Skip(context.Context, *structpb.Struct) (*structpb.Struct, error)
	EditReview(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Save(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddAnother(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetFlow(context.Context, *structpb.Struct) (*structpb.Struct, error)
	EditProjectSummary(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SuggestName(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateProject(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Ping(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedFlowServiceServer must be embedded to have forward
// compatible implementations.
type UnimplementedFlowServiceServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedFlowServiceServer) StartFlow(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("StartFlow")
}
func (UnimplementedFlowServiceServer) Submit(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("Submit")
}
func (UnimplementedFlowServiceServer) Retry(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("Retry")
}
func (UnimplementedFlowServiceServer) Skip(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("Skip")
}
func (UnimplementedFlowServiceServer) EditReview(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("EditReview")
}
func (UnimplementedFlowServiceServer) Save(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("Save")
}
func (UnimplementedFlowServiceServer) AddAnother(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("AddAnother")
}
func (UnimplementedFlowServiceServer) GetFlow(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("GetFlow")
}
func (UnimplementedFlowServiceServer) EditProjectSummary(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("EditProjectSummary")
}
func (UnimplementedFlowServiceServer) SuggestName(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("SuggestName")
}
func (UnimplementedFlowServiceServer) CreateProject(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("CreateProject")
}
func (UnimplementedFlowServiceServer) Ping(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("Ping")
}

type unaryCall func(FlowServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func method(name, fullMethod string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(FlowServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(FlowServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// FlowService_ServiceDesc is the grpc.ServiceDesc for FlowService.
var FlowService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FlowServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		method("StartFlow", FlowService_StartFlow_FullMethodName, FlowServiceServer.StartFlow),
		method("Submit", FlowService_Submit_FullMethodName, FlowServiceServer.Submit),
		method("Retry", FlowService_Retry_FullMethodName, FlowServiceServer.Retry),
		method("Skip", FlowService_Skip_FullMethodName, FlowServiceServer.Skip),
		method("EditReview", FlowService_EditReview_FullMethodName, FlowServiceServer.EditReview),
		method("Save", FlowService_Save_FullMethodName, FlowServiceServer.Save),
		method("AddAnother", FlowService_AddAnother_FullMethodName, FlowServiceServer.AddAnother),
		method("GetFlow", FlowService_GetFlow_FullMethodName, FlowServiceServer.GetFlow),
		method("EditProjectSummary", FlowService_EditProjectSummary_FullMethodName, FlowServiceServer.EditProjectSummary),
		method("SuggestName", FlowService_SuggestName_FullMethodName, FlowServiceServer.SuggestName),
		method("CreateProject", FlowService_CreateProject_FullMethodName, FlowServiceServer.CreateProject),
		method("Ping", FlowService_Ping_FullMethodName, FlowServiceServer.Ping),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "careermemory/v1/flow.proto",
}

func RegisterFlowServiceServer(s grpc.ServiceRegistrar, srv FlowServiceServer) {
	s.RegisterService(&FlowService_ServiceDesc, srv)
}

// FlowServiceClient calls FlowService methods by full name.
type FlowServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewFlowServiceClient(cc grpc.ClientConnInterface) *FlowServiceClient {
	return &FlowServiceClient{cc: cc}
}

// Call invokes fullMethod with in.
func (c *FlowServiceClient) Call(ctx context.Context, fullMethod string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
