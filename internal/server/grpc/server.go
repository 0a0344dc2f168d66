// Package grpc exposes the achievement flow over gRPC. Every method but
// Ping needs an access_token metadata value identifying the user.
package grpc

import (
	"context"
	"net"

	"google.golang.org/grpc"

	"github.com/dmitrijs2005/careermemory/internal/logging"
	pb "github.com/dmitrijs2005/careermemory/internal/proto"
	"github.com/dmitrijs2005/careermemory/internal/server/flow"
	"github.com/dmitrijs2005/careermemory/internal/server/models"
	"github.com/dmitrijs2005/careermemory/internal/server/services"
)

type flowController interface {
	Submit(ctx context.Context, f *flow.Flow, draft services.RawInput) error
	Retry(ctx context.Context, f *flow.Flow) error
	Skip(ctx context.Context, f *flow.Flow) error
	EditReview(ctx context.Context, f *flow.Flow, edit models.CurrentEdit) error
	Save(ctx context.Context, f *flow.Flow) error
	AddAnother(ctx context.Context, f *flow.Flow) error
	SuggestName(ctx context.Context, f *flow.Flow, text string) (string, error)
}

type projectService interface {
	Create(ctx context.Context, userID, name string, description *string) (*models.Project, error)
	EditSummary(ctx context.Context, userID, projectID, summary string) error
}

type GRPCServer struct {
	pb.UnimplementedFlowServiceServer
	address   string
	flows     *flow.Registry
	ctrl      flowController
	projects  projectService
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, flows *flow.Registry, ctrl flowController, projects projectService, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		flows:     flows,
		ctrl:      ctrl,
		projects:  projects,
		jwtSecret: []byte(secretKey),
	}
}

// NewServer builds a grpc.Server with the interceptors and the service
// registered.
func (s *GRPCServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	srv := grpc.NewServer(opts...)
	pb.RegisterFlowServiceServer(srv, s)
	return srv
}

// Run serves until ctx is canceled, then stops gracefully.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)
	return srv.Serve(listen)
}
