// Service descriptor and client for orgchart.v1.OrgChart
package server

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// ServiceName is the fully qualified gRPC service name
	ServiceName = "orgchart.v1.OrgChart"

	protoFile = "orgchart/v1/orgchart.proto"
)

// OrgChartServer is the server API for the OrgChart service. Every method
// takes and returns a google.protobuf.Struct.
type OrgChartServer interface {
	GetHierarchy(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetHeap(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetMeta(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetStats(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SearchDepartments(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetDepartment(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddDepartment(context.Context, *structpb.Struct) (*structpb.Struct, error)
	EditDepartment(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteDepartment(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(OrgChartServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

var methods = []struct {
	name string
	call unaryMethod
}{
	{"GetHierarchy", OrgChartServer.GetHierarchy},
	{"GetHeap", OrgChartServer.GetHeap},
	{"GetMeta", OrgChartServer.GetMeta},
	{"GetStats", OrgChartServer.GetStats},
	{"SearchDepartments", OrgChartServer.SearchDepartments},
	{"GetDepartment", OrgChartServer.GetDepartment},
	{"AddDepartment", OrgChartServer.AddDepartment},
	{"EditDepartment", OrgChartServer.EditDepartment},
	{"DeleteDepartment", OrgChartServer.DeleteDepartment},
}

func handler(name string, call unaryMethod) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	fullMethod := "/" + ServiceName + "/" + name
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(OrgChartServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(srv.(OrgChartServer), ctx, req.(*structpb.Struct))
		})
	}
}

// ServiceDesc describes the OrgChart service for grpc.Server.RegisterService
var ServiceDesc = func() grpc.ServiceDesc {
	desc := grpc.ServiceDesc{
		ServiceName: ServiceName,
		HandlerType: (*OrgChartServer)(nil),
		Streams:     []grpc.StreamDesc{},
		Metadata:    protoFile,
	}
	for _, m := range methods {
		desc.Methods = append(desc.Methods, grpc.MethodDesc{
			MethodName: m.name,
			Handler:    handler(m.name, m.call),
		})
	}
	return desc
}()

var registerOnce sync.Once

// registerFileDescriptor publishes the service schema so server reflection
// can describe it
func registerFileDescriptor() error {
	var err error
	registerOnce.Do(func() {
		if _, findErr := protoregistry.GlobalFiles.FindFileByPath(protoFile); findErr == nil {
			return
		}
		svc := &descriptorpb.ServiceDescriptorProto{Name: proto.String("OrgChart")}
		for _, m := range methods {
			svc.Method = append(svc.Method, &descriptorpb.MethodDescriptorProto{
				Name:       proto.String(m.name),
				InputType:  proto.String(".google.protobuf.Struct"),
				OutputType: proto.String(".google.protobuf.Struct"),
			})
		}
		fdp := &descriptorpb.FileDescriptorProto{
			Name:       proto.String(protoFile),
			Package:    proto.String("orgchart.v1"),
			Dependency: []string{"google/protobuf/struct.proto"},
			Syntax:     proto.String("proto3"),
			Service:    []*descriptorpb.ServiceDescriptorProto{svc},
		}
		fd, buildErr := protodesc.NewFile(fdp, protoregistry.GlobalFiles)
		if buildErr != nil {
			err = fmt.Errorf("build descriptor: %w", buildErr)
			return
		}
		err = protoregistry.GlobalFiles.RegisterFile(fd)
	})
	return err
}

// Register adds the OrgChart service to a gRPC server
func Register(s grpc.ServiceRegistrar, srv OrgChartServer) error {
	if err := registerFileDescriptor(); err != nil {
		return err
	}
	s.RegisterService(&ServiceDesc, srv)
	return nil
}

// Client calls the OrgChart service over a client connection
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient creates a client over cc
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Call invokes method with req encoded as a Struct
func (c *Client) Call(ctx context.Context, method string, req map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetHierarchy(ctx context.Context) (*structpb.Struct, error) {
	return c.Call(ctx, "GetHierarchy", nil)
}

func (c *Client) GetHeap(ctx context.Context) (*structpb.Struct, error) {
	return c.Call(ctx, "GetHeap", nil)
}

func (c *Client) GetMeta(ctx context.Context) (*structpb.Struct, error) {
	return c.Call(ctx, "GetMeta", nil)
}

func (c *Client) GetStats(ctx context.Context) (*structpb.Struct, error) {
	return c.Call(ctx, "GetStats", nil)
}

func (c *Client) SearchDepartments(ctx context.Context, query string, limit int) (*structpb.Struct, error) {
	return c.Call(ctx, "SearchDepartments", map[string]any{"query": query, "limit": limit})
}

func (c *Client) GetDepartment(ctx context.Context, name string) (*structpb.Struct, error) {
	return c.Call(ctx, "GetDepartment", map[string]any{"name": name})
}

func (c *Client) AddDepartment(ctx context.Context, req map[string]any) (*structpb.Struct, error) {
	return c.Call(ctx, "AddDepartment", req)
}

func (c *Client) EditDepartment(ctx context.Context, req map[string]any) (*structpb.Struct, error) {
	return c.Call(ctx, "EditDepartment", req)
}

func (c *Client) DeleteDepartment(ctx context.Context, name string) (*structpb.Struct, error) {
	return c.Call(ctx, "DeleteDepartment", map[string]any{"name": name})
}
