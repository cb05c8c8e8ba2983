package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "icscheck.v1.Validator"

// ValidateMethod is the full method name of the Validate RPC.
const ValidateMethod = "/" + ServiceName + "/Validate"

// ValidatorServer is the server API for the Validator service. The request
// carries the instruction text; the response is the JSON report as a
// Struct.
type ValidatorServer interface {
	Validate(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
}

// ValidatorServiceDesc describes the Validator service. Messages are
// well-known types, so no generated code is needed.
var ValidatorServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ValidatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Validate",
			Handler:    validateHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "icscheck/v1/validator.proto",
}

// RegisterValidatorServer registers srv on s.
func RegisterValidatorServer(s grpc.ServiceRegistrar, srv ValidatorServer) {
	s.RegisterService(&ValidatorServiceDesc, srv)
}

func validateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ValidatorServer).Validate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ValidateMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ValidatorServer).Validate(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}
