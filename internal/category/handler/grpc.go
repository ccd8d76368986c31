package handler

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/singladno/marinaobuv-sub001/internal/auth"
	"github.com/singladno/marinaobuv-sub001/internal/category"
	"github.com/singladno/marinaobuv-sub001/internal/category/tree"
	"github.com/singladno/marinaobuv-sub001/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "catalog.v1.CategoryTreeService"

// CategoryTreeServer is the server API of catalog.v1.CategoryTreeService.
// Requests and responses are google.protobuf.Struct documents:
//
//	GetTree            {search}                 -> {nodes}
//	FlattenTree        {exclude_id}             -> {entries}
//	ValidParents       {editing_id, mode}       -> {categories}
//	ReconcileSelection {previous_id}            -> {selected_id}
type CategoryTreeServer interface {
	GetTree(context.Context, *structpb.Struct) (*structpb.Struct, error)
	FlattenTree(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ValidParents(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ReconcileSelection(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func unaryHandler(method string, call func(CategoryTreeServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CategoryTreeServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CategoryTreeServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var CategoryTreeServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CategoryTreeServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetTree", Handler: unaryHandler("GetTree", CategoryTreeServer.GetTree)},
		{MethodName: "FlattenTree", Handler: unaryHandler("FlattenTree", CategoryTreeServer.FlattenTree)},
		{MethodName: "ValidParents", Handler: unaryHandler("ValidParents", CategoryTreeServer.ValidParents)},
		{MethodName: "ReconcileSelection", Handler: unaryHandler("ReconcileSelection", CategoryTreeServer.ReconcileSelection)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "catalog/v1/category_tree.proto",
}

func RegisterCategoryTreeServer(s grpc.ServiceRegistrar, srv CategoryTreeServer) {
	s.RegisterService(&CategoryTreeServiceDesc, srv)
}

var _ CategoryTreeServer = (*CategoryTreeHandler)(nil)

type CategoryTreeHandler struct {
	uc     category.UseCase
	logger logger.ZapLogger
}

func NewCategoryTreeHandler(uc category.UseCase, log logger.ZapLogger) *CategoryTreeHandler {
	return &CategoryTreeHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *CategoryTreeHandler) GetTree(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	merchantID, err := requireMerchant(ctx)
	if err != nil {
		return nil, err
	}
	nodes, err := h.uc.GetTree(ctx, merchantID, stringField(req, "search"))
	if err != nil {
		return nil, h.statusError("get tree", err)
	}
	return toStruct(map[string]any{"nodes": nodes})
}

func (h *CategoryTreeHandler) FlattenTree(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	merchantID, err := requireMerchant(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := h.uc.Flatten(ctx, merchantID, stringField(req, "exclude_id"))
	if err != nil {
		return nil, h.statusError("flatten tree", err)
	}
	return toStruct(map[string]any{"entries": entries})
}

func (h *CategoryTreeHandler) ValidParents(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	merchantID, err := requireMerchant(ctx)
	if err != nil {
		return nil, err
	}
	var mode *tree.ParentMode
	if raw := stringField(req, "mode"); raw != "" {
		m, err := tree.ParseParentMode(raw)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		mode = &m
	}
	cats, err := h.uc.ValidParents(ctx, merchantID, stringField(req, "editing_id"), mode)
	if err != nil {
		return nil, h.statusError("valid parents", err)
	}
	return toStruct(map[string]any{"categories": cats})
}

func (h *CategoryTreeHandler) ReconcileSelection(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	merchantID, err := requireMerchant(ctx)
	if err != nil {
		return nil, err
	}
	selected, err := h.uc.ReconcileSelection(ctx, merchantID, stringField(req, "previous_id"))
	if err != nil {
		return nil, h.statusError("reconcile selection", err)
	}
	return toStruct(map[string]any{"selected_id": selected})
}

func (h *CategoryTreeHandler) statusError(op string, err error) error {
	kind := classify(err)
	if kind.grpc == codes.Internal {
		h.logger.Error("failed to "+op, zap.Error(err))
		return status.Error(codes.Internal, "internal error")
	}
	return status.Error(kind.grpc, err.Error())
}

func requireMerchant(ctx context.Context) (string, error) {
	merchantID := auth.GetMerchantID(ctx)
	if merchantID == "" {
		return "", status.Error(codes.Unauthenticated, "missing merchant context")
	}
	return merchantID, nil
}

func stringField(s *structpb.Struct, key string) string {
	if s == nil {
		return ""
	}
	return s.GetFields()[key].GetStringValue()
}

// toStruct converts v to a Struct through its JSON form, so the wire shape
// matches the REST API.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode response: %v", err))
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode response: %v", err))
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode response: %v", err))
	}
	return out, nil
}

// CategoryTreeClient calls catalog.v1.CategoryTreeService.
type CategoryTreeClient struct {
	cc grpc.ClientConnInterface
}

func NewCategoryTreeClient(cc grpc.ClientConnInterface) *CategoryTreeClient {
	return &CategoryTreeClient{cc: cc}
}

func (c *CategoryTreeClient) call(ctx context.Context, method string, req map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CategoryTreeClient) GetTree(ctx context.Context, search string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "GetTree", map[string]any{"search": search}, opts...)
}

func (c *CategoryTreeClient) FlattenTree(ctx context.Context, excludeID string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "FlattenTree", map[string]any{"exclude_id": excludeID}, opts...)
}

func (c *CategoryTreeClient) ValidParents(ctx context.Context, editingID, mode string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "ValidParents", map[string]any{"editing_id": editingID, "mode": mode}, opts...)
}

func (c *CategoryTreeClient) ReconcileSelection(ctx context.Context, previousID string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "ReconcileSelection", map[string]any{"previous_id": previousID}, opts...)
}
