package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mvaleed/catalog/internal/domain"
	"github.com/mvaleed/catalog/internal/service"
	"github.com/mvaleed/catalog/internal/storage"
)

const categoryServiceName = "catalog.v1.CategoryService"

// categoryServer is the server API for catalog.v1.CategoryService.
type categoryServer interface {
	CreateCategory(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetCategory(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListCategories(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateCategory(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ActivateCategory(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeactivateCategory(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteCategory(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var categoryServiceDesc = grpc.ServiceDesc{
	ServiceName: categoryServiceName,
	HandlerType: (*categoryServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("CreateCategory", categoryServer.CreateCategory),
		unaryMethod("GetCategory", categoryServer.GetCategory),
		unaryMethod("ListCategories", categoryServer.ListCategories),
		unaryMethod("UpdateCategory", categoryServer.UpdateCategory),
		unaryMethod("ActivateCategory", categoryServer.ActivateCategory),
		unaryMethod("DeactivateCategory", categoryServer.DeactivateCategory),
		unaryMethod("DeleteCategory", categoryServer.DeleteCategory),
	},
	Streams: []grpc.StreamDesc{},
}

func unaryMethod(
	name string,
	call func(categoryServer, context.Context, *structpb.Struct) (*structpb.Struct, error),
) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(categoryServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + categoryServiceName + "/" + name,
			}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(categoryServer), ctx, req.(*structpb.Struct))
			})
		},
	}
}

type categoryHandler struct {
	categoryService *service.CategoryService
}

func newCategoryHandler(categoryService *service.CategoryService) *categoryHandler {
	return &categoryHandler{categoryService: categoryService}
}

func (h *categoryHandler) CreateCategory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requirePermission(ctx, "categories", "write"); err != nil {
		return nil, err
	}

	category, err := h.categoryService.CreateCategory(ctx, service.CreateCategoryInput{
		Name:        stringField(req, "name"),
		Description: stringField(req, "description"),
		IsActive:    boolField(req, "is_active"),
	})
	if err != nil {
		return nil, mapDomainError(err)
	}

	return categoryToStruct(category), nil
}

func (h *categoryHandler) GetCategory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := idField(req)
	if err != nil {
		return nil, err
	}

	category, err := h.categoryService.GetCategory(ctx, id)
	if err != nil {
		return nil, mapDomainError(err)
	}

	return categoryToStruct(category), nil
}

func (h *categoryHandler) ListCategories(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	filter := storage.CategoryFilter{
		Active: boolField(req, "active"),
		Offset: intField(req, "offset"),
		Limit:  intField(req, "limit"),
	}
	if search := stringField(req, "search"); search != nil {
		filter.Search = *search
	}
	if filter.Offset < 0 || filter.Limit < 0 || filter.Limit > 100 {
		return nil, status.Error(codes.InvalidArgument, "offset must be >= 0 and limit between 0 and 100")
	}

	categories, total, err := h.categoryService.ListCategories(ctx, filter)
	if err != nil {
		return nil, mapDomainError(err)
	}

	items := make([]any, len(categories))
	for i := range categories {
		items[i] = categoryToMap(&categories[i])
	}

	resp, err := structpb.NewStruct(map[string]any{
		"categories": items,
		"total":      total,
	})
	if err != nil {
		return nil, status.Error(codes.Internal, "internal server error")
	}
	return resp, nil
}

func (h *categoryHandler) UpdateCategory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requirePermission(ctx, "categories", "write"); err != nil {
		return nil, err
	}

	id, err := idField(req)
	if err != nil {
		return nil, err
	}

	category, err := h.categoryService.UpdateCategory(ctx, id, service.UpdateCategoryInput{
		Name:        stringField(req, "name"),
		Description: stringField(req, "description"),
	})
	if err != nil {
		return nil, mapDomainError(err)
	}

	return categoryToStruct(category), nil
}

func (h *categoryHandler) ActivateCategory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requirePermission(ctx, "categories", "write"); err != nil {
		return nil, err
	}

	id, err := idField(req)
	if err != nil {
		return nil, err
	}

	category, err := h.categoryService.ActivateCategory(ctx, id)
	if err != nil {
		return nil, mapDomainError(err)
	}

	return categoryToStruct(category), nil
}

func (h *categoryHandler) DeactivateCategory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requirePermission(ctx, "categories", "write"); err != nil {
		return nil, err
	}

	id, err := idField(req)
	if err != nil {
		return nil, err
	}

	category, err := h.categoryService.DeactivateCategory(ctx, id)
	if err != nil {
		return nil, mapDomainError(err)
	}

	return categoryToStruct(category), nil
}

func (h *categoryHandler) DeleteCategory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requirePermission(ctx, "categories", "delete"); err != nil {
		return nil, err
	}

	id, err := idField(req)
	if err != nil {
		return nil, err
	}

	if err := h.categoryService.DeleteCategory(ctx, id); err != nil {
		return nil, mapDomainError(err)
	}

	return &structpb.Struct{}, nil
}

// mapDomainError converts domain errors to gRPC status errors
func mapDomainError(err error) error {
	if err == nil {
		return nil
	}

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return status.Error(codes.InvalidArgument, validationErr.Message)
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return status.Error(codes.PermissionDenied, err.Error())
	}

	return status.Error(codes.Internal, "internal server error")
}

// Struct field helpers. A missing key and an explicit null both read as nil.

func stringField(s *structpb.Struct, key string) *string {
	v, ok := s.GetFields()[key].GetKind().(*structpb.Value_StringValue)
	if !ok {
		return nil
	}
	return &v.StringValue
}

func boolField(s *structpb.Struct, key string) *bool {
	v, ok := s.GetFields()[key].GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return nil
	}
	return &v.BoolValue
}

func intField(s *structpb.Struct, key string) int {
	v, ok := s.GetFields()[key].GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0
	}
	return int(v.NumberValue)
}

func idField(s *structpb.Struct) (uuid.UUID, error) {
	raw := stringField(s, "id")
	if raw == nil {
		return uuid.Nil, status.Error(codes.InvalidArgument, "id is required")
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return uuid.Nil, status.Error(codes.InvalidArgument, "invalid UUID")
	}
	return id, nil
}

func categoryToMap(c *domain.Category) map[string]any {
	return map[string]any{
		"id":          c.ID().String(),
		"name":        c.Name(),
		"description": c.Description(),
		"is_active":   c.IsActive(),
		"created_at":  c.CreatedAt().Format(time.RFC3339),
	}
}

func categoryToStruct(c *domain.Category) *structpb.Struct {
	// only strings and bools, NewStruct cannot fail
	s, _ := structpb.NewStruct(categoryToMap(c))
	return s
}
