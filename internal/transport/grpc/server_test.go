package grpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mvaleed/catalog/internal/auth"
	"github.com/mvaleed/catalog/internal/domain"
	"github.com/mvaleed/catalog/internal/event"
	"github.com/mvaleed/catalog/internal/service"
	"github.com/mvaleed/catalog/internal/storage"
)

type memoryCategoryRepository struct {
	mu    sync.Mutex
	items map[uuid.UUID]domain.Category
}

func (m *memoryCategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[c.ID()] = *c
	return nil
}

func (m *memoryCategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (m *memoryCategoryRepository) Update(ctx context.Context, c *domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[c.ID()]; !ok {
		return domain.ErrNotFound
	}
	m.items[c.ID()] = *c
	return nil
}

func (m *memoryCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memoryCategoryRepository) List(ctx context.Context, filter storage.CategoryFilter) ([]domain.Category, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Category
	for _, c := range m.items {
		if filter.Active != nil && c.IsActive() != *filter.Active {
			continue
		}
		out = append(out, c)
	}
	return out, int64(len(out)), nil
}

type passthroughTransactor struct{}

func (passthroughTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type testEnv struct {
	conn *grpc.ClientConn
	jwt  *auth.JWTManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := &memoryCategoryRepository{items: make(map[uuid.UUID]domain.Category)}
	svc := service.NewCategoryService(repo, passthroughTransactor{}, event.NewNoopPublisher(), logger)
	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		SecretKey:      "grpc-test-secret",
		AccessTokenTTL: time.Hour,
	})

	server := NewServer(svc, jwtManager, logger)
	lis := bufconn.Listen(1 << 20)
	go func() { _ = server.Serve(lis) }()
	t.Cleanup(server.GracefulStop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &testEnv{conn: conn, jwt: jwtManager}
}

func (e *testEnv) authed(t *testing.T, permissions ...string) context.Context {
	t.Helper()
	tok, _, err := e.jwt.GenerateAccessToken("editor-1", permissions)
	require.NoError(t, err)
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+tok)
}

func (e *testEnv) call(ctx context.Context, method string, req map[string]any) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	err = e.conn.Invoke(ctx, fmt.Sprintf("/%s/%s", categoryServiceName, method), in, out)
	return out, err
}

func TestCategoryService_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	writer := env.authed(t, "categories:*")

	created, err := env.call(writer, "CreateCategory", map[string]any{
		"name":        "Movies",
		"description": "Feature films",
	})
	require.NoError(t, err)
	id := created.Fields["id"].GetStringValue()
	require.True(t, created.Fields["is_active"].GetBoolValue())

	got, err := env.call(context.Background(), "GetCategory", map[string]any{"id": id})
	require.NoError(t, err)
	require.Equal(t, "Movies", got.Fields["name"].GetStringValue())

	updated, err := env.call(writer, "UpdateCategory", map[string]any{"id": id, "name": "Films"})
	require.NoError(t, err)
	require.Equal(t, "Films", updated.Fields["name"].GetStringValue())
	require.Equal(t, "Feature films", updated.Fields["description"].GetStringValue())

	deactivated, err := env.call(writer, "DeactivateCategory", map[string]any{"id": id})
	require.NoError(t, err)
	require.False(t, deactivated.Fields["is_active"].GetBoolValue())

	list, err := env.call(context.Background(), "ListCategories", map[string]any{"active": false})
	require.NoError(t, err)
	require.EqualValues(t, 1, list.Fields["total"].GetNumberValue())

	_, err = env.call(writer, "ActivateCategory", map[string]any{"id": id})
	require.NoError(t, err)

	_, err = env.call(writer, "DeleteCategory", map[string]any{"id": id})
	require.NoError(t, err)

	_, err = env.call(context.Background(), "GetCategory", map[string]any{"id": id})
	require.Equal(t, codes.NotFound, status.Code(err))
}

func TestCategoryService_ValidationMessage(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.call(env.authed(t, "categories:write"), "CreateCategory", map[string]any{
		"name":        "ab",
		"description": "x",
	})

	st, ok := status.FromError(err)
	require.True(t, ok)
	require.Equal(t, codes.InvalidArgument, st.Code())
	require.Equal(t, domain.MsgCategoryNameTooShort, st.Message())
}

func TestCategoryService_Auth(t *testing.T) {
	env := newTestEnv(t)
	req := map[string]any{"name": "Movies", "description": "Feature films"}

	_, err := env.call(context.Background(), "CreateCategory", req)
	require.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = env.call(env.authed(t, "categories:read"), "CreateCategory", req)
	require.Equal(t, codes.PermissionDenied, status.Code(err))

	_, err = env.call(env.authed(t, "categories:write"), "DeleteCategory", map[string]any{"id": uuid.NewString()})
	require.Equal(t, codes.PermissionDenied, status.Code(err))
}

func TestCategoryService_InvalidID(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.call(context.Background(), "GetCategory", map[string]any{"id": "nope"})
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = env.call(context.Background(), "GetCategory", map[string]any{})
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)
	client := healthpb.NewHealthClient(env.conn)

	resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: categoryServiceName})

	require.NoError(t, err)
	require.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{name: "validation", err: domain.NewValidationError("name", domain.MsgCategoryNameEmpty), want: codes.InvalidArgument},
		{name: "not found", err: fmt.Errorf("loading: %w", domain.ErrNotFound), want: codes.NotFound},
		{name: "exists", err: domain.ErrAlreadyExists, want: codes.AlreadyExists},
		{name: "conflict", err: domain.ErrConflict, want: codes.Aborted},
		{name: "other", err: errors.New("boom"), want: codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, status.Code(mapDomainError(tt.err)))
		})
	}

	require.NoError(t, mapDomainError(nil))
}
