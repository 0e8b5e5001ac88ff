// Package server implements the gRPC OrgChart service
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/nainya/orgchart/internal/logger"
	"github.com/nainya/orgchart/pkg/hierarchy"
	"github.com/nainya/orgchart/pkg/orgchart"
	"github.com/nainya/orgchart/pkg/priority"
)

// Server implements OrgChartServer over an orgchart.Service
type Server struct {
	svc *orgchart.Service
	log *logger.Logger
}

// NewServer creates a gRPC server instance backed by svc
func NewServer(svc *orgchart.Service, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{svc: svc, log: log}
}

// ========== Read Operations ==========

// GetHierarchy returns the whole tree, or the subtree under "name" when given
func (s *Server) GetHierarchy(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	name, _, err := stringField(fields(req), "name")
	if err != nil {
		return nil, toStatus(err)
	}

	var tree any = map[string]any{}
	if name = strings.TrimSpace(name); name != "" {
		snap, err := s.svc.Subtree(name)
		if err != nil {
			return nil, toStatus(err)
		}
		tree = snap
	} else if snap := s.svc.Hierarchy(); snap != nil {
		tree = snap
	}
	return toStruct(map[string]any{"hierarchy": tree})
}

func (s *Server) GetHeap(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return toStruct(map[string]any{"heap": s.svc.Heap()})
}

func (s *Server) GetMeta(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return toStruct(map[string]any{"departments": s.svc.Meta()})
}

func (s *Server) GetStats(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return toStruct(s.svc.Stats())
}

func (s *Server) SearchDepartments(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := fields(req)
	query, _, err := stringField(f, "query")
	if err != nil {
		return nil, toStatus(err)
	}
	limit := 0
	if v, ok := present(f, "limit"); ok {
		if limit, err = hierarchy.CoerceInt("limit", v.AsInterface()); err != nil {
			return nil, toStatus(err)
		}
	}
	return toStruct(map[string]any{"departments": s.svc.Search(query, limit)})
}

func (s *Server) GetDepartment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	name, err := requiredName(fields(req))
	if err != nil {
		return nil, err
	}
	detail, err := s.svc.Department(name)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(detail)
}

// ========== Mutations ==========

func (s *Server) AddDepartment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	add, err := parseAddRequest(fields(req))
	if err != nil {
		return nil, toStatus(err)
	}
	if err := s.svc.AddDepartment(ctx, add); err != nil {
		return nil, toStatus(err)
	}
	return toStruct(map[string]any{
		"message": fmt.Sprintf("Department %s added", add.Department.Name),
	})
}

func (s *Server) EditDepartment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	edit, err := parseEditRequest(fields(req))
	if err != nil {
		return nil, toStatus(err)
	}
	if err := s.svc.EditDepartment(ctx, edit); err != nil {
		return nil, toStatus(err)
	}
	return toStruct(map[string]any{
		"message": fmt.Sprintf("Department %s updated", edit.Name),
	})
}

func (s *Server) DeleteDepartment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	name, err := requiredName(fields(req))
	if err != nil {
		return nil, err
	}
	removed, err := s.svc.DeleteDepartment(ctx, name)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(map[string]any{
		"message": fmt.Sprintf("Department %s deleted", name),
		"removed": removed,
	})
}

// ========== Request Parsing ==========

var errNameRequired = fmt.Errorf("%w: name is required", hierarchy.ErrValidation)

func fields(req *structpb.Struct) map[string]*structpb.Value {
	if req == nil {
		return nil
	}
	return req.GetFields()
}

// present returns the field when it is set and not null
func present(f map[string]*structpb.Value, key string) (*structpb.Value, bool) {
	v, ok := f[key]
	if !ok || v == nil {
		return nil, false
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return nil, false
	}
	return v, true
}

func stringField(f map[string]*structpb.Value, key string) (string, bool, error) {
	v, ok := present(f, key)
	if !ok {
		return "", false, nil
	}
	if k, isString := v.GetKind().(*structpb.Value_StringValue); isString {
		return k.StringValue, true, nil
	}
	return "", false, fmt.Errorf("%w: %s must be a string", hierarchy.ErrValidation, key)
}

func requiredName(f map[string]*structpb.Value) (string, error) {
	name, _, err := stringField(f, "name")
	if err != nil {
		return "", toStatus(err)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", toStatus(errNameRequired)
	}
	return name, nil
}

func intField(f map[string]*structpb.Value, key string) (*int, error) {
	v, ok := present(f, key)
	if !ok {
		return nil, nil
	}
	n, err := hierarchy.CoerceInt(key, v.AsInterface())
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func floatField(f map[string]*structpb.Value, key string) (*float64, error) {
	v, ok := present(f, key)
	if !ok {
		return nil, nil
	}
	x, err := hierarchy.CoerceFloat(key, v.AsInterface())
	if err != nil {
		return nil, err
	}
	return &x, nil
}

func parseAddRequest(f map[string]*structpb.Value) (orgchart.AddRequest, error) {
	var req orgchart.AddRequest

	name, _, err := stringField(f, "name")
	if err != nil {
		return req, err
	}
	if name = strings.TrimSpace(name); name == "" {
		return req, errNameRequired
	}
	req.Department.Name = name

	if req.Parent, _, err = stringField(f, "parent"); err != nil {
		return req, err
	}
	req.Parent = strings.TrimSpace(req.Parent)
	if req.Department.Head, _, err = stringField(f, "head"); err != nil {
		return req, err
	}

	employees, err := intField(f, "employees")
	if err != nil {
		return req, err
	}
	if employees != nil {
		req.Department.Employees = *employees
	}
	budget, err := floatField(f, "budget")
	if err != nil {
		return req, err
	}
	if budget != nil {
		req.Department.Budget = *budget
	}
	perf, err := floatField(f, "perf")
	if err != nil {
		return req, err
	}
	if perf != nil {
		req.Department.Perf = *perf
	}

	if req.Priority, err = intField(f, "priority"); err != nil {
		return req, err
	}
	return req, nil
}

func parseEditRequest(f map[string]*structpb.Value) (orgchart.EditRequest, error) {
	var req orgchart.EditRequest

	name, _, err := stringField(f, "name")
	if err != nil {
		return req, err
	}
	if name = strings.TrimSpace(name); name == "" {
		return req, errNameRequired
	}
	req.Name = name

	if newName, ok, err := stringField(f, "new_name"); err != nil {
		return req, err
	} else if ok && newName != "" {
		if newName = strings.TrimSpace(newName); newName == "" {
			return req, fmt.Errorf("%w: new_name must not be blank", hierarchy.ErrValidation)
		}
		req.Patch.NewName = &newName
	}
	if head, ok, err := stringField(f, "head"); err != nil {
		return req, err
	} else if ok {
		req.Patch.Head = &head
	}
	if parent, ok, err := stringField(f, "parent"); err != nil {
		return req, err
	} else if ok {
		parent = strings.TrimSpace(parent)
		req.Patch.Parent = &parent
	}

	if req.Patch.Employees, err = intField(f, "employees"); err != nil {
		return req, err
	}
	if req.Patch.Budget, err = floatField(f, "budget"); err != nil {
		return req, err
	}
	if req.Patch.Perf, err = floatField(f, "perf"); err != nil {
		return req, err
	}
	if req.Priority, err = intField(f, "priority"); err != nil {
		return req, err
	}
	return req, nil
}

// ========== Encoding & Errors ==========

// toStruct converts any JSON-encodable value into a Struct
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return out, nil
}

// toStatus maps domain errors onto gRPC status codes
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	code := codes.Internal
	switch {
	case errors.Is(err, hierarchy.ErrAlreadyExists),
		errors.Is(err, hierarchy.ErrNameConflict),
		errors.Is(err, priority.ErrDuplicateEntry):
		code = codes.AlreadyExists
	case errors.Is(err, hierarchy.ErrNotFound):
		code = codes.NotFound
	case errors.Is(err, hierarchy.ErrValidation):
		code = codes.InvalidArgument
	case errors.Is(err, hierarchy.ErrCycle),
		errors.Is(err, hierarchy.ErrRootExists),
		errors.Is(err, hierarchy.ErrParentNotFound):
		code = codes.FailedPrecondition
	case errors.Is(err, orgchart.ErrNotReady):
		code = codes.Unavailable
	}
	return status.Error(code, err.Error())
}
