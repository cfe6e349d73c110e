package mcp

import (
	"context"
	_ "embed"
	"encoding/json"
	"strings"

	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"
	protoserver "github.com/viant/mcp-protocol/server"
)

//go:embed tools/listApis.md
var descListApis string

//go:embed tools/searchApis.md
var descSearchApis string

//go:embed tools/getPaginatedApis.md
var descGetPaginatedApis string

//go:embed tools/getApi.md
var descGetApi string

//go:embed tools/getMetrics.md
var descGetMetrics string

//go:embed tools/getProviderStats.md
var descGetProviderStats string

//go:embed tools/listProviders.md
var descListProviders string

//go:embed tools/importSpec.md
var descImportSpec string

//go:embed tools/validateSpec.md
var descValidateSpec string

//go:embed tools/listCustomSpecs.md
var descListCustomSpecs string

//go:embed tools/removeCustomSpec.md
var descRemoveCustomSpec string

func registerTools(base *protoserver.DefaultHandler, h *Handler) error {
	svc := h.service

	if err := protoserver.RegisterTool[*ListApisInput, *ListApisOutput](base.Registry, "listApis", descListApis, func(ctx context.Context, in *ListApisInput) (*schema.CallToolResult, *jsonrpc.Error) {
		out, err := svc.ListApis(ctx, in)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		return buildSuccessResult(svc, out)
	}); err != nil {
		return err
	}

	if err := protoserver.RegisterTool[*SearchApisInput, *SearchApisOutput](base.Registry, "searchApis", descSearchApis, func(ctx context.Context, in *SearchApisInput) (*schema.CallToolResult, *jsonrpc.Error) {
		if strings.TrimSpace(in.Query) == "" && in.Provider == "" {
			return buildErrorResult("query or provider is required")
		}
		out, err := svc.SearchApis(ctx, in)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		return buildSuccessResult(svc, out)
	}); err != nil {
		return err
	}

	if err := protoserver.RegisterTool[*GetPaginatedApisInput, *GetPaginatedApisOutput](base.Registry, "getPaginatedApis", descGetPaginatedApis, func(ctx context.Context, in *GetPaginatedApisInput) (*schema.CallToolResult, *jsonrpc.Error) {
		out, err := svc.GetPaginatedApis(ctx, in)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		return buildSuccessResult(svc, out)
	}); err != nil {
		return err
	}

	if err := protoserver.RegisterTool[*GetApiInput, *GetApiOutput](base.Registry, "getApi", descGetApi, func(ctx context.Context, in *GetApiInput) (*schema.CallToolResult, *jsonrpc.Error) {
		if in.Provider == "" {
			return buildErrorResult("provider is required")
		}
		out, err := svc.GetApi(ctx, in)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		return buildSuccessResult(svc, out)
	}); err != nil {
		return err
	}

	if err := protoserver.RegisterTool[*GetMetricsInput, *GetMetricsOutput](base.Registry, "getMetrics", descGetMetrics, func(ctx context.Context, in *GetMetricsInput) (*schema.CallToolResult, *jsonrpc.Error) {
		out, err := svc.GetMetrics(ctx, in)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		return buildSuccessResult(svc, out)
	}); err != nil {
		return err
	}

	if err := protoserver.RegisterTool[*GetProviderStatsInput, *GetProviderStatsOutput](base.Registry, "getProviderStats", descGetProviderStats, func(ctx context.Context, in *GetProviderStatsInput) (*schema.CallToolResult, *jsonrpc.Error) {
		if in.Provider == "" {
			return buildErrorResult("provider is required")
		}
		out, err := svc.GetProviderStats(ctx, in)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		return buildSuccessResult(svc, out)
	}); err != nil {
		return err
	}

	if err := protoserver.RegisterTool[*ListProvidersInput, *ListProvidersOutput](base.Registry, "listProviders", descListProviders, func(ctx context.Context, in *ListProvidersInput) (*schema.CallToolResult, *jsonrpc.Error) {
		out, err := svc.ListProviders(ctx, in)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		return buildSuccessResult(svc, out)
	}); err != nil {
		return err
	}

	if err := protoserver.RegisterTool[*ImportSpecInput, *ImportSpecOutput](base.Registry, "importSpec", descImportSpec, func(ctx context.Context, in *ImportSpecInput) (*schema.CallToolResult, *jsonrpc.Error) {
		if strings.TrimSpace(in.Source) == "" {
			return buildErrorResult("source is required")
		}
		out, err := svc.ImportSpec(ctx, in)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		return buildSuccessResult(svc, out)
	}); err != nil {
		return err
	}

	if err := protoserver.RegisterTool[*ValidateSpecInput, *ValidateSpecOutput](base.Registry, "validateSpec", descValidateSpec, func(ctx context.Context, in *ValidateSpecInput) (*schema.CallToolResult, *jsonrpc.Error) {
		if strings.TrimSpace(in.Source) == "" {
			return buildErrorResult("source is required")
		}
		out, err := svc.ValidateSpec(ctx, in)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		return buildSuccessResult(svc, out)
	}); err != nil {
		return err
	}

	if err := protoserver.RegisterTool[*ListCustomSpecsInput, *ListCustomSpecsOutput](base.Registry, "listCustomSpecs", descListCustomSpecs, func(ctx context.Context, in *ListCustomSpecsInput) (*schema.CallToolResult, *jsonrpc.Error) {
		out, err := svc.ListCustomSpecs(ctx, in)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		return buildSuccessResult(svc, out)
	}); err != nil {
		return err
	}

	if err := protoserver.RegisterTool[*RemoveCustomSpecInput, *RemoveCustomSpecOutput](base.Registry, "removeCustomSpec", descRemoveCustomSpec, func(ctx context.Context, in *RemoveCustomSpecInput) (*schema.CallToolResult, *jsonrpc.Error) {
		if strings.TrimSpace(in.ID) == "" {
			return buildErrorResult("id is required")
		}
		out, err := svc.RemoveCustomSpec(ctx, in)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		return buildSuccessResult(svc, out)
	}); err != nil {
		return err
	}

	return nil
}

func buildErrorResult(message string) (*schema.CallToolResult, *jsonrpc.Error) {
	return nil, jsonrpc.NewError(jsonrpc.InvalidParams, message, nil)
}

func buildSuccessResult(service *Service, payload any) (*schema.CallToolResult, *jsonrpc.Error) {
	if service.UseTextField() {
		b, _ := json.Marshal(payload)
		return &schema.CallToolResult{Content: []schema.CallToolResultContentElem{{Type: "text", Text: string(b)}}}, nil
	}
	return &schema.CallToolResult{StructuredContent: map[string]any{"result": payload}}, nil
}
