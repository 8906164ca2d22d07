package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"storefront/internal/catalog"
)

const productURIPrefix = "storefront://product/"

func (s *Server) registerResources() {
	// ── storefront://products ──────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		"storefront://products",
		"Active Products",
		mcp.WithMIMEType("application/json"),
	), s.handleProductsResource)

	// ── storefront://product/{productId} ───────────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			productURIPrefix+"{productId}",
			"One Product",
		),
		s.handleProductResource,
	)

	// ── storefront://cart ──────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		"storefront://cart",
		"Shopping Cart",
		mcp.WithMIMEType("application/json"),
	), s.handleCartResource)

	// ── storefront://design ────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		"storefront://design",
		"Design Document",
		mcp.WithMIMEType("application/json"),
	), s.handleDesignResource)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleProductsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	view, err := s.catalog.Browse(ctx, catalog.Query{Category: catalog.AllCategories}, catalog.SortFeatured)
	if err != nil {
		return nil, err
	}

	type productSummary struct {
		ID       string  `json:"id"`
		Name     string  `json:"name"`
		Price    float64 `json:"price"`
		Category string  `json:"category"`
		Stock    int     `json:"stock"`
	}
	summaries := make([]productSummary, len(view.Products))
	for i, p := range view.Products {
		summaries[i] = productSummary{ID: p.ID, Name: p.Name, Price: p.Price, Category: p.PrimaryCategory(), Stock: p.Stock}
	}
	return jsonContents(req.Params.URI, summaries)
}

func (s *Server) handleProductResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	id := productIDFromURI(req.Params.URI)
	if id == "" {
		return nil, fmt.Errorf("could not extract productId from URI: %s", req.Params.URI)
	}
	p, err := s.catalog.Product(ctx, id)
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, p)
}

// productIDFromURI extracts the id from "storefront://product/{id}".
func productIDFromURI(uri string) string {
	id, ok := strings.CutPrefix(uri, productURIPrefix)
	if !ok || strings.Contains(id, "/") {
		return ""
	}
	return id
}

func (s *Server) handleCartResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonContents(req.Params.URI, s.cart.View(true))
}

func (s *Server) handleDesignResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonContents(req.Params.URI, s.design.View().Document)
}
