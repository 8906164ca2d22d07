package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"storefront/internal/catalog"
)

func (s *Server) registerCatalogTools() {
	// ── list_products ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_products",
		mcp.WithDescription("List active products, optionally filtered and sorted"),
		mcp.WithString("category", mcp.Description("Category id, or 'all' (default)")),
		mcp.WithString("search", mcp.Description("Case-insensitive text matched against name, description, sku and categories")),
		mcp.WithNumber("maxPrice", mcp.Description("Price ceiling (0 for none)")),
		mcp.WithString("sort",
			mcp.Description("featured, price-low, price-high, name-asc or name-desc"),
			mcp.Enum(string(catalog.SortFeatured), string(catalog.SortPriceLow), string(catalog.SortPriceHigh),
				string(catalog.SortNameAsc), string(catalog.SortNameDesc)),
		),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{ReadOnlyHint: boolPtr(true)}),
	), s.handleListProducts)

	// ── get_product ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_product",
		mcp.WithDescription("Get one product with its sizes, stock and images"),
		mcp.WithString("productId", mcp.Description("Product ID"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{ReadOnlyHint: boolPtr(true)}),
	), s.handleGetProduct)
}

func (s *Server) handleListProducts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q := catalog.Query{
		Category: req.GetString("category", catalog.AllCategories),
		Search:   req.GetString("search", ""),
		MaxPrice: req.GetFloat("maxPrice", 0),
	}
	view, err := s.catalog.Browse(ctx, q, catalog.SortOrder(req.GetString("sort", string(catalog.SortFeatured))))
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(view)
}

func (s *Server) handleGetProduct(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("productId", "")
	if id == "" {
		return nil, fmt.Errorf("productId is required")
	}
	p, err := s.catalog.Product(ctx, id)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(p)
}
