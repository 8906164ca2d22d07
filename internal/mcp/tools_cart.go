package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"storefront/internal/currency"
)

func (s *Server) registerCartTools() {
	// ── add_to_cart ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_to_cart",
		mcp.WithDescription("Add a product in a size to the cart. Adding the same product and size again increases its quantity."),
		mcp.WithString("productId", mcp.Description("Product ID"), mcp.Required()),
		mcp.WithString("size", mcp.Description("Size, one of the product's sizes"), mcp.Required()),
		mcp.WithNumber("quantity", mcp.Description("Quantity (default 1)")),
	), s.handleAddToCart)

	// ── update_cart_quantity ───────────────────────────
	s.mcp.AddTool(mcp.NewTool("update_cart_quantity",
		mcp.WithDescription("Set the quantity of a cart line. A quantity below 1 removes the line."),
		mcp.WithString("productId", mcp.Description("Product ID"), mcp.Required()),
		mcp.WithString("size", mcp.Description("Size of the line"), mcp.Required()),
		mcp.WithNumber("quantity", mcp.Description("New quantity"), mcp.Required()),
	), s.handleUpdateCartQuantity)

	// ── remove_from_cart ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("remove_from_cart",
		mcp.WithDescription("Remove a line from the cart"),
		mcp.WithString("productId", mcp.Description("Product ID"), mcp.Required()),
		mcp.WithString("size", mcp.Description("Size of the line"), mcp.Required()),
	), s.handleRemoveFromCart)

	// ── view_cart ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("view_cart",
		mcp.WithDescription("Show the cart lines with totals"),
		mcp.WithBoolean("includeDelivery", mcp.Description("Price delivery in (default true)")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{ReadOnlyHint: boolPtr(true)}),
	), s.handleViewCart)

	// ── cart_totals ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("cart_totals",
		mcp.WithDescription("Show subtotal, delivery fee and total as formatted amounts"),
		mcp.WithBoolean("includeDelivery", mcp.Description("Price delivery in (default true)")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{ReadOnlyHint: boolPtr(true)}),
	), s.handleCartTotals)

	// ── clear_cart ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("clear_cart",
		mcp.WithDescription("🛑 DESTRUCTIVE: Remove every line from the cart. Requires user approval."),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleClearCart)
}

func lineArgs(req mcp.CallToolRequest) (string, string, error) {
	productID := req.GetString("productId", "")
	size := req.GetString("size", "")
	if productID == "" || size == "" {
		return "", "", fmt.Errorf("productId and size are required")
	}
	return productID, size, nil
}

func (s *Server) handleAddToCart(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	productID := req.GetString("productId", "")
	if productID == "" {
		return nil, fmt.Errorf("productId is required")
	}
	view, err := s.catalog.AddToCart(ctx, productID, req.GetString("size", ""), req.GetInt("quantity", 1))
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(view)
}

func (s *Server) handleUpdateCartQuantity(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	productID, size, err := lineArgs(req)
	if err != nil {
		return nil, err
	}
	if _, ok := s.cart.Store().Find(productID, size); !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no cart line for %s in size %s", productID, size)), nil
	}
	return jsonResult(s.cart.SetQuantity(productID, size, req.GetInt("quantity", 0)))
}

func (s *Server) handleRemoveFromCart(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	productID, size, err := lineArgs(req)
	if err != nil {
		return nil, err
	}
	return jsonResult(s.cart.Remove(productID, size))
}

func (s *Server) handleViewCart(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.cart.View(req.GetBool("includeDelivery", true)))
}

func (s *Server) handleCartTotals(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t := s.cart.Totals(req.GetBool("includeDelivery", true))
	return jsonResult(map[string]any{
		"subtotal":             currency.FormatDecimal(t.Subtotal),
		"deliveryFee":          currency.FormatDecimal(t.DeliveryFee),
		"total":                currency.FormatDecimal(t.Total),
		"freeShippingApplied":  t.FreeShippingApplied,
		"amountToFreeShipping": currency.FormatDecimal(t.AmountToFreeShipping),
		"items":                t.ItemCount,
	})
}

func (s *Server) handleClearCart(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lines := s.cart.Store().Lines()
	if lines == 0 {
		return textResult("Cart is already empty"), nil
	}
	approved, err := s.approval.Request(ctx, "clear_cart",
		fmt.Sprintf("Remove all %d lines from the cart", lines), fmt.Sprintf(`{"lines":%d}`, lines))
	if err != nil || !approved {
		return textResult("Action rejected by user"), nil
	}
	s.cart.Clear()
	return textResult(fmt.Sprintf("Removed %d lines", lines)), nil
}
