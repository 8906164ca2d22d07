package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("shop_for",
		mcp.WithPromptDescription("Find products for a need within a budget and put them in the cart"),
		mcp.WithArgument("need",
			mcp.ArgumentDescription("What the shopper is looking for"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("budget",
			mcp.ArgumentDescription("Maximum total to spend"),
		),
	), s.handleShopForPrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("design_shirt",
		mcp.WithPromptDescription("Lay out a custom print with a slogan, shapes and strokes, then export it"),
		mcp.WithArgument("slogan",
			mcp.ArgumentDescription("Text to print"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("style",
			mcp.ArgumentDescription("Look and feel, e.g. bold retro, minimal"),
		),
	), s.handleDesignShirtPrompt)
}

func (s *Server) handleShopForPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	need := req.Params.Arguments["need"]
	budget := req.Params.Arguments["budget"]
	if budget == "" {
		budget = "no fixed budget"
	}
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Shop for: %s", need),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Help me shop for "%s" (%s). Follow these steps:

1. Use list_products with a search term, and maxPrice if there is a budget, sorted by price-low
2. Use get_product on the best candidates to check sizes and stock
3. Use add_to_cart with a size the product offers
4. Finish with cart_totals and tell me the total and how much more qualifies for free delivery

Never call clear_cart unless I ask for it.`, need, budget),
				},
			},
		},
	}, nil
}

func (s *Server) handleDesignShirtPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	slogan := req.Params.Arguments["slogan"]
	style := req.Params.Arguments["style"]
	if style == "" {
		style = "clean and bold"
	}
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Design a print for: %s", slogan),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Design a custom print with the slogan "%s" in a %s style. Follow these steps:

1. Read storefront://design to see the canvas size and current text
2. Use design_set_text to set the slogan, font, size and colors; a gradient preset or text shadow can add depth
3. Use design_add_shape for framing circles, squares or lines
4. Use design_draw_stroke for any freehand accents
5. Use design_undo if something looks wrong
6. Export with design_export to a .png path I can find

Keep everything inside the canvas and leave a transparent background.`, slogan, style),
				},
			},
		},
	}, nil
}
