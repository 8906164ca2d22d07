package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cast"

	"storefront/internal/catalog"
)

// ── Catalog ────────────────────────────────────────────

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := catalog.Query{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		MaxPrice: cast.ToFloat64(q.Get("maxPrice")),
	}
	order := catalog.SortOrder(q.Get("sort"))
	if order == "" {
		order = catalog.SortFeatured
	}
	view, err := s.catalog.Browse(r.Context(), query, order)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, view)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.catalog.Product(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, p)
}

// ── Cart ───────────────────────────────────────────────

type AddItemRequestDTO struct {
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

// includeDelivery reads ?delivery=, defaulting to true.
func includeDelivery(r *http.Request) bool {
	v := r.URL.Query().Get("delivery")
	if v == "" {
		return true
	}
	include, err := strconv.ParseBool(v)
	return err != nil || include
}

func (s *Server) getCart(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.cart.View(includeDelivery(r)))
}

func (s *Server) cartTotals(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.cart.Totals(includeDelivery(r)))
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if !s.decode(w, r, &req) {
		return
	}
	if req.ProductID == "" {
		s.respondError(w, http.StatusBadRequest, "invalid_product_id", "productId is required")
		return
	}
	view, err := s.catalog.AddToCart(r.Context(), req.ProductID, req.Size, req.Quantity)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, view)
}

func (s *Server) updateQuantity(w http.ResponseWriter, r *http.Request) {
	productID, size := chi.URLParam(r, "productID"), chi.URLParam(r, "size")
	if _, ok := s.cart.Store().Find(productID, size); !ok {
		s.respondError(w, http.StatusNotFound, "not-found", "no such cart line")
		return
	}
	var req UpdateQuantityRequestDTO
	if !s.decode(w, r, &req) {
		return
	}
	s.respondJSON(w, http.StatusOK, s.cart.SetQuantity(productID, size, req.Quantity))
}

func (s *Server) removeItem(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.cart.Remove(chi.URLParam(r, "productID"), chi.URLParam(r, "size")))
}

func (s *Server) clearCart(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.cart.Clear())
}

// ── Checkout ───────────────────────────────────────────

type BeginCheckoutRequestDTO struct {
	IncludeDelivery *bool `json:"includeDelivery"`
}

func (s *Server) beginCheckout(w http.ResponseWriter, r *http.Request) {
	var req BeginCheckoutRequestDTO
	if r.ContentLength != 0 && !s.decode(w, r, &req) {
		return
	}
	include := req.IncludeDelivery == nil || *req.IncludeDelivery

	payment, err := s.checkout.Begin(r.Context(), include)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, payment)
}

func (s *Server) pendingCheckout(w http.ResponseWriter, r *http.Request) {
	req, ok := s.checkout.Pending()
	if !ok {
		s.respondError(w, http.StatusNotFound, "not-found", "no checkout in progress")
		return
	}
	s.respondJSON(w, http.StatusOK, req)
}

func (s *Server) resolvePayment(success bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reference := chi.URLParam(r, "reference")
		if err := s.payments.Resolve(r.Context(), reference, success); err != nil {
			s.respondErr(w, err)
			return
		}
		status := "cancelled"
		if success {
			status = "complete"
		}
		s.respondJSON(w, http.StatusOK, map[string]string{"reference": reference, "status": status})
	}
}

// ── Design ─────────────────────────────────────────────

func (s *Server) designView(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.design.View())
}

func (s *Server) designExport(w http.ResponseWriter, r *http.Request) {
	data, exp, err := s.design.RenderPNG()
	if err != nil {
		s.respondErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exp.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) designPreview(w http.ResponseWriter, r *http.Request) {
	data, err := s.design.PreviewPNG()
	if err != nil {
		s.respondErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
