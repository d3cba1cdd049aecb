package http

import (
	"fmt"
	"net/http"

	"github.com/tuanvumaihuynh/ecom/internal/apperr"
	"github.com/tuanvumaihuynh/ecom/pkg/ptr"
)

func (s *Service) listProducts(w http.ResponseWriter, r *http.Request) error {
	products, err := s.productSvc.ListActiveProducts(r.Context())
	if err != nil {
		return fmt.Errorf("product service list active products: %w", err)
	}

	s.writeJSON(w, r, http.StatusOK, newProductResponses(products))
	return nil
}

func (s *Service) searchProducts(w http.ResponseWriter, r *http.Request) error {
	var keyword *string
	if err := bindQueryParam(r, "keyword", &keyword); err != nil {
		return err
	}

	products, err := s.productSvc.SearchProducts(r.Context(), ptr.Deref(keyword))
	if err != nil {
		return fmt.Errorf("product service search products: %w", err)
	}

	s.writeJSON(w, r, http.StatusOK, newProductResponses(products))
	return nil
}

func (s *Service) getProduct(w http.ResponseWriter, r *http.Request) error {
	var id int64
	if err := bindPathParam(r, "id", &id); err != nil {
		return err
	}

	product, err := s.productSvc.GetProduct(r.Context(), id)
	if err != nil {
		return fmt.Errorf("product service get product: %w", err)
	}

	s.writeJSON(w, r, http.StatusOK, newProductResponse(product))
	return nil
}

func (s *Service) createProduct(w http.ResponseWriter, r *http.Request) error {
	var req ProductRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		return err
	}

	product, err := s.productSvc.CreateProduct(r.Context(), req.toParams())
	if err != nil {
		return fmt.Errorf("product service create product: %w", err)
	}

	w.Header().Set("Location", fmt.Sprintf("/api/products/%d", product.ID))
	s.writeJSON(w, r, http.StatusCreated, newProductResponse(product))
	return nil
}

func (s *Service) updateProduct(w http.ResponseWriter, r *http.Request) error {
	var id int64
	if err := bindPathParam(r, "id", &id); err != nil {
		return err
	}

	var req ProductRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		return err
	}

	product, err := s.productSvc.UpdateProduct(r.Context(), id, req.toParams())
	if err != nil {
		return fmt.Errorf("product service update product: %w", err)
	}

	s.writeJSON(w, r, http.StatusOK, newProductResponse(product))
	return nil
}

func (s *Service) deleteProduct(w http.ResponseWriter, r *http.Request) error {
	var id int64
	if err := bindPathParam(r, "id", &id); err != nil {
		return err
	}

	deleted, err := s.productSvc.DeleteProduct(r.Context(), id)
	if err != nil {
		return fmt.Errorf("product service delete product: %w", err)
	}
	if !deleted {
		return apperr.ProductNotFoundErr
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}
