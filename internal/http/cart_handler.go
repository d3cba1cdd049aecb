package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tuanvumaihuynh/ecom/internal/apperr"
	"github.com/tuanvumaihuynh/ecom/internal/http/apierr"
	"github.com/tuanvumaihuynh/ecom/internal/http/metric"
	"github.com/tuanvumaihuynh/ecom/internal/service"
)

func (s *Service) addToCart(w http.ResponseWriter, r *http.Request) error {
	userID, err := userIDFromHeader(r)
	if err != nil {
		return err
	}

	var req AddToCartRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		return err
	}

	line, err := s.cartSvc.AddToCart(r.Context(), service.AddToCartParams{
		UserID:    userID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	s.metrics.ReservationsTotal.WithLabelValues(reservationOutcome(err)).Inc()
	if err != nil {
		return fmt.Errorf("cart service add to cart: %w", err)
	}

	s.writeJSON(w, r, http.StatusCreated, newCartLineResponse(line))
	return nil
}

func (s *Service) listCart(w http.ResponseWriter, r *http.Request) error {
	userID, err := userIDFromHeader(r)
	if err != nil {
		return err
	}

	lines, err := s.cartSvc.ListCart(r.Context(), userID)
	if err != nil {
		return fmt.Errorf("cart service list cart: %w", err)
	}

	items := make([]CartLineResponse, 0, len(lines))
	for _, line := range lines {
		items = append(items, newCartLineResponse(line))
	}

	s.writeJSON(w, r, http.StatusOK, items)
	return nil
}

func reservationOutcome(err error) string {
	switch {
	case err == nil:
		return metric.OutcomeReserved
	case errors.Is(err, apperr.InsufficientStockErr):
		return metric.OutcomeInsufficientStock
	case apierr.New(err).StatusCode < http.StatusInternalServerError:
		return metric.OutcomeRejected
	default:
		return metric.OutcomeError
	}
}
