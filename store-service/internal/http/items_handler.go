package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Takamichi23/Nike-microservice/store-service/internal/domain"
	"github.com/Takamichi23/Nike-microservice/store-service/internal/repository"
)

// GET /items
// GET /items?ids=1,2,3 returns only the listed products that exist.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var (
		products []*domain.Product
		err      error
	)
	if raw, ok := r.URL.Query()["ids"]; ok {
		ids, parseErr := parseIDs(raw)
		if parseErr != nil {
			respondError(w, http.StatusBadRequest, "invalid_argument", parseErr.Error())
			return
		}
		products, err = h.store.GetProductsByIDs(ctx, ids)
	} else {
		products, err = h.store.GetAllProducts(ctx)
	}
	if err != nil {
		h.internalError(w, r, err, "failed to list products")
		return
	}

	respondJSON(w, http.StatusOK, products)
}

// GET /items/{item_id}
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := pathID(r, "item_id")
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "Item not found")
		return
	}

	product, err := h.store.GetProduct(ctx, id)
	if errors.Is(err, repository.ErrProductNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "Item not found")
		return
	}
	if err != nil {
		h.internalError(w, r, err, "failed to get product")
		return
	}

	respondJSON(w, http.StatusOK, product)
}

// parseIDs accepts both ids=1,2 and ids=1&ids=2.
func parseIDs(values []string) ([]int64, error) {
	ids := make([]int64, 0)
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, errors.New("ids must be a comma separated list of integers")
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}
