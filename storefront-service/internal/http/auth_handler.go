package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/Takamichi23/Nike-microservice/storefront-service/internal/cart"
	"github.com/Takamichi23/Nike-microservice/storefront-service/internal/domain"
	"github.com/Takamichi23/Nike-microservice/storefront-service/internal/repository"
	"github.com/Takamichi23/Nike-microservice/storefront-service/internal/service"
	"github.com/sirupsen/logrus"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UserResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

// POST /register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var body service.Registration
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	user, err := h.accounts.Register(ctx, body)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrInvalidRegistration):
		respondInvalid(w, err)
		return
	case errors.Is(err, repository.ErrDuplicateUsername):
		respondError(w, http.StatusConflict, "already_exists", "Username already taken")
		return
	default:
		h.internalError(w, r, err, "failed to register user")
		return
	}

	req, ok := h.newRequest(w, r)
	if !ok {
		return
	}
	if err := h.signIn(ctx, req, user); err != nil {
		h.internalError(w, r, err, "failed to sign in new user")
		return
	}

	respondJSON(w, http.StatusCreated, UserResponse{
		Message: "Username created",
		User:    user,
	})
}

// POST /login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var body LoginRequest
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	user, err := h.accounts.Authenticate(ctx, body.Username, body.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "There was an error, please try again")
		return
	}
	if err != nil {
		h.internalError(w, r, err, "failed to authenticate")
		return
	}

	req, ok := h.newRequest(w, r)
	if !ok {
		return
	}
	if err := h.signIn(ctx, req, user); err != nil {
		h.internalError(w, r, err, "failed to sign in")
		return
	}

	c, ok := h.newCart(w, req)
	if !ok {
		return
	}
	if err := cart.Restore(ctx, c, h.profiles, user.ID); err != nil {
		h.log.WithError(err).WithField("user_id", user.ID).WithContext(r.Context()).Warn("saved cart not restored")
	}

	respondJSON(w, http.StatusOK, UserResponse{
		Message: "You have been logged in",
		User:    user,
	})
}

// POST /logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	req, ok := h.newRequest(w, r)
	if !ok {
		return
	}
	req.sess.Destroy()
	respondJSON(w, http.StatusOK, MessageResponse{Message: "You have been logged out"})
}

// signIn binds user to the session. Attributes left by another signed-in
// user are dropped; an anonymous cart is kept for the restore merge.
func (h *Handler) signIn(ctx context.Context, req *request, user *domain.User) error {
	if prev, ok := req.Identity(); ok && prev != user.ID {
		req.sess.Clear()
	}
	req.sess.RotateID()
	if err := req.sess.Set(authUserKey, user.ID); err != nil {
		return err
	}
	h.log.WithFields(logrus.Fields{"user_id": user.ID}).WithContext(ctx).Info("user signed in")
	return nil
}
