// Cinescope - Movie Catalog and Recommendation Service
// Copyright 2026 Cinescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinescope/cinescope

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/cinescope/cinescope/internal/auth"
	"github.com/cinescope/cinescope/internal/database"
	"github.com/cinescope/cinescope/internal/models"
	"github.com/cinescope/cinescope/internal/validation"
)

// authResponse is the payload of successful register and login calls.
type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register creates a new user account and returns a signed token.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, codeValidation, "Invalid request body", err)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, codeInternal, "Failed to create account", err)
		return
	}

	user, err := h.db.CreateUser(r.Context(), req.Username, req.Email, hash)
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			respondError(w, r, http.StatusConflict, codeDuplicate, "Username already taken", nil)
			return
		}
		respondError(w, r, http.StatusInternalServerError, codeInternal, "Failed to create account", err)
		return
	}

	token, err := h.jwt.GenerateToken(user.ID, user.Username)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, codeInternal, "Failed to issue token", err)
		return
	}

	respondData(w, r, http.StatusCreated, start, false, authResponse{Token: token, User: user})
}

// Login verifies credentials and returns a signed token. Unknown users and
// wrong passwords produce the same response so usernames cannot be probed.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, codeValidation, "Invalid request body", err)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	user, err := h.db.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, r, http.StatusUnauthorized, codeAuthInvalid, "Invalid username or password", nil)
			return
		}
		respondError(w, r, http.StatusInternalServerError, codeInternal, "Login failed", err)
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		respondError(w, r, http.StatusUnauthorized, codeAuthInvalid, "Invalid username or password", nil)
		return
	}

	token, err := h.jwt.GenerateToken(user.ID, user.Username)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, codeInternal, "Failed to issue token", err)
		return
	}

	respondData(w, r, http.StatusOK, start, false, authResponse{Token: token, User: user})
}
