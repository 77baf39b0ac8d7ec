// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GradeMe Contributors

package web

import (
	"net/http"

	"github.com/dumindu-Test/GradeMe/internal/auth"
	"github.com/dumindu-Test/GradeMe/internal/observability"
	"github.com/dumindu-Test/GradeMe/pkg/errutil"
)

// Public messages. Clients may match on these strings.
const (
	msgInvalidBody      = "Invalid request body"
	msgInternal         = "Internal server error"
	msgSignedOut        = "Signed out successfully"
	msgNotFound         = "Not found"
	msgMethodNotAllowed = "Method not allowed"
)

type publicError struct {
	status  int
	message string
}

// publicErrors maps service error codes to the status and message sent to
// clients. Codes not listed here are internal failures.
var publicErrors = map[string]publicError{
	auth.CodeMissingFields:      {http.StatusBadRequest, "Email, password, and user type are required"},
	auth.CodePasswordTooShort:   {http.StatusBadRequest, "Password must be at least 6 characters long"},
	auth.CodePasswordTooLong:    {http.StatusBadRequest, "Password must be at most 72 bytes long"},
	auth.CodeInvalidRole:        {http.StatusBadRequest, "User type must be either admin or student"},
	auth.CodeInvalidEmail:       {http.StatusBadRequest, "Email must contain only ASCII characters"},
	auth.CodeMissingCredentials: {http.StatusBadRequest, "Email and password are required"},
	auth.CodeEmailTaken:         {http.StatusConflict, "User with this email already exists"},
	auth.CodeInvalidCredentials: {http.StatusUnauthorized, "Invalid email or password"},
}

// writeServiceError reports a service failure. Known codes get their stable
// message; anything else is logged in full and reduced to a generic 500.
func (h *AuthHandler) writeServiceError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	if pe, ok := publicErrors[errutil.Code(err)]; ok {
		h.metrics.RecordAuth(operation, observability.OutcomeRejected)
		writeJSON(w, pe.status, errorResponse{Error: pe.message})
		return
	}

	h.metrics.RecordAuth(operation, observability.OutcomeError)
	errutil.LogErrorContext(r.Context(), h.logger, operation+" failed", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msgInternal})
}
