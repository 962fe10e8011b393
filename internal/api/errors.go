package api

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/louisbranch/stagesim/internal/platform/errors"
	"github.com/louisbranch/stagesim/internal/platform/errors/i18n"
)

// ErrorPayload is the body of a failed request.
type ErrorPayload struct {
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type errorResponse struct {
	Error ErrorPayload `json:"error"`
}

// errorPayload renders err in the caller's preferred language. Errors
// without a domain code are reported as internal errors.
func (s *Server) errorPayload(r *http.Request, err error) (int, ErrorPayload) {
	code := apperrors.CodeOf(err)
	if code == apperrors.CodeUnknown {
		s.logger.Printf("internal error: %v", err)
		return http.StatusInternalServerError, ErrorPayload{
			Code:    string(code),
			Message: http.StatusText(http.StatusInternalServerError),
		}
	}

	var metadata map[string]string
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		metadata = appErr.Metadata
	}
	_, message := i18n.Localize(r.Header.Get("Accept-Language"), string(code), metadata)
	return code.HTTPStatus(), ErrorPayload{
		Code:     string(code),
		Message:  message,
		Metadata: metadata,
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, payload := s.errorPayload(r, err)
	writeJSON(w, status, errorResponse{Error: payload})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func invalidRequest(reason string, cause error) error {
	return apperrors.WrapWithMetadata(apperrors.CodeInvalidRequest, "invalid request: "+reason, map[string]string{"Reason": reason}, cause)
}
