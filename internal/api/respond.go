package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	trackerrors "github.com/trackline/trackline/internal/errors"
)

// envelope is the uniform response shape for every endpoint.
type envelope struct {
	Success bool                         `json:"success"`
	Message string                       `json:"message,omitempty"`
	Data    any                          `json:"data,omitempty"`
	Errors  []trackerrors.FieldViolation `json:"errors,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

// respondData writes a successful response carrying data.
func (s *Server) respondData(w http.ResponseWriter, status int, data any) {
	s.writeJSON(w, status, envelope{Success: true, Data: data})
}

// respondMessage writes a response with only a message. Status below 400
// counts as success.
func (s *Server) respondMessage(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, envelope{Success: status < 400, Message: message})
}

// respondError maps any error onto the envelope. Internal detail is
// suppressed outside development mode.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	te := trackerrors.AsTrackError(err)
	if te == nil {
		te = trackerrors.Internal("unexpected error", err)
	}

	status := te.HTTPStatus()
	message := te.Message
	if status >= 500 {
		s.logger.Error("request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		if !s.cfg.IsDevelopment() {
			message = "internal server error"
		}
	}

	s.writeJSON(w, status, envelope{
		Success: false,
		Message: message,
		Errors:  te.Fields,
	})
}

// decodeBody decodes a JSON object request body.
func decodeBody(r *http.Request) (map[string]any, error) {
	var body map[string]any
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	if err := dec.Decode(&body); err != nil {
		return nil, trackerrors.ValidationMsg("body", "invalid JSON request body")
	}
	return body, nil
}

// pathID parses an integer path segment.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		return 0, trackerrors.ValidationMsg(name, "must be an integer id")
	}
	return id, nil
}
