package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"Portfolio/logger"
	"Portfolio/models"
)

const maxContactBody = 1 << 20

type contactRequest struct {
	Name    fieldValue `json:"name"`
	Email   fieldValue `json:"email"`
	Message fieldValue `json:"message"`
}

// fieldValue is a submitted form field. JSON numbers and booleans are kept
// as their text; null, false and zero count as not submitted.
type fieldValue string

func (v *fieldValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return fmt.Errorf("empty value")
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = fieldValue(s)
	case '{', '[':
		return fmt.Errorf("unsupported value %s", b)
	case 'n', 'f':
		*v = ""
	case 't':
		*v = "true"
	default:
		if f, err := strconv.ParseFloat(string(b), 64); err == nil && f == 0 {
			*v = ""
			return nil
		}
		*v = fieldValue(b)
	}
	return nil
}

type contactResponse struct {
	Success bool  `json:"success"`
	ID      int64 `json:"id"`
}

// SubmitContact accepts a JSON or form-encoded contact submission.
func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	req, err := decodeContact(w, r)
	if err != nil {
		logger.Debugf("SubmitContact: bad body: %v", err)
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" {
		respondError(w, http.StatusBadRequest, "Name and email required")
		return
	}

	c := &models.Contact{Name: string(req.Name), Email: string(req.Email)}
	if req.Message != "" {
		msg := string(req.Message)
		c.Message = &msg
	}
	id, err := h.store.CreateContact(r.Context(), c)
	if err != nil {
		logger.Errorf("SubmitContact: insert contact error: %v", err)
		respondError(w, http.StatusInternalServerError, "DB error")
		return
	}
	logger.Infof("contact %d stored", id)
	respondJSON(w, http.StatusOK, contactResponse{Success: true, ID: id})
}

func decodeContact(w http.ResponseWriter, r *http.Request) (contactRequest, error) {
	var req contactRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxContactBody)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		err := json.NewDecoder(r.Body).Decode(&req)
		return req, err
	}
	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.Name = fieldValue(r.PostForm.Get("name"))
	req.Email = fieldValue(r.PostForm.Get("email"))
	req.Message = fieldValue(r.PostForm.Get("message"))
	return req, nil
}
