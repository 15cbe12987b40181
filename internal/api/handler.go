package api

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"reflect"
	"strings"

	"github.com/gorilla/schema"

	"github.com/wavythought/relay/internal/entity"
	"github.com/wavythought/relay/internal/service"
)

const maxBodyBytes = 64 << 10

type Service interface {
	HandleSubmission(ctx context.Context, sub entity.Submission) entity.RelayResult
}

type Handler struct {
	s       Service
	decoder *schema.Decoder
}

func NewHandler(s Service) *Handler {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	decoder.RegisterConverter(false, convertCheckbox)

	return &Handler{
		s:       s,
		decoder: decoder,
	}
}

// @Summary Health check
// @Description Unconditional liveness signal.
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	SendJSON(r.Context(), w, http.StatusOK, HealthResponse{Status: "ok"})
}

type ContactRequest struct {
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Message   string   `json:"message"`
	Subscribe Checkbox `json:"subscribe,omitempty" swaggertype:"boolean"`
}

// Checkbox is an opt-in flag that also accepts the string and number forms HTML forms
// and scripts send, e.g. "on", "yes", 1.
type Checkbox bool

func (c *Checkbox) UnmarshalJSON(data []byte) error {
	var v any

	err := json.Unmarshal(data, &v)
	if err != nil {
		return err
	}

	switch v := v.(type) {
	case nil:
		*c = false
	case bool:
		*c = Checkbox(v)
	case float64:
		*c = v != 0
	case string:
		checked, ok := parseCheckbox(v)
		if !ok {
			return fmt.Errorf("invalid checkbox value %q", v)
		}

		*c = Checkbox(checked)
	default:
		return fmt.Errorf("invalid checkbox value %s", data)
	}

	return nil
}

type contactForm struct {
	Name      string `schema:"name"`
	Email     string `schema:"email"`
	Message   string `schema:"message"`
	Subscribe bool   `schema:"subscribe"`
}

// @Summary Send a contact form submission
// @Description Validates the submission and relays it to the studio inbox by email.
// @Tags contact
// @Accept json
// @Accept x-www-form-urlencoded
// @Produce json
// @Param request body ContactRequest true "contact form submission"
// @Success 200 {object} ResponseMessage "Submission relayed"
// @Failure 400 {object} ResponseMessage "Missing required field"
// @Failure 500 {object} ResponseMessage "Email could not be sent"
// @Failure 503 {object} ResponseMessage "Email transport not configured"
// @Router /api/contact [post]
func (h *Handler) Contact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	sub, err := h.decodeSubmission(r)
	if err != nil {
		SendErr(ctx, w, http.StatusBadRequest, err, service.MsgIncomplete)
		return
	}

	res := h.s.HandleSubmission(ctx, sub)

	SendJSON(ctx, w, res.Status, ResponseMessage{Message: res.Message})
}

func (h *Handler) decodeSubmission(r *http.Request) (entity.Submission, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "application/x-www-form-urlencoded" {
		err := r.ParseForm()
		if err != nil {
			return entity.Submission{}, fmt.Errorf("parse form: %w", err)
		}

		var form contactForm

		err = h.decoder.Decode(&form, r.PostForm)
		if err != nil {
			return entity.Submission{}, fmt.Errorf("decode form: %w", err)
		}

		return entity.Submission{
			Name:      form.Name,
			Email:     form.Email,
			Message:   form.Message,
			Subscribe: form.Subscribe,
		}, nil
	}

	var req ContactRequest

	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		return entity.Submission{}, fmt.Errorf("decode body: %w", err)
	}

	return entity.Submission{
		Name:      req.Name,
		Email:     req.Email,
		Message:   req.Message,
		Subscribe: bool(req.Subscribe),
	}, nil
}

// convertCheckbox accepts the values browsers and scripts send for a checkbox.
func convertCheckbox(value string) reflect.Value {
	checked, ok := parseCheckbox(value)
	if !ok {
		return reflect.Value{}
	}

	return reflect.ValueOf(checked)
}

func parseCheckbox(value string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "on", "true", "1", "yes":
		return true, true
	case "off", "false", "0", "no", "":
		return false, true
	default:
		return false, false
	}
}

func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	SendJSON(r.Context(), w, http.StatusNotFound, ResponseMessage{Message: msgNotFound})
}

func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	SendJSON(r.Context(), w, http.StatusMethodNotAllowed, ResponseMessage{Message: msgMethodNotAllowed})
}
