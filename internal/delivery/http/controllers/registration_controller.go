package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"groupregistration/internal/delivery/http/helpers"
	"groupregistration/internal/delivery/http/middleware"
	"groupregistration/internal/domain"
)

const maxFormBytes = 1 << 20

const coerceError = "Invalid choice(s): one or more data inputs could not be coerced"

// RegistrationServices hands out the registration workflow for a tenant.
type RegistrationServices interface {
	RegistrationService(ctx context.Context, tenant string) (domain.RegistrationService, error)
}

// RegistrationController serves the self-service registration form.
type RegistrationController struct {
	Logger     *slog.Logger
	Services   RegistrationServices
	Translator domain.Translator
}

// RegistrationView is the rendered state of the registration form.
type RegistrationView struct {
	Username    string              `json:"username"`
	Title       string              `json:"title"`
	Groups      []domain.GroupState `json:"groups"`
	JoinOffer   []domain.Choice     `json:"join_offer"`
	LeaveOffer  []domain.Choice     `json:"leave_offer"`
	Notices     []helpers.Notice    `json:"notices"`
	FieldErrors map[string][]string `json:"field_errors"`
}

// RegistrationSuccessResponse is the envelope for a rendered form (data = RegistrationView).
type RegistrationSuccessResponse struct {
	Data  RegistrationView  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// SubmissionRequest is the JSON body accepted by POST /register.
type SubmissionRequest struct {
	Groups            []json.RawMessage `json:"groups" swaggertype:"array,integer"`
	UnsubscribeGroups []json.RawMessage `json:"unsubscribe_groups" swaggertype:"array,integer"`
}

// Show godoc
// @Summary Show registration form
// @Description Returns the caller's membership state per registrable group with the join and leave offers. Pending flash notices are included once.
// @Tags registration
// @Produce json
// @Param Tenant header string false "Tenant name"
// @Success 200 {object} controllers.RegistrationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /register [get]
func (c *RegistrationController) Show(w http.ResponseWriter, r *http.Request) {
	c.handle(w, r, nil)
}

// Submit godoc
// @Summary Submit registration requests
// @Description Records pending join and leave requests and notifies administrators. Accepts a form with repeated groups/unsubscribe_groups fields or the equivalent JSON body. Redirects to GET /register on success; otherwise re-renders the form with notices and field errors.
// @Tags registration
// @Accept x-www-form-urlencoded
// @Accept json
// @Produce json
// @Param Tenant header string false "Tenant name"
// @Param body body SubmissionRequest false "Group ids to join and leave"
// @Success 200 {object} controllers.RegistrationSuccessResponse "submission rejected or empty"
// @Success 302 "submission recorded"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /register [post]
func (c *RegistrationController) Submit(w http.ResponseWriter, r *http.Request) {
	sub, err := decodeSubmission(w, r)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	c.handle(w, r, sub)
}

func (c *RegistrationController) handle(w http.ResponseWriter, r *http.Request, sub *domain.Submission) {
	ctx := r.Context()
	tenant, _ := middleware.TenantFromContext(ctx)
	svc, err := c.Services.RegistrationService(ctx, tenant)
	if err != nil {
		c.Logger.Error("registration service unavailable", "tenant", tenant, "error", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "service unavailable")
		return
	}

	result, err := svc.Register(ctx, middleware.IdentityFromContext(ctx), sub)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAuthenticationMissing):
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "authentication required")
		case errors.Is(err, domain.ErrUserNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "user not found")
		default:
			c.Logger.Error("registration failed", "tenant", tenant, "error", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "failed to process registration")
		}
		return
	}

	notices := helpers.PopFlash(w, r)
	switch result.Outcome {
	case domain.OutcomeSubmittedValid:
		helpers.SetFlash(w, append(notices, c.notice(helpers.NoticeSuccess, "registration.flash.submitted"))...)
		http.Redirect(w, r, r.URL.Path, http.StatusFound)
		return
	case domain.OutcomeSubmittedEmpty:
		notices = append(notices, c.notice(helpers.NoticeWarning, "registration.flash.no_group_selected"))
	case domain.OutcomeSubmittedInvalid:
		notices = append(notices, c.notice(helpers.NoticeError, "registration.flash.failed"))
	case domain.OutcomeSubmittedDuplicate:
		notices = append(notices, c.notice(helpers.NoticeWarning, "registration.flash.duplicate"))
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, c.view(result, notices))
}

func (c *RegistrationController) notice(category, key string) helpers.Notice {
	return helpers.Notice{Category: category, Message: c.Translator.Translate(key)}
}

func (c *RegistrationController) view(result *domain.RegistrationResult, notices []helpers.Notice) RegistrationView {
	v := RegistrationView{
		Title:       c.Translator.Translate("registration.title"),
		Groups:      []domain.GroupState{},
		JoinOffer:   []domain.Choice{},
		LeaveOffer:  []domain.Choice{},
		Notices:     notices,
		FieldErrors: map[string][]string{},
	}
	if result.User != nil {
		v.Username = result.User.Name
	}
	if result.State != nil {
		v.Groups = result.State.Groups
		v.JoinOffer = result.State.JoinOffer
		v.LeaveOffer = result.State.LeaveOffer
	}
	for field, msgs := range result.FieldErrors {
		v.FieldErrors[field] = msgs
	}
	return v
}

// decodeSubmission reads join and leave ids from a JSON or form body.
// Ids that are not integers become field errors rather than request errors.
func decodeSubmission(w http.ResponseWriter, r *http.Request) (*domain.Submission, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	sub := &domain.Submission{FieldErrors: map[string][]string{}}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req SubmissionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, fmt.Errorf("invalid JSON body: %w", err)
		}
		sub.JoinIDs = parseJSONIDs(req.Groups, domain.FieldGroups, sub.FieldErrors)
		sub.LeaveIDs = parseJSONIDs(req.UnsubscribeGroups, domain.FieldUnsubscribeGroups, sub.FieldErrors)
		return sub, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("invalid form body: %w", err)
	}
	sub.JoinIDs = parseFormIDs(r.PostForm[domain.FieldGroups], domain.FieldGroups, sub.FieldErrors)
	sub.LeaveIDs = parseFormIDs(r.PostForm[domain.FieldUnsubscribeGroups], domain.FieldUnsubscribeGroups, sub.FieldErrors)
	return sub, nil
}

func parseFormIDs(values []string, field string, fieldErrors map[string][]string) []int64 {
	ids := make([]int64, 0, len(values))
	for _, v := range values {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			fieldErrors[field] = []string{coerceError}
			return nil
		}
		ids = append(ids, id)
	}
	return ids
}

// parseJSONIDs accepts numbers and numeric strings.
func parseJSONIDs(values []json.RawMessage, field string, fieldErrors map[string][]string) []int64 {
	raw := make([]string, 0, len(values))
	for _, v := range values {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			raw = append(raw, s)
			continue
		}
		raw = append(raw, string(v))
	}
	return parseFormIDs(raw, field, fieldErrors)
}
