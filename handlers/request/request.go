package request

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/klncollege/od-provider/model"
	"github.com/klncollege/od-provider/services"
	"github.com/klncollege/od-provider/utils/middleware"
	"github.com/klncollege/od-provider/utils/pdfcheck"
	"github.com/klncollege/od-provider/utils/response"
)

// RequestHandler handles duty and leave request endpoints
type RequestHandler struct {
	requestService  *services.RequestService
	approvalService *services.ApprovalService
}

// NewRequestHandler creates a new request handler
func NewRequestHandler(requestService *services.RequestService, approvalService *services.ApprovalService) *RequestHandler {
	return &RequestHandler{
		requestService:  requestService,
		approvalService: approvalService,
	}
}

// form field names for document uploads
var documentFields = map[string]string{
	"invitation":        services.DocKindInvitation,
	"permission_letter": services.DocKindPermissionLetter,
	"travel_proof":      services.DocKindTravelProof,
	"additional":        services.DocKindAdditional,
}

const dateLayout = "2006-01-02"

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(dateLayout, s)
}

// parseSubmitForm reads the multipart form into a SubmitInput plus uploads
func parseSubmitForm(c *fiber.Ctx) (services.SubmitInput, []services.UploadedFile, map[string]string) {
	fieldErrors := make(map[string]string)

	in := services.SubmitInput{
		RequestType:    c.FormValue("request_type"),
		FullName:       c.FormValue("full_name"),
		RegisterNumber: c.FormValue("register_number"),
		Department:     c.FormValue("department"),
		Section:        c.FormValue("section"),
		EventTitle:     c.FormValue("event_title"),
		EventType:      c.FormValue("event_type"),
		Organizer:      c.FormValue("organizer"),
		Location:       c.FormValue("location"),
		Reason:         c.FormValue("reason"),
		Undertaking:    c.FormValue("undertaking"),
	}

	if v := c.FormValue("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			fieldErrors["year"] = "Year must be a number"
		}
		in.Year = year
	}
	if v := c.FormValue("start_date"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			fieldErrors["start_date"] = "Start date must be YYYY-MM-DD"
		}
		in.StartDate = t
	}
	if v := c.FormValue("end_date"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			fieldErrors["end_date"] = "End date must be YYYY-MM-DD"
		}
		in.EndDate = t
	}
	if v := c.FormValue("subjects_missed"); v != "" {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				in.SubjectsMissed = append(in.SubjectsMissed, s)
			}
		}
	}
	in.DeclarationAccepted = c.FormValue("declaration_accepted") == "true"

	var files []services.UploadedFile
	form, err := c.MultipartForm()
	if err != nil {
		return in, nil, fieldErrors
	}
	for field, kind := range documentFields {
		for _, header := range form.File[field] {
			limits := pdfcheck.SupportingDocLimits
			if kind == services.DocKindInvitation {
				limits = pdfcheck.InvitationLimits
			}
			result, err := pdfcheck.ValidateFile(header, limits)
			if err != nil {
				fieldErrors[field] = "Failed to validate document"
				continue
			}
			if !result.Valid {
				fieldErrors[field] = result.Error
				continue
			}
			files = append(files, services.UploadedFile{Kind: kind, Header: header})
		}
	}

	return in, files, fieldErrors
}

// SubmitRequest handles POST /api/v1/requests
func (h *RequestHandler) SubmitRequest(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	if !model.CapabilitiesFor(user.Role).CanSubmitRequest {
		return response.Forbidden(c, "Only students can submit requests")
	}

	in, files, fieldErrors := parseSubmitForm(c)
	if len(fieldErrors) > 0 {
		return response.ValidationError(c, fieldErrors)
	}

	created, err := h.requestService.Submit(c.Context(), user, in, files)
	if err != nil {
		var vErr *services.ValidationFailedError
		if errors.As(err, &vErr) {
			return response.ValidationError(c, vErr.Fields)
		}
		if errors.Is(err, services.ErrNotStudent) {
			return response.Forbidden(c, "Only students can submit requests")
		}
		return response.InternalServerError(c, "Failed to submit request")
	}

	return response.Created(c, created)
}

// ListRequests handles GET /api/v1/requests, scoped by role
func (h *RequestHandler) ListRequests(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	filter := services.ListFilter{
		Status:      c.Query("status"),
		RequestType: c.Query("type"),
		Department:  c.Query("department"),
		Page:        c.QueryInt("page", 1),
		Limit:       c.QueryInt("limit", 20),
	}

	var (
		requests []model.Request
		total    int64
		err      error
	)
	switch user.Role {
	case model.RoleStudent:
		requests, total, err = h.requestService.ListForStudent(c.Context(), user.ID, filter)
	case model.RoleTeacher:
		requests, total, err = h.approvalService.ListPendingFor(c.Context(), user, filter.Page, filter.Limit)
	case model.RoleAdmin:
		requests, total, err = h.requestService.ListAll(c.Context(), filter)
	default:
		return response.Forbidden(c, "Access denied")
	}
	if err != nil {
		return response.InternalServerError(c, "Failed to list requests")
	}

	return response.Paginated(c, requests, response.CalculatePagination(filter.Page, filter.Limit, total))
}

// GetRequest handles GET /api/v1/requests/:id
func (h *RequestHandler) GetRequest(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid request ID")
	}

	req, err := h.requestService.Get(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrRequestNotFound) {
			return response.NotFound(c, "Request not found")
		}
		return response.InternalServerError(c, "Failed to fetch request")
	}

	if !h.canView(user, req) {
		return response.Forbidden(c, "Access denied")
	}

	return response.Success(c, req)
}

// canView reports whether the account can see a request: its owner, any
// admin, a teacher of the request's department, or the principal.
func (h *RequestHandler) canView(user *model.User, req *model.Request) bool {
	switch user.Role {
	case model.RoleAdmin:
		return true
	case model.RoleStudent:
		return req.StudentID == user.ID
	case model.RoleTeacher:
		if !user.IsActive {
			return false
		}
		return user.ApprovalLevel == model.LevelPrincipal || user.Department == req.Student.Department
	}
	return false
}

// DeleteRequest handles DELETE /api/v1/requests/:id
func (h *RequestHandler) DeleteRequest(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid request ID")
	}

	if err := h.requestService.DeleteOwned(c.Context(), user, uint(id)); err != nil {
		switch {
		case errors.Is(err, services.ErrRequestNotFound):
			return response.NotFound(c, "Request not found")
		case errors.Is(err, services.ErrNotRequestOwner):
			return response.Forbidden(c, "You can only delete your own requests")
		case errors.Is(err, services.ErrRequestNotPending):
			return response.Conflict(c, "Only pending requests can be deleted")
		default:
			return response.InternalServerError(c, "Failed to delete request")
		}
	}

	return response.Success(c, fiber.Map{
		"message": "Request deleted",
	})
}
