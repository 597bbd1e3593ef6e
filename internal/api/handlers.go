package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"lockwise/internal/database"
	"lockwise/internal/models"
)

const dateLayout = "2006-01-02"

// handleAvailability serves GET /api/v1/availability/{service}?date=YYYY-MM-DD.
// {service} is a numeric id or a service name.
func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	const prefix = "/api/v1/availability/"
	serviceRef := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, prefix))
	if serviceRef == "" || strings.Contains(serviceRef, "/") {
		writeError(w, http.StatusBadRequest, "service is required")
		return
	}

	dateStr := strings.TrimSpace(r.URL.Query().Get("date"))
	if dateStr == "" {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}
	date, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}

	var slots []models.SlotAvailability
	if id, convErr := strconv.ParseInt(serviceRef, 10, 64); convErr == nil {
		slots, err = s.bookings.GetAvailableSlots(r.Context(), id, date)
	} else {
		slots, err = s.bookings.GetAvailableSlotsByName(r.Context(), serviceRef, date)
	}
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"service": serviceRef,
		"date":    dateStr,
		"slots":   slots,
	})
}

type createBookingRequest struct {
	ServiceID     int64    `json:"service_id"`
	Service       string   `json:"service"`
	Date          string   `json:"date"`
	Time          string   `json:"time"`
	CustomerName  string   `json:"customer_name"`
	Phone         string   `json:"phone"`
	Email         string   `json:"email"`
	Address       string   `json:"address"`
	Priority      string   `json:"priority"`
	Notes         string   `json:"notes"`
	EstimatedCost *float64 `json:"estimated_cost"`
}

// handleBookings serves GET (list by range) and POST (create) on
// /api/v1/bookings.
func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listBookings(w, r)
	case http.MethodPost:
		s.createBooking(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) listBookings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	startStr := strings.TrimSpace(q.Get("start"))
	endStr := strings.TrimSpace(q.Get("end"))
	if startStr == "" || endStr == "" {
		writeError(w, http.StatusBadRequest, "start and end are required")
		return
	}

	start, err := time.Parse(dateLayout, startStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start date; expected YYYY-MM-DD")
		return
	}
	end, err := time.Parse(dateLayout, endStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end date; expected YYYY-MM-DD")
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "end must not precede start")
		return
	}

	bookings, err := s.bookings.GetBookingsByDateRange(r.Context(), start, end, strings.TrimSpace(q.Get("technician")))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func (s *HTTPServer) createBooking(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	// Clients may address the service by name; it resolves to an id here.
	serviceID := req.ServiceID
	if serviceID <= 0 {
		name := strings.TrimSpace(req.Service)
		if name == "" {
			writeError(w, http.StatusBadRequest, "service or service_id is required")
			return
		}
		svc, err := s.catalog.GetServiceByName(r.Context(), name)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		serviceID = svc.ID
	}
	if strings.TrimSpace(req.CustomerName) == "" {
		writeError(w, http.StatusBadRequest, "customer_name is required")
		return
	}
	if strings.TrimSpace(req.Phone) == "" && strings.TrimSpace(req.Email) == "" {
		writeError(w, http.StatusBadRequest, "phone or email is required")
		return
	}

	date, err := time.Parse(dateLayout, strings.TrimSpace(req.Date))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date; expected YYYY-MM-DD")
		return
	}

	booking := &models.Booking{
		ServiceID:     serviceID,
		Date:          date,
		Time:          strings.TrimSpace(req.Time),
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerPhone: strings.TrimSpace(req.Phone),
		CustomerEmail: strings.TrimSpace(strings.ToLower(req.Email)),
		Address:       strings.TrimSpace(req.Address),
		Priority:      strings.TrimSpace(req.Priority),
		Notes:         req.Notes,
		EstimatedCost: req.EstimatedCost,
	}

	if err := s.bookings.CreateBooking(r.Context(), booking); err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, booking)
}

type updateStatusRequest struct {
	Status    string `json:"status"`
	ChangedBy string `json:"changed_by"`
}

// handleBookingByID serves GET /api/v1/bookings/{id} and
// PUT /api/v1/bookings/{id}/status.
func (s *HTTPServer) handleBookingByID(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/v1/bookings/"
	rest := strings.TrimPrefix(r.URL.Path, prefix)

	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusBadRequest, "booking id is required")
		return
	}

	// GET /api/v1/bookings/reference/{ref} looks a booking up by the
	// customer-facing reference code.
	if parts[0] == "reference" {
		if len(parts) != 2 || r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		booking, err := s.bookings.GetBookingByReference(r.Context(), parts[1])
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, booking)
		return
	}

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		booking, err := s.bookings.GetBooking(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, booking)

	case len(parts) == 2 && parts[1] == "status" && r.Method == http.MethodPut:
		var req updateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if !models.ValidStatus(req.Status) {
			writeError(w, http.StatusBadRequest, "unknown status")
			return
		}
		changedBy := req.ChangedBy
		if changedBy == "" {
			changedBy = "api"
		}

		booking, err := s.bookings.UpdateStatus(r.Context(), id, req.Status, changedBy)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, booking)

	case len(parts) == 2 && parts[1] == "technician" && r.Method == http.MethodPut:
		s.assignTechnician(w, r, id)

	case len(parts) == 2 && parts[1] == "costs" && r.Method == http.MethodPut:
		s.updateCosts(w, r, id)

	case len(parts) == 2 && parts[1] == "notes" && r.Method == http.MethodPut:
		s.updateNotes(w, r, id)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) assignTechnician(w http.ResponseWriter, r *http.Request, id int64) {
	var req struct {
		Technician string `json:"technician"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Technician) == "" {
		writeError(w, http.StatusBadRequest, "technician is required")
		return
	}
	if err := s.bookings.AssignTechnician(r.Context(), id, strings.TrimSpace(req.Technician)); err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.respondWithBooking(w, r, id)
}

func (s *HTTPServer) updateCosts(w http.ResponseWriter, r *http.Request, id int64) {
	var req struct {
		EstimatedCost *float64 `json:"estimated_cost"`
		ActualCost    *float64 `json:"actual_cost"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.EstimatedCost == nil && req.ActualCost == nil {
		writeError(w, http.StatusBadRequest, "estimated_cost or actual_cost is required")
		return
	}
	if err := s.bookings.UpdateBookingCosts(r.Context(), id, req.EstimatedCost, req.ActualCost); err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.respondWithBooking(w, r, id)
}

func (s *HTTPServer) updateNotes(w http.ResponseWriter, r *http.Request, id int64) {
	var req struct {
		Notes string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.bookings.UpdateBookingNotes(r.Context(), id, req.Notes); err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.respondWithBooking(w, r, id)
}

func (s *HTTPServer) respondWithBooking(w http.ResponseWriter, r *http.Request, id int64) {
	booking, err := s.bookings.GetBooking(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

// handleBookingStats serves GET /api/v1/bookings/stats?from=&to=.
func (s *HTTPServer) handleBookingStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var from, to *time.Time
	if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from date; expected YYYY-MM-DD")
			return
		}
		from = &parsed
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid to date; expected YYYY-MM-DD")
			return
		}
		to = &parsed
	}

	stats, err := s.bookings.GetBookingStats(r.Context(), from, to)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleServices serves GET /api/v1/services.
func (s *HTTPServer) handleServices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	activeOnly := r.URL.Query().Get("all") != "true"
	services, err := s.catalog.ListServices(r.Context(), activeOnly)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"services": services})
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// handleContacts serves POST (submit) and GET (back-office list) on
// /api/v1/contacts.
func (s *HTTPServer) handleContacts(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		unhandledOnly := r.URL.Query().Get("unhandled") == "true"
		contacts, err := s.crm.ListContacts(r.Context(), unhandledOnly)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"contacts": contacts})
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "name and message are required")
		return
	}
	if strings.TrimSpace(req.Email) == "" && strings.TrimSpace(req.Phone) == "" {
		writeError(w, http.StatusBadRequest, "email or phone is required")
		return
	}

	contact := &models.Contact{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Message: req.Message,
	}
	if err := s.crm.SubmitContact(r.Context(), contact); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, contact)
}

type newsletterRequest struct {
	Email string `json:"email"`
}

// handleNewsletter serves POST (subscribe) and DELETE (unsubscribe) on
// /api/v1/newsletter/subscribe.
func (s *HTTPServer) handleNewsletter(w http.ResponseWriter, r *http.Request) {
	var req newsletterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "valid email is required")
		return
	}

	switch r.Method {
	case http.MethodPost:
		sub, err := s.crm.Subscribe(r.Context(), req.Email)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, sub)

	case http.MethodDelete:
		if err := s.crm.Unsubscribe(r.Context(), req.Email); err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "unsubscribed"})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeServiceError maps store sentinels onto HTTP statuses.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrServiceNotFound), errors.Is(err, database.ErrBookingNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, database.ErrSlotUnavailable), errors.Is(err, database.ErrDuplicateSubscriber):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, database.ErrInvalidTransition):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, database.ErrPastDate),
		errors.Is(err, database.ErrDateTooFar),
		errors.Is(err, database.ErrInvalidPriority):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
