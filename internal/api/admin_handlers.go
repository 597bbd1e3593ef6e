package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"lockwise/internal/models"
)

// handleContactByID serves PUT /api/v1/contacts/{id}/handled.
func (s *HTTPServer) handleContactByID(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/v1/contacts/"
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/"), "/")

	if len(parts) != 2 || parts[1] != "handled" || r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid contact id")
		return
	}

	if err := s.crm.MarkContactHandled(r.Context(), id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "handled"})
}

// handleSubscribers serves GET /api/v1/newsletter/subscribers.
func (s *HTTPServer) handleSubscribers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	subs, err := s.crm.ListSubscribers(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"subscribers": subs})
}

type registerCustomerRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// handleCustomers serves GET (list) and POST (register) on
// /api/v1/customers.
func (s *HTTPServer) handleCustomers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		users, err := s.crm.ListCustomers(r.Context())
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"customers": users})

	case http.MethodPost:
		var req registerCustomerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if !strings.Contains(req.Email, "@") {
			writeError(w, http.StatusBadRequest, "valid email is required")
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}

		user, err := s.crm.RegisterCustomer(r.Context(), &models.User{
			Email: req.Email,
			Name:  strings.TrimSpace(req.Name),
			Phone: strings.TrimSpace(req.Phone),
		})
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, user)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleExportSchedule serves GET /api/v1/exports/schedule?start=&end=
// and streams the generated day-planner workbook.
func (s *HTTPServer) handleExportSchedule(w http.ResponseWriter, r *http.Request) {
	start, end, ok := s.exportRange(w, r)
	if !ok {
		return
	}

	daily, err := s.bookings.GetDailyBookings(r.Context(), start, end)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	filePath, err := s.exporter.ExportSchedule(start, end, daily)
	if err != nil {
		s.logger.Error().Err(err).Msg("schedule export failed")
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	serveWorkbook(w, r, filePath)
}

// handleExportBookings serves GET /api/v1/exports/bookings?start=&end=
// as a flat-table workbook.
func (s *HTTPServer) handleExportBookings(w http.ResponseWriter, r *http.Request) {
	start, end, ok := s.exportRange(w, r)
	if !ok {
		return
	}

	bookings, err := s.bookings.GetBookingsByDateRange(r.Context(), start, end, strings.TrimSpace(r.URL.Query().Get("technician")))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	filePath, err := s.exporter.ExportBookingsList(bookings)
	if err != nil {
		s.logger.Error().Err(err).Msg("bookings export failed")
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	serveWorkbook(w, r, filePath)
}

func (s *HTTPServer) exportRange(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return time.Time{}, time.Time{}, false
	}
	if s.exporter == nil {
		writeError(w, http.StatusServiceUnavailable, "exports are not configured")
		return time.Time{}, time.Time{}, false
	}

	q := r.URL.Query()
	start, err := time.Parse(dateLayout, strings.TrimSpace(q.Get("start")))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start date; expected YYYY-MM-DD")
		return time.Time{}, time.Time{}, false
	}
	end, err := time.Parse(dateLayout, strings.TrimSpace(q.Get("end")))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end date; expected YYYY-MM-DD")
		return time.Time{}, time.Time{}, false
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "end must not precede start")
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func serveWorkbook(w http.ResponseWriter, r *http.Request, filePath string) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	http.ServeFile(w, r, filePath)
}
