package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"lockwise/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Booking rows live on the "Bookings" sheet with columns:
// A id, B reference, C service, D date, E time, F status,
// G customer, H phone, I technician, J cost, K updated_at.
const (
	bookingsSheet    = "Bookings"
	bookingLastCol   = "K"
	statusColumn     = "F"
	updatedAtColumn  = "K"
	timestampLayout  = "2006-01-02 15:04:05"
	dateColumnLayout = "2006-01-02"
)

var ErrRowNotFound = errors.New("booking row not found")

// SheetsService mirrors bookings into a Google spreadsheet that the
// office staff work from.
type SheetsService struct {
	service       *sheets.Service
	spreadsheetID string
	rowCache      map[int64]int
	cacheMu       sync.RWMutex
}

// NewSheetsService authenticates with a service-account JWT and warms
// the row index cache in the background.
func NewSheetsService(ctx context.Context, credentialsFile, spreadsheetID string) (*SheetsService, error) {
	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	jwtConfig, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(jwtConfig.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	service := &SheetsService{
		service:       srv,
		spreadsheetID: spreadsheetID,
		rowCache:      make(map[int64]int),
	}

	go func() {
		warmCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = service.WarmUpCache(warmCtx)
	}()

	return service, nil
}

// TestConnection reads a single cell to verify access.
func (s *SheetsService) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, bookingsSheet+"!A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

// ServiceAccountEmail extracts the client email from the credentials
// file so operators know whom to share the spreadsheet with.
func ServiceAccountEmail(credentialsFile string) (string, error) {
	file, err := os.ReadFile(credentialsFile)
	if err != nil {
		return "", err
	}

	var creds struct {
		ClientEmail string `json:"client_email"`
	}
	if err := json.Unmarshal(file, &creds); err != nil {
		return "", err
	}
	return creds.ClientEmail, nil
}

// WarmUpCache populates the row index cache from the ID column.
func (s *SheetsService) WarmUpCache(ctx context.Context) error {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, bookingsSheet+"!A:A").Context(ctx).Do()
	if err != nil {
		return err
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache = make(map[int64]int)

	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		var id int64
		switch v := row[0].(type) {
		case float64:
			id = int64(v)
		case string:
			fmt.Sscanf(v, "%d", &id)
		}
		if id > 0 {
			s.rowCache[id] = i + 1
		}
	}
	return nil
}

// UpsertBooking updates the booking's row or appends a new one.
func (s *SheetsService) UpsertBooking(ctx context.Context, booking *models.Booking) error {
	if booking == nil {
		return fmt.Errorf("booking is nil")
	}

	rowIdx, err := s.findBookingRow(ctx, booking.ID)
	if err != nil {
		if errors.Is(err, ErrRowNotFound) {
			return s.appendBooking(ctx, booking)
		}
		return err
	}

	rangeData := fmt.Sprintf("%s!A%d:%s%d", bookingsSheet, rowIdx, bookingLastCol, rowIdx)
	valueRange := &sheets.ValueRange{Values: [][]interface{}{bookingRowValues(booking)}}

	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, rangeData, valueRange).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

// UpdateBookingStatus rewrites the status and updated-at cells.
func (s *SheetsService) UpdateBookingStatus(ctx context.Context, bookingID int64, status string) error {
	rowIdx, err := s.findBookingRow(ctx, bookingID)
	if err != nil {
		return err
	}

	statusRange := fmt.Sprintf("%s!%s%d:%s%d", bookingsSheet, statusColumn, rowIdx, statusColumn, rowIdx)
	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, statusRange, &sheets.ValueRange{
		Values: [][]interface{}{{status}},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return err
	}

	updatedRange := fmt.Sprintf("%s!%s%d:%s%d", bookingsSheet, updatedAtColumn, rowIdx, updatedAtColumn, rowIdx)
	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, updatedRange, &sheets.ValueRange{
		Values: [][]interface{}{{time.Now().Format(timestampLayout)}},
	}).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

// ReplaceBookingsSheet rewrites the whole sheet below the header row.
func (s *SheetsService) ReplaceBookingsSheet(ctx context.Context, bookings []*models.Booking) error {
	clearRange := bookingsSheet + "!A2:Z"
	_, err := s.service.Spreadsheets.Values.Clear(s.spreadsheetID, clearRange, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to clear bookings sheet: %w", err)
	}

	values := make([][]interface{}, 0, len(bookings))
	for _, booking := range bookings {
		values = append(values, bookingRowValues(booking))
	}

	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, bookingsSheet+"!A2", &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to update bookings sheet: %w", err)
	}

	s.cacheMu.Lock()
	s.rowCache = make(map[int64]int)
	for i, b := range bookings {
		s.rowCache[b.ID] = i + 2 // data starts at row 2
	}
	s.cacheMu.Unlock()

	return nil
}

func (s *SheetsService) appendBooking(ctx context.Context, booking *models.Booking) error {
	valueRange := &sheets.ValueRange{Values: [][]interface{}{bookingRowValues(booking)}}

	_, err := s.service.Spreadsheets.Values.Append(s.spreadsheetID, bookingsSheet+"!A:A", valueRange).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

// findBookingRow locates the 1-based row for a booking id, column A.
func (s *SheetsService) findBookingRow(ctx context.Context, bookingID int64) (int, error) {
	if bookingID == 0 {
		return 0, fmt.Errorf("booking id is required")
	}

	if row, ok := s.getCachedRow(bookingID); ok {
		return row, nil
	}

	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, bookingsSheet+"!A:A").Context(ctx).Do()
	if err != nil {
		return 0, err
	}

	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		switch v := row[0].(type) {
		case float64:
			if int64(v) == bookingID {
				rowIdx := i + 1
				s.setCachedRow(bookingID, rowIdx)
				return rowIdx, nil
			}
		case string:
			if v == fmt.Sprintf("%d", bookingID) {
				rowIdx := i + 1
				s.setCachedRow(bookingID, rowIdx)
				return rowIdx, nil
			}
		}
	}

	return 0, ErrRowNotFound
}

func (s *SheetsService) getCachedRow(id int64) (int, bool) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	row, ok := s.rowCache[id]
	return row, ok
}

func (s *SheetsService) setCachedRow(id int64, row int) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache[id] = row
}

func bookingRowValues(booking *models.Booking) []interface{} {
	cost := ""
	if booking.ActualCost != nil {
		cost = fmt.Sprintf("%.2f", *booking.ActualCost)
	} else if booking.EstimatedCost != nil {
		cost = fmt.Sprintf("%.2f", *booking.EstimatedCost)
	}

	return []interface{}{
		booking.ID,
		booking.Reference,
		booking.ServiceName,
		booking.Date.Format(dateColumnLayout),
		booking.Time,
		booking.Status,
		booking.CustomerName,
		booking.CustomerPhone,
		booking.Technician,
		cost,
		booking.UpdatedAt.Format(timestampLayout),
	}
}
