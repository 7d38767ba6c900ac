package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yeremiapane/restaurant-site/models"
	"gorm.io/gorm"
)

var ErrNoTablesAvailable = errors.New("No tables available for the selected date and time")

// AvailabilityService answers the table availability check used by the reservation form.
type AvailabilityService struct {
	db   *gorm.DB
	slot time.Duration
}

func NewAvailabilityService(db *gorm.DB, slotMinutes int) *AvailabilityService {
	if slotMinutes <= 0 {
		slotMinutes = 120
	}
	return &AvailabilityService{db: db, slot: time.Duration(slotMinutes) * time.Minute}
}

func slotStart(date, clock string) (time.Time, error) {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return time.Time{}, ErrInvalidDate
	}
	if _, err := time.Parse(TimeLayout, clock); err != nil {
		return time.Time{}, ErrInvalidTime
	}
	return time.Parse(DateLayout+" "+TimeLayout, date+" "+clock)
}

// datesAround lists every reservation_date whose slots can reach start.
func (s *AvailabilityService) datesAround(start time.Time) []string {
	var dates []string
	day := start.Add(-s.slot).Truncate(24 * time.Hour)
	for last := start.Add(s.slot); !day.After(last); day = day.AddDate(0, 0, 1) {
		dates = append(dates, day.Format(DateLayout))
	}
	return dates
}

// CheckTableAvailability reports whether the table is bookable at date/time:
// the table must be active and no non-cancelled reservation may overlap
// [start, start+slot), including bookings on the neighbouring days.
func (s *AvailabilityService) CheckTableAvailability(ctx context.Context, tableID uint, date, clock string) (bool, error) {
	requested, err := slotStart(date, clock)
	if err != nil {
		return false, err
	}

	var table models.Table
	if err := s.db.WithContext(ctx).First(&table, tableID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("load table %d: %w", tableID, err)
	}
	if !table.IsAvailable {
		return false, nil
	}

	var booked []models.Reservation
	if err := s.db.WithContext(ctx).
		Where("table_id = ? AND reservation_date IN ? AND status <> ?", tableID, s.datesAround(requested), models.ReservationStatusCancelled).
		Find(&booked).Error; err != nil {
		return false, fmt.Errorf("load reservations for table %d: %w", tableID, err)
	}

	requestedEnd := requested.Add(s.slot)
	for _, r := range booked {
		existing, err := slotStart(r.ReservationDate, r.ReservationTime)
		if err != nil {
			continue
		}
		if existing.Before(requestedEnd) && requested.Before(existing.Add(s.slot)) {
			return false, nil
		}
	}
	return true, nil
}

// AvailableTables filters tables by capacity, then checks each candidate in turn.
func (s *AvailabilityService) AvailableTables(ctx context.Context, date, clock string, partySize int) ([]models.Table, error) {
	if partySize <= 0 {
		return nil, ErrReservationIncomplete
	}

	var candidates []models.Table
	if err := s.db.WithContext(ctx).
		Where("is_available = ? AND capacity >= ?", true, partySize).
		Order("capacity asc, table_number asc").
		Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("load candidate tables: %w", err)
	}

	available := make([]models.Table, 0, len(candidates))
	for _, table := range candidates {
		ok, err := s.CheckTableAvailability(ctx, table.ID, date, clock)
		if err != nil {
			return nil, err
		}
		if ok {
			available = append(available, table)
		}
	}
	if len(available) == 0 {
		return nil, ErrNoTablesAvailable
	}
	return available, nil
}

// ValidateSelection re-checks a chosen table at submit time.
func (s *AvailabilityService) ValidateSelection(ctx context.Context, tableID uint, date, clock string, partySize int) error {
	var table models.Table
	if err := s.db.WithContext(ctx).First(&table, tableID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoTablesAvailable
		}
		return fmt.Errorf("load table %d: %w", tableID, err)
	}
	if table.Capacity < partySize {
		return fmt.Errorf("%w: table %d seats %d", ErrNoTablesAvailable, table.TableNumber, table.Capacity)
	}
	ok, err := s.CheckTableAvailability(ctx, tableID, date, clock)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoTablesAvailable
	}
	return nil
}
