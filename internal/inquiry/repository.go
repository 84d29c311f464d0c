package inquiry

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kinglemuel/klp/internal/email"
)

// ErrNotFound is returned when an inquiry id does not exist.
var ErrNotFound = errors.New("inquiry not found")

// ErrInvalid marks a rejected submission or status.
var ErrInvalid = errors.New("invalid inquiry")

const selectColumns = "id, listing_id, listing_title, name, email, phone, message, status, created_at, updated_at"

// Repository provides CRUD operations for inquiries.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRepository creates an inquiry repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// Create stores a new pending inquiry. listingTitle is kept as a snapshot
// so the inquiry still reads well after the listing is gone.
func (r *Repository) Create(in NewInquiry, listingTitle string) (*Inquiry, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Message = strings.TrimSpace(in.Message)

	switch {
	case in.ListingID == "":
		return nil, fmt.Errorf("%w: listing id is required", ErrInvalid)
	case in.Name == "":
		return nil, fmt.Errorf("%w: name is required", ErrInvalid)
	case in.Message == "":
		return nil, fmt.Errorf("%w: message is required", ErrInvalid)
	case !email.ValidAddress(in.Email):
		return nil, fmt.Errorf("%w: invalid email format", ErrInvalid)
	}

	now := r.now().UTC()
	inq := &Inquiry{
		ID:           uuid.NewString(),
		ListingID:    in.ListingID,
		ListingTitle: listingTitle,
		Name:         in.Name,
		Email:        in.Email,
		Phone:        strings.TrimSpace(in.Phone),
		Message:      in.Message,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := r.db.Exec(
		`INSERT INTO inquiries (id, listing_id, listing_title, name, email, phone, message, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inq.ID, inq.ListingID, inq.ListingTitle, inq.Name, inq.Email, inq.Phone,
		inq.Message, inq.Status, inq.CreatedAt, inq.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("inserting inquiry: %w", err)
	}

	return inq, nil
}

// ListOptions filters List. Zero values match everything; Limit 0 means
// no limit.
type ListOptions struct {
	Status    Status
	ListingID string
	Limit     int
	Offset    int
}

// List returns inquiries newest first.
func (r *Repository) List(opts ListOptions) (inquiries []*Inquiry, err error) {
	query := "SELECT " + selectColumns + " FROM inquiries WHERE 1=1"
	var args []any
	if opts.Status != "" {
		query += " AND status = ?"
		args = append(args, opts.Status)
	}
	if opts.ListingID != "" {
		query += " AND listing_id = ?"
		args = append(args, opts.ListingID)
	}
	query += " ORDER BY created_at DESC, rowid DESC"
	if opts.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, opts.Limit, opts.Offset)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing inquiries: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	inquiries = []*Inquiry{}
	for rows.Next() {
		inq, err := scanInquiry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning inquiry: %w", err)
		}
		inquiries = append(inquiries, inq)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating inquiries: %w", err)
	}

	return inquiries, nil
}

// GetByID returns an inquiry or ErrNotFound.
func (r *Repository) GetByID(id string) (*Inquiry, error) {
	row := r.db.QueryRow("SELECT "+selectColumns+" FROM inquiries WHERE id = ?", id)
	inq, err := scanInquiry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting inquiry: %w", err)
	}
	return inq, nil
}

// UpdateStatus moves an inquiry to status and returns the updated record.
func (r *Repository) UpdateStatus(id string, status Status) (*Inquiry, error) {
	if !ValidStatus(string(status)) {
		return nil, fmt.Errorf("%w: unknown status %q (use pending, contacted, or closed)", ErrInvalid, status)
	}

	result, err := r.db.Exec(
		"UPDATE inquiries SET status = ?, updated_at = ? WHERE id = ?",
		status, r.now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating inquiry: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return nil, ErrNotFound
	}

	return r.GetByID(id)
}

// Delete removes an inquiry by ID.
func (r *Repository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM inquiries WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting inquiry: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// CountByStatus returns the number of inquiries with the given status.
func (r *Repository) CountByStatus(status Status) (int, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM inquiries WHERE status = ?", string(status)).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s inquiries: %w", status, err)
	}
	return n, nil
}

// Stats counts the inquiries created in the last periodDays days.
func (r *Repository) Stats(periodDays int) (*Stats, error) {
	if periodDays <= 0 {
		return nil, fmt.Errorf("period must be a positive number of days")
	}
	since := r.now().UTC().AddDate(0, 0, -periodDays)

	rows, err := r.db.Query(
		"SELECT status, COUNT(*) FROM inquiries WHERE created_at >= ? GROUP BY status",
		since,
	)
	if err != nil {
		return nil, fmt.Errorf("counting inquiries: %w", err)
	}
	defer rows.Close()

	stats := &Stats{PeriodDays: periodDays}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning counts: %w", err)
		}
		switch Status(status) {
		case StatusPending:
			stats.Pending = n
		case StatusContacted:
			stats.Contacted = n
		case StatusClosed:
			stats.Closed = n
		}
		stats.Total += n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating counts: %w", err)
	}

	return stats, nil
}

func scanInquiry(row interface{ Scan(...any) error }) (*Inquiry, error) {
	var inq Inquiry
	var status string
	if err := row.Scan(
		&inq.ID, &inq.ListingID, &inq.ListingTitle, &inq.Name, &inq.Email, &inq.Phone,
		&inq.Message, &status, &inq.CreatedAt, &inq.UpdatedAt,
	); err != nil {
		return nil, err
	}
	inq.Status = Status(status)
	return &inq, nil
}
