package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	jsoniter "github.com/json-iterator/go"

	"github.com/yardimagi/backend-api-go/requests"
)

const queryTimeout = time.Second * 5

const requestColumns = "id, recipient_id, donor_id, title, description, items, category, priority, status, " +
	"address, latitude, longitude, zip_code, window_start, window_end, time_slots, " +
	"notes, rating, views, interested, flag, created_at, updated_at, approved_at, completed_at"

var (
	insertRequestQuery = "INSERT INTO help_requests (" + requestColumns + ") VALUES " +
		"($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25)"

	getRequestQuery = "SELECT " + requestColumns + " FROM help_requests WHERE id = $1"

	updateRequestQuery = "UPDATE help_requests SET " +
		"title=$2, description=$3, items=$4, category=$5, priority=$6, " +
		"window_start=$7, window_end=$8, time_slots=$9, updated_at=$10 " +
		"WHERE id = $1 AND status = 'open'"

	deleteRequestQuery = "DELETE FROM help_requests WHERE id = $1 AND status = 'open'"

	// The status, self-approval and expiry guards live in the WHERE clause
	// so two racing donors can never both win: the second update matches
	// zero rows.
	approveRequestQuery = "UPDATE help_requests SET status='approved', donor_id=$2, approved_at=$3, updated_at=$3 " +
		"WHERE id = $1 AND status = 'open' AND recipient_id <> $2 AND window_end > $3"

	completeRequestQuery = "UPDATE help_requests SET status='completed', completed_at=$2, updated_at=$2 " +
		"WHERE id = $1 AND status = 'approved'"

	appendNoteQuery = "UPDATE help_requests SET notes = notes || $2::jsonb, updated_at = $3 WHERE id = $1"

	// The containment guard keeps the interested list a set even under
	// concurrent duplicate calls.
	addInterestQuery = "UPDATE help_requests SET interested = interested || $2::jsonb, updated_at = $3 " +
		"WHERE id = $1 AND NOT (interested @> $4::jsonb)"

	setRatingQuery = "UPDATE help_requests SET rating = jsonb_set(COALESCE(rating, '{}'::jsonb), $2, $3::jsonb), updated_at = $4 " +
		"WHERE id = $1"

	setFlagQuery = "UPDATE help_requests SET flag = $2, updated_at = $3 WHERE id = $1"

	// Views are a best-effort counter, not a content change, so updated_at
	// stays put.
	incrementViewsQuery = "UPDATE help_requests SET views = views + 1 WHERE id = $1"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New() *Repository {
	dbUrl := os.Getenv("DB_CONN_STR")
	pool, err := pgxpool.New(context.Background(), dbUrl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}

	return &Repository{
		pool: pool,
	}
}

func (repo *Repository) Close() {
	repo.pool.Close()
}

// Pool exposes the underlying connection pool so sibling stores (catalog)
// can share it.
func (repo *Repository) Pool() *pgxpool.Pool {
	return repo.pool
}

func (repo *Repository) Insert(ctx context.Context, req *requests.HelpRequest) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := repo.pool.Exec(ctx, insertRequestQuery,
		req.ID, req.RecipientID, req.DonorID, req.Title, req.Description,
		req.Items, req.Category, req.Priority, req.Status,
		req.Pickup.Address, req.Pickup.Coordinates.Lat, req.Pickup.Coordinates.Lng, req.Pickup.ZipCode,
		req.Window.StartDate, req.Window.EndDate, req.Window.TimeSlots,
		req.Notes, req.Rating, req.Views, req.Interested, req.Flag,
		req.CreatedAt, req.UpdatedAt, req.ApprovedAt, req.CompletedAt)
	if err != nil {
		return fmt.Errorf("could not insert request: %w", err)
	}
	return nil
}

func (repo *Repository) GetByID(ctx context.Context, id string) (*requests.HelpRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	req, err := scanRequest(repo.pool.QueryRow(ctx, getRequestQuery, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, requests.NotFound("request not found")
	}
	if err != nil {
		return nil, fmt.Errorf("could not query request: %w", err)
	}
	return req, nil
}

// Update rewrites the editable fields of an open request. A false return
// means the row was no longer open when the update ran.
func (repo *Repository) Update(ctx context.Context, req *requests.HelpRequest) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := repo.pool.Exec(ctx, updateRequestQuery,
		req.ID, req.Title, req.Description, req.Items, req.Category, req.Priority,
		req.Window.StartDate, req.Window.EndDate, req.Window.TimeSlots, req.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("could not update request: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (repo *Repository) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := repo.pool.Exec(ctx, deleteRequestQuery, id)
	if err != nil {
		return false, fmt.Errorf("could not delete request: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (repo *Repository) Approve(ctx context.Context, id, donorID string, now time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := repo.pool.Exec(ctx, approveRequestQuery, id, donorID, now)
	if err != nil {
		return false, fmt.Errorf("could not approve request: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (repo *Repository) Complete(ctx context.Context, id string, now time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := repo.pool.Exec(ctx, completeRequestQuery, id, now)
	if err != nil {
		return false, fmt.Errorf("could not complete request: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (repo *Repository) AppendNote(ctx context.Context, id string, note requests.Note) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	entry, err := jsoniter.Marshal(requests.NoteList{note})
	if err != nil {
		return fmt.Errorf("could not marshal note: %w", err)
	}
	if _, err := repo.pool.Exec(ctx, appendNoteQuery, id, entry, note.CreatedAt); err != nil {
		return fmt.Errorf("could not append note: %w", err)
	}
	return nil
}

func (repo *Repository) AddInterest(ctx context.Context, id string, entry requests.Interest) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	element, err := jsoniter.Marshal(requests.InterestList{entry})
	if err != nil {
		return false, fmt.Errorf("could not marshal interest entry: %w", err)
	}
	guard, err := jsoniter.Marshal([]map[string]string{{"user_id": entry.UserID}})
	if err != nil {
		return false, fmt.Errorf("could not marshal interest guard: %w", err)
	}

	tag, err := repo.pool.Exec(ctx, addInterestQuery, id, element, entry.At, guard)
	if err != nil {
		return false, fmt.Errorf("could not add interest: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (repo *Repository) SetRating(ctx context.Context, id, slot string, entry requests.RatingEntry) error {
	switch slot {
	case requests.RatingSlotRecipient, requests.RatingSlotDonor:
	default:
		return fmt.Errorf("unknown rating slot: %s", slot)
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	value, err := jsoniter.Marshal(entry)
	if err != nil {
		return fmt.Errorf("could not marshal rating: %w", err)
	}
	if _, err := repo.pool.Exec(ctx, setRatingQuery, id, []string{slot}, value, entry.RatedAt); err != nil {
		return fmt.Errorf("could not set rating: %w", err)
	}
	return nil
}

func (repo *Repository) SetFlag(ctx context.Context, id string, flag requests.FlagInfo) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	value, err := jsoniter.Marshal(flag)
	if err != nil {
		return fmt.Errorf("could not marshal flag: %w", err)
	}
	if _, err := repo.pool.Exec(ctx, setFlagQuery, id, value, flag.FlaggedAt); err != nil {
		return fmt.Errorf("could not set flag: %w", err)
	}
	return nil
}

func (repo *Repository) IncrementViews(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if _, err := repo.pool.Exec(ctx, incrementViewsQuery, id); err != nil {
		return fmt.Errorf("could not increment views: %w", err)
	}
	return nil
}

// Candidates lists open, unexpired requests matching the filter. The box
// condition is a coarse range check on the stored coordinates; exact
// distance filtering is the caller's job.
func (repo *Repository) Candidates(ctx context.Context, filter requests.CandidateFilter) ([]requests.HelpRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query, args, err := candidatesQuery(filter)
	if err != nil {
		return nil, fmt.Errorf("could not build candidates query: %w", err)
	}

	rows, err := repo.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query candidates: %w", err)
	}
	defer rows.Close()

	var results []requests.HelpRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan candidate: %w", err)
		}
		results = append(results, *req)
	}
	return results, rows.Err()
}

func candidatesQuery(filter requests.CandidateFilter) (string, []interface{}, error) {
	builder := sq.Select(requestColumns).
		From("help_requests").
		Where(sq.Eq{"status": requests.StatusOpen}).
		Where(sq.Gt{"window_end": filter.Now}).
		PlaceholderFormat(sq.Dollar)

	if filter.ExcludeRecipient != "" {
		builder = builder.Where(sq.NotEq{"recipient_id": filter.ExcludeRecipient})
	}
	if filter.Category != "" {
		builder = builder.Where(sq.Eq{"category": filter.Category})
	}
	if filter.Priority != "" {
		builder = builder.Where(sq.Eq{"priority": filter.Priority})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		builder = builder.Where(sq.Or{
			sq.ILike{"title": pattern},
			sq.ILike{"description": pattern},
		})
	}
	if filter.Box != nil {
		builder = builder.
			Where(sq.GtOrEq{"latitude": filter.Box.SwLat}).
			Where(sq.LtOrEq{"latitude": filter.Box.NeLat}).
			Where(sq.GtOrEq{"longitude": filter.Box.SwLng}).
			Where(sq.LtOrEq{"longitude": filter.Box.NeLng})
	}

	builder = builder.OrderBy("created_at DESC")
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}

	return builder.ToSql()
}

func scanRequest(row pgx.Row) (*requests.HelpRequest, error) {
	var req requests.HelpRequest
	err := row.Scan(
		&req.ID, &req.RecipientID, &req.DonorID, &req.Title, &req.Description,
		&req.Items, &req.Category, &req.Priority, &req.Status,
		&req.Pickup.Address, &req.Pickup.Coordinates.Lat, &req.Pickup.Coordinates.Lng, &req.Pickup.ZipCode,
		&req.Window.StartDate, &req.Window.EndDate, &req.Window.TimeSlots,
		&req.Notes, &req.Rating, &req.Views, &req.Interested, &req.Flag,
		&req.CreatedAt, &req.UpdatedAt, &req.ApprovedAt, &req.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

var _ requests.Store = (*Repository)(nil)
