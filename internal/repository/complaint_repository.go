package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"janmitra/internal/domain"
)

// TransitionCommand moves a complaint to Entry.Status. When AllowedFrom is
// set the current status must be one of them, otherwise Reject is returned.
// A non-nil Resolution is stamped on the complaint in the same write.
type TransitionCommand struct {
	ComplaintID uuid.UUID
	Entry       *domain.StatusHistoryEntry
	Resolution  *domain.Resolution
	Action      *domain.ComplaintAction
	AllowedFrom []domain.ComplaintStatus
	Reject      error
}

// RefileCommand appends a refile and forces the complaint back to unresolved.
// The escalation block and the per-citizen cooldown are re-checked under the
// row lock.
type RefileCommand struct {
	ComplaintID   uuid.UUID
	Record        *domain.RefileRecord
	Description   *string
	Entry         *domain.StatusHistoryEntry
	Action        *domain.ComplaintAction
	CooldownSince time.Time
}

type ComplaintRepository interface {
	Create(ctx context.Context, c *domain.Complaint, entry *domain.StatusHistoryEntry, action *domain.ComplaintAction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Complaint, error)
	FindRecentDuplicate(ctx context.Context, q domain.DuplicateQuery) (*domain.Complaint, error)
	List(ctx context.Context, filter domain.ComplaintFilter, params domain.PaginationParams) ([]domain.Complaint, int64, error)
	ListByCitizen(ctx context.Context, citizenID uuid.UUID, status domain.ComplaintStatus) ([]domain.Complaint, error)
	ListNearby(ctx context.Context, q domain.NearbyQuery) ([]domain.Complaint, error)
	ListUrgent(ctx context.Context, minDanger float64, limit int) ([]domain.Complaint, error)
	CountByStatus(ctx context.Context) ([]domain.StatusCount, error)

	Transition(ctx context.Context, cmd TransitionCommand) error
	Refile(ctx context.Context, cmd RefileCommand) error
	AddConfirmation(ctx context.Context, complaintID, citizenID uuid.UUID, threshold int) (domain.ConfirmResult, error)
	AddUpvote(ctx context.Context, complaintID, citizenID uuid.UUID) (int, error)
	RaiseDanger(ctx context.Context, complaintID uuid.UUID, floor float64, action *domain.ComplaintAction) (float64, error)
	AutoResolveStale(ctx context.Context, before time.Time) ([]domain.Complaint, error)
}

const complaintColumns = `id, complaint_number, citizen_id, guest_device_id, description, audio_description_url, media, language,
	longitude, latitude, state, city, area, precise_location, category, department_id,
	upvotes, refiles, danger_score, risk_level, is_urgent, priority, status,
	resolved_by, resolved_at, resolution_comment, resolution_media, expected_resolution_date,
	created_at, updated_at`

const historyColumns = `id, complaint_id, status, comment, actor_id, actor_kind, media, expected_resolution_date, created_at`

const actionColumns = `id, complaint_id, action, actor_id, actor_kind, metadata, created_at`

type complaintRepository struct {
	db *sqlx.DB
}

func NewComplaintRepository(db *sqlx.DB) ComplaintRepository {
	return &complaintRepository{db: db}
}

func (r *complaintRepository) Create(ctx context.Context, c *domain.Complaint, entry *domain.StatusHistoryEntry, action *domain.ComplaintAction) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO complaints (id, complaint_number, citizen_id, guest_device_id, description, audio_description_url,
				media, language, longitude, latitude, state, city, area, precise_location, category, department_id,
				danger_score, risk_level, priority, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
			RETURNING created_at, updated_at`

		err := tx.QueryRowxContext(ctx, query,
			c.ID, c.ComplaintNumber, c.CitizenID, c.GuestDeviceID, c.Description, c.AudioDescriptionURL,
			c.Media, c.Language, c.Longitude, c.Latitude, c.State, c.City, c.Area, c.PreciseLocation, c.Category, c.DepartmentID,
			c.DangerScore, c.RiskLevel, c.Priority, c.Status,
		).Scan(&c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert complaint: %w", err)
		}

		if err := insertHistory(ctx, tx, entry); err != nil {
			return err
		}
		c.History = []domain.StatusHistoryEntry{*entry}
		return insertAction(ctx, tx, action)
	})
}

func (r *complaintRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Complaint, error) {
	var c domain.Complaint
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id = $1`

	err := r.db.GetContext(ctx, &c, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := r.db.SelectContext(ctx, &c.History,
		`SELECT `+historyColumns+` FROM complaint_status_history WHERE complaint_id = $1 ORDER BY seq`, id); err != nil {
		return nil, fmt.Errorf("load status history: %w", err)
	}
	if err := r.db.SelectContext(ctx, &c.RefileRecords,
		`SELECT id, complaint_id, citizen_id, media, note, created_at FROM complaint_refiles WHERE complaint_id = $1 ORDER BY created_at`, id); err != nil {
		return nil, fmt.Errorf("load refiles: %w", err)
	}
	if err := r.db.SelectContext(ctx, &c.Confirmations,
		`SELECT complaint_id, citizen_id, created_at FROM complaint_confirmations WHERE complaint_id = $1 ORDER BY created_at`, id); err != nil {
		return nil, fmt.Errorf("load confirmations: %w", err)
	}
	if err := r.db.SelectContext(ctx, &c.Actions,
		`SELECT `+actionColumns+` FROM complaint_actions WHERE complaint_id = $1 ORDER BY seq`, id); err != nil {
		return nil, fmt.Errorf("load actions: %w", err)
	}

	return &c, nil
}

func (r *complaintRepository) FindRecentDuplicate(ctx context.Context, q domain.DuplicateQuery) (*domain.Complaint, error) {
	var c domain.Complaint
	query := `
		SELECT ` + complaintColumns + ` FROM complaints
		WHERE citizen_id = $1 AND description = $2 AND longitude = $3 AND latitude = $4 AND created_at >= $5
		ORDER BY created_at DESC
		LIMIT 1`

	err := r.db.GetContext(ctx, &c, query, q.CitizenID, q.Description, q.Longitude, q.Latitude, q.Since)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *complaintRepository) List(ctx context.Context, filter domain.ComplaintFilter, params domain.PaginationParams) ([]domain.Complaint, int64, error) {
	params.Validate()

	var (
		conds []string
		args  []interface{}
	)
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.DepartmentID != nil {
		add("department_id = $%d", *filter.DepartmentID)
	}
	if filter.City != "" {
		add("city = $%d", filter.City)
	}
	if filter.Area != "" {
		add("area = $%d", filter.Area)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM complaints`+where, args...); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM complaints%s ORDER BY %s LIMIT $%d OFFSET $%d`,
		complaintColumns, where, orderBy(filter.Sort), len(args)+1, len(args)+2)
	args = append(args, params.Limit, params.Offset())

	var complaints []domain.Complaint
	err := r.db.SelectContext(ctx, &complaints, query, args...)
	return complaints, total, err
}

// orderBy defaults to priority: most dangerous first, then most supported,
// then the longest waiting.
func orderBy(sort domain.ComplaintSort) string {
	switch sort {
	case domain.SortNewest:
		return "created_at DESC, id"
	case domain.SortOldest:
		return "created_at ASC, id"
	default:
		return "danger_score DESC, upvotes DESC, created_at ASC, id"
	}
}

func (r *complaintRepository) ListByCitizen(ctx context.Context, citizenID uuid.UUID, status domain.ComplaintStatus) ([]domain.Complaint, error) {
	var complaints []domain.Complaint
	if status != "" {
		query := `SELECT ` + complaintColumns + ` FROM complaints WHERE citizen_id = $1 AND status = $2 ORDER BY created_at DESC`
		err := r.db.SelectContext(ctx, &complaints, query, citizenID, status)
		return complaints, err
	}

	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE citizen_id = $1 ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &complaints, query, citizenID)
	return complaints, err
}

func (r *complaintRepository) ListNearby(ctx context.Context, q domain.NearbyQuery) ([]domain.Complaint, error) {
	query := `
		SELECT * FROM (
			SELECT ` + complaintColumns + `,
				6371 * acos(LEAST(1.0,
					cos(radians($1)) * cos(radians(latitude)) * cos(radians(longitude) - radians($2)) +
					sin(radians($1)) * sin(radians(latitude))
				)) AS distance_km
			FROM complaints
			WHERE status <> 'resolved'
		) nearby
		WHERE distance_km <= $3
		ORDER BY distance_km
		LIMIT 100`

	var complaints []domain.Complaint
	err := r.db.SelectContext(ctx, &complaints, query, q.Latitude, q.Longitude, q.RadiusKm)
	return complaints, err
}

func (r *complaintRepository) ListUrgent(ctx context.Context, minDanger float64, limit int) ([]domain.Complaint, error) {
	query := `
		SELECT ` + complaintColumns + ` FROM complaints
		WHERE danger_score >= $1 AND status <> 'resolved'
		ORDER BY danger_score DESC, upvotes DESC, created_at ASC
		LIMIT $2`

	var complaints []domain.Complaint
	err := r.db.SelectContext(ctx, &complaints, query, minDanger, limit)
	return complaints, err
}

func (r *complaintRepository) CountByStatus(ctx context.Context) ([]domain.StatusCount, error) {
	var counts []domain.StatusCount
	err := r.db.SelectContext(ctx, &counts, `SELECT status, COUNT(*) AS count FROM complaints GROUP BY status ORDER BY status`)
	return counts, err
}

func (r *complaintRepository) Transition(ctx context.Context, cmd TransitionCommand) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		current, err := lockStatus(ctx, tx, cmd.ComplaintID)
		if err != nil {
			return err
		}
		if len(cmd.AllowedFrom) > 0 && !containsStatus(cmd.AllowedFrom, current) {
			return cmd.Reject
		}

		if res := cmd.Resolution; res != nil {
			_, err = tx.ExecContext(ctx, `
				UPDATE complaints
				SET status = $2, resolved_by = $3, resolved_at = $4, resolution_comment = $5,
					resolution_media = $6, expected_resolution_date = $7, updated_at = NOW()
				WHERE id = $1`,
				cmd.ComplaintID, cmd.Entry.Status, res.ResolvedBy, res.ResolvedAt, res.Comment,
				res.Media, res.ExpectedResolutionDate)
		} else {
			_, err = tx.ExecContext(ctx,
				`UPDATE complaints SET status = $2, updated_at = NOW() WHERE id = $1`,
				cmd.ComplaintID, cmd.Entry.Status)
		}
		if err != nil {
			return fmt.Errorf("update status: %w", err)
		}

		if err := insertHistory(ctx, tx, cmd.Entry); err != nil {
			return err
		}
		return insertAction(ctx, tx, cmd.Action)
	})
}

func (r *complaintRepository) Refile(ctx context.Context, cmd RefileCommand) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		current, err := lockStatus(ctx, tx, cmd.ComplaintID)
		if err != nil {
			return err
		}
		if current == domain.StatusEscalated {
			return domain.ErrRefileEscalated
		}

		var recent bool
		err = tx.GetContext(ctx, &recent, `
			SELECT EXISTS (
				SELECT 1 FROM complaint_refiles
				WHERE complaint_id = $1 AND citizen_id = $2 AND created_at > $3
			)`, cmd.ComplaintID, cmd.Record.CitizenID, cmd.CooldownSince)
		if err != nil {
			return fmt.Errorf("check refile cooldown: %w", err)
		}
		if recent {
			return domain.ErrRefileCooldown
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE complaints
			SET refiles = refiles + 1, status = 'unresolved', description = COALESCE($2, description), updated_at = NOW()
			WHERE id = $1`, cmd.ComplaintID, cmd.Description)
		if err != nil {
			return fmt.Errorf("update refile counters: %w", err)
		}

		err = tx.QueryRowxContext(ctx, `
			INSERT INTO complaint_refiles (id, complaint_id, citizen_id, media, note)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING created_at`,
			cmd.Record.ID, cmd.ComplaintID, cmd.Record.CitizenID, cmd.Record.Media, cmd.Record.Note,
		).Scan(&cmd.Record.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert refile: %w", err)
		}

		if err := insertHistory(ctx, tx, cmd.Entry); err != nil {
			return err
		}
		return insertAction(ctx, tx, cmd.Action)
	})
}

// AddConfirmation records one citizen's vote under a row lock. Reaching the
// threshold resolves the complaint and clears its upvotes in the same
// transaction.
func (r *complaintRepository) AddConfirmation(ctx context.Context, complaintID, citizenID uuid.UUID, threshold int) (domain.ConfirmResult, error) {
	var result domain.ConfirmResult

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		current, err := lockStatus(ctx, tx, complaintID)
		if err != nil {
			return err
		}
		if current != domain.StatusAwaitingConfirmation {
			return domain.ErrNotAwaitingConfirmation
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO complaint_confirmations (complaint_id, citizen_id)
			VALUES ($1, $2)
			ON CONFLICT (complaint_id, citizen_id) DO NOTHING`, complaintID, citizenID)
		if err != nil {
			return fmt.Errorf("insert confirmation: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.ErrAlreadyConfirmed
		}
		result.Inserted = true

		if err := tx.GetContext(ctx, &result.Confirmations,
			`SELECT COUNT(*) FROM complaint_confirmations WHERE complaint_id = $1`, complaintID); err != nil {
			return fmt.Errorf("count confirmations: %w", err)
		}

		if result.Confirmations >= threshold {
			_, err := tx.ExecContext(ctx, `
				UPDATE complaints
				SET status = 'resolved', upvotes = 0, resolved_at = COALESCE(resolved_at, NOW()), updated_at = NOW()
				WHERE id = $1`, complaintID)
			if err != nil {
				return fmt.Errorf("auto resolve: %w", err)
			}
			comment := fmt.Sprintf("Resolved after %d citizen confirmations", result.Confirmations)
			if err := insertHistory(ctx, tx, &domain.StatusHistoryEntry{
				ID:          uuid.New(),
				ComplaintID: complaintID,
				Status:      domain.StatusResolved,
				Comment:     &comment,
				ActorKind:   domain.ActorSystem,
			}); err != nil {
				return err
			}
			result.AutoResolved = true
		}

		metadata, _ := json.Marshal(map[string]any{
			"autoResolved":  result.AutoResolved,
			"confirmations": result.Confirmations,
		})
		return insertAction(ctx, tx, &domain.ComplaintAction{
			ID:          uuid.New(),
			ComplaintID: complaintID,
			Action:      domain.ActionResolutionConfirmed,
			ActorID:     &citizenID,
			ActorKind:   domain.ActorCitizen,
			Metadata:    metadata,
		})
	})

	return result, err
}

func (r *complaintRepository) AddUpvote(ctx context.Context, complaintID, citizenID uuid.UUID) (int, error) {
	var upvotes int

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := lockStatus(ctx, tx, complaintID); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO complaint_upvotes (complaint_id, citizen_id)
			VALUES ($1, $2)
			ON CONFLICT (complaint_id, citizen_id) DO NOTHING`, complaintID, citizenID)
		if err != nil {
			return fmt.Errorf("insert upvote: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.ErrAlreadyUpvoted
		}

		if err := tx.GetContext(ctx, &upvotes,
			`UPDATE complaints SET upvotes = upvotes + 1, updated_at = NOW() WHERE id = $1 RETURNING upvotes`,
			complaintID); err != nil {
			return fmt.Errorf("increment upvotes: %w", err)
		}

		metadata, _ := json.Marshal(map[string]any{"upvotes": upvotes})
		return insertAction(ctx, tx, &domain.ComplaintAction{
			ID:          uuid.New(),
			ComplaintID: complaintID,
			Action:      domain.ActionUpvoted,
			ActorID:     &citizenID,
			ActorKind:   domain.ActorCitizen,
			Metadata:    metadata,
		})
	})

	return upvotes, err
}

// RaiseDanger lifts the danger score to at least floor; it never lowers it.
func (r *complaintRepository) RaiseDanger(ctx context.Context, complaintID uuid.UUID, floor float64, action *domain.ComplaintAction) (float64, error) {
	var score float64

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &score, `
			UPDATE complaints
			SET danger_score = GREATEST(danger_score, $2), is_urgent = TRUE, updated_at = NOW()
			WHERE id = $1
			RETURNING danger_score`, complaintID, floor)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrComplaintNotFound
		}
		if err != nil {
			return fmt.Errorf("raise danger score: %w", err)
		}
		return insertAction(ctx, tx, action)
	})

	return score, err
}

func (r *complaintRepository) AutoResolveStale(ctx context.Context, before time.Time) ([]domain.Complaint, error) {
	var resolved []domain.Complaint

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.SelectContext(ctx, &resolved, `
			UPDATE complaints
			SET status = 'resolved', resolved_at = COALESCE(resolved_at, NOW()), updated_at = NOW()
			WHERE status = 'awaiting_confirmation' AND updated_at < $1
			RETURNING `+complaintColumns, before)
		if err != nil {
			return fmt.Errorf("auto resolve stale: %w", err)
		}

		comment := "Automatically resolved after 7 days in awaiting_confirmation status"
		for _, c := range resolved {
			if err := insertHistory(ctx, tx, &domain.StatusHistoryEntry{
				ID:          uuid.New(),
				ComplaintID: c.ID,
				Status:      domain.StatusResolved,
				Comment:     &comment,
				ActorKind:   domain.ActorSystem,
			}); err != nil {
				return err
			}
			if err := insertAction(ctx, tx, &domain.ComplaintAction{
				ID:          uuid.New(),
				ComplaintID: c.ID,
				Action:      domain.ActionAutoResolved,
				ActorKind:   domain.ActorSystem,
			}); err != nil {
				return err
			}
		}
		return nil
	})

	return resolved, err
}

func lockStatus(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (domain.ComplaintStatus, error) {
	var status domain.ComplaintStatus
	err := tx.GetContext(ctx, &status, `SELECT status FROM complaints WHERE id = $1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrComplaintNotFound
	}
	if err != nil {
		return "", fmt.Errorf("lock complaint: %w", err)
	}
	return status, nil
}

func insertHistory(ctx context.Context, tx *sqlx.Tx, e *domain.StatusHistoryEntry) error {
	if e == nil {
		return nil
	}
	err := tx.QueryRowxContext(ctx, `
		INSERT INTO complaint_status_history (id, complaint_id, status, comment, actor_id, actor_kind, media, expected_resolution_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`,
		e.ID, e.ComplaintID, e.Status, e.Comment, e.ActorID, e.ActorKind, e.Media, e.ExpectedResolutionDate,
	).Scan(&e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert status history: %w", err)
	}
	return nil
}

func insertAction(ctx context.Context, tx *sqlx.Tx, a *domain.ComplaintAction) error {
	if a == nil {
		return nil
	}
	metadata := a.Metadata
	if len(metadata) == 0 {
		metadata = json.RawMessage(`{}`)
	}
	err := tx.QueryRowxContext(ctx, `
		INSERT INTO complaint_actions (id, complaint_id, action, actor_id, actor_kind, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		a.ID, a.ComplaintID, a.Action, a.ActorID, a.ActorKind, []byte(metadata),
	).Scan(&a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert complaint action: %w", err)
	}
	return nil
}

func containsStatus(list []domain.ComplaintStatus, s domain.ComplaintStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
