package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"ddj/database"
	"ddj/domain/apperrors"
	"ddj/domain/entities"
)

// PlayerRepository implements the PlayerRepository interface
type PlayerRepository struct {
	q Queryable
}

// NewPlayerRepository creates a new player repository
func NewPlayerRepository(db *database.DB) *PlayerRepository {
	return &PlayerRepository{q: db.Pool}
}

func newPlayerRepository(q Queryable) *PlayerRepository {
	return &PlayerRepository{q: q}
}

const playerColumns = `id, username, balance, status, created_at`

func scanPlayer(row pgx.Row) (*entities.Player, error) {
	var p entities.Player
	err := row.Scan(&p.ID, &p.Username, &p.Balance, &p.Status, &p.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID retrieves a player by ID
func (r *PlayerRepository) GetByID(ctx context.Context, id int64) (*entities.Player, error) {
	query := fmt.Sprintf(`SELECT %s FROM players WHERE id = $1`, playerColumns)

	player, err := scanPlayer(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get player %d: %w", id, err)
	}
	return player, nil
}

// GetByIDForUpdate retrieves a player by ID with a row lock
func (r *PlayerRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Player, error) {
	query := fmt.Sprintf(`SELECT %s FROM players WHERE id = $1 FOR UPDATE`, playerColumns)

	player, err := scanPlayer(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get player %d for update: %w", id, err)
	}
	return player, nil
}

// GetByUsername retrieves a player by username
func (r *PlayerRepository) GetByUsername(ctx context.Context, username string) (*entities.Player, error) {
	query := fmt.Sprintf(`SELECT %s FROM players WHERE username = $1`, playerColumns)

	player, err := scanPlayer(r.q.QueryRow(ctx, query, username))
	if err != nil {
		return nil, fmt.Errorf("failed to get player %q: %w", username, err)
	}
	return player, nil
}

// Create inserts a new player with the given starting balance
func (r *PlayerRepository) Create(ctx context.Context, username string, balance int64) (*entities.Player, error) {
	query := `
		INSERT INTO players (username, balance)
		VALUES ($1, $2)
		RETURNING id, username, balance, status, created_at
	`

	player, err := scanPlayer(r.q.QueryRow(ctx, query, username, balance))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.Newf(apperrors.KindConflict, "username %q is taken", username)
		}
		return nil, fmt.Errorf("failed to create player %q: %w", username, err)
	}
	return player, nil
}

// UpdateBalance sets a player's balance
func (r *PlayerRepository) UpdateBalance(ctx context.Context, id int64, newBalance int64) error {
	query := `UPDATE players SET balance = $2 WHERE id = $1`

	tag, err := r.q.Exec(ctx, query, id, newBalance)
	if err != nil {
		return fmt.Errorf("failed to update balance for player %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("player %d not found", id)
	}
	return nil
}

// GetTopByBalance returns active players ordered by balance descending
func (r *PlayerRepository) GetTopByBalance(ctx context.Context, limit int) ([]*entities.Player, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM players
		WHERE status = $1
		ORDER BY balance DESC, id
		LIMIT $2
	`, playerColumns)

	rows, err := r.q.Query(ctx, query, string(entities.PlayerStatusActive), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	defer rows.Close()

	var players []*entities.Player
	for rows.Next() {
		var p entities.Player
		if err := rows.Scan(&p.ID, &p.Username, &p.Balance, &p.Status, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate players: %w", err)
	}
	return players, nil
}

// UpdateStatus sets a player's account status
func (r *PlayerRepository) UpdateStatus(ctx context.Context, id int64, status entities.PlayerStatus) error {
	query := `UPDATE players SET status = $2 WHERE id = $1`

	tag, err := r.q.Exec(ctx, query, id, string(status))
	if err != nil {
		return fmt.Errorf("failed to update status for player %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("player %d not found", id)
	}
	return nil
}
