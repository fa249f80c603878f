package adapter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	chat "subdesk/internal/pkg/chat/application/domain"
	repository "subdesk/internal/repository/port"
)

// PgDirectory reads the account tables owned by the marketplace app.
// Users and schools live in separate tables; a school id that misses the
// user table is retried against the school table.
type PgDirectory struct {
	pool *pgxpool.Pool
}

func NewPgDirectory(pool *pgxpool.Pool) *PgDirectory {
	return &PgDirectory{pool: pool}
}

var _ repository.Directory = (*PgDirectory)(nil)

func (d *PgDirectory) FindParticipant(ctx context.Context, id string) (repository.Participant, error) {
	if d == nil || d.pool == nil {
		return repository.Participant{}, errors.New("PgDirectory: nil pool")
	}

	var name string
	err := d.pool.QueryRow(ctx,
		`SELECT full_name FROM app.user_profile WHERE user_id = $1`, id,
	).Scan(&name)
	if err == nil {
		return repository.Participant{ID: id, Kind: chat.MemberKindUser, DisplayName: name}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return repository.Participant{}, err
	}

	err = d.pool.QueryRow(ctx,
		`SELECT school_name FROM app.school_profile WHERE school_id = $1`, id,
	).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.Participant{}, repository.ErrParticipantNotFound
	}
	if err != nil {
		return repository.Participant{}, err
	}
	return repository.Participant{ID: id, Kind: chat.MemberKindSchool, DisplayName: name}, nil
}
