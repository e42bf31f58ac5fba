package db

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/hpungsan/courtbot/internal/court"
	"github.com/hpungsan/courtbot/internal/errors"
)

// Store is the SQLite guild state store. Every method is scoped by guild id
// and reads current state; nothing is cached between calls.
type Store struct {
	db *sql.DB
}

// NewStore wraps an initialized database (see Init).
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// GetOrCreateState returns the guild's state, creating an empty record first if none exists.
func (s *Store) GetOrCreateState(ctx context.Context, guildID court.Snowflake) (*court.GuildState, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO guild_states (guild_id, created_at) VALUES (?, ?)`,
		int64(guildID), time.Now().Unix(),
	)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	state, found, err := s.loadState(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if !found {
		// Cleared concurrently between insert and select
		return nil, errors.NewNotFound("guild state", guildID.String())
	}
	return state, nil
}

// GetState returns the guild's state without writing. A guild with no record
// yields an empty state.
func (s *Store) GetState(ctx context.Context, guildID court.Snowflake) (*court.GuildState, error) {
	state, _, err := s.loadState(ctx, guildID)
	return state, err
}

// loadState reads the settings row, rooms, and lawsuits. found is false when
// the guild has no settings row; the returned state is then empty.
func (s *Store) loadState(ctx context.Context, guildID court.Snowflake) (*court.GuildState, bool, error) {
	state := &court.GuildState{
		GuildID:    guildID,
		Lawsuits:   []court.Lawsuit{},
		CourtRooms: []court.CourtRoom{},
	}

	var category, prisonRole sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT court_category, prison_role FROM guild_states WHERE guild_id = ?`,
		int64(guildID),
	).Scan(&category, &prisonRole)
	if err == sql.ErrNoRows {
		return state, false, nil
	}
	if err != nil {
		return nil, false, errors.NewInternal(err)
	}
	state.CourtCategory = fromNullID(category)
	state.PrisonRole = fromNullID(prisonRole)

	rooms, err := s.courtRooms(ctx, guildID)
	if err != nil {
		return nil, false, err
	}
	state.CourtRooms = rooms

	lawsuits, err := s.lawsuits(ctx, guildID)
	if err != nil {
		return nil, false, err
	}
	state.Lawsuits = lawsuits

	return state, true, nil
}

func (s *Store) courtRooms(ctx context.Context, guildID court.Snowflake) ([]court.CourtRoom, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT channel_id, role_id, ongoing
		FROM court_rooms
		WHERE guild_id = ?
		ORDER BY rowid
	`, int64(guildID))
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	rooms := []court.CourtRoom{}
	for rows.Next() {
		var channelID, roleID int64
		var ongoing bool
		if err := rows.Scan(&channelID, &roleID, &ongoing); err != nil {
			return nil, errors.NewInternal(err)
		}
		rooms = append(rooms, court.CourtRoom{
			ChannelID: court.Snowflake(channelID),
			RoleID:    court.Snowflake(roleID),
			Ongoing:   ongoing,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return rooms, nil
}

func (s *Store) lawsuits(ctx context.Context, guildID court.Snowflake) ([]court.Lawsuit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, plaintiff, accused, judge, plaintiff_lawyer, accused_lawyer,
			reason, verdict, court_room
		FROM lawsuits
		WHERE guild_id = ?
		ORDER BY rowid
	`, int64(guildID))
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	lawsuits := []court.Lawsuit{}
	for rows.Next() {
		var (
			l                               court.Lawsuit
			plaintiff, accused, judge, room int64
			plaintiffLawyer, accusedLawyer  sql.NullInt64
			verdict                         sql.NullString
		)
		err := rows.Scan(&l.ID, &plaintiff, &accused, &judge, &plaintiffLawyer, &accusedLawyer,
			&l.Reason, &verdict, &room)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		l.Plaintiff = court.Snowflake(plaintiff)
		l.Accused = court.Snowflake(accused)
		l.Judge = court.Snowflake(judge)
		l.PlaintiffLawyer = fromNullID(plaintiffLawyer)
		l.AccusedLawyer = fromNullID(accusedLawyer)
		l.CourtRoom = court.Snowflake(room)
		if verdict.Valid {
			l.Verdict = &verdict.String
		}
		lawsuits = append(lawsuits, l)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return lawsuits, nil
}

// SetCourtCategory stores the category new court rooms are created under.
func (s *Store) SetCourtCategory(ctx context.Context, guildID, categoryID court.Snowflake) error {
	return s.setGuildField(ctx, guildID, "court_category", categoryID)
}

// SetPrisonRole stores the punitive role.
func (s *Store) SetPrisonRole(ctx context.Context, guildID, roleID court.Snowflake) error {
	return s.setGuildField(ctx, guildID, "prison_role", roleID)
}

// setGuildField upserts a single settings column. column is never user input.
func (s *Store) setGuildField(ctx context.Context, guildID court.Snowflake, column string, value court.Snowflake) error {
	query := `
		INSERT INTO guild_states (guild_id, ` + column + `, created_at) VALUES (?, ?, ?)
		ON CONFLICT(guild_id) DO UPDATE SET ` + column + ` = excluded.` + column
	_, err := s.db.ExecContext(ctx, query, int64(guildID), int64(value), time.Now().Unix())
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// AppendCourtRoom adds a newly provisioned room to the guild.
func (s *Store) AppendCourtRoom(ctx context.Context, guildID court.Snowflake, room court.CourtRoom) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO court_rooms (guild_id, channel_id, role_id, ongoing)
		VALUES (?, ?, ?, ?)
	`, int64(guildID), int64(room.ChannelID), int64(room.RoleID), room.Ongoing)
	if err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewConflict("court room already exists for channel " + room.ChannelID.String())
		}
		return errors.NewInternal(err)
	}
	return nil
}

// AppendLawsuit adds a lawsuit to the guild.
func (s *Store) AppendLawsuit(ctx context.Context, guildID court.Snowflake, l court.Lawsuit) error {
	var verdict sql.NullString
	if l.Verdict != nil {
		verdict = sql.NullString{String: *l.Verdict, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO lawsuits (
			id, guild_id, plaintiff, accused, judge, plaintiff_lawyer, accused_lawyer,
			reason, verdict, court_room, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		l.ID, int64(guildID), int64(l.Plaintiff), int64(l.Accused), int64(l.Judge),
		toNullID(l.PlaintiffLawyer), toNullID(l.AccusedLawyer),
		l.Reason, verdict, int64(l.CourtRoom), time.Now().Unix(),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewConflict("lawsuit already exists: " + l.ID)
		}
		return errors.NewInternal(err)
	}
	return nil
}

// SetCourtRoomOngoing flips the ongoing flag of the room with the given channel.
func (s *Store) SetCourtRoomOngoing(ctx context.Context, guildID, channelID court.Snowflake, ongoing bool) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE court_rooms SET ongoing = ?
		WHERE guild_id = ? AND channel_id = ?
	`, ongoing, int64(guildID), int64(channelID))
	if err != nil {
		return errors.NewInternal(err)
	}
	return requireRow(result, "court room", channelID.String())
}

// SetLawsuitVerdict records the verdict on a stored lawsuit.
func (s *Store) SetLawsuitVerdict(ctx context.Context, guildID court.Snowflake, lawsuitID, verdict string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE lawsuits SET verdict = ?
		WHERE guild_id = ? AND id = ?
	`, verdict, int64(guildID), lawsuitID)
	if err != nil {
		return errors.NewInternal(err)
	}
	return requireRow(result, "lawsuit", lawsuitID)
}

// DeleteGuild erases the guild's state record: settings, rooms, and lawsuits.
// Prison entries are kept.
func (s *Store) DeleteGuild(ctx context.Context, guildID court.Snowflake) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, query := range []string{
		`DELETE FROM lawsuits WHERE guild_id = ?`,
		`DELETE FROM court_rooms WHERE guild_id = ?`,
		`DELETE FROM guild_states WHERE guild_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, query, int64(guildID)); err != nil {
			return errors.NewInternal(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// UpsertPrisonEntry records the member as imprisoned. Re-inserting is a no-op.
func (s *Store) UpsertPrisonEntry(ctx context.Context, guildID, userID court.Snowflake) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO prison_entries (guild_id, user_id, created_at)
		VALUES (?, ?, ?)
	`, int64(guildID), int64(userID), time.Now().Unix())
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// DeletePrisonEntry removes the member's prison entry. Deleting a missing entry is a no-op.
func (s *Store) DeletePrisonEntry(ctx context.Context, guildID, userID court.Snowflake) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM prison_entries WHERE guild_id = ? AND user_id = ?
	`, int64(guildID), int64(userID))
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// FindPrisonEntry returns the member's prison entry, or nil if they are not imprisoned.
func (s *Store) FindPrisonEntry(ctx context.Context, guildID, userID court.Snowflake) (*court.PrisonEntry, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `
		SELECT 1 FROM prison_entries WHERE guild_id = ? AND user_id = ?
	`, int64(guildID), int64(userID)).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &court.PrisonEntry{GuildID: guildID, UserID: userID}, nil
}

// requireRow maps an update that matched nothing to NOT_FOUND.
func requireRow(result sql.Result, kind, identifier string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(kind, identifier)
	}
	return nil
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	// SQLite returns "UNIQUE constraint failed: ..." for unique violations
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// toNullID converts an optional snowflake to sql.NullInt64.
func toNullID(id *court.Snowflake) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*id), Valid: true}
}

// fromNullID converts a sql.NullInt64 to an optional snowflake.
func fromNullID(n sql.NullInt64) *court.Snowflake {
	if !n.Valid {
		return nil
	}
	id := court.Snowflake(n.Int64)
	return &id
}
