// Package mongostore is the MongoDB guild state store: one document per guild
// in the "state" collection and one document per imprisoned member in "prison".
package mongostore

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/hpungsan/courtbot/internal/court"
	"github.com/hpungsan/courtbot/internal/errors"
)

// Collection names.
const (
	StateCollection  = "state"
	PrisonCollection = "prison"
)

const connectTimeout = 10 * time.Second

// Options configures Connect.
type Options struct {
	URI      string
	Database string

	// Username and Password are optional; the URI may carry credentials instead.
	Username string
	Password string
}

// Store is the MongoDB guild state store. Updates use single-document
// operators ($set, $push, positional $) scoped by guild id.
type Store struct {
	client *mongo.Client
	state  *mongo.Collection
	prison *mongo.Collection
}

// Connect opens a client, pings the primary, and ensures indexes.
func Connect(ctx context.Context, opts Options) (*Store, error) {
	clientOpts := options.Client().
		ApplyURI(opts.URI).
		SetAppName("courtbot").
		SetConnectTimeout(connectTimeout)
	if opts.Username != "" {
		clientOpts.SetAuth(options.Credential{
			Username: opts.Username,
			Password: opts.Password,
		})
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := New(client.Database(opts.Database))
	s.client = client
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// New wraps an existing database handle. Close is a no-op for stores created this way.
func New(db *mongo.Database) *Store {
	return &Store{
		state:  db.Collection(StateCollection),
		prison: db.Collection(PrisonCollection),
	}
}

// Close disconnects the client opened by Connect.
func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the unique lookup indexes. Safe to call repeatedly.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.state.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "guild_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create state index: %w", err)
	}
	_, err = s.prison.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "guild_id", Value: 1}, {Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create prison index: %w", err)
	}
	return nil
}

// GetOrCreateState returns the guild's state, creating an empty document first if none exists.
func (s *Store) GetOrCreateState(ctx context.Context, guildID court.Snowflake) (*court.GuildState, error) {
	_, err := s.state.UpdateOne(ctx,
		guildFilter(guildID),
		bson.M{"$setOnInsert": emptyState()},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	var doc stateDoc
	err = s.state.FindOne(ctx, guildFilter(guildID)).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		// Cleared concurrently between upsert and read
		return nil, errors.NewNotFound("guild state", guildID.String())
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return doc.toState(), nil
}

// GetState returns the guild's state without writing. A guild with no
// document yields an empty state.
func (s *Store) GetState(ctx context.Context, guildID court.Snowflake) (*court.GuildState, error) {
	var doc stateDoc
	err := s.state.FindOne(ctx, guildFilter(guildID)).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return &court.GuildState{
			GuildID:    guildID,
			Lawsuits:   []court.Lawsuit{},
			CourtRooms: []court.CourtRoom{},
		}, nil
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return doc.toState(), nil
}

// SetCourtCategory stores the category new court rooms are created under.
func (s *Store) SetCourtCategory(ctx context.Context, guildID, categoryID court.Snowflake) error {
	return s.upsertGuild(ctx, guildID, bson.M{"$set": bson.M{"court_category": int64(categoryID)}})
}

// SetPrisonRole stores the punitive role.
func (s *Store) SetPrisonRole(ctx context.Context, guildID, roleID court.Snowflake) error {
	return s.upsertGuild(ctx, guildID, bson.M{"$set": bson.M{"prison_role": int64(roleID)}})
}

// AppendCourtRoom pushes a newly provisioned room onto the guild's document.
func (s *Store) AppendCourtRoom(ctx context.Context, guildID court.Snowflake, room court.CourtRoom) error {
	return s.upsertGuild(ctx, guildID, bson.M{"$push": bson.M{"court_rooms": toRoomDoc(room)}})
}

// AppendLawsuit pushes a lawsuit onto the guild's document.
func (s *Store) AppendLawsuit(ctx context.Context, guildID court.Snowflake, l court.Lawsuit) error {
	return s.upsertGuild(ctx, guildID, bson.M{"$push": bson.M{"lawsuits": toLawsuitDoc(l)}})
}

// SetCourtRoomOngoing flips the ongoing flag of the room with the given channel.
func (s *Store) SetCourtRoomOngoing(ctx context.Context, guildID, channelID court.Snowflake, ongoing bool) error {
	result, err := s.state.UpdateOne(ctx,
		bson.M{"guild_id": int64(guildID), "court_rooms.channel_id": int64(channelID)},
		bson.M{"$set": bson.M{"court_rooms.$.ongoing": ongoing}},
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	if result.MatchedCount == 0 {
		return errors.NewNotFound("court room", channelID.String())
	}
	return nil
}

// SetLawsuitVerdict records the verdict on a stored lawsuit.
func (s *Store) SetLawsuitVerdict(ctx context.Context, guildID court.Snowflake, lawsuitID, verdict string) error {
	result, err := s.state.UpdateOne(ctx,
		bson.M{"guild_id": int64(guildID), "lawsuits.id": lawsuitID},
		bson.M{"$set": bson.M{"lawsuits.$.verdict": verdict}},
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	if result.MatchedCount == 0 {
		return errors.NewNotFound("lawsuit", lawsuitID)
	}
	return nil
}

// DeleteGuild deletes the guild's state document. Prison entries are kept.
func (s *Store) DeleteGuild(ctx context.Context, guildID court.Snowflake) error {
	if _, err := s.state.DeleteOne(ctx, guildFilter(guildID)); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// UpsertPrisonEntry records the member as imprisoned. Re-inserting is a no-op.
func (s *Store) UpsertPrisonEntry(ctx context.Context, guildID, userID court.Snowflake) error {
	entry := prisonDoc{GuildID: int64(guildID), UserID: int64(userID)}
	_, err := s.prison.UpdateOne(ctx,
		prisonFilter(guildID, userID),
		bson.M{"$setOnInsert": entry},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// DeletePrisonEntry removes the member's prison entry. Deleting a missing entry is a no-op.
func (s *Store) DeletePrisonEntry(ctx context.Context, guildID, userID court.Snowflake) error {
	if _, err := s.prison.DeleteOne(ctx, prisonFilter(guildID, userID)); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// FindPrisonEntry returns the member's prison entry, or nil if they are not imprisoned.
func (s *Store) FindPrisonEntry(ctx context.Context, guildID, userID court.Snowflake) (*court.PrisonEntry, error) {
	var doc prisonDoc
	err := s.prison.FindOne(ctx, prisonFilter(guildID, userID)).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &court.PrisonEntry{
		GuildID: court.Snowflake(doc.GuildID),
		UserID:  court.Snowflake(doc.UserID),
	}, nil
}

// upsertGuild applies update to the guild's document, creating it if needed.
func (s *Store) upsertGuild(ctx context.Context, guildID court.Snowflake, update bson.M) error {
	_, err := s.state.UpdateOne(ctx, guildFilter(guildID), update, options.Update().SetUpsert(true))
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

func guildFilter(guildID court.Snowflake) bson.M {
	return bson.M{"guild_id": int64(guildID)}
}

func prisonFilter(guildID, userID court.Snowflake) bson.M {
	return bson.M{"guild_id": int64(guildID), "user_id": int64(userID)}
}
