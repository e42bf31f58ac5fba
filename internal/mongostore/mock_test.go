package mongostore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/hpungsan/courtbot/internal/court"
	"github.com/hpungsan/courtbot/internal/errors"
)

// These run against the driver's mock deployment and check the exact
// filter and update documents sent, without a server.

func newMock(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

// commands returns the bodies of the started commands with the given name.
func commands(mt *mtest.T, name string) []bson.Raw {
	var out []bson.Raw
	for _, ev := range mt.GetAllStartedEvents() {
		if ev.CommandName == name {
			out = append(out, ev.Command)
		}
	}
	return out
}

// lookup returns the value at path in doc, failing the test when absent.
func lookup(mt *mtest.T, doc bson.Raw, path ...string) bson.RawValue {
	mt.Helper()
	v, err := doc.LookupErr(path...)
	require.NoError(mt, err, "missing %v in %s", path, doc)
	return v
}

func updated(n int32) bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "n", Value: n}, bson.E{Key: "nModified", Value: n})
}

func TestMock_SetCourtRoomOngoing(t *testing.T) {
	mt := newMock(t)

	mt.Run("positional update", func(mt *mtest.T) {
		store := New(mt.DB)
		mt.AddMockResponses(updated(1))

		require.NoError(mt, store.SetCourtRoomOngoing(context.Background(), 7, 900, true))

		updates := commands(mt, "update")
		require.Len(mt, updates, 1)
		cmd := updates[0]
		require.Equal(mt, StateCollection, lookup(mt, cmd, "update").StringValue())
		require.Equal(mt, int64(7), lookup(mt, cmd, "updates", "0", "q", "guild_id").Int64())
		require.Equal(mt, int64(900), lookup(mt, cmd, "updates", "0", "q", "court_rooms.channel_id").Int64())
		require.True(mt, lookup(mt, cmd, "updates", "0", "u", "$set", "court_rooms.$.ongoing").Boolean())

		_, err := cmd.LookupErr("updates", "0", "upsert")
		require.Error(mt, err, "room update must not upsert")
	})

	mt.Run("no matching room", func(mt *mtest.T) {
		store := New(mt.DB)
		mt.AddMockResponses(updated(0))

		err := store.SetCourtRoomOngoing(context.Background(), 7, 901, false)
		require.True(mt, errors.Is(err, errors.ErrNotFound), "got %v", err)
	})
}

func TestMock_SetLawsuitVerdict(t *testing.T) {
	mt := newMock(t)

	mt.Run("positional update", func(mt *mtest.T) {
		store := New(mt.DB)
		mt.AddMockResponses(updated(1))

		require.NoError(mt, store.SetLawsuitVerdict(context.Background(), 7, "L1", "guilty"))

		updates := commands(mt, "update")
		require.Len(mt, updates, 1)
		cmd := updates[0]
		require.Equal(mt, int64(7), lookup(mt, cmd, "updates", "0", "q", "guild_id").Int64())
		require.Equal(mt, "L1", lookup(mt, cmd, "updates", "0", "q", "lawsuits.id").StringValue())
		require.Equal(mt, "guilty", lookup(mt, cmd, "updates", "0", "u", "$set", "lawsuits.$.verdict").StringValue())
	})

	mt.Run("no matching lawsuit", func(mt *mtest.T) {
		store := New(mt.DB)
		mt.AddMockResponses(updated(0))

		err := store.SetLawsuitVerdict(context.Background(), 7, "missing", "guilty")
		require.True(mt, errors.Is(err, errors.ErrNotFound), "got %v", err)
	})
}

func TestMock_UpsertPrisonEntry(t *testing.T) {
	mt := newMock(t)

	mt.Run("set on insert", func(mt *mtest.T) {
		store := New(mt.DB)
		mt.AddMockResponses(updated(1))

		require.NoError(mt, store.UpsertPrisonEntry(context.Background(), 7, 42))

		updates := commands(mt, "update")
		require.Len(mt, updates, 1)
		cmd := updates[0]
		require.Equal(mt, PrisonCollection, lookup(mt, cmd, "update").StringValue())
		require.True(mt, lookup(mt, cmd, "updates", "0", "upsert").Boolean())
		require.Equal(mt, int64(7), lookup(mt, cmd, "updates", "0", "q", "guild_id").Int64())
		require.Equal(mt, int64(42), lookup(mt, cmd, "updates", "0", "q", "user_id").Int64())
		require.Equal(mt, int64(42), lookup(mt, cmd, "updates", "0", "u", "$setOnInsert", "user_id").Int64())

		// An existing entry must never be overwritten
		_, err := cmd.LookupErr("updates", "0", "u", "$set")
		require.Error(mt, err)
	})
}

func TestMock_GetState(t *testing.T) {
	mt := newMock(t)
	ns := "courtbot." + StateCollection

	mt.Run("unknown guild reads only", func(mt *mtest.T) {
		store := New(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		state, err := store.GetState(context.Background(), 7)
		require.NoError(mt, err)
		require.Equal(mt, court.Snowflake(7), state.GuildID)
		require.NotNil(mt, state.Lawsuits)
		require.Empty(mt, state.Lawsuits)
		require.Empty(mt, state.CourtRooms)

		require.Empty(mt, commands(mt, "update"), "GetState must not write")
		finds := commands(mt, "find")
		require.Len(mt, finds, 1)
		require.Equal(mt, int64(7), lookup(mt, finds[0], "filter", "guild_id").Int64())
	})

	mt.Run("decodes stored document", func(mt *mtest.T) {
		store := New(mt.DB)
		doc := bson.D{
			{Key: "guild_id", Value: int64(7)},
			{Key: "prison_role", Value: int64(8)},
			{Key: "court_rooms", Value: bson.A{
				bson.D{{Key: "channel_id", Value: int64(900)}, {Key: "role_id", Value: int64(901)}, {Key: "ongoing", Value: true}},
			}},
			{Key: "lawsuits", Value: bson.A{}},
		}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, doc))

		state, err := store.GetState(context.Background(), 7)
		require.NoError(mt, err)
		require.NotNil(mt, state.PrisonRole)
		require.Equal(mt, court.Snowflake(8), *state.PrisonRole)
		require.Equal(mt, []court.CourtRoom{{ChannelID: 900, RoleID: 901, Ongoing: true}}, state.CourtRooms)
	})
}

func TestMock_GetOrCreateState(t *testing.T) {
	mt := newMock(t)

	mt.Run("upserts then reads", func(mt *mtest.T) {
		store := New(mt.DB)
		mt.AddMockResponses(
			updated(1),
			mtest.CreateCursorResponse(0, "courtbot."+StateCollection, mtest.FirstBatch,
				bson.D{{Key: "guild_id", Value: int64(7)}, {Key: "lawsuits", Value: bson.A{}}, {Key: "court_rooms", Value: bson.A{}}}),
		)

		state, err := store.GetOrCreateState(context.Background(), 7)
		require.NoError(mt, err)
		require.Equal(mt, court.Snowflake(7), state.GuildID)

		updates := commands(mt, "update")
		require.Len(mt, updates, 1)
		require.True(mt, lookup(mt, updates[0], "updates", "0", "upsert").Boolean())
		require.Equal(mt, bson.TypeArray, lookup(mt, updates[0], "updates", "0", "u", "$setOnInsert", "lawsuits").Type)
		require.Len(mt, commands(mt, "find"), 1)
	})
}
