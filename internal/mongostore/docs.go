package mongostore

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/hpungsan/courtbot/internal/court"
)

// Snowflakes are stored as int64; BSON has no unsigned 64-bit type.

type stateDoc struct {
	GuildID       int64        `bson:"guild_id"`
	Lawsuits      []lawsuitDoc `bson:"lawsuits"`
	CourtRooms    []roomDoc    `bson:"court_rooms"`
	CourtCategory *int64       `bson:"court_category,omitempty"`
	PrisonRole    *int64       `bson:"prison_role,omitempty"`
}

type lawsuitDoc struct {
	ID              string  `bson:"id"`
	Plaintiff       int64   `bson:"plaintiff"`
	Accused         int64   `bson:"accused"`
	Judge           int64   `bson:"judge"`
	PlaintiffLawyer *int64  `bson:"plaintiff_lawyer,omitempty"`
	AccusedLawyer   *int64  `bson:"accused_lawyer,omitempty"`
	Reason          string  `bson:"reason"`
	Verdict         *string `bson:"verdict,omitempty"`
	CourtRoom       int64   `bson:"court_room"`
}

type roomDoc struct {
	ChannelID int64 `bson:"channel_id"`
	RoleID    int64 `bson:"role_id"`
	Ongoing   bool  `bson:"ongoing"`
}

type prisonDoc struct {
	GuildID int64 `bson:"guild_id"`
	UserID  int64 `bson:"user_id"`
}

// emptyState is inserted the first time a guild is seen. guild_id comes from the upsert filter.
func emptyState() bson.M {
	return bson.M{
		"lawsuits":    bson.A{},
		"court_rooms": bson.A{},
	}
}

func (d stateDoc) toState() *court.GuildState {
	state := &court.GuildState{
		GuildID:       court.Snowflake(d.GuildID),
		Lawsuits:      make([]court.Lawsuit, 0, len(d.Lawsuits)),
		CourtRooms:    make([]court.CourtRoom, 0, len(d.CourtRooms)),
		CourtCategory: fromOptionalID(d.CourtCategory),
		PrisonRole:    fromOptionalID(d.PrisonRole),
	}
	for _, l := range d.Lawsuits {
		state.Lawsuits = append(state.Lawsuits, l.toLawsuit())
	}
	for _, r := range d.CourtRooms {
		state.CourtRooms = append(state.CourtRooms, court.CourtRoom{
			ChannelID: court.Snowflake(r.ChannelID),
			RoleID:    court.Snowflake(r.RoleID),
			Ongoing:   r.Ongoing,
		})
	}
	return state
}

func (d lawsuitDoc) toLawsuit() court.Lawsuit {
	return court.Lawsuit{
		ID:              d.ID,
		Plaintiff:       court.Snowflake(d.Plaintiff),
		Accused:         court.Snowflake(d.Accused),
		Judge:           court.Snowflake(d.Judge),
		PlaintiffLawyer: fromOptionalID(d.PlaintiffLawyer),
		AccusedLawyer:   fromOptionalID(d.AccusedLawyer),
		Reason:          d.Reason,
		Verdict:         d.Verdict,
		CourtRoom:       court.Snowflake(d.CourtRoom),
	}
}

func toLawsuitDoc(l court.Lawsuit) lawsuitDoc {
	return lawsuitDoc{
		ID:              l.ID,
		Plaintiff:       int64(l.Plaintiff),
		Accused:         int64(l.Accused),
		Judge:           int64(l.Judge),
		PlaintiffLawyer: toOptionalID(l.PlaintiffLawyer),
		AccusedLawyer:   toOptionalID(l.AccusedLawyer),
		Reason:          l.Reason,
		Verdict:         l.Verdict,
		CourtRoom:       int64(l.CourtRoom),
	}
}

func toRoomDoc(r court.CourtRoom) roomDoc {
	return roomDoc{
		ChannelID: int64(r.ChannelID),
		RoleID:    int64(r.RoleID),
		Ongoing:   r.Ongoing,
	}
}

func toOptionalID(id *court.Snowflake) *int64 {
	if id == nil {
		return nil
	}
	v := int64(*id)
	return &v
}

func fromOptionalID(v *int64) *court.Snowflake {
	if v == nil {
		return nil
	}
	id := court.Snowflake(*v)
	return &id
}
