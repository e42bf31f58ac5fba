package court

// GuildState is the persisted per-guild record of lawsuits, court rooms, and settings.
// It is created lazily the first time a guild is seen.
type GuildState struct {
	// GuildID identifies the guild this record belongs to
	GuildID Snowflake `json:"guild_id"`

	// Lawsuits in creation order; closed lawsuits are kept
	Lawsuits []Lawsuit `json:"lawsuits"`

	// CourtRooms in provisioning order; rooms are recycled, never deleted
	CourtRooms []CourtRoom `json:"court_rooms"`

	// CourtCategory is the category new court room channels are created under (nullable)
	CourtCategory *Snowflake `json:"court_category,omitempty"`

	// PrisonRole is the punitive role applied to imprisoned members (nullable)
	PrisonRole *Snowflake `json:"prison_role,omitempty"`
}

// Lawsuit is one case with fixed participants and an eventual verdict.
type Lawsuit struct {
	// ID is a ULID generated at creation
	ID string `json:"id"`

	Plaintiff       Snowflake  `json:"plaintiff"`
	Accused         Snowflake  `json:"accused"`
	Judge           Snowflake  `json:"judge"`
	PlaintiffLawyer *Snowflake `json:"plaintiff_lawyer,omitempty"`
	AccusedLawyer   *Snowflake `json:"accused_lawyer,omitempty"`

	// Reason is the free-text complaint
	Reason string `json:"reason"`

	// Verdict is nil while the lawsuit is open
	Verdict *string `json:"verdict,omitempty"`

	// CourtRoom is the channel id of the room the lawsuit is bound to
	CourtRoom Snowflake `json:"court_room"`
}

// CourtRoom is a text channel paired with a dedicated role.
type CourtRoom struct {
	ChannelID Snowflake `json:"channel_id"`
	RoleID    Snowflake `json:"role_id"`
	Ongoing   bool      `json:"ongoing"`
}

// PrisonEntry marks a member as imprisoned in a guild. Its existence is the
// only record of imprisonment.
type PrisonEntry struct {
	GuildID Snowflake `json:"guild_id"`
	UserID  Snowflake `json:"user_id"`
}

// Open reports whether the lawsuit has no verdict yet.
func (l *Lawsuit) Open() bool {
	return l.Verdict == nil
}

// RoleHolders returns everyone who holds the court room role while the lawsuit
// runs, in grant order: accused, accused's lawyer, plaintiff, plaintiff's lawyer, judge.
func (l *Lawsuit) RoleHolders() []Snowflake {
	holders := make([]Snowflake, 0, 5)
	holders = append(holders, l.Accused)
	if l.AccusedLawyer != nil {
		holders = append(holders, *l.AccusedLawyer)
	}
	holders = append(holders, l.Plaintiff)
	if l.PlaintiffLawyer != nil {
		holders = append(holders, *l.PlaintiffLawyer)
	}
	holders = append(holders, l.Judge)
	return holders
}

// Lawyers returns the lawyers present on the lawsuit, accused side first.
func (l *Lawsuit) Lawyers() []Snowflake {
	var lawyers []Snowflake
	if l.AccusedLawyer != nil {
		lawyers = append(lawyers, *l.AccusedLawyer)
	}
	if l.PlaintiffLawyer != nil {
		lawyers = append(lawyers, *l.PlaintiffLawyer)
	}
	return lawyers
}

// FreeRoom returns the first court room without an ongoing lawsuit.
func (s *GuildState) FreeRoom() (CourtRoom, bool) {
	for _, r := range s.CourtRooms {
		if !r.Ongoing {
			return r, true
		}
	}
	return CourtRoom{}, false
}

// Room returns the court room whose channel is channelID.
func (s *GuildState) Room(channelID Snowflake) (CourtRoom, bool) {
	for _, r := range s.CourtRooms {
		if r.ChannelID == channelID {
			return r, true
		}
	}
	return CourtRoom{}, false
}

// OpenLawsuitIn returns the open lawsuit bound to the given court room channel.
func (s *GuildState) OpenLawsuitIn(channelID Snowflake) (Lawsuit, bool) {
	for _, l := range s.Lawsuits {
		if l.CourtRoom == channelID && l.Open() {
			return l, true
		}
	}
	return Lawsuit{}, false
}
