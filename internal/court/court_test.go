package court

import (
	"reflect"
	"testing"
)

func TestLawsuit_RoleHolders(t *testing.T) {
	tests := []struct {
		name    string
		lawsuit Lawsuit
		want    []Snowflake
	}{
		{
			name:    "no lawyers",
			lawsuit: Lawsuit{Plaintiff: 1, Accused: 2, Judge: 3},
			want:    []Snowflake{2, 1, 3},
		},
		{
			name: "both lawyers",
			lawsuit: Lawsuit{
				Plaintiff: 1, Accused: 2, Judge: 3,
				PlaintiffLawyer: Snowflake(4).Ptr(),
				AccusedLawyer:   Snowflake(5).Ptr(),
			},
			want: []Snowflake{2, 5, 1, 4, 3},
		},
		{
			name: "plaintiff lawyer only",
			lawsuit: Lawsuit{
				Plaintiff: 1, Accused: 2, Judge: 3,
				PlaintiffLawyer: Snowflake(4).Ptr(),
			},
			want: []Snowflake{2, 1, 4, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.lawsuit.RoleHolders()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("RoleHolders() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLawsuit_Lawyers(t *testing.T) {
	l := Lawsuit{AccusedLawyer: Snowflake(5).Ptr(), PlaintiffLawyer: Snowflake(4).Ptr()}
	if got := l.Lawyers(); !reflect.DeepEqual(got, []Snowflake{5, 4}) {
		t.Errorf("Lawyers() = %v, want [5 4]", got)
	}

	empty := Lawsuit{}
	if got := empty.Lawyers(); len(got) != 0 {
		t.Errorf("Lawyers() = %v, want empty", got)
	}
}

func TestLawsuit_Open(t *testing.T) {
	l := Lawsuit{}
	if !l.Open() {
		t.Error("Open() = false for lawsuit without verdict")
	}
	verdict := "guilty"
	l.Verdict = &verdict
	if l.Open() {
		t.Error("Open() = true for lawsuit with verdict")
	}
}

func TestGuildState_FreeRoom(t *testing.T) {
	state := GuildState{
		CourtRooms: []CourtRoom{
			{ChannelID: 10, RoleID: 20, Ongoing: true},
			{ChannelID: 11, RoleID: 21, Ongoing: false},
			{ChannelID: 12, RoleID: 22, Ongoing: false},
		},
	}

	room, ok := state.FreeRoom()
	if !ok {
		t.Fatal("FreeRoom() found nothing")
	}
	if room.ChannelID != 11 {
		t.Errorf("FreeRoom().ChannelID = %d, want 11", room.ChannelID)
	}

	busy := GuildState{CourtRooms: []CourtRoom{{ChannelID: 10, Ongoing: true}}}
	if _, ok := busy.FreeRoom(); ok {
		t.Error("FreeRoom() found a room although all are ongoing")
	}
}

func TestGuildState_OpenLawsuitIn(t *testing.T) {
	closed := "innocent"
	state := GuildState{
		Lawsuits: []Lawsuit{
			{ID: "a", CourtRoom: 10, Verdict: &closed},
			{ID: "b", CourtRoom: 10},
			{ID: "c", CourtRoom: 11},
		},
	}

	l, ok := state.OpenLawsuitIn(10)
	if !ok || l.ID != "b" {
		t.Errorf("OpenLawsuitIn(10) = %q, %v; want b, true", l.ID, ok)
	}
	if _, ok := state.OpenLawsuitIn(99); ok {
		t.Error("OpenLawsuitIn(99) found a lawsuit")
	}
}

func TestGuildState_Room(t *testing.T) {
	state := GuildState{CourtRooms: []CourtRoom{{ChannelID: 10, RoleID: 20}}}
	room, ok := state.Room(10)
	if !ok || room.RoleID != 20 {
		t.Errorf("Room(10) = %+v, %v", room, ok)
	}
	if _, ok := state.Room(11); ok {
		t.Error("Room(11) should not exist")
	}
}

func TestNaming(t *testing.T) {
	if got := RoomName(1); got != "room-1" {
		t.Errorf("RoomName(1) = %q", got)
	}
	if got := RoleName(3); got != "process-3" {
		t.Errorf("RoleName(3) = %q", got)
	}
}

func TestParseSnowflake(t *testing.T) {
	tests := []struct {
		in      string
		want    Snowflake
		wantErr bool
	}{
		{in: "80351110224678912", want: 80351110224678912},
		{in: " 42 ", want: 42},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "-1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSnowflake(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseSnowflake(%q) expected error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSnowflake(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseSnowflake(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestSnowflake_Mentions(t *testing.T) {
	id := Snowflake(42)
	if id.Mention() != "<@42>" {
		t.Errorf("Mention() = %q", id.Mention())
	}
	if id.ChannelMention() != "<#42>" {
		t.Errorf("ChannelMention() = %q", id.ChannelMention())
	}
}

func TestResponse(t *testing.T) {
	if OK("done").Denied() {
		t.Error("OK response reported as denied")
	}
	if !Deny("nope").Denied() {
		t.Error("Deny response not reported as denied")
	}
	r := NoPermission()
	if !r.Denied() || r.Kind != KindNoPermission {
		t.Errorf("NoPermission() = %+v", r)
	}
}
