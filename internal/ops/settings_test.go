package ops

import (
	"context"
	"testing"

	"github.com/hpungsan/courtbot/internal/court"
)

func TestSetCourtCategory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	category := env.fake.AddCategory(testGuild, "Court")
	text := env.fake.AddChannel(testGuild, "general", nil)

	tests := []struct {
		name      string
		channelID court.Snowflake
		wantKind  court.Kind
		wantText  string
	}{
		{name: "text channel", channelID: text, wantKind: court.KindDenied, wantText: MsgNotACategory},
		{name: "unknown channel", channelID: 424242, wantKind: court.KindDenied, wantText: MsgNotACategory},
		{name: "category", channelID: category, wantKind: court.KindOK, wantText: MsgSettingSaved},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := env.svc.SetCourtCategory(ctx, testGuild, tt.channelID)
			if err != nil {
				t.Fatalf("SetCourtCategory failed: %v", err)
			}
			if resp.Kind != tt.wantKind || resp.Text != tt.wantText {
				t.Errorf("Response = %+v, want %v %q", resp, tt.wantKind, tt.wantText)
			}
		})
	}

	state := env.state(t)
	if state.CourtCategory == nil || *state.CourtCategory != category {
		t.Errorf("CourtCategory = %v, want %v", state.CourtCategory, category)
	}
}

func TestSetPrisonRole(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.svc.SetPrisonRole(context.Background(), testGuild, 77)
	if err != nil {
		t.Fatalf("SetPrisonRole failed: %v", err)
	}
	if resp.Text != MsgSettingSaved {
		t.Errorf("Response = %+v", resp)
	}
	if role := env.state(t).PrisonRole; role == nil || *role != 77 {
		t.Errorf("PrisonRole = %v, want 77", role)
	}
}

func TestClearGuild_KeepsPrisonEntries(t *testing.T) {
	env := newTestEnv(t)
	env.withCategory(t)
	env.withPrisonRole(t)
	ctx := context.Background()

	env.open(t, fullInput())
	if _, err := env.svc.Arrest(ctx, PrisonInput{GuildID: testGuild, UserID: accused}); err != nil {
		t.Fatalf("Arrest failed: %v", err)
	}

	resp, err := env.svc.ClearGuild(ctx, testGuild)
	if err != nil {
		t.Fatalf("ClearGuild failed: %v", err)
	}
	if resp.Text != MsgGuildCleared {
		t.Errorf("Response = %+v", resp)
	}

	state, err := env.svc.State(ctx, testGuild)
	if err != nil {
		t.Fatalf("State failed: %v", err)
	}
	if len(state.Lawsuits) != 0 || len(state.CourtRooms) != 0 || state.CourtCategory != nil || state.PrisonRole != nil {
		t.Errorf("state after clear = %+v, want empty", state)
	}

	imprisoned, err := env.svc.IsImprisoned(ctx, testGuild, accused)
	if err != nil {
		t.Fatalf("IsImprisoned failed: %v", err)
	}
	if !imprisoned {
		t.Error("prison entry did not survive clear")
	}
}

func TestListLawsuits(t *testing.T) {
	env := newTestEnv(t)
	env.withCategory(t)
	ctx := context.Background()

	first := env.open(t, fullInput())
	env.open(t, fullInput())
	if _, err := env.svc.Close(ctx, closeInput(first.Lawsuit.CourtRoom, judge, false, "guilty")); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	all, err := env.svc.ListLawsuits(ctx, ListLawsuitsInput{GuildID: testGuild})
	if err != nil {
		t.Fatalf("ListLawsuits failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("len(all) = %d, want 2", len(all))
	}

	open, err := env.svc.ListLawsuits(ctx, ListLawsuitsInput{GuildID: testGuild, OpenOnly: true})
	if err != nil {
		t.Fatalf("ListLawsuits failed: %v", err)
	}
	if len(open) != 1 || open[0].ID == first.Lawsuit.ID {
		t.Errorf("open = %+v, want only the second lawsuit", open)
	}
}
