package ops

import (
	"fmt"

	"github.com/hpungsan/courtbot/internal/court"
	"github.com/hpungsan/courtbot/internal/platform"
)

// User-facing texts produced by the operations.
const (
	MsgConfigureCategory  = "Configure a category for the court rooms first with `/lawsuit set_category`"
	MsgRoomChannelGone    = "I could not find the channel to open the lawsuit in"
	MsgClosingChannelGone = "I could not find the channel of this lawsuit"
	MsgNoActiveLawsuit    = "There is no active lawsuit in this channel!"
	MsgLawsuitClosed      = "The lawsuit is closed"
	MsgNotACategory       = "That is not a category!"
	MsgSettingSaved       = "Setting saved"
	MsgGuildCleared       = "All lawsuit data is gone"
	MsgConfigurePrison    = "Set a prison role first with `/prison set_role`"
	MsgArrested           = "Locked them up"
	MsgReleased           = "Freedom awaits"

	MsgMissingParticipants = "A lawsuit needs a plaintiff, an accused and a judge"
	MsgMissingReason       = "Give a reason for the lawsuit"
	MsgMissingVerdict      = "Give a verdict to close the lawsuit"
)

const tbd = "TBD"

func msgLawsuitOpened(channelID court.Snowflake) string {
	return "Opened the lawsuit in " + channelID.ChannelMention()
}

func msgWrongCategory(channelName string) string {
	return fmt.Sprintf("The channel %s is in the wrong category", channelName)
}

// caseFields lists the participants and the reason, lawyers shown as TBD when absent.
func caseFields(l court.Lawsuit) []platform.Field {
	return []platform.Field{
		{Name: "Reason", Value: l.Reason},
		{Name: "Plaintiff", Value: l.Plaintiff.Mention()},
		{Name: "Plaintiff's lawyer", Value: optionalMention(l.PlaintiffLawyer)},
		{Name: "Accused", Value: l.Accused.Mention()},
		{Name: "Accused's lawyer", Value: optionalMention(l.AccusedLawyer)},
		{Name: "Judge", Value: l.Judge.Mention()},
	}
}

func openingEmbed(l court.Lawsuit) platform.Embed {
	return platform.Embed{Title: "Lawsuit", Fields: caseFields(l)}
}

func closingEmbed(l court.Lawsuit, verdict string) platform.Embed {
	fields := append(caseFields(l), platform.Field{Name: "Verdict", Value: verdict})
	return platform.Embed{Title: "Lawsuit closed", Fields: fields}
}

func optionalMention(id *court.Snowflake) string {
	if id == nil {
		return tbd
	}
	return id.Mention()
}
