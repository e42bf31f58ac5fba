package bot

import "github.com/bwmarrin/discordgo"

// Command and option names.
const (
	cmdLawsuit = "lawsuit"
	cmdPrison  = "prison"

	subCreate      = "create"
	subSetCategory = "set_category"
	subClose       = "close"
	subClear       = "clear"
	subArrest      = "arrest"
	subRelease     = "release"
	subSetRole     = "set_role"

	optPlaintiff       = "plaintiff"
	optAccused         = "accused"
	optJudge           = "judge"
	optReason          = "reason"
	optPlaintiffLawyer = "plaintiff_lawyer"
	optAccusedLawyer   = "accused_lawyer"
	optCategory        = "category"
	optVerdict         = "verdict"
	optUser            = "user"
	optRole            = "role"
)

// Commands returns the slash command schema.
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        cmdLawsuit,
			Description: "Run a lawsuit",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        subCreate,
					Description: "Open a new lawsuit",
					Options: []*discordgo.ApplicationCommandOption{
						userOption(optPlaintiff, "The plaintiff", true),
						userOption(optAccused, "The accused", true),
						userOption(optJudge, "The judge", true),
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        optReason,
							Description: "The reason for the lawsuit",
							Required:    true,
						},
						userOption(optPlaintiffLawyer, "The plaintiff's lawyer", false),
						userOption(optAccusedLawyer, "The accused's lawyer", false),
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        subSetCategory,
					Description: "Set the category court rooms are created in",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:         discordgo.ApplicationCommandOptionChannel,
							Name:         optCategory,
							Description:  "The category",
							Required:     true,
							ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildCategory},
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        subClose,
					Description: "Close the lawsuit of this court room",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        optVerdict,
							Description: "The verdict",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        subClear,
					Description: "Delete all lawsuit data of this server",
				},
			},
		},
		{
			Name:        cmdPrison,
			Description: "Lock people up",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        subArrest,
					Description: "Lock someone up",
					Options: []*discordgo.ApplicationCommandOption{
						userOption(optUser, "The person to lock up", true),
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        subRelease,
					Description: "Set someone free",
					Options: []*discordgo.ApplicationCommandOption{
						userOption(optUser, "The person to set free", true),
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        subSetRole,
					Description: "Set the role for prisoners",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionRole,
							Name:        optRole,
							Description: "The role",
							Required:    true,
						},
					},
				},
			},
		},
	}
}

func userOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        name,
		Description: description,
		Required:    required,
	}
}
