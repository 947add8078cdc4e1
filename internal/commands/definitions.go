package commands

import (
	"github.com/bwmarrin/discordgo"

	"github.com/susu3304/epicgambler/internal/catalog"
)

func GetCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "help",
			Description: "Show what the bot can do",
		},
		{
			Name:        "balance",
			Description: "Show your coin balance",
		},
		{
			Name:        "shop",
			Description: "List the items you can redeem",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "page",
					Description: "Page of the listing",
					MinValue:    floatPtr(1),
				},
			},
		},
		{
			Name:        "redeem",
			Description: "Redeem a shop item with your coins",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "item_id",
					Description: "Item ID from /shop",
					Required:    true,
				},
			},
		},
		{
			Name:        "spin",
			Description: "Spin the daily wheel",
		},
		{
			Name:         "play",
			Description:  "Duel the bot at rock-paper-scissors",
			DMPermission: boolPtr(false),
		},
		{
			Name:         "quiz",
			Description:  "Start a quiz round in this channel (admin)",
			DMPermission: boolPtr(false),
		},
		{
			Name:         "add_shop",
			Description:  "Add an item to the shop (admin)",
			DMPermission: boolPtr(false),
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "name",
					Description: "Item name",
					Required:    true,
					MaxLength:   catalog.MaxNameRunes,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "description",
					Description: "Item description",
					Required:    true,
					MaxLength:   catalog.MaxDescriptionRunes,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "price",
					Description: "Price in coins",
					Required:    true,
					MinValue:    floatPtr(0),
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "payload",
					Description: "What the buyer receives (code, link, role note)",
					Required:    true,
					MaxLength:   catalog.MaxPayloadRunes,
				},
			},
		},
		relayCommand("send"),
		relayCommand("msgsend"),
	}
}

func relayCommand(name string) *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        name,
		Description: "Send a message to a specific channel (operator)",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "channel_id",
				Description: "Channel ID or mention",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "message",
				Description: "Message to send",
				Required:    true,
			},
		},
	}
}

func boolPtr(b bool) *bool {
	return &b
}

func floatPtr(f float64) *float64 {
	return &f
}
