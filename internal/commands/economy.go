package commands

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"github.com/susu3304/epicgambler/internal/catalog"
)

// Discord caps embeds at 25 fields, messages at 10 embeds and the text of
// all embeds in one message at 6000 characters.
const (
	shopFieldsPerEmbed = 25
	shopMaxEmbeds      = 10
	shopMaxChars       = 6000
	// shopFooterReserve leaves room for the page footer.
	shopFooterReserve = 100
)

func (h *Handler) handleBalance(ctx context.Context, s Session, i *discordgo.InteractionCreate, user *discordgo.User) error {
	balance, err := h.ledger.GetBalance(ctx, user.ID)
	if err != nil {
		return err
	}
	respondEphemeral(s, i, fmt.Sprintf("💰 You have **%d** coins.", balance))
	return nil
}

func (h *Handler) handleSpin(ctx context.Context, s Session, i *discordgo.InteractionCreate, user *discordgo.User) error {
	res, err := h.ledger.TrySpin(ctx, user.ID, h.ledger.Today())
	if err != nil {
		return err
	}
	respondText(s, i, fmt.Sprintf("🎰 <@%s> spun the wheel and won **%d** coins! Balance: %d", user.ID, res.Reward, res.Balance))
	return nil
}

func (h *Handler) handleShop(ctx context.Context, s Session, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) error {
	items, err := h.catalog.ListItems(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		respondEphemeral(s, i, "🛒 The shop is empty right now.")
		return nil
	}

	pages := shopPages(items)
	page := 1
	if p := getIntOption(data.Options, "page"); p != nil {
		page = int(*p)
	}
	if page < 1 || page > len(pages) {
		page = len(pages)
	}
	respondEmbeds(s, i, withFooter(pages[page-1], page, len(pages), len(items)))
	return nil
}

// shopPages splits the catalog into messages that each fit Discord's embed
// limits.
func shopPages(items []catalog.Item) [][]*discordgo.MessageEmbed {
	var (
		pages [][]*discordgo.MessageEmbed
		page  []*discordgo.MessageEmbed
		chars int
	)
	newPage := func() {
		if page != nil {
			pages = append(pages, page)
		}
		embed := &discordgo.MessageEmbed{
			Title:       "🛒 Shop",
			Description: "Use `/redeem <item_id>` to buy.",
			Color:       0xf1c40f,
		}
		page = []*discordgo.MessageEmbed{embed}
		chars = embedChars(embed)
	}

	for _, it := range items {
		field := shopField(it)
		size := runeLen(field.Name) + runeLen(field.Value)
		if page == nil || chars+size > shopMaxChars-shopFooterReserve {
			newPage()
		}
		if last := page[len(page)-1]; len(last.Fields) == shopFieldsPerEmbed {
			if len(page) == shopMaxEmbeds {
				newPage()
			} else {
				page = append(page, &discordgo.MessageEmbed{Color: 0xf1c40f})
			}
		}
		last := page[len(page)-1]
		last.Fields = append(last.Fields, field)
		chars += size
	}
	return append(pages, page)
}

func shopField(it catalog.Item) *discordgo.MessageEmbedField {
	desc := it.Description
	if desc == "" {
		desc = "\u200b"
	}
	return &discordgo.MessageEmbedField{
		Name:  fmt.Sprintf("#%d %s · %d coins", it.ID, it.Name, it.Price),
		Value: desc,
	}
}

func withFooter(page []*discordgo.MessageEmbed, n, total, items int) []*discordgo.MessageEmbed {
	text := fmt.Sprintf("Page %d/%d · %d items", n, total, items)
	if n < total {
		text += fmt.Sprintf(" · /shop page:%d for more", n+1)
	}
	page[len(page)-1].Footer = &discordgo.MessageEmbedFooter{Text: text}
	return page
}

func embedChars(e *discordgo.MessageEmbed) int {
	n := runeLen(e.Title) + runeLen(e.Description)
	if e.Footer != nil {
		n += runeLen(e.Footer.Text)
	}
	for _, f := range e.Fields {
		n += runeLen(f.Name) + runeLen(f.Value)
	}
	return n
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

func (h *Handler) handleRedeem(ctx context.Context, s Session, i *discordgo.InteractionCreate, user *discordgo.User, data discordgo.ApplicationCommandInteractionData) error {
	id := getIntOption(data.Options, "item_id")
	if id == nil {
		return errBadOption
	}
	res, err := h.ledger.TryRedeem(ctx, user.ID, *id)
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("🎁 You redeemed **%s** for %d coins. Remaining balance: %d", res.Item.Name, res.Item.Price, res.Balance)
	if res.Item.Payload != "" {
		msg += "\n" + res.Item.Payload
	}
	respondEphemeral(s, i, msg)
	return nil
}

func (h *Handler) handleAddShop(ctx context.Context, s Session, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) error {
	if !isAdmin(i.Member, h.cfg.AdminRoleID) {
		return errNotAdmin
	}
	name := getStringOption(data.Options, "name")
	desc := getStringOption(data.Options, "description")
	price := getIntOption(data.Options, "price")
	payload := getStringOption(data.Options, "payload")
	if name == nil || desc == nil || price == nil || payload == nil {
		return errBadOption
	}

	item, err := h.catalog.AddItem(ctx, catalog.NewItem{
		Name:        *name,
		Description: *desc,
		Price:       *price,
		Payload:     *payload,
	})
	if err != nil {
		return err
	}
	respondEphemeral(s, i, fmt.Sprintf("✅ Added **%s** to the shop as item #%d for %d coins.", item.Name, item.ID, item.Price))
	return nil
}
