// Package status keeps an uptime embed up to date in one Discord message.
package status

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const embedColor = 0x2ecc71

// Process holds the process-scoped state the reporter reads.
type Process struct {
	StartedAt time.Time
	Location  *time.Location
}

func NewProcess(loc *time.Location) *Process {
	return &Process{StartedAt: time.Now().In(loc), Location: loc}
}

// Minimal session interface for reading and editing the status message.
type statusSession interface {
	ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditEmbed(channelID, messageID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type Recorder interface {
	RecordStatusUpdate(ok bool)
}

type nopRecorder struct{}

func (nopRecorder) RecordStatusUpdate(bool) {}

type Reporter struct {
	session   statusSession
	process   *Process
	channelID string
	messageID string
	recorder  Recorder
	now       func() time.Time
}

func NewReporter(session statusSession, process *Process, channelID, messageID string, recorder Recorder) *Reporter {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Reporter{
		session:   session,
		process:   process,
		channelID: channelID,
		messageID: messageID,
		recorder:  recorder,
		now:       time.Now,
	}
}

// Tick refreshes the status message once. Errors are logged, never returned,
// so a scheduler can call it forever.
func (r *Reporter) Tick(ctx context.Context) {
	if err := r.Update(ctx); err != nil {
		r.recorder.RecordStatusUpdate(false)
		log.WithError(err).WithFields(log.Fields{
			"channel_id": r.channelID,
			"message_id": r.messageID,
		}).Warn("status: failed to update status message")
		return
	}
	r.recorder.RecordStatusUpdate(true)
}

func (r *Reporter) Update(ctx context.Context) error {
	if r.channelID == "" || r.messageID == "" {
		return fmt.Errorf("status message is not configured")
	}
	if _, err := r.session.ChannelMessage(r.channelID, r.messageID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("fetch status message: %w", err)
	}
	embed := BuildEmbed(r.process, r.now())
	if _, err := r.session.ChannelMessageEditEmbed(r.channelID, r.messageID, embed, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("edit status message: %w", err)
	}
	return nil
}

func BuildEmbed(p *Process, now time.Time) *discordgo.MessageEmbed {
	now = now.In(p.Location)
	start := p.StartedAt.In(p.Location)
	return &discordgo.MessageEmbed{
		Title: "🎲 EPIC GAMBLER BOT",
		Color: embedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🟩 STATUS", Value: "ONLINE ✅"},
			{Name: "🕒 START TIME", Value: start.Format("03:04 PM MST")},
			{Name: "⏱ UPTIME", Value: FormatUptime(now.Sub(start))},
			{Name: "🛎 LAST UPDATE", Value: now.Format("15:04:05 MST")},
		},
	}
}

// FormatUptime renders d as DDd:HHh:MMm:SSs.
func FormatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	days := total / 86400
	hours := total % 86400 / 3600
	minutes := total % 3600 / 60
	seconds := total % 60
	return fmt.Sprintf("%02dd:%02dh:%02dm:%02ds", days, hours, minutes, seconds)
}
