package telegram

import (
	"context"
	"fmt"
	"strings"

	"go-jobscout/internal/models"
	"go-jobscout/internal/runs"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TopRecords is how many listings a run summary shows.
const TopRecords = 5

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot posts run summaries to a single chat.
type Bot struct {
	api    sender
	chatID int64
}

func NewBot(token string, chatID int64) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Bot{
		api:    api,
		chatID: chatID,
	}, nil
}

func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(",
		")", "\\)", "~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#",
		"+", "\\+", "-", "\\-", "=", "\\=", "|", "\\|", "{", "\\{",
		"}", "\\}", ".", "\\.", "!", "\\!",
	)
	return replacer.Replace(text)
}

// inside (...) of a link only ) and \ need escaping
func escapeLinkURL(u string) string {
	return strings.NewReplacer("\\", "\\\\", ")", "\\)").Replace(u)
}

func describeQuery(q models.SearchQuery) string {
	kw := q.Keyword
	if kw == "" {
		kw = "all"
	}
	city := q.City
	if city == "" {
		city = "anywhere"
	}
	return fmt.Sprintf("%ss: %s in %s", q.Kind, kw, city)
}

// BuildRunSummary renders a MarkdownV2 message for a finished run.
func BuildRunSummary(run *runs.Run) string {
	var b strings.Builder

	switch run.Status {
	case runs.StatusCompleted:
		b.WriteString("✅ *Run completed*\n")
	case runs.StatusCancelled:
		b.WriteString("🛑 *Run cancelled*\n")
	default:
		b.WriteString("❌ *Run failed*\n")
	}
	b.WriteString(fmt.Sprintf("🔎 %s\n", escapeMarkdown(describeQuery(run.Query))))

	if run.Error != "" {
		b.WriteString(fmt.Sprintf("⚠️ %s\n", escapeMarkdown(run.Error)))
	}

	res := run.Result
	if res == nil {
		return b.String()
	}

	b.WriteString(fmt.Sprintf("📄 Pages: %d", res.PagesProcessed))
	if len(res.SkippedPages) > 0 {
		skipped := make([]string, len(res.SkippedPages))
		for i, p := range res.SkippedPages {
			skipped[i] = fmt.Sprint(p)
		}
		b.WriteString(fmt.Sprintf(" \\(skipped %s\\)", escapeMarkdown(strings.Join(skipped, ", "))))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("📋 Listings: %d\n", len(res.Records)))

	for i, rec := range res.Records {
		if i == TopRecords {
			b.WriteString(fmt.Sprintf("… and %d more\n", len(res.Records)-TopRecords))
			break
		}
		b.WriteString(fmt.Sprintf("\n🏢 *%s* · %s\n", escapeMarkdown(rec.Position), escapeMarkdown(rec.Company)))
		if len(rec.RequiredSkills) > 0 {
			b.WriteString(fmt.Sprintf("📝 %s\n", escapeMarkdown(strings.Join(rec.RequiredSkills, ", "))))
		}
		if rec.Salary != "" {
			b.WriteString(fmt.Sprintf("💰 %s\n", escapeMarkdown(rec.Salary)))
		}
		b.WriteString(fmt.Sprintf("🔗 [View](%s)\n", escapeLinkURL(rec.URL)))
	}

	if run.ExportPath != "" {
		b.WriteString(fmt.Sprintf("\n💾 %s\n", escapeMarkdown(run.ExportPath)))
	}
	return b.String()
}

func (b *Bot) Name() string {
	return "telegram"
}

func (b *Bot) Notify(_ context.Context, run *runs.Run) error {
	msg := tgbotapi.NewMessage(b.chatID, BuildRunSummary(run))
	msg.ParseMode = "MarkdownV2"
	msg.DisableWebPagePreview = true
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) SendError(err error) error {
	msg := tgbotapi.NewMessage(b.chatID, fmt.Sprintf("❌ Error: %v", err))
	_, sendErr := b.api.Send(msg)
	return sendErr
}

func (b *Bot) SendStatus(message string) error {
	msg := tgbotapi.NewMessage(b.chatID, "ℹ️ "+message)
	_, err := b.api.Send(msg)
	return err
}
