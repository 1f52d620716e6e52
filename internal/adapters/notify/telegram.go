package notify

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/nmoreno/courtpulse/internal/domain"
)

// Telegram implementa ports.Notifier enviando mensajes a un chat.
// Solo alerta triggers y desenlaces de señales propias; el resto del log
// vive en la base de datos.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegram crea el notificador. Falla si el token no autentica.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("notify.NewTelegram: auth bot: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatID}, nil
}

// NotifyTrigger envía la alerta de un trigger.
func (t *Telegram) NotifyTrigger(_ context.Context, obs domain.GameObservation) error {
	var sb strings.Builder

	if obs.ConfidenceScore >= exceptionalConfidence {
		sb.WriteString("🔥 ")
	}
	fmt.Fprintf(&sb, "*%s* — %s vs %s\n", strings.ToUpper(string(obs.BetType)), obs.HomeTeam, obs.AwayTeam)
	fmt.Fprintf(&sb, "Score %d-%d, P%d %d:%02d\n",
		obs.HomeScore, obs.AwayScore, obs.Period, obs.MinutesRemaining, obs.SecondsRemaining)
	if obs.OULine != nil {
		fmt.Fprintf(&sb, "Line %.1f", *obs.OULine)
		if obs.ProjectedFinal != nil {
			fmt.Fprintf(&sb, " | proj %.1f", *obs.ProjectedFinal)
		}
		sb.WriteString("\n")
	}
	if obs.RequiredPPM != nil && obs.CurrentPPM != nil {
		fmt.Fprintf(&sb, "Req %.2f ppm | cur %.2f ppm\n", *obs.RequiredPPM, *obs.CurrentPPM)
	}
	fmt.Fprintf(&sb, "Confidence %.0f → %.1f units", obs.ConfidenceScore, obs.UnitSize)
	if obs.Notes != "" {
		fmt.Fprintf(&sb, "\n_%s_", obs.Notes)
	}

	return t.send(sb.String())
}

// NotifyResult envía el desenlace solo si hubo señal propia.
func (t *Telegram) NotifyResult(_ context.Context, res domain.GameResult) error {
	if !res.OurTrigger {
		return nil
	}

	icon := "➖"
	switch res.Outcome {
	case domain.OutcomeWin:
		icon = "✅"
	case domain.OutcomeLoss:
		icon = "❌"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s *%s* — %s %d, %s %d (total %d)\n",
		icon, strings.ToUpper(string(res.Outcome)),
		res.HomeTeam, res.FinalHomeScore, res.AwayTeam, res.FinalAwayScore, res.FinalTotal)
	fmt.Fprintf(&sb, "%s %.1fu → %+.2fu", strings.ToUpper(string(res.TriggerSide)), res.MaxUnits, res.UnitProfit)
	if res.WentToOT {
		sb.WriteString(" (OT)")
	}

	return t.send(sb.String())
}

func (t *Telegram) send(text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("notify.Telegram: send message: %w", err)
	}
	return nil
}
