package notifier

import (
	"context"
	"fmt"
	"log"
	"strings"

	"monitor-precos/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram envia alertas de preço pelo Telegram
type Telegram struct {
	bot *tgbotapi.BotAPI
}

// NewTelegram inicializa o cliente do Telegram
func NewTelegram(token string) (*Telegram, error) {
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN não configurado. Verifique o arquivo .env")
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		if err.Error() == "Unauthorized" {
			return nil, fmt.Errorf("token do Telegram inválido ou expirado. Verifique o TELEGRAM_BOT_TOKEN no arquivo .env. Para obter um token, fale com @BotFather no Telegram")
		}
		return nil, fmt.Errorf("erro ao conectar com Telegram: %v", err)
	}

	bot.Debug = false
	log.Printf("Bot autorizado como: %s", bot.Self.UserName)
	return &Telegram{bot: bot}, nil
}

// SendPriceAlert envia o alerta de preço alvo atingido para o usuário
func (t *Telegram) SendPriceAlert(ctx context.Context, userID int64, product models.Product, currentPrice float64) error {
	message := fmt.Sprintf(
		"🎯 Preço alvo atingido!\n\n"+
			"📦 %s\n"+
			"💰 Preço atual: %s ₽\n"+
			"🎯 Preço alvo: %s ₽\n"+
			"🔗 %s",
		product.Title,
		FormatPrice(currentPrice),
		FormatPrice(product.TargetPrice),
		product.ProductURL,
	)

	msg := tgbotapi.NewMessage(userID, message)
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("erro ao enviar mensagem para o usuário %d: %w", userID, err)
	}
	return nil
}

// FormatPrice formata o preço com separador de milhar e duas casas decimais
func FormatPrice(price float64) string {
	formatted := fmt.Sprintf("%.2f", price)

	parts := strings.SplitN(formatted, ".", 2)
	integer, decimals := parts[0], parts[1]

	sign := ""
	if strings.HasPrefix(integer, "-") {
		sign = "-"
		integer = integer[1:]
	}

	var groups []string
	for len(integer) > 3 {
		groups = append([]string{integer[len(integer)-3:]}, groups...)
		integer = integer[:len(integer)-3]
	}
	groups = append([]string{integer}, groups...)

	return sign + strings.Join(groups, " ") + "." + decimals
}
