package services

import (
	"fmt"
	"log"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramClient é o cliente do Bot API usado para enviar lembretes de agenda
type TelegramClient struct {
	bot *tgbotapi.BotAPI
}

// NewTelegramClient cria um novo cliente Telegram a partir do token do bot
func NewTelegramClient(token string) (*TelegramClient, error) {
	if token == "" {
		return nil, fmt.Errorf("token do Telegram não configurado")
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("erro ao criar bot do Telegram: %w", err)
	}

	bot.Debug = false
	log.Printf("✅ Bot do Telegram autorizado: %s", bot.Self.UserName)

	return &TelegramClient{bot: bot}, nil
}

// SendMessage envia uma mensagem HTML para o chat indicado
func (tc *TelegramClient) SendMessage(chatID string, message string) error {
	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("chat ID inválido: %s", chatID)
	}

	msg := tgbotapi.NewMessage(chatIDInt, message)
	msg.ParseMode = tgbotapi.ModeHTML

	if _, err := tc.bot.Send(msg); err != nil {
		return fmt.Errorf("erro ao enviar mensagem: %w", err)
	}
	return nil
}
