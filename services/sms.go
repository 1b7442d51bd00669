package services

import (
	"fmt"
	"log"

	"lexfund_crm_go/config"
)

// SMSMessage represents a text message to a single recipient
type SMSMessage struct {
	To   string
	Body string
}

// SMSSender delivers text messages. The console implementation logs
// the message; a carrier-backed implementation can be dropped in
// behind the same interface.
type SMSSender interface {
	Send(msg *SMSMessage) error
}

// SMS is the global SMS sender instance
var SMS SMSSender

// InitializeSMS sets up the SMS sender based on configuration
func InitializeSMS(cfg *config.Config) {
	SMS = &ConsoleSMSSender{from: cfg.SMSFrom}
	if cfg.SMSTestMode {
		log.Println("SMS sender initialized (console, test mode)")
	} else {
		log.Println("[WARNING] No SMS carrier configured; messages will be logged, not delivered")
	}
}

// ConsoleSMSSender logs messages instead of delivering them
type ConsoleSMSSender struct {
	from string
}

// Send logs the message to the console
func (s *ConsoleSMSSender) Send(msg *SMSMessage) error {
	if msg.To == "" {
		return fmt.Errorf("sms recipient is required")
	}
	log.Println("========== SMS (console, not delivered) ==========")
	log.Printf("From: %s", s.from)
	log.Printf("To:   %s", msg.To)
	log.Printf("Body: %s", msg.Body)
	log.Println("==================================================")
	return nil
}
