package services

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
	"time"

	"github.com/awsomeshop/rewards-be/config"
	"github.com/awsomeshop/rewards-be/models"
)

const (
	mailMaxAttempts = 3
	mailRetryDelay  = 2 * time.Second
)

// NotificationService sends transactional email to users. Delivery is best
// effort: failures are logged and never fail the action that triggered them.
// Disabled entirely when SMTP_ADDR is not configured.
type NotificationService struct {
	send  func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
	delay time.Duration
}

func NewNotificationService() *NotificationService {
	return &NotificationService{
		send:  smtp.SendMail,
		delay: mailRetryDelay,
	}
}

func (s *NotificationService) Enabled() bool {
	return os.Getenv("SMTP_ADDR") != ""
}

// SendRedemptionSuccess emails the user their redemption code once an order
// has committed. Call after the transaction; the order must carry its product.
func (s *NotificationService) SendRedemptionSuccess(userID uint, order *models.Order) {
	if !s.Enabled() {
		return
	}

	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		log.Printf("[MAIL] User %d not found for redemption notice: %v", userID, err)
		return
	}

	subject := fmt.Sprintf("Your redemption of %s is confirmed", order.Product.Name)
	if err := s.deliver(user.Email, subject, redemptionBody(&user, order)); err != nil {
		log.Printf("[MAIL] Failed to notify %s about order %d: %v", user.Email, order.ID, err)
	}
}

func redemptionBody(user *models.User, order *models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\r\n\r\n", user.Username)
	fmt.Fprintf(&b, "Your redemption of %s x%d is confirmed.\r\n\r\n", order.Product.Name, order.Quantity)
	fmt.Fprintf(&b, "Redemption code: %s\r\n", order.RedemptionCode)
	fmt.Fprintf(&b, "Points spent: %s\r\n\r\n", FormatPoints(order.PointsSpent))
	if order.Product.UsageInstructions != "" {
		fmt.Fprintf(&b, "How to use it:\r\n%s\r\n\r\n", order.Product.UsageInstructions)
	}
	b.WriteString("Enjoy!\r\nThe Rewards Shop\r\n")
	return b.String()
}

// deliver retries transient SMTP failures before giving up.
func (s *NotificationService) deliver(to, subject, body string) error {
	addr := os.Getenv("SMTP_ADDR")

	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = "rewards@awsomeshop.local"
	}

	var auth smtp.Auth
	if user := os.Getenv("SMTP_USER"); user != "" {
		host := addr
		if i := strings.IndexByte(addr, ':'); i >= 0 {
			host = addr[:i]
		}
		auth = smtp.PlainAuth("", user, os.Getenv("SMTP_PASSWORD"), host)
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		from, to, subject, body))

	var lastErr error
	for attempt := 1; attempt <= mailMaxAttempts; attempt++ {
		if lastErr = s.send(addr, auth, from, []string{to}, msg); lastErr == nil {
			return nil
		}
		log.Printf("[MAIL] Attempt %d/%d to %s failed: %v", attempt, mailMaxAttempts, to, lastErr)
		if attempt < mailMaxAttempts {
			time.Sleep(s.delay)
		}
	}
	return lastErr
}
