package notify

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"strings"
	"time"
)

type Item struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Notification is the order status email request, also the JSON payload
// posted by FunctionSender.
type Notification struct {
	Email             string     `json:"email"`
	OrderID           string     `json:"orderId"`
	Status            string     `json:"status"`
	Items             []Item     `json:"items"`
	Total             float64    `json:"total"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery,omitempty"`
}

type Email struct {
	To      string
	Subject string
	HTML    string
}

type statusInfo struct {
	Subject string
	Heading string
	Message string
	Color   string
}

func statusInfoFor(status string) statusInfo {
	switch status {
	case "processing":
		return statusInfo{
			Subject: "Order Confirmed - We're preparing your order!",
			Heading: "Thank you for your order!",
			Message: "Your order has been received and is being processed. We'll notify you when it ships.",
			Color:   "#f59e0b",
		}
	case "shipped":
		return statusInfo{
			Subject: "Your order is on its way!",
			Heading: "Great news! Your order has shipped!",
			Message: "Your package is on its way to you. Track your delivery for the latest updates.",
			Color:   "#22c55e",
		}
	case "delivered":
		return statusInfo{
			Subject: "Your order has been delivered!",
			Heading: "Your order has arrived!",
			Message: "We hope you love your new gear! Don't forget to leave a review.",
			Color:   "#3b82f6",
		}
	default:
		return statusInfo{
			Subject: "Order Update",
			Heading: "Order Status Update",
			Message: "There's an update on your order.",
			Color:   "#6b7280",
		}
	}
}

//go:embed order_email.html
var orderEmailHTML string

var orderEmailTemplate = template.Must(
	template.New("order_email").Funcs(template.FuncMap{
		"money": func(amount float64) string {
			return fmt.Sprintf("$%.2f", amount)
		},
		"lineTotal": func(item Item) float64 {
			return item.Price * float64(item.Quantity)
		},
		"longDate": func(t time.Time) string {
			// e.g. Wednesday, March 20, 2024
			return t.Format("Monday, January 2, 2006")
		},
		// colours only ever come from statusInfoFor
		"css": func(s string) template.CSS {
			return template.CSS(s)
		},
	}).Parse(orderEmailHTML),
)

// Format renders the subject and HTML body of the notification.
func Format(n Notification) (Email, error) {
	info := statusInfoFor(n.Status)

	var body bytes.Buffer
	err := orderEmailTemplate.Execute(&body, struct {
		Notification
		Info        statusInfo
		StatusTitle string
	}{
		Notification: n,
		Info:         info,
		StatusTitle:  capitalize(n.Status),
	})
	if err != nil {
		return Email{}, fmt.Errorf("render order email: %w", err)
	}

	return Email{
		To:      n.Email,
		Subject: fmt.Sprintf("%s - Order #%s", info.Subject, n.OrderID),
		HTML:    body.String(),
	}, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
