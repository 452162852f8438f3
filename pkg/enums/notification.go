package enums

import "fmt"

// NotificationType maps to the notification_type enum in Postgres.
type NotificationType string

const (
	NotificationPayment    NotificationType = "payment"
	NotificationWithdrawal NotificationType = "withdrawal"
	NotificationDebate     NotificationType = "debate"
)

var validNotificationTypes = []NotificationType{
	NotificationPayment,
	NotificationWithdrawal,
	NotificationDebate,
}

// IsValid reports whether the value matches the canonical notification_type enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw input into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
