package event

import "time"

const EmailVerificationDestination string = "identity_email_verification"
const EmailVerificationDestinationConsumerNotification string = "identity_email_verification_notification"

// HeaderCorrelationID carries the correlation id across the bus.
const HeaderCorrelationID string = "cID"

type EmailVerificationMessage struct {
	HolderID  int64     `json:"holder_id,string"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
