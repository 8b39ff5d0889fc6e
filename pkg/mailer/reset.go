package mailer

import "fmt"

// ResetSubject is the subject line for password-reset mail.
const ResetSubject = "PSIMS Scholar Password Reset Request"

// ResetBody renders the plain-text password-reset message around the given
// reset link. The link embeds a bearer token and must not be logged.
func ResetBody(resetURL string) string {
	return fmt.Sprintf(
		"You are receiving this because you (or someone else) have requested the reset of the password for your account.\n\n"+
			"Please click on the following link, or paste this into your browser to complete the process:\n\n"+
			"%s\n\n"+
			"This link will expire in one hour.\n\n"+
			"If you did not request this, please ignore this email and your password will remain unchanged.\n",
		resetURL,
	)
}

// NewResetJob builds the queue payload for a password-reset email.
func NewResetJob(to, resetURL string) EmailJob {
	return EmailJob{To: to, Subject: ResetSubject, Body: ResetBody(resetURL)}
}
