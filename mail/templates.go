package mail

import (
	"fmt"
	"html"
)

// All bodies share one wrapper so every email carries the same framing.
func wrap(title, inner string) string {
	return fmt.Sprintf(`<div style="font-family:Arial,sans-serif;max-width:560px;margin:0 auto">
<h2 style="color:#2b6777">%s</h2>
%s
<p style="color:#888;font-size:12px">Acts of Sharing &middot; bringing people together to give</p>
</div>`, html.EscapeString(title), inner)
}

// FormatAmount renders integer minor units as a major-unit string, e.g.
// 2500 -> "25.00".
func FormatAmount(minor int64) string {
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}

func WelcomeEmail(name, email, tempPassword, loginURL string) (subject, body string) {
	inner := fmt.Sprintf(`<p>Hi %s,</p>
<p>An account was created for you when you made your donation. You can sign in with:</p>
<p>Email: <b>%s</b><br>Temporary password: <b>%s</b></p>
<p><a href="%s">Sign in</a> and change your password.</p>`,
		html.EscapeString(name), html.EscapeString(email), html.EscapeString(tempPassword), loginURL)
	return "Welcome to Acts of Sharing", wrap("Welcome!", inner)
}

func VerificationEmail(name, verifyURL string) (subject, body string) {
	inner := fmt.Sprintf(`<p>Hi %s,</p>
<p>Please confirm your email address to activate your account.</p>
<p><a href="%s">Verify my email</a></p>`, html.EscapeString(name), verifyURL)
	return "Verify your email", wrap("Confirm your email", inner)
}

func PasswordResetEmail(name, resetURL string) (subject, body string) {
	inner := fmt.Sprintf(`<p>Hi %s,</p>
<p>We received a request to reset your password. The link below is valid for one hour.</p>
<p><a href="%s">Reset my password</a></p>
<p>If you did not request this, you can ignore this email.</p>`, html.EscapeString(name), resetURL)
	return "Reset your password", wrap("Password reset", inner)
}

func InviteEmail(hostName, eventTitle, shareLink string) (subject, body string) {
	inner := fmt.Sprintf(`<p>%s has invited you to <b>%s</b>.</p>
<p><a href="%s">View the event and RSVP</a></p>`,
		html.EscapeString(hostName), html.EscapeString(eventTitle), shareLink)
	return fmt.Sprintf("You're invited to %s", eventTitle), wrap("You're invited!", inner)
}

func ReminderEmail(eventTitle, date, location string) (subject, body string) {
	inner := fmt.Sprintf(`<p>Just a reminder that <b>%s</b> is happening tomorrow, %s.</p>
<p>Location: %s</p>`,
		html.EscapeString(eventTitle), html.EscapeString(date), html.EscapeString(location))
	return fmt.Sprintf("Reminder: %s is tomorrow", eventTitle), wrap("See you tomorrow", inner)
}

func ContributionReceipt(name, eventTitle string, amount int64) (subject, body string) {
	inner := fmt.Sprintf(`<p>Hi %s,</p>
<p>Your contribution of <b>%s</b> to <b>%s</b> went through. Thank you for sharing!</p>`,
		html.EscapeString(name), FormatAmount(amount), html.EscapeString(eventTitle))
	return "Thank you for your contribution", wrap("Contribution received", inner)
}

func ContributionFailed(name, eventTitle string, amount int64) (subject, body string) {
	inner := fmt.Sprintf(`<p>Hi %s,</p>
<p>Unfortunately your payment of %s toward <b>%s</b> did not go through. No money was taken; please try again.</p>`,
		html.EscapeString(name), FormatAmount(amount), html.EscapeString(eventTitle))
	return "Your contribution could not be processed", wrap("Payment failed", inner)
}

func DisbursementEmail(name, eventTitle string, amount int64) (subject, body string) {
	inner := fmt.Sprintf(`<p>Hi %s,</p>
<p>The disbursement of <b>%s</b> for <b>%s</b> has been approved and is on its way.</p>`,
		html.EscapeString(name), FormatAmount(amount), html.EscapeString(eventTitle))
	return "Your disbursement has been approved", wrap("Funds on the way", inner)
}

// NotificationEmail renders the body for an in-app notification kind.
// The caller has already validated the kind against the closed set.
func NotificationEmail(kind, name, eventTitle, message string) (subject, body string) {
	switch kind {
	case "invite":
		return InviteEmail(name, eventTitle, message)
	case "reminder":
		inner := fmt.Sprintf(`<p>Hi %s,</p>
<p>A reminder about <b>%s</b>: %s</p>`,
			html.EscapeString(name), html.EscapeString(eventTitle), html.EscapeString(message))
		return fmt.Sprintf("Reminder: %s", eventTitle), wrap("Event reminder", inner)
	case "contribution":
		return "New contribution", wrap("New contribution", fmt.Sprintf("<p>%s</p>", html.EscapeString(message)))
	case "disbursement":
		return "Disbursement update", wrap("Disbursement update", fmt.Sprintf("<p>%s</p>", html.EscapeString(message)))
	}
	return "Acts of Sharing", wrap("Notification", fmt.Sprintf("<p>%s</p>", html.EscapeString(message)))
}
