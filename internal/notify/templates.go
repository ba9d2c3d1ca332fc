package notify

import (
	"fmt"
	"strings"
	"time"
)

const parlourName = "Glow & Grace"

// BookingPending is the customer copy sent when an appointment is created.
func BookingPending(name, email, service, date, timeSlot string) EmailMessage {
	body := fmt.Sprintf(
		"Dear %s,\n\nYour appointment for %s on %s at %s is successfully booked and PENDING confirmation.\n\nWe will notify you once it is confirmed.\n\nThank you,\n%s",
		name, service, date, timeSlot, parlourName,
	)
	return EmailMessage{
		To:      email,
		ToName:  name,
		Subject: fmt.Sprintf("Provisional Booking - %s", parlourName),
		Body:    body,
		HTML: wrapHTML("Provisional Booking", fmt.Sprintf(
			"<p>Dear %s,</p><p>Your appointment for <b>%s</b> on <b>%s</b> at <b>%s</b> is successfully booked and <b>PENDING</b> confirmation.</p><p>We will notify you once it is confirmed.</p>",
			name, service, date, timeSlot,
		)),
	}
}

// AdminNewBooking is the operator copy sent when an appointment is created.
func AdminNewBooking(adminEmail, name, email, service, date, timeSlot string) EmailMessage {
	return EmailMessage{
		To:      adminEmail,
		Subject: "New Appointment Booking",
		Body:    fmt.Sprintf("New appointment from %s (%s) for %s on %s at %s", name, email, service, date, timeSlot),
		HTML: wrapHTML("New Appointment", fmt.Sprintf(
			"<p>New appointment: <b>%s</b> (%s) for <b>%s</b> on %s at %s</p>",
			name, email, service, date, timeSlot,
		)),
	}
}

// StatusChanged is sent to the customer when an appointment is confirmed
// or cancelled. Other statuses produce no email.
func StatusChanged(appointmentID, name, email, status string) (EmailMessage, bool) {
	var extra string
	switch status {
	case "CONFIRMED":
		extra = "Please arrive 5 minutes early. We look forward to seeing you!"
	case "CANCELLED":
		extra = "We are sorry for the inconvenience. Please contact us to reschedule."
	default:
		return EmailMessage{}, false
	}

	body := fmt.Sprintf(
		"Dear %s,\n\nYour appointment (ID: %s) has been %s.\n\n%s\n\nThank you,\n%s",
		name, appointmentID, status, extra, parlourName,
	)
	return EmailMessage{
		To:      email,
		ToName:  name,
		Subject: fmt.Sprintf("Appointment %s - %s", status, parlourName),
		Body:    body,
		HTML:    wrapHTML("Appointment "+status, "<p>"+strings.ReplaceAll(body, "\n", "<br>")+"</p>"),
	}, true
}

// Reminder is the day-before nudge for confirmed appointments.
func Reminder(name, email, service, date, timeSlot string) EmailMessage {
	body := fmt.Sprintf(
		"Dear %s,\n\nThis is a reminder for your %s appointment tomorrow, %s at %s.\n\nSee you soon,\n%s",
		name, service, date, timeSlot, parlourName,
	)
	return EmailMessage{
		To:      email,
		ToName:  name,
		Subject: fmt.Sprintf("Appointment Reminder - %s", parlourName),
		Body:    body,
		HTML: wrapHTML("Appointment Reminder", fmt.Sprintf(
			"<p>Dear %s,</p><p>This is a reminder for your <b>%s</b> appointment tomorrow, <b>%s</b> at <b>%s</b>.</p>",
			name, service, date, timeSlot,
		)),
	}
}

func wrapHTML(title, content string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Helvetica, Arial, sans-serif; color: #333; background-color: #f9f9f9; padding: 20px;">
  <div style="max-width: 600px; margin: 0 auto; background: #ffffff; padding: 30px; border-radius: 8px;">
    <div style="text-align: center; border-bottom: 2px solid #D4AF37; padding-bottom: 20px; margin-bottom: 20px;">
      <h1 style="text-transform: uppercase; letter-spacing: 2px; margin: 0;">%s</h1>
    </div>
    <h2>%s</h2>
    %s
    <div style="margin-top: 30px; text-align: center; font-size: 12px; color: #999; border-top: 1px solid #eee; padding-top: 20px;">
      <p>&copy; %d %s Beauty Parlour. All rights reserved.</p>
      <p>123 Beauty Lane, Glamour City</p>
    </div>
  </div>
</body>
</html>`, parlourName, title, content, time.Now().Year(), parlourName)
}
