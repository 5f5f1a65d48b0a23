package utils

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/gomail.v2"
)

func sendEmail(to, subject, body string) {
	m := gomail.NewMessage()
	m.SetHeader("From", os.Getenv("SMTP_SENDER"))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(
		os.Getenv("SMTP_HOST"),
		465,
		os.Getenv("SMTP_USER"),
		os.Getenv("SMTP_PASS"),
	)

	if err := d.DialAndSend(m); err != nil {
		log.Printf("Failed to send email to %s: %v", to, err)
		return
	}

	log.Printf("Email sent to %s: %s", to, subject)
}

// SendApprovalEmail notifies the business that its registration was approved.
func SendApprovalEmail(email, businessName string) {
	sendEmail(email,
		"Business Registration Approved",
		fmt.Sprintf("Your business %s has been approved. You can now pay the registration fee to complete the process.", businessName))
}

// SendRejectionEmail notifies the business that its registration was rejected.
func SendRejectionEmail(email, businessName string) {
	sendEmail(email,
		"Business Registration Update",
		fmt.Sprintf("Your business %s could not be approved at this time. Please contact support for details.", businessName))
}
