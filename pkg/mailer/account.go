package mailer

import "fmt"

// WelcomeJob builds the signup notification sent when an account is created.
func WelcomeJob(to, name string) EmailJob {
	return EmailJob{
		To:      to,
		Subject: "Thanks for joining in",
		Text:    fmt.Sprintf("Welcome to the app, %s. Let me know how you get along with the app.", name),
	}
}

// CancellationJob builds the goodbye notification sent when an account is deleted.
func CancellationJob(to, name string) EmailJob {
	return EmailJob{
		To:      to,
		Subject: "Sorry to see you go!",
		Text:    fmt.Sprintf("We are sorry that you are leaving us, %s. Was there something we could do to make you stay?", name),
	}
}
