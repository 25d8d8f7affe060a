package training

import (
	"context"
	"errors"
)

// SeedModules returns the built-in training catalog used by demo mode.
func SeedModules() []*Training {
	return []*Training{
		{
			ID:              "trn_phishing_basics",
			Title:           "Phishing Fundamentals",
			Description:     "Recognize and report phishing emails before they do damage.",
			Category:        "phishing",
			DurationMinutes: 15,
			PassingScore:    70,
			Questions: []Question{
				{
					Prompt: "An email from your 'bank' asks you to verify your account via a link. What should you do?",
					Options: []string{
						"Click the link and log in quickly",
						"Report the email and navigate to the bank's site directly",
						"Forward it to a colleague to check",
						"Reply asking if it's legitimate",
					},
					CorrectIndex: 1,
				},
				{
					Prompt: "Which of these is the strongest sign of a phishing email?",
					Options: []string{
						"It arrived outside business hours",
						"It has a company logo",
						"The sender domain doesn't match the claimed organization",
						"It is longer than one paragraph",
					},
					CorrectIndex: 2,
				},
				{
					Prompt: "You clicked a suspicious link by accident. What's the right next step?",
					Options: []string{
						"Delete the email and say nothing",
						"Run a personal antivirus scan and move on",
						"Report the incident to the security team immediately",
						"Change your desktop wallpaper",
					},
					CorrectIndex: 2,
				},
				{
					Prompt: "Urgency ('act within 1 hour!') in an unexpected email is usually:",
					Options: []string{
						"A standard business practice",
						"A pressure tactic used by attackers",
						"A sign the email is automated",
						"Irrelevant to phishing",
					},
					CorrectIndex: 1,
				},
			},
		},
		{
			ID:              "trn_password_hygiene",
			Title:           "Password Hygiene",
			Description:     "Build strong, unique credentials and manage them safely.",
			Category:        "password",
			DurationMinutes: 10,
			PassingScore:    70,
			Questions: []Question{
				{
					Prompt: "Which password is strongest?",
					Options: []string{
						"Summer2026!",
						"A long random passphrase from a password manager",
						"Your pet's name plus your birth year",
						"The company name reversed",
					},
					CorrectIndex: 1,
				},
				{
					Prompt: "How often should you reuse a password across accounts?",
					Options: []string{
						"Only for low-value accounts",
						"Whenever it's easy to remember",
						"Never",
						"Once per year",
					},
					CorrectIndex: 2,
				},
				{
					Prompt: "A colleague asks for your login 'just this once'. You should:",
					Options: []string{
						"Share it if you trust them",
						"Share it but change it afterwards",
						"Decline; credentials are never shared",
						"Write it on a sticky note for them",
					},
					CorrectIndex: 2,
				},
			},
		},
		{
			ID:              "trn_mfa",
			Title:           "Multi-Factor Authentication",
			Description:     "Why a second factor stops most account takeovers.",
			Category:        "mfa",
			DurationMinutes: 8,
			PassingScore:    70,
			Questions: []Question{
				{
					Prompt: "What does MFA add on top of your password?",
					Options: []string{
						"A longer password requirement",
						"An independent proof of identity, like an authenticator code",
						"A daily login limit",
						"Nothing; it replaces the password",
					},
					CorrectIndex: 1,
				},
				{
					Prompt: "You receive an MFA push notification you did NOT initiate. You should:",
					Options: []string{
						"Approve it to stop the notifications",
						"Ignore it, it will time out",
						"Deny it and report it; someone has your password",
						"Approve it if you're busy",
					},
					CorrectIndex: 2,
				},
				{
					Prompt: "Which second factor is generally most resistant to phishing?",
					Options: []string{
						"SMS codes",
						"Email codes",
						"A hardware security key",
						"Security questions",
					},
					CorrectIndex: 2,
				},
			},
		},
		{
			ID:              "trn_social_engineering",
			Title:           "Social Engineering Defense",
			Description:     "Spot manipulation tactics in person, on the phone, and online.",
			Category:        "social-engineering",
			DurationMinutes: 12,
			PassingScore:    70,
			Questions: []Question{
				{
					Prompt: "A caller claims to be IT and asks you to install remote-access software. You should:",
					Options: []string{
						"Comply; IT often calls",
						"Hang up and verify through the official IT channel",
						"Ask them to call back later",
						"Install it but watch what they do",
					},
					CorrectIndex: 1,
				},
				{
					Prompt: "'Tailgating' in a security context means:",
					Options: []string{
						"Following a colleague's car too closely",
						"Slipping through a secured door behind an authorized person",
						"Replying-all to a long email thread",
						"Monitoring someone's screen",
					},
					CorrectIndex: 1,
				},
				{
					Prompt: "Attackers research targets on social media primarily to:",
					Options: []string{
						"Send friend requests",
						"Craft convincing, personalized pretexts",
						"Estimate their salary",
						"Find their manager",
					},
					CorrectIndex: 1,
				},
			},
		},
		{
			ID:              "trn_data_protection",
			Title:           "Data Protection & GDPR",
			Description:     "Handle personal data lawfully and report breaches fast.",
			Category:        "gdpr",
			DurationMinutes: 12,
			PassingScore:    70,
			Questions: []Question{
				{
					Prompt: "Under GDPR, a personal data breach must be reported to the authority within:",
					Options: []string{
						"24 hours",
						"72 hours",
						"7 days",
						"30 days",
					},
					CorrectIndex: 1,
				},
				{
					Prompt: "Which of these is personal data?",
					Options: []string{
						"An office address",
						"An employee's email address",
						"A product price list",
						"A public holiday calendar",
					},
					CorrectIndex: 1,
				},
				{
					Prompt: "You need to share a spreadsheet containing customer emails with a vendor. You should:",
					Options: []string{
						"Email it as-is; vendors are trusted",
						"Check the data-sharing agreement and minimize the data first",
						"Post it in the shared chat",
						"Print it and hand it over",
					},
					CorrectIndex: 1,
				},
			},
		},
	}
}

// Seed inserts the built-in modules, skipping any that already exist.
func Seed(ctx context.Context, store Store) error {
	for _, t := range SeedModules() {
		if err := store.Create(ctx, t); err != nil && !errors.Is(err, ErrExists) {
			return err
		}
	}
	return nil
}
