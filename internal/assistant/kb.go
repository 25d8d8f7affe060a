// Package assistant is the rule-based security chat responder.
//
// The knowledge base is a fixed, ordered table loaded once at startup.
// Matching is a pure function of the input text; earlier entries win
// even when a later entry's keyword also appears.
package assistant

// Entry is one knowledge-base row: a category, its trigger patterns
// and a canned reply.
type Entry struct {
	Category string
	Patterns []string
	Reply    string
}

// kb holds the entries in match-precedence order. Immutable after init.
var kb = []Entry{
	{
		Category: "greeting",
		Patterns: []string{"hello", "hi ", "hey", "good morning", "good afternoon"},
		Reply: "Hello! I'm your security awareness assistant.\n\n" +
			"Ask me about phishing, passwords, MFA, ransomware, GDPR, reporting incidents, or say \"help\" to see everything I cover.",
	},
	{
		Category: "phishing",
		Patterns: []string{"phish", "suspicious email", "fake email", "scam email"},
		Reply: "Phishing emails try to trick you into clicking links or handing over credentials.\n\n" +
			"Warning signs:\n" +
			"- Sender address doesn't match the claimed organization\n" +
			"- Urgency or threats (\"account closed in 24 hours\")\n" +
			"- Unexpected attachments or login links\n" +
			"- Generic greetings (\"Dear customer\")\n\n" +
			"If in doubt: do not click, do not reply — use the report button and the security team will verify it.",
	},
	{
		Category: "password",
		Patterns: []string{"password", "passphrase", "credentials"},
		Reply: "Good password practice:\n\n" +
			"- Use a unique password per account; a password manager makes this painless\n" +
			"- Prefer long passphrases over short complex strings\n" +
			"- Never share credentials, not even with IT\n" +
			"- Change a password immediately if you suspect it leaked\n\n" +
			"Pair every important account with MFA for real protection.",
	},
	{
		Category: "mfa",
		Patterns: []string{"mfa", "2fa", "two-factor", "two factor", "multi-factor", "authenticator"},
		Reply: "Multi-factor authentication adds an independent proof of identity on top of your password.\n\n" +
			"- Hardware security keys resist phishing best\n" +
			"- Authenticator apps are a strong second choice\n" +
			"- SMS codes are better than nothing, but can be intercepted\n\n" +
			"Never approve an MFA prompt you didn't initiate — deny it and report it; someone has your password.",
	},
	{
		Category: "ransomware",
		Patterns: []string{"ransomware", "ransom", "encrypted my files", "files are locked"},
		Reply: "Ransomware encrypts files and demands payment for the key.\n\n" +
			"If you suspect an infection:\n" +
			"1. Disconnect the machine from the network immediately\n" +
			"2. Do not pay and do not power-cycle the machine\n" +
			"3. Report to the security team right away\n\n" +
			"Prevention: keep software patched, never run unexpected attachments, and rely on the company backup policy.",
	},
	{
		Category: "social-engineering",
		Patterns: []string{"social engineering", "pretext", "tailgat", "impersonat", "vishing"},
		Reply: "Social engineering attacks people, not systems: phone calls from fake IT, visitors slipping through secured doors, messages impersonating executives.\n\n" +
			"Defenses:\n" +
			"- Verify unusual requests through an official channel you look up yourself\n" +
			"- Never let strangers tailgate through badge-controlled doors\n" +
			"- Be wary of anyone manufacturing urgency or secrecy.",
	},
	{
		Category: "gdpr",
		Patterns: []string{"gdpr", "data protection", "personal data", "privacy regulation"},
		Reply: "GDPR governs how we handle personal data — anything identifying a person, from emails to IP addresses.\n\n" +
			"Key obligations:\n" +
			"- Process data only for its stated purpose, and minimize what you share\n" +
			"- Report personal data breaches internally immediately; the authority deadline is 72 hours\n" +
			"- Check the data-sharing agreement before sending personal data to any vendor.",
	},
	{
		Category: "vpn",
		Patterns: []string{"vpn", "public wifi", "remote work", "working from home"},
		Reply: "When working outside the office:\n\n" +
			"- Connect through the company VPN before touching internal systems\n" +
			"- Avoid sensitive work on open public Wi-Fi, even with the VPN\n" +
			"- Keep your home router firmware and password current\n" +
			"- Lock your screen whenever you step away.",
	},
	{
		Category: "malware",
		Patterns: []string{"malware", "virus", "trojan", "spyware", "infected"},
		Reply: "Malware arrives through attachments, downloads, and compromised sites.\n\n" +
			"If you suspect an infection: stop using the machine, disconnect it from the network, and contact the security team. Don't try to clean it yourself — evidence matters.\n\n" +
			"Prevention: install software only from approved sources and keep your system patched.",
	},
	{
		Category: "risk",
		Patterns: []string{"risk score", "my score", "risk level", "why is my risk"},
		Reply: "Your risk score (0-100, lower is safer) reflects recent behavior:\n\n" +
			"- Clicking or submitting credentials in simulations raises it\n" +
			"- Reporting suspicious email and completing training lowers it\n\n" +
			"Check your dashboard for the current score, the factor breakdown, and personalized recommendations.",
	},
	{
		Category: "incident-reporting",
		Patterns: []string{"report", "incident", "i clicked", "i was hacked", "breach"},
		Reply: "Think something's wrong? Report it now — speed matters more than certainty.\n\n" +
			"1. Use the phishing-report button for suspicious email\n" +
			"2. For anything else, contact the security team directly\n" +
			"3. Don't delete evidence, and don't investigate on your own\n\n" +
			"Nobody is penalized for reporting in good faith, including false alarms.",
	},
	{
		Category: "training",
		Patterns: []string{"training", "course", "quiz", "module", "badge"},
		Reply: "Your assigned training modules live on the training page, each ending in a short quiz.\n\n" +
			"- Passing a module adds it to your completed list\n" +
			"- Your first pass earns the First Steps badge\n" +
			"- Completing assigned training directly lowers your risk score.",
	},
	{
		Category: "zero-trust",
		Patterns: []string{"zero trust", "zero-trust", "least privilege"},
		Reply: "Zero trust means no request is trusted by default, inside or outside the network.\n\n" +
			"In practice: every access is authenticated and authorized, users get the least privilege they need, and unusual behavior is challenged even on the corporate network. Expect more frequent verification prompts — that's the model working.",
	},
	{
		Category: "thanks",
		Patterns: []string{"thank", "thx", "appreciate"},
		Reply:    "You're welcome! Stay alert, and come back anytime you're unsure about something security-related.",
	},
}

// fallbackCategory tags replies when nothing in the table matched.
const fallbackCategory = "fallback"

// Categories returns the table's categories in precedence order.
func Categories() []string {
	out := make([]string, len(kb))
	for i, e := range kb {
		out[i] = e.Category
	}
	return out
}
