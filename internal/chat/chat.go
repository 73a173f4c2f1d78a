package chat

import "strings"

// Responder produces a reply to a single visitor message. The chat endpoint
// treats it as an opaque external collaborator.
type Responder interface {
	Respond(message string) string
}

// Scripted is a keyword-matching responder. First matching rule wins.
type Scripted struct {
	rules    []rule
	fallback string
}

type rule struct {
	keywords []string
	reply    string
}

func NewScripted() *Scripted {
	return &Scripted{
		rules: []rule{
			{
				keywords: []string{"hello", "hi", "hey"},
				reply:    "Hello! How can I help you with your visit today?",
			},
			{
				keywords: []string{"hour", "open", "close", "timing"},
				reply:    "We are open every day from 9:00 AM to 6:00 PM.",
			},
			{
				keywords: []string{"price", "cost", "fee", "much"},
				reply:    "Tickets are $10 per group booking. You can pay online after booking.",
			},
			{
				keywords: []string{"ticket", "book", "reserve"},
				reply:    "You can book tickets from the Book Ticket page once you are logged in.",
			},
			{
				keywords: []string{"cancel", "refund", "delete"},
				reply:    "You can cancel a booking from the My Tickets page.",
			},
			{
				keywords: []string{"thank", "thanks"},
				reply:    "You're welcome! Enjoy your visit.",
			},
		},
		fallback: "I'm sorry, I didn't understand that. You can ask about hours, prices, or bookings.",
	}
}

func (s *Scripted) Respond(message string) string {
	msg := strings.ToLower(message)
	for _, r := range s.rules {
		for _, kw := range r.keywords {
			if strings.Contains(msg, kw) {
				return r.reply
			}
		}
	}
	return s.fallback
}
