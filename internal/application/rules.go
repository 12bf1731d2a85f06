package application

import "strings"

// Rule maps a keyword set to a canned reply. A transcript matches when it contains any
// keyword, case-insensitively.
type Rule struct {
	Keywords []string
	Reply    string
}

const (
	ContactReply = "You can contact Zekitales at zekitales@gmail.com or call +92 321 3995991. We're a remote-first team serving clients globally."
	DefaultReply = "Thank you for your question! For more details about our services, visit our website or contact us directly. We'd be happy to discuss your project."
	ApologyReply = "I'm sorry, I encountered an error processing your request. Please try again."
)

// DefaultRules is checked in order. Generic rules (greetings, help) sit after the
// specific ones they would otherwise shadow.
var DefaultRules = []Rule{
	{
		Keywords: []string{"zekitales", "about", "who are you"},
		Reply:    "Zekitales is a digital agency specializing in web development, design, and digital solutions. We create custom websites, mobile apps, and provide full-stack development services.",
	},
	{
		Keywords: []string{"service", "what do you do", "offer"},
		Reply:    "We offer web development, UI/UX design, WordPress development, PHP and SQL development, ecommerce solutions, and custom digital products.",
	},
	{
		Keywords: []string{"technology", "tech stack", "tools"},
		Reply:    "We work with HTML, CSS, JavaScript, React, Next.js, Node.js, PHP, SQL, MongoDB, WordPress, and other modern technologies.",
	},
	{
		Keywords: []string{"contact", "reach", "email", "call"},
		Reply:    ContactReply,
	},
	{
		Keywords: []string{"location", "where", "address"},
		Reply:    "Zekitales is a remote digital agency, collaborating with clients around the world.",
	},
	{
		Keywords: []string{"price", "cost", "quote", "budget"},
		Reply:    "Our pricing depends on your project requirements. We provide custom quotes with transparent and competitive rates.",
	},
	{
		Keywords: []string{"time", "how long", "duration", "deadline"},
		Reply:    "Simple websites usually take 1–2 weeks, while larger apps may take 4–8 weeks. Timelines depend on project complexity.",
	},
	{
		Keywords: []string{"process", "workflow", "steps"},
		Reply:    "Our process includes Discovery, Planning, Design, Development, Testing, and Launch to ensure quality and transparency.",
	},
	{
		Keywords: []string{"portfolio", "projects", "work"},
		Reply:    "You can check our portfolio to see examples of the websites and apps we’ve built for clients.",
	},
	{
		Keywords: []string{"testimonial", "clients", "reviews"},
		Reply:    "Our clients love working with us! We have testimonials highlighting our quality, transparency, and reliability.",
	},
	{
		Keywords: []string{"team", "members", "staff"},
		Reply:    "Zekitales is powered by a team of experienced developers, designers, and strategists.",
	},
	{
		Keywords: []string{"career", "jobs", "hiring"},
		Reply:    "We’re always looking for talent. You can check our careers section or email us to join Zekitales.",
	},
	{
		Keywords: []string{"blog", "articles", "news"},
		Reply:    "We publish blogs and insights about web development, design, and digital trends.",
	},
	{
		Keywords: []string{"faq", "questions", "common"},
		Reply:    "Here are answers to frequently asked questions about Zekitales, our services, and our process.",
	},
	{
		Keywords: []string{"hello", "hi", "hey", "salam"},
		Reply:    "Hello! Welcome to Zekitales. I'm your AI assistant. How can I help you today?",
	},
	{
		Keywords: []string{"help", "support", "assist"},
		Reply:    "I'm here to help! Ask me about our services, pricing, technologies, or how to start your project.",
	},
	{
		Keywords: []string{"bye", "goodbye", "see you"},
		Reply:    "Goodbye! It was nice talking to you. Reach out to Zekitales anytime.",
	},
}

// MatchRule returns the reply of the first rule matching input, or fallback.
func MatchRule(rules []Rule, input, fallback string) string {
	lower := strings.ToLower(input)
	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				return rule.Reply
			}
		}
	}
	return fallback
}
