package landing

import (
	"github.com/onedotone/landing-api/domain/demo"
	"github.com/onedotone/landing-api/domain/waitlist"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

type card struct {
	Title       string
	Description string
	Detail      string
}

var steps = []card{
	{"Upload & Store", "Snap or upload your business cards", "Instant upload with secure cloud storage"},
	{"AI Processing Pipeline", "AI extracts & structures all information", "OCR → LLM → Vector Database"},
	{"Chat Query", "Chat with your cards in natural language", "Ask questions about your network"},
	{"Get Results", "Complete contact info displayed instantly", "Smart, contextual responses"},
}

var benefits = []card{
	{Title: "Never Lose a Contact", Description: "All cards digitized and searchable forever in 1dot1"},
	{Title: "Instant Company Pages", Description: "Auto-generated web presence for every contact"},
	{Title: "Smart Discovery", Description: "Find contacts by company, role, or conversation context"},
	{Title: "Claim Your Profile", Description: "Take control of your auto-generated 1dot1 business page"},
}

var perks = []card{
	{Title: "Beta Access", Description: "Be first to experience 1dot1's revolutionary features"},
	{Title: "Lifetime Discount", Description: "50% off your first year subscription"},
	{Title: "Exclusive Community", Description: "Join our private early adopter community"},
}

func Hero() g.Node {
	return Section(
		ID("hero"),
		Class("hero"),

		Div(Class("brand"), g.Text("1dot1")),
		H1(
			g.Text("Turn Every Business Card Into Your "),
			Span(Class("highlight"), g.Text("Smart Digital Network")),
		),
		P(Class("lead"), g.Text("1dot1 creates perfect 1:1 connections - Upload, Search, Connect with AI")),

		WaitlistForm(waitlist.SourceHeroSection, false, "Join 1dot1 Early Access"),

		P(Class("social-proof"), g.Text("Join 500+ professionals already on the 1dot1 waitlist")),
	)
}

func HowItWorks() g.Node {
	return Section(
		ID("how-it-works"),
		H2(g.Text("See How "), Span(Class("highlight"), g.Text("1dot1")), g.Text(" Works")),
		Ol(
			Class("steps"),
			g.Group(g.Map(steps, func(s card) g.Node {
				return Li(
					Class("step"),
					H3(g.Text(s.Title)),
					P(g.Text(s.Description)),
					P(Class("detail"), g.Text(s.Detail)),
				)
			})),
		),
	)
}

func Benefits() g.Node {
	return Section(
		ID("benefits"),
		H2(g.Text("Why Choose "), Span(Class("highlight"), g.Text("1dot1")), g.Text("?")),
		Div(
			Class("benefits"),
			g.Group(g.Map(benefits, func(b card) g.Node {
				return Div(
					Class("benefit"),
					H3(g.Text(b.Title)),
					P(g.Text(b.Description)),
				)
			})),
		),
	)
}

// ChatDemo renders the chat frame; the page script fills it from the demo API.
func ChatDemo() g.Node {
	return Section(
		ID("chat-demo"),
		H2(g.Text("See Your Results in "), Span(Class("highlight"), g.Text("Action"))),

		Div(
			Class("chat"),
			g.Attr("data-demo", ""),
			Div(
				Class("chat-header"),
				H3(g.Text("1dot1 Chat")),
				P(g.Text("Ask questions about your network")),
			),
			Div(
				Class("chat-messages"),
				g.Attr("data-demo-messages", ""),
				g.Attr("aria-live", "polite"),
				P(Class("chat-placeholder"), g.Text("Demo loading...")),
			),
			Div(
				Class("chat-composing"),
				g.Attr("data-demo-composing", ""),
				g.Attr("hidden", ""),
				g.Text("1dot1 AI is typing..."),
			),
			g.El("form",
				Class("chat-input"),
				g.Attr("data-demo-form", ""),
				Input(
					Type("text"),
					Name("query"),
					g.Attr("maxlength", "500"),
					Placeholder("Type your question about your business cards..."),
				),
				Button(Type("submit"), g.Text("Send")),
			),
		),

		Div(
			Class("example-queries"),
			g.Group(g.Map(demo.ExampleQueries(), func(q string) g.Node {
				return Button(
					Type("button"),
					g.Attr("data-demo-query", q),
					g.Text(q),
				)
			})),
			Button(Type("button"), g.Attr("data-demo-restart", ""), g.Text("Replay demo")),
		),
	)
}

func EarlyAccess() g.Node {
	return Section(
		ID("early-access"),
		H2(g.Text("Be Among the First to Experience "), Span(Class("highlight"), g.Text("1dot1"))),
		Div(
			Class("perks"),
			g.Group(g.Map(perks, func(p card) g.Node {
				return Div(
					Class("perk"),
					H3(g.Text(p.Title)),
					P(g.Text(p.Description)),
				)
			})),
		),
		WaitlistForm(waitlist.SourceLandingPage, true, "Get Early Access"),
	)
}

func SiteFooter() g.Node {
	return g.El("footer",
		Div(Class("brand"), g.Text("1dot1")),
		Nav(
			H3(g.Text("Product")),
			Ul(
				Li(A(Href("#benefits"), g.Text("Features"))),
				Li(A(Href("#how-it-works"), g.Text("How it works"))),
				Li(A(Href("#early-access"), g.Text("Pricing"))),
			),
		),
		Nav(
			H3(g.Text("Company")),
			Ul(
				Li(A(Href("#"), g.Text("About"))),
				Li(A(Href("#"), g.Text("Blog"))),
				Li(A(Href("#"), g.Text("Privacy Policy"))),
				Li(A(Href("#"), g.Text("Terms of Service"))),
			),
		),
	)
}

// WaitlistForm posts to the waitlist API. The source tag tells the backend
// which form was used and sets how long the confirmation stays up.
func WaitlistForm(source waitlist.Source, withName bool, label string) g.Node {
	return g.El("form",
		Class("waitlist-form"),
		g.Attr("data-waitlist-form", ""),
		g.Attr("data-source", string(source)),
		g.Attr("novalidate", ""),

		g.If(withName, Input(
			Type("text"),
			Name("name"),
			g.Attr("maxlength", "255"),
			Placeholder("Your name (optional)"),
			g.Attr("autocomplete", "name"),
		)),
		Input(
			Type("email"),
			Name("email"),
			Placeholder(emailPlaceholder(withName)),
			g.Attr("autocomplete", "email"),
			g.Attr("required", ""),
		),
		Button(Type("submit"), g.Text(label)),
		P(Class("form-status"), g.Attr("data-waitlist-status", ""), g.Attr("role", "status")),
	)
}

func emailPlaceholder(long bool) string {
	if long {
		return "Your email address"
	}
	return "Enter your email"
}
