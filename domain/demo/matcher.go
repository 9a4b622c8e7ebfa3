package demo

import (
	"strings"

	"golang.org/x/text/cases"
)

const defaultLabel = "I found relevant contacts in your network:"

// Answer is the canned assistant reply to a query.
type Answer struct {
	Label    string
	Contacts []Contact
}

type rule struct {
	keyword  string
	label    string
	contacts []int
}

// rules are evaluated in order; the first keyword found in the query wins.
var rules = []rule{
	{keyword: "software", label: "Found 3 software companies:", contacts: []int{1, 2, 3}},
	{keyword: "startup", label: "Here are the startup companies:", contacts: []int{2}},
	{keyword: "san francisco", label: "Found 1 contact in San Francisco:", contacts: []int{1}},
	{keyword: "techflow", label: "Here's who works at TechFlow:", contacts: []int{1}},
}

// Match never fails: queries that hit no rule get the first two contacts.
func Match(query string) Answer {
	folded := cases.Fold().String(query)

	for _, r := range rules {
		if strings.Contains(folded, r.keyword) {
			return Answer{Label: r.label, Contacts: pick(r.contacts...)}
		}
	}

	return Answer{Label: defaultLabel, Contacts: pick(1, 2)}
}
