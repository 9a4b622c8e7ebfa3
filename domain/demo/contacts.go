package demo

// Contact is a fixed demo record. The set is compiled in and never persisted.
type Contact struct {
	ID          int    `json:"id"`
	Company     string `json:"company"`
	Name        string `json:"name"`
	Title       string `json:"title"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Location    string `json:"location"`
	Industry    string `json:"industry"`
	CompanySize string `json:"company_size"`
	Founded     string `json:"founded,omitempty"`
	Employees   string `json:"employees,omitempty"`
}

var contacts = []Contact{
	{
		ID:          1,
		Company:     "TechFlow Solutions",
		Name:        "Sarah Chen",
		Title:       "CTO",
		Email:       "sarah.chen@techflow.com",
		Phone:       "(555) 123-4567",
		Location:    "San Francisco, CA",
		Industry:    "B2B Software",
		CompanySize: "50+ employees",
	},
	{
		ID:          2,
		Company:     "CodeCraft Studios",
		Name:        "Mike Rodriguez",
		Title:       "Founder",
		Email:       "mike@codecraft.io",
		Phone:       "(555) 987-6543",
		Location:    "Austin, TX",
		Industry:    "Mobile Apps",
		CompanySize: "Startup",
		Founded:     "2023",
		Employees:   "5-10 employees",
	},
	{
		ID:          3,
		Company:     "NextGen Development",
		Name:        "Lisa Wang",
		Title:       "Lead Dev",
		Email:       "lisa.wang@nextgen.co",
		Phone:       "(555) 456-7890",
		Location:    "New York, NY",
		Industry:    "Enterprise Software",
		CompanySize: "200+ employees",
	},
}

var exampleQueries = []string{
	"Show me companies dealing in software",
	"Which ones are startups?",
	"Find contacts in San Francisco",
	"Who works at TechFlow?",
}

// Contacts returns a copy of the demo data set.
func Contacts() []Contact {
	return append([]Contact(nil), contacts...)
}

// ExampleQueries returns the canned queries offered on the page.
func ExampleQueries() []string {
	return append([]string(nil), exampleQueries...)
}

func pick(ids ...int) []Contact {
	out := make([]Contact, 0, len(ids))
	for _, id := range ids {
		out = append(out, contacts[id-1])
	}
	return out
}
