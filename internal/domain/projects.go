package domain

const (
	ProjectLive    = "Live"
	ProjectBeta    = "Beta"
	ProjectConcept = "Concept"
)

// CategoryAll disables the category filter.
const CategoryAll = "All"

var Categories = []string{CategoryAll, "Web", "Applications", "Security"}

type Project struct {
	Title    string   `json:"title"`
	Blurb    string   `json:"blurb"`
	Tags     []string `json:"tags"`
	Href     string   `json:"href"`
	Status   string   `json:"status"`
	Category string   `json:"category"`
}

// Projects is the portfolio catalogue in display order.
func Projects() []Project {
	return []Project{
		{
			Title:    "The VANT∆ Project",
			Blurb:    "An evolving personal portfolio built as an interactive web app, designed to grow alongside my skills and projects while exploring modern front-end structure, data integration, and creative UI design.",
			Tags:     []string{"TypeScript", "Front-end", "Security"},
			Href:     "#",
			Status:   ProjectBeta,
			Category: "Web",
		},
		{
			Title:    "Micro Sites",
			Blurb:    "A collection of small, focused web projects designed to explore specific front-end concepts, layouts, and interactive features, each built to hone my skills in HTML, CSS, and JavaScript through practical application.",
			Tags:     []string{"HTML", "CSS", "JavaScript"},
			Href:     "./micro-sites/Homepage/index.html",
			Status:   ProjectBeta,
			Category: "Web",
		},
		{
			Title:    "TACNET",
			Blurb:    "A dynamic web app inspired by Star Citizen, designed to manage ships and systems interactively, built to progressively explore JavaScript logic, modular UI design, API integration, and full-stack integration.",
			Tags:     []string{"JavaScript", "API", "Full-Stack"},
			Href:     "https://tacnet.space",
			Status:   ProjectConcept,
			Category: "Applications",
		},
	}
}
