package domain

import (
	"errors"
	"strings"
	"time"
)

// Template selects the public page layout.
type Template string

const (
	TemplateMinimal  Template = "minimal"
	TemplateModern   Template = "modern"
	TemplateCreative Template = "creative"

	DefaultTemplate = TemplateMinimal
)

// Templates lists every selectable layout in display order.
var Templates = []Template{TemplateMinimal, TemplateModern, TemplateCreative}

func (t Template) Valid() bool {
	switch t {
	case TemplateMinimal, TemplateModern, TemplateCreative:
		return true
	}
	return false
}

// OrDefault maps missing or unknown values to the default layout.
func (t Template) OrDefault() Template {
	if t.Valid() {
		return t
	}
	return DefaultTemplate
}

type AssetType string

const (
	AssetImage AssetType = "image"
	AssetVideo AssetType = "video"
)

func (t AssetType) Valid() bool {
	return t == AssetImage || t == AssetVideo
}

type Asset struct {
	ID   string    `json:"id,omitempty"`
	URL  string    `json:"url"`
	Type AssetType `json:"type"`
}

type Social struct {
	GitHub   string `json:"github,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
	Website  string `json:"website,omitempty"`
}

// IsEmpty reports whether no social link is set.
func (s Social) IsEmpty() bool {
	return s.GitHub == "" && s.LinkedIn == "" && s.Twitter == "" && s.Website == ""
}

type Project struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	ProjectURL   string   `json:"projectUrl,omitempty"`
	Assets       []Asset  `json:"assets"`
	Technologies []string `json:"technologies,omitempty"`

	// ImageURL is the pre-assets single image field. It is read, never written by new clients.
	ImageURL string `json:"imageUrl,omitempty"`
}

type PortfolioData struct {
	Name     string    `json:"name"`
	Title    string    `json:"title"`
	Bio      string    `json:"bio"`
	Skills   []string  `json:"skills"`
	Projects []Project `json:"projects"`
	Social   Social    `json:"social"`
}

// Portfolio is stored under portfolio:<owner email>.
type Portfolio struct {
	UserID      string        `json:"userId"`
	Template    Template      `json:"template"`
	Published   bool          `json:"published"`
	Slug        string        `json:"slug,omitempty"`
	Data        PortfolioData `json:"data"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
	PublishedAt *time.Time    `json:"publishedAt,omitempty"`
}

// PortfolioPatch carries the optional top-level fields of an update.
// A nil field is left untouched; a set field replaces the stored value wholesale.
type PortfolioPatch struct {
	Template *Template
	Data     *PortfolioData
}

// IsEmpty reports whether the patch sets nothing.
func (p PortfolioPatch) IsEmpty() bool {
	return p.Template == nil && p.Data == nil
}

var ErrProjectIndex = errors.New("project index out of range")

// NewPortfolio builds the draft created on first sign-in.
func NewPortfolio(user *User, now time.Time) *Portfolio {
	return &Portfolio{
		UserID:    user.ID,
		Template:  DefaultTemplate,
		Published: false,
		Data: PortfolioData{
			Name:     user.Name,
			Skills:   []string{},
			Projects: []Project{},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy.
func (p *Portfolio) Clone() *Portfolio {
	if p == nil {
		return nil
	}
	c := *p
	if p.PublishedAt != nil {
		t := *p.PublishedAt
		c.PublishedAt = &t
	}
	c.Data = p.Data.Clone()
	return &c
}

// Clone returns a deep copy.
func (d PortfolioData) Clone() PortfolioData {
	c := d
	if d.Skills != nil {
		c.Skills = make([]string, len(d.Skills))
		copy(c.Skills, d.Skills)
	}
	if d.Projects != nil {
		c.Projects = make([]Project, len(d.Projects))
		for i, p := range d.Projects {
			c.Projects[i] = p.Clone()
		}
	}
	return c
}

// Clone returns a deep copy.
func (p Project) Clone() Project {
	c := p
	if p.Assets != nil {
		c.Assets = make([]Asset, len(p.Assets))
		copy(c.Assets, p.Assets)
	}
	if p.Technologies != nil {
		c.Technologies = make([]string, len(p.Technologies))
		copy(c.Technologies, p.Technologies)
	}
	return c
}

// SwapProjects exchanges the projects at positions i and j.
func (d *PortfolioData) SwapProjects(i, j int) error {
	if i < 0 || j < 0 || i >= len(d.Projects) || j >= len(d.Projects) {
		return ErrProjectIndex
	}
	d.Projects[i], d.Projects[j] = d.Projects[j], d.Projects[i]
	return nil
}

// NormalizeSkills trims skills and drops blanks and duplicates, keeping first occurrence order.
func (d *PortfolioData) NormalizeSkills() {
	seen := make(map[string]struct{}, len(d.Skills))
	out := make([]string, 0, len(d.Skills))
	for _, s := range d.Skills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	d.Skills = out
}

// PageTitle is the document title of the public page.
func (p *Portfolio) PageTitle() string {
	switch {
	case p.Data.Name != "" && p.Data.Title != "":
		return p.Data.Name + " - " + p.Data.Title
	case p.Data.Name != "":
		return p.Data.Name
	default:
		return "Portfolio"
	}
}
