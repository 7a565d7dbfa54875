package domain

// Person is one contact returned for a company. Length limits follow the
// narrowest column the person table gives each field.
type Person struct {
	ID                  string   `json:"id,omitempty"`
	FirstName           string   `json:"first_name" validate:"required,max=255"`
	LastName            string   `json:"last_name" validate:"required,max=255"`
	Title               string   `json:"title" validate:"required,max=255"`
	LinkedInID          string   `json:"linkedin_id,omitempty" validate:"max=255"`
	LinkedInURL         string   `json:"linkedin_url,omitempty" validate:"max=255"`
	PersonalEmail       string   `json:"personal_email,omitempty" validate:"max=255"`
	ProfessionalEmail   string   `json:"professional_email,omitempty" validate:"max=255"`
	MobilePhone         string   `json:"mobile_phone,omitempty" validate:"max=20"`
	PhoneNumbers        []string `json:"phone_numbers,omitempty"`
	Location            string   `json:"location,omitempty" validate:"max=255"`
	Country             string   `json:"country,omitempty" validate:"max=255"`
	Seniority           string   `json:"seniority,omitempty" validate:"max=255"`
	Department          string   `json:"department,omitempty" validate:"max=255"`
	CompanyID           string   `json:"company_id,omitempty"`
	Quality             string   `json:"quality,omitempty" validate:"max=50"`
	EmailVerified       *bool    `json:"email_verified,omitempty"`
	EmailVerifiedStatus string   `json:"email_verified_status,omitempty" validate:"max=50"`
}

// ProspectResult is the output payload of a SUCCEEDED job.
type ProspectResult struct {
	Company Company  `json:"company"`
	Persons []Person `json:"persons" validate:"dive"`
}

// CollectedResults holds succeeded outputs in completion order.
type CollectedResults []ProspectResult

// Persons flattens every person of every company into one slice, filling in
// the employer linkage from the enclosing company when the payload omits it.
func (c CollectedResults) Persons() []Person {
	n := 0
	for _, r := range c {
		n += len(r.Persons)
	}
	out := make([]Person, 0, n)
	for _, r := range c {
		for _, p := range r.Persons {
			if p.CompanyID == "" {
				p.CompanyID = r.Company.ID
			}
			out = append(out, p)
		}
	}
	return out
}

func (c CollectedResults) Companies() []Company {
	out := make([]Company, 0, len(c))
	for _, r := range c {
		out = append(out, r.Company)
	}
	return out
}
