package store

import (
	"github.com/google/uuid"

	"prospect-engine/internal/domain"
)

var companyColumns = []string{"id", "domain", "company_name"}

var personColumns = []string{
	"id",
	"first_name",
	"last_name",
	"linkedin_id",
	"linkedin_url",
	"personal_email",
	"location",
	"country",
	"company_id",
	"professional_email",
	"mobile_phone",
	"title",
	"seniority",
	"department",
	"quality",
	"email_verified",
	"email_verified_status",
}

// bulkRows flattens one run into insert rows. Companies repeated within the
// run are written once; persons without an id get a fresh UUID.
func bulkRows(results domain.CollectedResults) (companies, persons [][]any) {
	seen := make(map[string]bool, len(results))
	for _, c := range results.Companies() {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		companies = append(companies, []any{c.ID, c.Domain, c.Name})
	}

	for _, p := range results.Persons() {
		id := p.ID
		if id == "" {
			id = uuid.NewString()
		}
		var verified any
		if p.EmailVerified != nil {
			verified = *p.EmailVerified
		}
		persons = append(persons, []any{
			id,
			p.FirstName,
			p.LastName,
			nullable(p.LinkedInID),
			nullable(p.LinkedInURL),
			nullable(p.PersonalEmail),
			nullable(p.Location),
			nullable(p.Country),
			p.CompanyID,
			nullable(p.ProfessionalEmail),
			nullable(p.MobilePhone),
			p.Title,
			nullable(p.Seniority),
			nullable(p.Department),
			nullable(p.Quality),
			verified,
			nullable(p.EmailVerifiedStatus),
		})
	}
	return companies, persons
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
