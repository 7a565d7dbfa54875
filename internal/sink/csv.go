package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"prospect-engine/internal/domain"
)

// PhoneSeparator joins a person's phone numbers into one CSV field.
const PhoneSeparator = ";"

// Header is the fixed column set of every company file.
var Header = []string{
	"id",
	"first_name",
	"last_name",
	"title",
	"linkedin_id",
	"linkedin_url",
	"personal_email",
	"professional_email",
	"mobile_phone",
	"phone_numbers",
	"location",
	"country",
	"seniority",
	"department",
	"company_id",
	"quality",
	"email_verified",
	"email_verified_status",
}

func PersonRecord(p domain.Person) []string {
	verified := ""
	if p.EmailVerified != nil {
		verified = strconv.FormatBool(*p.EmailVerified)
	}
	return []string{
		p.ID,
		p.FirstName,
		p.LastName,
		p.Title,
		p.LinkedInID,
		p.LinkedInURL,
		p.PersonalEmail,
		p.ProfessionalEmail,
		p.MobilePhone,
		strings.Join(p.PhoneNumbers, PhoneSeparator),
		p.Location,
		p.Country,
		p.Seniority,
		p.Department,
		p.CompanyID,
		p.Quality,
		verified,
		p.EmailVerifiedStatus,
	}
}

// FileName maps a company domain to its output file name.
func FileName(d string) string {
	d = strings.ToLower(strings.TrimSpace(d))
	d = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, d)
	if d == "" || d == "." || d == ".." {
		d = "_"
	}
	return d + ".csv"
}

// WriteCompanyCSV writes <dir>/<domain>.csv for r. Companies without persons
// get no file. It returns the path written, or "" when skipped.
func WriteCompanyCSV(dir string, r domain.ProspectResult) (string, error) {
	if len(r.Persons) == 0 {
		return "", nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, FileName(r.Company.Domain))
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return "", err
	}
	w := csv.NewWriter(f)
	_ = w.Write(Header)
	for _, p := range r.Persons {
		if p.CompanyID == "" {
			p.CompanyID = r.Company.ID
		}
		_ = w.Write(PersonRecord(p))
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", err
	}
	return path, nil
}

// WriteAll writes one file per company and stops at the first error. Files
// already written are left in place.
func WriteAll(dir string, results domain.CollectedResults, log logrus.FieldLogger) ([]string, error) {
	var paths []string
	for _, r := range results {
		p, err := WriteCompanyCSV(dir, r)
		if err != nil {
			return paths, fmt.Errorf("company %s: %w", r.Company.Domain, err)
		}
		if p == "" {
			log.WithField("domain", r.Company.Domain).Info("[csv] no persons; file skipped")
			continue
		}
		log.WithFields(logrus.Fields{"domain": r.Company.Domain, "path": p, "persons": len(r.Persons)}).Info("[csv] contacts written")
		paths = append(paths, p)
	}
	return paths, nil
}
