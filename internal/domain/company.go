package domain

// Company is the employer record attached to a succeeded prospect job.
type Company struct {
	ID     string `json:"id" validate:"required"`
	Domain string `json:"domain" validate:"required,max=255"`
	Name   string `json:"company_name" validate:"required,max=255"`
}
