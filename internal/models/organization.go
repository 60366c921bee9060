package models

// OrgUnit is a department or plant entry in the organization catalog.
type OrgUnit struct {
	ID     string
	Name   string
	Labels map[string]string
}

// Label returns the localized label, falling back to English and then the canonical name.
func (u OrgUnit) Label(locale string) string {
	if label, ok := u.Labels[locale]; ok && label != "" {
		return label
	}
	if label, ok := u.Labels["en"]; ok && label != "" {
		return label
	}
	return u.Name
}

// CatalogOption is the localized view of an OrgUnit served to clients.
type CatalogOption struct {
	Value string `json:"value"`
	Name  string `json:"name"`
	Label string `json:"label"`
}
