package service

import (
	"strings"

	"golang.org/x/text/language"

	"github.com/noah-isme/kaizen-portal-api/internal/models"
)

// Supported catalog locales.
const (
	LocaleEnglish = "en"
	LocaleHindi   = "hi"
)

var catalogLocales = []language.Tag{language.English, language.Hindi}

var defaultDepartments = []models.OrgUnit{
	{ID: "production", Name: "Production", Labels: map[string]string{LocaleEnglish: "Production", LocaleHindi: "उत्पादन"}},
	{ID: "quality", Name: "Quality", Labels: map[string]string{LocaleEnglish: "Quality", LocaleHindi: "गुणवत्ता"}},
	{ID: "maintenance", Name: "Maintenance", Labels: map[string]string{LocaleEnglish: "Maintenance", LocaleHindi: "रखरखाव"}},
	{ID: "engineering", Name: "Engineering", Labels: map[string]string{LocaleEnglish: "Engineering", LocaleHindi: "इंजीनियरिंग"}},
	{ID: "hr", Name: "HR", Labels: map[string]string{LocaleEnglish: "Human Resources", LocaleHindi: "मानव संसाधन"}},
	{ID: "finance", Name: "Finance", Labels: map[string]string{LocaleEnglish: "Finance", LocaleHindi: "वित्त"}},
}

var defaultPlants = []models.OrgUnit{
	{ID: "pune", Name: "Pune", Labels: map[string]string{LocaleEnglish: "Pune", LocaleHindi: "पुणे"}},
	{ID: "aurangabad", Name: "Aurangabad", Labels: map[string]string{LocaleEnglish: "Aurangabad", LocaleHindi: "औरंगाबाद"}},
	{ID: "nashik", Name: "Nashik", Labels: map[string]string{LocaleEnglish: "Nashik", LocaleHindi: "नासिक"}},
	{ID: "chennai", Name: "Chennai", Labels: map[string]string{LocaleEnglish: "Chennai", LocaleHindi: "चेन्नई"}},
}

// CatalogService exposes the immutable department and plant tables.
type CatalogService struct {
	departments []models.OrgUnit
	plants      []models.OrgUnit
	matcher     language.Matcher
}

// NewCatalogService builds the catalog once; the tables never change afterwards.
func NewCatalogService() *CatalogService {
	return &CatalogService{
		departments: defaultDepartments,
		plants:      defaultPlants,
		matcher:     language.NewMatcher(catalogLocales),
	}
}

// Departments lists departments in canonical order with labels for locale.
func (s *CatalogService) Departments(locale string) []models.CatalogOption {
	return options(s.departments, locale)
}

// Plants lists plants in canonical order with labels for locale.
func (s *CatalogService) Plants(locale string) []models.CatalogOption {
	return options(s.plants, locale)
}

// DepartmentNames returns the canonical department names in catalog order.
func (s *CatalogService) DepartmentNames() []string {
	return names(s.departments)
}

// PlantNames returns the canonical plant names in catalog order.
func (s *CatalogService) PlantNames() []string {
	return names(s.plants)
}

// NormalizeDepartment resolves an id, name or English label to the canonical department name.
func (s *CatalogService) NormalizeDepartment(raw string) (string, bool) {
	return normalize(s.departments, raw)
}

// NormalizePlant resolves an id, name or English label to the canonical plant name.
func (s *CatalogService) NormalizePlant(raw string) (string, bool) {
	return normalize(s.plants, raw)
}

// NegotiateLocale picks the best supported locale from an explicit value or an Accept-Language header.
func (s *CatalogService) NegotiateLocale(explicit, acceptLanguage string) string {
	if explicit != "" {
		if tag, err := language.Parse(explicit); err == nil {
			_, idx, _ := s.matcher.Match(tag)
			return localeCode(idx)
		}
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return LocaleEnglish
	}
	_, idx, _ := s.matcher.Match(tags...)
	return localeCode(idx)
}

func localeCode(idx int) string {
	if idx == 1 {
		return LocaleHindi
	}
	return LocaleEnglish
}

func options(units []models.OrgUnit, locale string) []models.CatalogOption {
	result := make([]models.CatalogOption, 0, len(units))
	for _, unit := range units {
		result = append(result, models.CatalogOption{Value: unit.ID, Name: unit.Name, Label: unit.Label(locale)})
	}
	return result
}

func names(units []models.OrgUnit) []string {
	result := make([]string, 0, len(units))
	for _, unit := range units {
		result = append(result, unit.Name)
	}
	return result
}

func normalize(units []models.OrgUnit, raw string) (string, bool) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", false
	}
	for _, unit := range units {
		if strings.EqualFold(unit.ID, candidate) ||
			strings.EqualFold(unit.Name, candidate) ||
			strings.EqualFold(unit.Labels[LocaleEnglish], candidate) {
			return unit.Name, true
		}
	}
	return "", false
}
