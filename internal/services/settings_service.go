package services

import (
	"context"
	"encoding/json"

	"creativehub/internal/repos"
	"creativehub/internal/validate"

	"github.com/shopspring/decimal"
)

// Settings is the typed view of admin_settings. Missing keys take defaults.
type Settings struct {
	SiteName           string          `json:"site_name"`
	SiteDescription    string          `json:"site_description"`
	ContactEmail       string          `json:"contact_email"`
	EnableRegistration bool            `json:"enable_registration"`
	EnableReviews      bool            `json:"enable_reviews"`
	MaintenanceMode    bool            `json:"maintenance_mode"`
	CommissionRate     decimal.Decimal `json:"commission_rate"`
}

func DefaultSettings() Settings {
	return Settings{
		SiteName:           "CreativeHub",
		SiteDescription:    "Marketplace for digital design assets and courses",
		ContactEmail:       "hello@creativehub.test",
		EnableRegistration: true,
		EnableReviews:      true,
		MaintenanceMode:    false,
		CommissionRate:     decimal.NewFromInt(10),
	}
}

type SettingsService struct {
	Repo *repos.SettingsRepo
}

func (s *SettingsService) Load(ctx context.Context) (Settings, error) {
	st := DefaultSettings()
	rows, err := s.Repo.All(ctx)
	if err != nil {
		return st, err
	}
	// Each value is a JSON document; decode it into the matching field.
	fields := map[string]any{
		"site_name":           &st.SiteName,
		"site_description":    &st.SiteDescription,
		"contact_email":       &st.ContactEmail,
		"enable_registration": &st.EnableRegistration,
		"enable_reviews":      &st.EnableReviews,
		"maintenance_mode":    &st.MaintenanceMode,
		"commission_rate":     &st.CommissionRate,
	}
	for _, r := range rows {
		dst, ok := fields[r.Key]
		if !ok {
			continue
		}
		_ = json.Unmarshal([]byte(r.Value), dst) // bad values keep the default
	}
	return st, nil
}

// SettingsInput is the admin settings form; checkboxes arrive as booleans.
type SettingsInput struct {
	SiteName           string
	SiteDescription    string
	ContactEmail       string
	EnableRegistration bool
	EnableReviews      bool
	MaintenanceMode    bool
	CommissionRate     string
}

func (s *SettingsService) Save(ctx context.Context, in SettingsInput) (Settings, error) {
	fe := validate.Errors{}
	name, ok := validate.Text(in.SiteName, 80, true)
	fe.Check(ok, "site_name", "Site name is required")
	desc, ok := validate.Text(in.SiteDescription, 300, false)
	fe.Check(ok, "site_description", "Description is too long")
	email, ok := validate.Email(in.ContactEmail)
	fe.Check(ok, "contact_email", "Enter a valid email address")
	rate, ok := validate.Price(in.CommissionRate)
	fe.Check(ok && rate.LessThanOrEqual(decimal.NewFromInt(100)), "commission_rate", "Commission must be between 0 and 100")
	if err := invalid(fe); err != nil {
		return Settings{}, err
	}

	st := Settings{
		SiteName: name, SiteDescription: desc, ContactEmail: email,
		EnableRegistration: in.EnableRegistration, EnableReviews: in.EnableReviews,
		MaintenanceMode: in.MaintenanceMode, CommissionRate: rate,
	}
	values := map[string]string{}
	for k, v := range map[string]any{
		"site_name":           st.SiteName,
		"site_description":    st.SiteDescription,
		"contact_email":       st.ContactEmail,
		"enable_registration": st.EnableRegistration,
		"enable_reviews":      st.EnableReviews,
		"maintenance_mode":    st.MaintenanceMode,
		"commission_rate":     st.CommissionRate,
	} {
		b, err := json.Marshal(v)
		if err != nil {
			return Settings{}, err
		}
		values[k] = string(b)
	}
	return st, s.Repo.Upsert(ctx, values)
}
