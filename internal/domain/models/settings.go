package models

// Settings is the single row of site-wide configuration editable by admins.
type Settings struct {
	CompanyName    string `json:"companyName" yaml:"company_name"`
	SupportPhone   string `json:"supportPhone" yaml:"support_phone"`
	WhatsApp       string `json:"whatsapp" yaml:"whatsapp"`
	AdminEmail     string `json:"adminEmail" yaml:"admin_email"`
	Currency       string `json:"currency" yaml:"currency"`
	LeadTimeHours  int    `json:"leadTimeHours" yaml:"lead_time_hours"`
	MaxAdvanceDays int    `json:"maxAdvanceDays" yaml:"max_advance_days"`
	DepositPercent int    `json:"depositPercent" yaml:"deposit_percent"`
}

// DefaultSettings is used until an admin saves settings.
func DefaultSettings() Settings {
	return Settings{
		CompanyName:    "Umrah Transfer",
		Currency:       "SAR",
		LeadTimeHours:  6,
		MaxAdvanceDays: 365,
		DepositPercent: 0,
	}
}

// PublicSettings is the subset exposed to the booking site.
type PublicSettings struct {
	CompanyName    string `json:"companyName"`
	SupportPhone   string `json:"supportPhone"`
	WhatsApp       string `json:"whatsapp"`
	Currency       string `json:"currency"`
	LeadTimeHours  int    `json:"leadTimeHours"`
	MaxAdvanceDays int    `json:"maxAdvanceDays"`
}

func (s Settings) Public() PublicSettings {
	return PublicSettings{
		CompanyName:    s.CompanyName,
		SupportPhone:   s.SupportPhone,
		WhatsApp:       s.WhatsApp,
		Currency:       s.Currency,
		LeadTimeHours:  s.LeadTimeHours,
		MaxAdvanceDays: s.MaxAdvanceDays,
	}
}
