package services

import (
	"context"
	"strings"

	"umrahtransfer/internal/domain"
	"umrahtransfer/internal/domain/models"
	"umrahtransfer/internal/utils"
)

type SettingsService struct {
	Settings  SettingsStore
	RequestID string
}

func (s SettingsService) Get(ctx context.Context) (models.Settings, error) {
	st, err := s.Settings.Get(ctx)
	if err != nil {
		return st, domain.InternalError{Err: err}
	}
	return st, nil
}

// NormalizeSettings trims input and fills unset fields with defaults.
func NormalizeSettings(in models.Settings) models.Settings {
	def := models.DefaultSettings()
	in.CompanyName = utils.FirstNonEmpty(utils.NormalizeSpace(in.CompanyName), def.CompanyName)
	in.Currency = strings.ToUpper(utils.FirstNonEmpty(strings.TrimSpace(in.Currency), def.Currency))
	in.AdminEmail = strings.ToLower(strings.TrimSpace(in.AdminEmail))
	if p, ok := utils.NormalizeSaudiPhone(in.SupportPhone); ok {
		in.SupportPhone = p
	}
	if p, ok := utils.NormalizeSaudiPhone(in.WhatsApp); ok {
		in.WhatsApp = p
	}
	if in.MaxAdvanceDays == 0 {
		in.MaxAdvanceDays = def.MaxAdvanceDays
	}
	return in
}

func ValidateSettings(st models.Settings) error {
	var fe domain.FieldErrors
	if len(st.Currency) != 3 {
		fe = fe.Add("currency", "use a 3-letter currency code")
	}
	if st.AdminEmail != "" && !utils.IsEmail(st.AdminEmail) {
		fe = fe.Add("adminEmail", "enter a valid email address")
	}
	if st.LeadTimeHours < 0 || st.LeadTimeHours > 24*14 {
		fe = fe.Add("leadTimeHours", "must be between 0 and 336")
	}
	if st.MaxAdvanceDays < 1 || st.MaxAdvanceDays > 730 {
		fe = fe.Add("maxAdvanceDays", "must be between 1 and 730")
	}
	if st.DepositPercent < 0 || st.DepositPercent > 100 {
		fe = fe.Add("depositPercent", "must be between 0 and 100")
	}
	return fe.Err()
}

func (s SettingsService) Update(ctx context.Context, in models.Settings) (models.Settings, error) {
	st := NormalizeSettings(in)
	if err := ValidateSettings(st); err != nil {
		return st, err
	}
	if err := s.Settings.Save(ctx, st); err != nil {
		return st, domain.InternalError{Err: err}
	}
	utils.LogEvent(s.RequestID, "settings", "update", "settings saved")
	return st, nil
}
