package domain

import (
	"regexp"

	"umrahtransfer/internal/domain/models"
)

var promoCodePattern = regexp.MustCompile(`^[A-Z0-9_-]{3,40}$`)

// ValidatePromotion checks a promotion before it is stored. A rule without
// a code can only be reached as an automatic promotion.
func ValidatePromotion(p models.Promotion) error {
	var fe FieldErrors
	if p.Name == "" {
		fe = fe.Add("name", "name is required")
	}
	switch p.Kind {
	case models.PromoPercent:
		if p.Value < 1 || p.Value > 100 {
			fe = fe.Add("value", "percent must be between 1 and 100")
		}
	case models.PromoFixed:
		if p.Value < 1 {
			fe = fe.Add("value", "amount must be positive")
		}
	default:
		fe = fe.Add("kind", "must be percent or fixed")
	}
	if p.ValidFrom.IsZero() || p.ValidTo.IsZero() {
		fe = fe.Add("validFrom", "validity dates are required")
	} else if p.ValidTo.Format(dateLayout) < p.ValidFrom.Format(dateLayout) {
		fe = fe.Add("validTo", "must not be before validFrom")
	}
	if p.Code != "" && !promoCodePattern.MatchString(p.Code) {
		fe = fe.Add("code", "use 3-40 letters, digits, dash or underscore")
	}
	if p.Code == "" && !p.Automatic {
		fe = fe.Add("code", "code is required unless the promotion is automatic")
	}
	if p.MinSubtotal < 0 {
		fe = fe.Add("minSubtotal", "cannot be negative")
	}
	return fe.Err()
}
