package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"umrahtransfer/internal/domain"
	"umrahtransfer/internal/domain/models"
	"umrahtransfer/internal/utils"
)

type PromotionService struct {
	Promotions PromotionStore
	RequestID  string
}

func (s PromotionService) List(ctx context.Context) ([]models.Promotion, error) {
	list, err := s.Promotions.List(ctx)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	return list, nil
}

// promotionFromPayload reads dates as calendar days; the time of day is
// irrelevant to validity.
func promotionFromPayload(p models.PromotionPayload) (models.Promotion, error) {
	var fe domain.FieldErrors
	from, err := time.Parse(utils.LayoutDate, strings.TrimSpace(p.ValidFrom))
	if err != nil {
		fe = fe.Add("validFrom", "use YYYY-MM-DD")
	}
	to, err := time.Parse(utils.LayoutDate, strings.TrimSpace(p.ValidTo))
	if err != nil {
		fe = fe.Add("validTo", "use YYYY-MM-DD")
	}
	if len(fe) > 0 {
		return models.Promotion{}, fe
	}
	out := models.Promotion{
		Code:        strings.ToUpper(strings.TrimSpace(p.Code)),
		Name:        utils.NormalizeSpace(p.Name),
		Kind:        models.PromotionKind(strings.ToLower(strings.TrimSpace(string(p.Kind)))),
		Value:       p.Value,
		ValidFrom:   from,
		ValidTo:     to,
		RouteID:     p.RouteID,
		VehicleID:   p.VehicleID,
		MinSubtotal: p.MinSubtotal,
		Automatic:   p.Automatic,
		Active:      true,
	}
	if p.Active != nil {
		out.Active = *p.Active
	}
	return out, domain.ValidatePromotion(out)
}

func (s PromotionService) Create(ctx context.Context, p models.PromotionPayload) (models.Promotion, error) {
	promo, err := promotionFromPayload(p)
	if err != nil {
		return promo, err
	}
	id, err := s.Promotions.Create(ctx, promo)
	if err != nil {
		if domain.IsConflict(err) {
			return promo, err
		}
		return promo, domain.InternalError{Err: err}
	}
	promo.ID = id
	utils.LogEvent(s.RequestID, "promotion", "create", fmt.Sprintf("id=%d code=%s", id, promo.Code))
	return promo, nil
}

func (s PromotionService) Update(ctx context.Context, id int64, p models.PromotionPayload) (models.Promotion, error) {
	if id <= 0 {
		return models.Promotion{}, domain.ValidationError{Field: "id", Msg: "invalid id"}
	}
	promo, err := promotionFromPayload(p)
	if err != nil {
		return promo, err
	}
	promo.ID = id
	if err := s.Promotions.Update(ctx, promo); err != nil {
		if domain.IsConflict(err) || domain.IsNotFound(err) {
			return promo, err
		}
		return promo, domain.InternalError{Err: err}
	}
	utils.LogEvent(s.RequestID, "promotion", "update", fmt.Sprintf("id=%d", id))
	return promo, nil
}

func (s PromotionService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.ValidationError{Field: "id", Msg: "invalid id"}
	}
	if err := s.Promotions.Delete(ctx, id); err != nil {
		if domain.IsNotFound(err) {
			return err
		}
		return domain.InternalError{Err: err}
	}
	utils.LogEvent(s.RequestID, "promotion", "delete", fmt.Sprintf("id=%d", id))
	return nil
}
