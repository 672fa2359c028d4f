package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"umrahtransfer/internal/domain"
	"umrahtransfer/internal/domain/models"
	"umrahtransfer/internal/metrics"
	"umrahtransfer/internal/realtime"
	"umrahtransfer/internal/utils"
	"umrahtransfer/internal/wizard"
)

const (
	MaxDraftBytes   = 64 << 10
	DefaultDraftTTL = 7 * 24 * time.Hour
)

// Contact fields are looked up at these paths, first match wins, so both
// the flat wizard payload and nested site state are understood.
var (
	draftEmailPaths = []string{"customerEmail", "contact.email", "email"}
	draftPhonePaths = []string{"customerPhone", "contact.phone", "phone"}
)

type DraftInput struct {
	ID   string          `json:"id"`
	Step int             `json:"step"`
	Data json.RawMessage `json:"data"`
}

// DraftSaved is what the autosave endpoint returns.
type DraftSaved struct {
	ID        string    `json:"id"`
	Step      int       `json:"step"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type DraftService struct {
	Drafts    DraftStore
	Publisher realtime.Publisher
	TTL       time.Duration
	Now       func() time.Time
	RequestID string
}

func (s DraftService) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultDraftTTL
	}
	return s.TTL
}

// Save creates a draft or overwrites the one named by in.ID. Saving an
// unknown or expired id starts that id afresh.
func (s DraftService) Save(ctx context.Context, in DraftInput) (DraftSaved, error) {
	if !wizard.ValidStep(in.Step) {
		return DraftSaved{}, domain.ValidationError{Field: "step", Msg: "step must be between 1 and 4"}
	}
	data := bytes.TrimSpace(in.Data)
	if len(data) > MaxDraftBytes {
		return DraftSaved{}, domain.ValidationError{Field: "data", Msg: fmt.Sprintf("snapshot exceeds %d bytes", MaxDraftBytes)}
	}
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		return DraftSaved{}, domain.ValidationError{Field: "data", Msg: "snapshot must be a JSON object"}
	}

	now := clock(s.Now).now().UTC()
	d := models.Draft{
		ID:        strings.TrimSpace(in.ID),
		Step:      in.Step,
		Data:      json.RawMessage(data),
		Email:     firstString(data, draftEmailPaths),
		Phone:     firstString(data, draftPhonePaths),
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.ttl()),
	}
	if d.Phone != "" {
		if p, ok := utils.NormalizeSaudiPhone(d.Phone); ok {
			d.Phone = p
		}
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	} else if _, err := uuid.Parse(d.ID); err != nil {
		return DraftSaved{}, domain.ValidationError{Field: "id", Msg: "invalid draft id"}
	}

	if err := s.Drafts.Save(ctx, d); err != nil {
		return DraftSaved{}, domain.InternalError{Err: err}
	}
	metrics.DraftSaved()
	utils.LogEvent(s.RequestID, "draft", "save", fmt.Sprintf("id=%s step=%d bytes=%d", d.ID, d.Step, len(data)))

	out := DraftSaved{ID: d.ID, Step: d.Step, ExpiresAt: d.ExpiresAt}
	if err := realtime.PublishEvent(ctx, s.Publisher, realtime.EventDraftSaved, out); err != nil {
		utils.LogError(s.RequestID, "draft", "publish", err)
	}
	return out, nil
}

func firstString(data []byte, paths []string) string {
	for _, p := range paths {
		if r := gjson.GetBytes(data, p); r.Type == gjson.String {
			if v := strings.TrimSpace(r.String()); v != "" {
				return strings.ToLower(v)
			}
		}
	}
	return ""
}

// Get hides expired drafts even before the purge job removes them.
func (s DraftService) Get(ctx context.Context, id string) (models.Draft, error) {
	if _, err := uuid.Parse(strings.TrimSpace(id)); err != nil {
		return models.Draft{}, domain.NotFoundError{Resource: "draft"}
	}
	d, err := s.Drafts.Get(ctx, strings.TrimSpace(id))
	if err != nil {
		if domain.IsNotFound(err) {
			return d, err
		}
		return d, domain.InternalError{Err: err}
	}
	if d.Expired(clock(s.Now).now()) {
		return models.Draft{}, domain.NotFoundError{Resource: "draft"}
	}
	return d, nil
}

func (s DraftService) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(strings.TrimSpace(id)); err != nil {
		return domain.NotFoundError{Resource: "draft"}
	}
	err := s.Drafts.Delete(ctx, strings.TrimSpace(id))
	if err != nil && !domain.IsNotFound(err) {
		return domain.InternalError{Err: err}
	}
	return err
}

// List returns unexpired drafts for the abandoned-booking view.
func (s DraftService) List(ctx context.Context, p domain.Pagination) ([]models.Draft, domain.Pagination, error) {
	p = p.Normalize()
	list, total, err := s.Drafts.ListActive(ctx, clock(s.Now).now(), p.PageSize, p.Offset())
	if err != nil {
		return nil, p, domain.InternalError{Err: err}
	}
	p.Total = total
	return list, p, nil
}

func (s DraftService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.Drafts.PurgeExpired(ctx, clock(s.Now).now())
}
