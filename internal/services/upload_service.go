package services

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"umrahtransfer/internal/domain"
	"umrahtransfer/internal/utils"
)

var uploadFolders = map[string]bool{"fleet": true, "routes": true, "site": true}

// UploadSignature lets the admin UI post an image straight to the image
// CDN without the API secret leaving the server.
type UploadSignature struct {
	CloudName string `json:"cloudName"`
	APIKey    string `json:"apiKey"`
	Timestamp int64  `json:"timestamp"`
	Folder    string `json:"folder"`
	PublicID  string `json:"publicId"`
	Signature string `json:"signature"`
	UploadURL string `json:"uploadUrl"`
}

type UploadSigner struct {
	CloudName string
	APIKey    string
	APISecret string
	Now       func() time.Time
	RequestID string
}

func (s UploadSigner) Configured() bool {
	return s.CloudName != "" && s.APIKey != "" && s.APISecret != ""
}

// Sign returns parameters for one upload into folder. The public id is
// generated so uploads never overwrite each other.
func (s UploadSigner) Sign(folder string) (UploadSignature, error) {
	if !s.Configured() {
		return UploadSignature{}, domain.ConflictError{Resource: "upload", Msg: "image uploads are not configured"}
	}
	folder = strings.ToLower(strings.TrimSpace(folder))
	if folder == "" {
		folder = "fleet"
	}
	if !uploadFolders[folder] {
		return UploadSignature{}, domain.ValidationError{Field: "folder", Msg: "must be fleet, routes or site"}
	}

	ts := clock(s.Now).now().Unix()
	publicID := uuid.NewString()
	params := map[string]string{
		"folder":    "umrah/" + folder,
		"public_id": publicID,
		"timestamp": strconv.FormatInt(ts, 10),
	}
	out := UploadSignature{
		CloudName: s.CloudName,
		APIKey:    s.APIKey,
		Timestamp: ts,
		Folder:    params["folder"],
		PublicID:  publicID,
		Signature: SignParams(params, s.APISecret),
		UploadURL: fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/image/upload", s.CloudName),
	}
	utils.LogEvent(s.RequestID, "upload", "sign", "folder="+out.Folder)
	return out, nil
}

// SignParams is the CDN's request signature: parameters sorted by name,
// joined as k=v with '&', secret appended, SHA-1 hex encoded.
func SignParams(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+params[k])
	}
	sum := sha1.Sum([]byte(strings.Join(parts, "&") + secret))
	return hex.EncodeToString(sum[:])
}
