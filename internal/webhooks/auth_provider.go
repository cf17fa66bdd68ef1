// Package webhooks receives lifecycle callbacks from the auth provider and
// mirrors user records into local storage.
package webhooks

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ronakwanjari/medibot-platform/internal/users"
	"github.com/ronakwanjari/medibot-platform/pkg/logging"
)

// Signed webhooks older than this are rejected to limit replay.
const timestampTolerance = 5 * time.Minute

// AuthProviderHandler handles POST /webhooks/auth-provider.
type AuthProviderHandler struct {
	secret []byte
	repo   users.Repository
	logger *logging.Logger
	now    func() time.Time
}

// NewAuthProviderHandler builds the webhook handler. The secret is the
// provider's signing key; a "whsec_" prefix with base64 payload is
// accepted as-is or decoded, matching the svix convention.
func NewAuthProviderHandler(secret string, repo users.Repository, logger *logging.Logger) *AuthProviderHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AuthProviderHandler{
		secret: signingKey(secret),
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func signingKey(secret string) []byte {
	secret = strings.TrimSpace(secret)
	if raw, ok := strings.CutPrefix(secret, "whsec_"); ok {
		if decoded, err := base64.StdEncoding.DecodeString(raw); err == nil {
			return decoded
		}
	}
	return []byte(secret)
}

// providerEvent is the envelope the auth provider posts. Only the fields
// needed to build a user record are decoded.
type providerEvent struct {
	Type string `json:"type"`
	Data struct {
		ID             string `json:"id"`
		FirstName      string `json:"first_name"`
		LastName       string `json:"last_name"`
		EmailAddresses []struct {
			EmailAddress string `json:"email_address"`
		} `json:"email_addresses"`
		PublicMetadata struct {
			Role string `json:"role"`
		} `json:"public_metadata"`
	} `json:"data"`
}

func (h *AuthProviderHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if len(h.secret) == 0 {
		h.logger.Error("auth webhook secret not configured")
		http.Error(w, "webhook not configured", http.StatusInternalServerError)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	msgID := r.Header.Get("svix-id")
	timestamp := r.Header.Get("svix-timestamp")
	signature := r.Header.Get("svix-signature")
	if msgID == "" || timestamp == "" || signature == "" {
		http.Error(w, "missing signature headers", http.StatusBadRequest)
		return
	}

	if err := h.verify(msgID, timestamp, signature, body); err != nil {
		h.logger.Warn("auth webhook rejected", "error", err)
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	var evt providerEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}
	if evt.Data.ID == "" {
		http.Error(w, "missing user id", http.StatusBadRequest)
		return
	}

	h.apply(r, evt)
	w.WriteHeader(http.StatusOK)
}

func (h *AuthProviderHandler) apply(r *http.Request, evt providerEvent) {
	ctx := r.Context()

	switch evt.Type {
	case "user.created", "user.updated":
		user := &users.User{
			ID:        evt.Data.ID,
			FirstName: evt.Data.FirstName,
			LastName:  evt.Data.LastName,
			Role:      users.Role(evt.Data.PublicMetadata.Role),
		}
		if len(evt.Data.EmailAddresses) > 0 {
			user.Email = evt.Data.EmailAddresses[0].EmailAddress
		}
		if err := h.repo.Upsert(ctx, user); err != nil {
			h.logger.Error("failed to upsert user from webhook", "error", err, "userId", evt.Data.ID, "type", evt.Type)
			return
		}
		h.logger.Info("user synced from auth provider", "userId", evt.Data.ID, "type", evt.Type)
	case "user.deleted":
		if err := h.repo.Delete(ctx, evt.Data.ID); err != nil && err != users.ErrNotFound {
			h.logger.Error("failed to delete user from webhook", "error", err, "userId", evt.Data.ID)
			return
		}
		h.logger.Info("user deleted from auth provider", "userId", evt.Data.ID)
	default:
		h.logger.Debug("ignoring auth webhook event", "type", evt.Type)
	}
}

// verify checks the svix signature scheme: base64 HMAC-SHA256 over
// "id.timestamp.body", with the header carrying space-separated
// "v1,<signature>" candidates.
func (h *AuthProviderHandler) verify(msgID, timestamp, header string, body []byte) error {
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("webhooks: invalid timestamp %q", timestamp)
	}
	age := h.now().UTC().Sub(time.Unix(ts, 0))
	if age > timestampTolerance || age < -timestampTolerance {
		return fmt.Errorf("webhooks: timestamp outside tolerance")
	}

	mac := hmac.New(sha256.New, h.secret)
	fmt.Fprintf(mac, "%s.%s.%s", msgID, timestamp, body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	for _, candidate := range strings.Fields(header) {
		version, sig, ok := strings.Cut(candidate, ",")
		if !ok || version != "v1" {
			continue
		}
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return nil
		}
	}
	return fmt.Errorf("webhooks: no matching signature")
}
