// Package svix проверяет подписи webhook-запросов, подписанных по схеме Svix
// (её использует Clerk). Подписываемая строка составляется из заголовков
// svix-id и svix-timestamp и сырого тела запроса, подпись — HMAC-SHA256
// на общем секрете, закодированная в base64.
package svix

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	secretPrefix = "whsec_"

	// Допустимое расхождение svix-timestamp с текущим временем.
	timestampTolerance = 5 * time.Minute
)

var (
	// ErrInvalidSignature — подпись не сошлась ни с одним значением заголовка.
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrMissingHeaders — отсутствует один из обязательных svix-заголовков.
	ErrMissingHeaders = errors.New("missing svix headers")
	// ErrTimestampOutOfTolerance — svix-timestamp слишком старый или из будущего.
	ErrTimestampOutOfTolerance = errors.New("webhook timestamp out of tolerance")
)

// Webhook хранит декодированный секрет и проверяет подписи входящих событий.
type Webhook struct {
	key []byte
}

// New создаёт Webhook из секрета вида "whsec_<base64>".
// Префикс опционален: Clerk выдаёт секрет с ним, но принимаем и голый base64.
func New(secret string) (*Webhook, error) {
	const op = "svix.New"

	key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, secretPrefix))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Webhook{key: key}, nil
}

// Verify проверяет подпись payload по заголовкам svix-id, svix-timestamp
// и svix-signature. Заголовок подписи содержит разделённый пробелами список
// значений вида "v1,<base64>"; достаточно совпадения с любым из них.
func (wh *Webhook) Verify(payload []byte, id, timestamp, signature string) error {
	return wh.verify(payload, id, timestamp, signature, time.Now())
}

func (wh *Webhook) verify(payload []byte, id, timestamp, signature string, now time.Time) error {
	const op = "svix.Verify"

	if id == "" || timestamp == "" || signature == "" {
		return fmt.Errorf("%s: %w", op, ErrMissingHeaders)
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%s: invalid timestamp: %w", op, ErrInvalidSignature)
	}
	diff := now.Sub(time.Unix(ts, 0))
	if diff > timestampTolerance || diff < -timestampTolerance {
		return fmt.Errorf("%s: %w", op, ErrTimestampOutOfTolerance)
	}

	expected := wh.sign(payload, id, timestamp)
	for _, part := range strings.Split(signature, " ") {
		version, sig, found := strings.Cut(part, ",")
		if !found || version != "v1" {
			continue
		}
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return nil
		}
	}
	return fmt.Errorf("%s: %w", op, ErrInvalidSignature)
}

// Sign возвращает подпись "v1,<base64>" для заданных id, timestamp и тела.
// Используется в тестах для формирования корректно подписанных запросов.
func (wh *Webhook) Sign(payload []byte, id, timestamp string) string {
	return "v1," + wh.sign(payload, id, timestamp)
}

func (wh *Webhook) sign(payload []byte, id, timestamp string) string {
	mac := hmac.New(sha256.New, wh.key)
	mac.Write([]byte(id + "." + timestamp + "."))
	mac.Write(payload)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
