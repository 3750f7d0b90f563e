// Package idempotency replays stored responses for repeated Idempotency-Key requests.
package idempotency

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/GlebRadaev/exchange/pkg/auth"
	"github.com/GlebRadaev/exchange/pkg/utils"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	HeaderKey        = "Idempotency-Key"
	keyPrefix        = "exchange:idempotency:v1:"
	inProgressMarker = "__in_progress__"
	storeTimeout     = 2 * time.Second
)

type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

type recorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *recorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

// Middleware stores the first response produced for a (user, Idempotency-Key) pair and
// replays it for later requests with the same key. Requests without the header pass through.
// A duplicate arriving while the first is still running gets 409. Server errors are not stored.
func Middleware(cache redis.UniversalClient, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(HeaderKey)
			if key == "" || r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			userID, _ := r.Context().Value(auth.UserIDKey).(int)
			cacheKey := fmt.Sprintf("%s%d:%s:%s", keyPrefix, userID, r.URL.Path, key)

			ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
			reserved, err := cache.SetNX(ctx, cacheKey, inProgressMarker, ttl).Result()
			if err != nil {
				cancel()
				zap.L().Error("idempotency reservation failed", zap.String("key", key), zap.Error(err))
				utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			if !reserved {
				cached, err := cache.Get(ctx, cacheKey).Result()
				cancel()
				replay(w, key, cached, err)
				return
			}
			cancel()

			persistCtx, persistCancel := context.WithTimeout(context.WithoutCancel(r.Context()), storeTimeout)
			defer persistCancel()
			defer func() {
				if p := recover(); p != nil {
					release(persistCtx, cache, cacheKey)
					panic(p)
				}
			}()

			rec := &recorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			if rec.status == 0 || rec.status >= http.StatusInternalServerError {
				release(persistCtx, cache, cacheKey)
				return
			}
			payload, err := json.Marshal(storedResponse{
				Status:      rec.status,
				ContentType: rec.Header().Get("Content-Type"),
				Body:        rec.body.Bytes(),
			})
			if err == nil {
				err = cache.Set(persistCtx, cacheKey, payload, ttl).Err()
			}
			if err != nil {
				zap.L().Error("failed to persist idempotent response", zap.String("key", key), zap.Error(err))
				release(persistCtx, cache, cacheKey)
			}
		})
	}
}

// release drops the reservation so the client may retry with the same key.
func release(ctx context.Context, cache redis.UniversalClient, cacheKey string) {
	if err := cache.Del(ctx, cacheKey).Err(); err != nil {
		zap.L().Error("failed to release idempotency key", zap.String("key", cacheKey), zap.Error(err))
	}
}

func replay(w http.ResponseWriter, key, cached string, err error) {
	if err != nil {
		if err != redis.Nil {
			zap.L().Error("idempotency lookup failed", zap.String("key", key), zap.Error(err))
		}
		utils.RespondWithError(w, http.StatusConflict, "Duplicate request")
		return
	}
	if cached == inProgressMarker {
		utils.RespondWithError(w, http.StatusConflict, "Duplicate request currently processing")
		return
	}

	var stored storedResponse
	if err := json.Unmarshal([]byte(cached), &stored); err != nil {
		zap.L().Warn("failed to decode stored idempotent response", zap.String("key", key), zap.Error(err))
		utils.RespondWithError(w, http.StatusConflict, "Duplicate request")
		return
	}
	if stored.ContentType != "" {
		w.Header().Set("Content-Type", stored.ContentType)
	}
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(stored.Status)
	_, _ = w.Write(stored.Body)
}
