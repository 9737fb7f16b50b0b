package internal

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

type APIError struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func (e APIError) Error() string {
	return e.Message
}

func NewAPIError(message string, status int) APIError {
	return APIError{Message: message, Status: status}
}

func writeError(w http.ResponseWriter, err error, logger *Logger, r *http.Request) {
	var apiErr APIError
	if e, ok := err.(APIError); ok {
		apiErr = e
	} else {
		apiErr = NewAPIError("Internal server error", http.StatusInternalServerError)
	}

	requestID := GetRequestID(r.Context())

	logger.Error("api_error").
		Component("http").
		Operation("write_error").
		HTTP(r.Method, r.URL.Path, apiErr.Status).
		Request(r.UserAgent(), r.RemoteAddr, requestID).
		Err(err).
		ErrorCode(strconv.Itoa(apiErr.Status)).
		Log()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":     apiErr.Message,
		"status":    apiErr.Status,
		"timestamp": time.Now().Unix(),
		"requestId": requestID,
	})
}

func writeJSON(w http.ResponseWriter, data interface{}, logger *Logger, r *http.Request) {
	requestID := GetRequestID(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("json_encode_failed").
			Component("http").
			Operation("write_json").
			Request("", "", requestID).
			Err(err).
			Log()
	}
}

func withCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func withRateLimit(rateLimiter RateLimiterInterface, key string, logger *Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if rateLimiter == nil {
				next(w, r)
				return
			}
			requestID := GetRequestID(r.Context())

			allowed, err := rateLimiter.Allow(r.Context(), key)
			if err != nil {
				logger.Error("rate_limiter_error").
					Component("rate_limiter").
					Operation("check_limit").
					Request("", "", requestID).
					Err(err).
					Meta("key", key).
					Log()
				writeError(w, NewAPIError("Rate limiter error", http.StatusInternalServerError), logger, r)
				return
			}

			if !allowed {
				logger.Warn("rate_limit_exceeded").
					Component("rate_limiter").
					Operation("check_limit").
					Request("", "", requestID).
					Meta("key", key).
					Log()
				writeError(w, NewAPIError("Rate limit exceeded", http.StatusTooManyRequests), logger, r)
				return
			}

			next(w, r)
		}
	}
}

func HealthHandler(logger *Logger) http.HandlerFunc {
	return withCORS(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("health_check").
			Component("health").
			Operation("check").
			Log()

		writeJSON(w, map[string]interface{}{
			"status":    "ok",
			"timestamp": time.Now().Unix(),
		}, logger, r)
	})
}

// SquadHandler runs the aggregation pipeline for the roster and returns the
// run report. An unset RIOT_API_KEY fails fast before any upstream work.
func SquadHandler(pipeline *Pipeline, cfg *Config, rateLimiter RateLimiterInterface, logger *Logger) http.HandlerFunc {
	return withCORS(withRateLimit(rateLimiter, "squad", logger)(func(w http.ResponseWriter, r *http.Request) {
		requestID := GetRequestID(r.Context())

		if cfg.RiotAPIKey == "" {
			logger.Warn("missing_riot_api_key").
				Component("squad").
				Operation("get_squad").
				Request("", "", requestID).
				Log()
			writeError(w, NewAPIError("RIOT_API_KEY is not configured", http.StatusBadRequest), logger, r)
			return
		}

		count := 0
		if countStr := r.URL.Query().Get("count"); countStr != "" {
			if c, err := strconv.Atoi(countStr); err == nil {
				count = c
			}
		}

		logger.Info("squad_request").
			Component("squad").
			Operation("get_squad").
			Request("", "", requestID).
			Meta("count", count).
			Log()

		report := pipeline.Run(r.Context(), count)

		logger.Info("squad_success").
			Component("squad").
			Operation("get_squad").
			Request("", "", requestID).
			Meta("results_count", len(report.Results)).
			Meta("rate_limited", report.RateLimited).
			Log()

		writeJSON(w, report, logger, r)
	}))
}

func MetricsHandler(logger *Logger, metrics *MetricsCollector) http.HandlerFunc {
	return withCORS(func(w http.ResponseWriter, r *http.Request) {
		requestID := GetRequestID(r.Context())

		logger.Debug("metrics_request").
			Component("metrics").
			Operation("get_metrics").
			Request("", "", requestID).
			Log()

		writeJSON(w, metrics.GetMetrics(), logger, r)
	})
}
