// Package twin is an in-process fake of the age prediction API. It serves predictions from a
// YAML seed, enforces the API key table and per-key quotas, and reproduces the service's
// error bodies, so that the suite can run offline and package tests stay hermetic.
package twin

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/hasselmyr/agify-api-tests/servicedef"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Twin serves the prediction endpoint.
type Twin struct {
	seed   *Seed
	router *chi.Mux
	logger *zap.Logger
	now    func() time.Time

	mu   sync.Mutex
	used map[string]int
}

// New creates a Twin for the given seed. logger may be nil.
func New(seed *Seed, logger *zap.Logger) *Twin {
	if logger == nil {
		logger = zap.NewNop()
	}
	tw := &Twin{
		seed:   seed,
		logger: logger,
		now:    time.Now,
		used:   make(map[string]int),
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(tw.requestLog)
	r.Get("/", tw.predict)
	r.Head("/", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	tw.router = r
	return tw
}

// ServeHTTP implements http.Handler.
func (tw *Twin) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tw.router.ServeHTTP(w, r)
}

// Used returns how many names have been charged to an API key so far.
func (tw *Twin) Used(apiKey string) int {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return tw.used[apiKey]
}

func (tw *Twin) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		tw.logger.Debug("twin request",
			zap.String("request_id", chimw.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("query", redactKey(r.URL.RawQuery)),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func (tw *Twin) predict(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var key Key
	apiKey, keyed := query[servicedef.ParamAPIKey]
	if keyed {
		var ok bool
		key, ok = tw.seed.FindKey(lastOf(apiKey))
		if !ok {
			writeError(w, http.StatusUnauthorized, servicedef.ErrInvalidAPIKey)
			return
		}
		if key.Expired {
			writeError(w, http.StatusPaymentRequired, servicedef.ErrInactiveSubscription)
			return
		}
	}

	names, batch := query[servicedef.ParamBatchName]
	if !batch {
		if single, ok := query[servicedef.ParamName]; ok {
			names = []string{lastOf(single)}
		}
	}
	if len(names) == 0 {
		writeError(w, http.StatusUnprocessableEntity, servicedef.ErrMissingName)
		return
	}
	if len(names) > servicedef.MaxBatchSize {
		writeError(w, http.StatusUnprocessableEntity, servicedef.ErrInvalidName)
		return
	}
	for _, name := range names {
		if !utf8.ValidString(name) {
			writeError(w, http.StatusUnprocessableEntity, servicedef.ErrInvalidName)
			return
		}
	}

	if keyed {
		remaining, ok := tw.charge(key, len(names))
		tw.writeRateLimit(w, key, remaining)
		if !ok {
			writeError(w, http.StatusTooManyRequests, servicedef.ErrRequestLimit)
			return
		}
	}

	country := strings.ToUpper(query.Get(servicedef.ParamCountryID))
	records := make([]servicedef.PredictionRecord, 0, len(names))
	for _, name := range names {
		stat := tw.seed.Lookup(name, country)
		rec := servicedef.PredictionRecord{Name: name, Count: stat.Count, CountryID: country}
		if stat.Age != nil {
			rec.Age = ldvalue.NewOptionalInt(*stat.Age)
		}
		records = append(records, rec)
	}

	if batch {
		writeJSON(w, http.StatusOK, records)
	} else {
		writeJSON(w, http.StatusOK, records[0])
	}
}

// charge consumes n units of the key's quota. It returns the remaining quota and whether
// the request fits. A key with no limit is unmetered.
func (tw *Twin) charge(key Key, n int) (int, bool) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if key.Limit <= 0 {
		return 0, true
	}
	used := tw.used[key.Key]
	if used+n > key.Limit {
		return key.Limit - used, false
	}
	tw.used[key.Key] = used + n
	return key.Limit - used - n, true
}

func (tw *Twin) writeRateLimit(w http.ResponseWriter, key Key, remaining int) {
	if key.Limit <= 0 {
		return
	}
	now := tw.now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
	h := w.Header()
	h.Set(servicedef.HeaderRateLimitLimit, strconv.Itoa(key.Limit))
	h.Set(servicedef.HeaderRateLimitRemaining, strconv.Itoa(remaining))
	h.Set(servicedef.HeaderRateLimitReset, strconv.Itoa(int(midnight.Sub(now).Seconds())))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, servicedef.ErrorRecord{Error: message})
}

func lastOf(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[len(values)-1]
}

func redactKey(rawQuery string) string {
	parts := strings.Split(rawQuery, "&")
	for i, p := range parts {
		if strings.HasPrefix(p, servicedef.ParamAPIKey+"=") {
			parts[i] = servicedef.ParamAPIKey + "=REDACTED"
		}
	}
	return strings.Join(parts, "&")
}
