package controllers

import (
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"emd/internal/models"
	"emd/internal/providers"
	"emd/internal/services"
	"emd/internal/storage/interfaces"
	"emd/internal/views"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type ApiController struct {
	logger    providers.Logger
	service   services.MetricsServiceInterface
	cache     providers.CacheProviderInterface
	persister interfaces.SchedulerInterface
	metrics   providers.MetricsProviderInterface
}

func NewApiController(logger providers.Logger, service services.MetricsServiceInterface, cache providers.CacheProviderInterface, persister interfaces.SchedulerInterface, metrics providers.MetricsProviderInterface) *ApiController {
	return &ApiController{
		logger:    logger,
		service:   service,
		cache:     cache,
		persister: persister,
		metrics:   metrics,
	}
}

// userKey resolves the target user bucket: explicit ?u= wins and is
// remembered as the last-viewed user, otherwise the remembered key,
// otherwise the unknown bucket.
func (ac *ApiController) userKey(r *http.Request) string {
	if u := r.URL.Query().Get("u"); u != "" {
		ac.service.SetLastUserKey(u)
		return u
	}
	if u := ac.service.LastUserKey(); u != "" {
		return u
	}
	return models.UnknownUserKey
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

// ReceiveEvents accepts one snapshot event or a batch of them, queues
// them for the next flush, and returns how many were queued.
func (ac *ApiController) ReceiveEvents(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	// The capture layer sends both a bare event and an array of them.
	var batch []*models.SnapshotEvent
	if err := json.Unmarshal(body, &batch); err != nil {
		var single models.SnapshotEvent
		if err := json.Unmarshal(body, &single); err != nil {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		batch = []*models.SnapshotEvent{&single}
	}
	ac.service.AddEvents(batch)
	writeJSON(w, http.StatusCreated, map[string]int{"queued": len(batch)})
}

// Flush forces a drain of the pending queue and persists when the merge
// changed anything. Persistence failures are logged and swallowed; the
// merged data stays in memory for the next save.
func (ac *ApiController) Flush(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	fs := ac.service.Flush()
	ac.metrics.ObserveFlushDuration(time.Since(start))
	if fs.Changed() {
		if err := ac.persister.Persist(); err != nil {
			ac.logger.Warnf(providers.TypeApp, "Flush persisted nothing: %s", err)
		}
	}
	writeJSON(w, http.StatusOK, fs)
}

// Reconcile repairs one user bucket and persists when anything moved.
func (ac *ApiController) Reconcile(w http.ResponseWriter, r *http.Request) {
	key := ac.userKey(r)
	rep := ac.service.Reconcile(key)
	if rep.Changed() {
		ac.logger.Infof(providers.TypeApp, "Reconciled %s: %d moved, %d reclaimed, %d pruned",
			key, len(rep.Moved), rep.Reclaimed, rep.Pruned)
		if err := ac.persister.Persist(); err != nil {
			ac.logger.Warnf(providers.TypeApp, "Reconcile persisted nothing: %s", err)
		}
	}
	writeJSON(w, http.StatusOK, rep)
}

type userSummary struct {
	Key       string   `json:"key"`
	Handle    string   `json:"handle,omitempty"`
	ID        string   `json:"id,omitempty"`
	Posts     int      `json:"posts"`
	Followers *float64 `json:"followers,omitempty"`
}

func (ac *ApiController) GetUsers(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, "users", func() (any, error) {
		keys := ac.service.GetUserKeys()
		out := make([]userSummary, 0, len(keys))
		for _, key := range keys {
			u, ok := ac.service.GetUser(key)
			if !ok {
				continue
			}
			row := userSummary{Key: key, Handle: u.Handle, ID: u.ID, Posts: len(u.Posts)}
			if n := len(u.Followers); n > 0 {
				row.Followers = &u.Followers[n-1].Count
			}
			out = append(out, row)
		}
		return out, nil
	})
}

type postListResponse struct {
	User    string              `json:"user"`
	Posts   []views.PostSummary `json:"posts"`
	Visible []string            `json:"visible"`
}

func (ac *ApiController) GetPosts(w http.ResponseWriter, r *http.Request) {
	key := ac.userKey(r)
	ac.serveFromCacheOrCompute(w, "posts:"+key, func() (any, error) {
		u, _ := ac.service.GetUser(key)
		if u == nil {
			u = models.NewUser()
		}
		return postListResponse{
			User:    key,
			Posts:   views.Summarize(views.OrderPosts(u)),
			Visible: ac.visibleIDs(key, u),
		}, nil
	})
}

// visibleIDs returns the stored selection for a user, falling back to
// the default newest-20 set.
func (ac *ApiController) visibleIDs(key string, u *models.User) []string {
	if ids, ok := ac.service.Visibility(key); ok {
		return ids
	}
	return views.DefaultVisibleSet(u)
}

func (ac *ApiController) visiblePosts(key string) []*models.Post {
	u, _ := ac.service.GetUser(key)
	if u == nil {
		return nil
	}
	return views.SelectPosts(u, ac.visibleIDs(key, u))
}

func (ac *ApiController) GetTotals(w http.ResponseWriter, r *http.Request) {
	key := ac.userKey(r)
	ac.serveFromCacheOrCompute(w, "totals:"+key, func() (any, error) {
		return views.Aggregate(ac.visiblePosts(key)), nil
	})
}

func (ac *ApiController) GetScatterSeries(w http.ResponseWriter, r *http.Request) {
	key := ac.userKey(r)
	ac.serveFromCacheOrCompute(w, "scatter:"+key, func() (any, error) {
		return views.ScatterSeries(ac.visiblePosts(key)), nil
	})
}

func (ac *ApiController) GetViewSeries(w http.ResponseWriter, r *http.Request) {
	key := ac.userKey(r)
	if r.URL.Query().Get("all") != "" {
		ac.serveFromCacheOrCompute(w, "views:all:"+key, func() (any, error) {
			return views.CumulativeViews(ac.visiblePosts(key)), nil
		})
		return
	}
	ac.serveFromCacheOrCompute(w, "views:"+key, func() (any, error) {
		return views.ViewSeries(ac.visiblePosts(key)), nil
	})
}

func (ac *ApiController) GetFollowerSeries(w http.ResponseWriter, r *http.Request) {
	key := ac.userKey(r)
	ac.serveFromCacheOrCompute(w, "followers:"+key, func() (any, error) {
		u, _ := ac.service.GetUser(key)
		return views.FollowerSeries(u), nil
	})
}

// ExportCSV streams every (post, snapshot) pair for the user as CSV.
func (ac *ApiController) ExportCSV(w http.ResponseWriter, r *http.Request) {
	key := ac.userKey(r)
	u, _ := ac.service.GetUser(key)
	if u == nil {
		u = models.NewUser()
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+key+`-metrics.csv"`)
	if err := views.WriteCSV(w, views.OrderPosts(u)); err != nil {
		ac.logger.Warnf(providers.TypeGet, "CSV export aborted: %s", err)
	}
}

func (ac *ApiController) GetOverride(w http.ResponseWriter, r *http.Request) {
	o, ok := ac.service.Override()
	if !ok {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (ac *ApiController) SetOverride(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var o models.DurationOverride
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	ac.service.SetOverride(o)
	if err := ac.persister.Persist(); err != nil {
		ac.logger.Warnf(providers.TypeApp, "Override not persisted: %s", err)
	}
	w.WriteHeader(http.StatusCreated)
}

func (ac *ApiController) ClearOverride(w http.ResponseWriter, r *http.Request) {
	ac.service.ClearOverride()
	if err := ac.persister.Persist(); err != nil {
		ac.logger.Warnf(providers.TypeApp, "Override not persisted: %s", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) GetVisibility(w http.ResponseWriter, r *http.Request) {
	key := ac.userKey(r)
	u, _ := ac.service.GetUser(key)
	if u == nil {
		u = models.NewUser()
	}
	writeJSON(w, http.StatusOK, ac.visibleIDs(key, u))
}

func (ac *ApiController) SetVisibility(w http.ResponseWriter, r *http.Request) {
	key := ac.userKey(r)
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var ids []string
	if err := json.NewDecoder(r.Body).Decode(&ids); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	ac.service.SetVisibility(key, ids)
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) GetZoom(w http.ResponseWriter, r *http.Request) {
	key := ac.userKey(r)
	z, _ := ac.service.ZoomState(key)
	writeJSON(w, http.StatusOK, z)
}

func (ac *ApiController) SetZoom(w http.ResponseWriter, r *http.Request) {
	key := ac.userKey(r)
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var z map[string]models.ZoomRange
	if err := json.NewDecoder(r.Body).Decode(&z); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	ac.service.SetZoomState(key, z)
	w.WriteHeader(http.StatusNoContent)
}
