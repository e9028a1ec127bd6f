package usecase

import (
	"context"
	"log/slog"
	"sync"

	"mesaYaBooking/internal/modules/booking/domain"
)

const (
	MsgNoRestaurants = "No restaurants found. Please try different search criteria."
	MsgSearchNetwork = "Error searching restaurants. Please try again."
	MsgSearchFailed  = "Failed to search restaurants."
)

// DirectoryView is the customer-side restaurant search. Editing a filter drops the previous
// results immediately; results only come back through an explicit Search.
type DirectoryView struct {
	deps Dependencies

	mu         sync.Mutex
	filters    domain.SearchFilters
	results    []domain.Restaurant
	searched   bool
	searching  bool
	generation uint64
	banner     domain.Banner
}

// DirectorySnapshot is the render model of the directory.
type DirectorySnapshot struct {
	Filters   domain.SearchFilters
	Results   []domain.Restaurant
	CanSearch bool
	Searching bool
	// ShowEmpty is true when a search ran, found nothing, and filters are still set.
	ShowEmpty    bool
	EmptyMessage string
	Banner       domain.Banner
}

func NewDirectoryView(deps Dependencies) *DirectoryView {
	return &DirectoryView{deps: deps.withDefaults()}
}

// SetFilter replaces one filter. Any change invalidates the current result set.
func (v *DirectoryView) SetFilter(field domain.FilterField, value string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.filters.Get(field) == value {
		return
	}
	v.filters = v.filters.With(field, value)
	v.invalidateLocked()
}

// SetFilters replaces all filters at once, invalidating results if anything changed.
func (v *DirectoryView) SetFilters(filters domain.SearchFilters) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.filters == filters {
		return
	}
	v.filters = filters
	v.invalidateLocked()
}

func (v *DirectoryView) invalidateLocked() {
	v.results = nil
	v.searched = false
	v.banner = domain.Banner{}
	v.generation++
}

// Search queries the backend with the current filters. Results that arrive after the
// filters changed are discarded.
func (v *DirectoryView) Search(ctx context.Context) error {
	v.mu.Lock()
	if !v.filters.Any() {
		v.mu.Unlock()
		return ErrSearchDisabled
	}
	if v.searching {
		v.mu.Unlock()
		return ErrInFlight
	}
	v.searching = true
	filters := v.filters
	generation := v.generation
	v.mu.Unlock()

	slog.Info("directory search start", slog.String("name", filters.Name), slog.String("city", filters.City), slog.String("area", filters.Area))
	results, err := v.deps.Backend.SearchRestaurants(ctx, filters)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.searching = false
	if generation != v.generation {
		slog.Debug("directory search result discarded after filter change")
		return nil
	}
	if err != nil {
		slog.Warn("directory search failed", slog.Any("error", err))
		v.results = nil
		v.searched = false
		v.banner = domain.NewBanner(domain.BannerError, v.deps.Clock.Now(), 0, classify(err, MsgSearchFailed, MsgSearchNetwork)...)
		return err
	}
	v.results = results
	v.searched = true
	v.banner = domain.Banner{}
	slog.Info("directory search done", slog.Int("results", len(results)))
	return nil
}

// Find returns a restaurant from the current result set.
func (v *DirectoryView) Find(id string) (domain.Restaurant, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, restaurant := range v.results {
		if restaurant.ID == id {
			return restaurant, true
		}
	}
	return domain.Restaurant{}, false
}

func (v *DirectoryView) Snapshot() DirectorySnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	snapshot := DirectorySnapshot{
		Filters:   v.filters,
		Results:   append([]domain.Restaurant(nil), v.results...),
		CanSearch: v.filters.Any(),
		Searching: v.searching,
		ShowEmpty: v.searched && len(v.results) == 0 && v.filters.Any(),
		Banner:    v.banner,
	}
	if snapshot.ShowEmpty {
		snapshot.EmptyMessage = MsgNoRestaurants
	}
	return snapshot
}
