package transport

import (
	"time"

	"mesaYaBooking/internal/modules/booking/application/usecase"
	"mesaYaBooking/internal/modules/booking/domain"
)

// pageView is the render model of the shell. The same struct is served as JSON to
// clients that ask for application/json.
type pageView struct {
	Tab          string            `json:"tab"`
	Directory    *directoryView    `json:"directory,omitempty"`
	Booking      *bookingView      `json:"booking,omitempty"`
	Registration *registrationView `json:"registration,omitempty"`
	SlotForm     *slotFormView     `json:"slotForm,omitempty"`
	// RefreshAfter is the delay in milliseconds after which the page should reload to
	// drop an expiring banner or a closing modal; zero means never.
	RefreshAfter int64 `json:"refreshAfter,omitempty"`
}

type bannerView struct {
	Kind     string   `json:"kind"`
	Messages []string `json:"messages"`
}

type restaurantCard struct {
	ID       string `json:"id"`
	Headline string `json:"headline"`
	Cuisine  string `json:"cuisine,omitempty"`
	Rating   string `json:"rating"`
	Cost     string `json:"cost"`
	IsVeg    bool   `json:"isVeg"`
}

type filtersView struct {
	Name string `json:"name"`
	City string `json:"city"`
	Area string `json:"area"`
}

type directoryView struct {
	Filters      filtersView      `json:"filters"`
	Results      []restaurantCard `json:"results"`
	CanSearch    bool             `json:"canSearch"`
	Searching    bool             `json:"searching"`
	EmptyMessage string           `json:"emptyMessage,omitempty"`
	Banner       *bannerView      `json:"banner,omitempty"`
}

type bookingView struct {
	RestaurantID string              `json:"restaurantId"`
	Headline     string              `json:"headline"`
	Options      []domain.SlotOption `json:"options"`
	Loaded       bool                `json:"loaded"`
	SelectedID   string              `json:"selectedId"`
	PartySize    int                 `json:"partySize"`
	MaxPartySize int                 `json:"maxPartySize"`
	CanSubmit    bool                `json:"canSubmit"`
	Submitting   bool                `json:"submitting"`
	Banner       *bannerView         `json:"banner,omitempty"`
	StreamPath   string              `json:"streamPath"`
}

type formView struct {
	Name       string `json:"name"`
	City       string `json:"city"`
	Area       string `json:"area"`
	Cuisine    string `json:"cuisine"`
	Rating     string `json:"rating"`
	CostForTwo string `json:"cost_for_two"`
	IsVeg      bool   `json:"is_veg"`
}

type rowView struct {
	Index    int    `json:"index"`
	Date     string `json:"date"`
	Hour     string `json:"hour"`
	Capacity string `json:"capacity"`
}

type registrationView struct {
	Form             formView    `json:"form"`
	Rows             []rowView   `json:"rows"`
	Banner           *bannerView `json:"banner,omitempty"`
	Submitting       bool        `json:"submitting"`
	LastRegisteredID string      `json:"lastRegisteredId,omitempty"`
}

type slotFormView struct {
	RestaurantID string      `json:"restaurantId"`
	TimeOptions  []string    `json:"timeOptions"`
	Banner       *bannerView `json:"banner,omitempty"`
	Submitting   bool        `json:"submitting"`
}

func newBannerView(b domain.Banner) *bannerView {
	if b.Kind == domain.BannerNone || len(b.Messages) == 0 {
		return nil
	}
	return &bannerView{Kind: b.Kind.String(), Messages: append([]string(nil), b.Messages...)}
}

func streamPath(restaurantID string) string {
	return "/ws/restaurants/" + restaurantID + "/slots"
}

func buildPage(session *Session) pageView {
	shell := session.Shell
	now := shell.Now()
	page := pageView{Tab: string(shell.Tab())}
	refresh := refreshTimer{now: now}

	if shell.Tab() == usecase.TabOwner {
		registration := shell.Registration().Snapshot(now)
		page.Registration = buildRegistration(registration, session.Form())
		refresh.consider(registration.Banner.ExpiresAt)
		if form := shell.SlotForm(); form != nil {
			snapshot := form.Snapshot(now)
			page.SlotForm = &slotFormView{
				RestaurantID: snapshot.RestaurantID,
				TimeOptions:  snapshot.TimeOptions,
				Banner:       newBannerView(snapshot.Banner),
				Submitting:   snapshot.Submitting,
			}
			refresh.consider(form.CloseAt())
		}
	} else {
		page.Directory = buildDirectory(shell.Directory().Snapshot())
		if flow := shell.Booking(); flow != nil {
			page.Booking = buildBooking(flow.Snapshot(now))
			refresh.consider(flow.CloseAt())
		}
	}
	page.RefreshAfter = refresh.millis()
	return page
}

func buildDirectory(snapshot usecase.DirectorySnapshot) *directoryView {
	view := &directoryView{
		Filters: filtersView{
			Name: snapshot.Filters.Name,
			City: snapshot.Filters.City,
			Area: snapshot.Filters.Area,
		},
		Results:      make([]restaurantCard, 0, len(snapshot.Results)),
		CanSearch:    snapshot.CanSearch,
		Searching:    snapshot.Searching,
		EmptyMessage: snapshot.EmptyMessage,
		Banner:       newBannerView(snapshot.Banner),
	}
	for _, restaurant := range snapshot.Results {
		view.Results = append(view.Results, restaurantCard{
			ID:       restaurant.ID,
			Headline: restaurant.Headline(),
			Cuisine:  restaurant.Cuisine,
			Rating:   restaurant.RatingLabel(),
			Cost:     restaurant.CostLabel(),
			IsVeg:    restaurant.IsVeg,
		})
	}
	return view
}

func buildBooking(snapshot usecase.BookingSnapshot) *bookingView {
	return &bookingView{
		RestaurantID: snapshot.Restaurant.ID,
		Headline:     snapshot.Restaurant.Headline(),
		Options:      snapshot.Options,
		Loaded:       snapshot.Loaded,
		SelectedID:   snapshot.SelectedID,
		PartySize:    snapshot.PartySize,
		MaxPartySize: snapshot.MaxPartySize,
		CanSubmit:    snapshot.CanSubmit,
		Submitting:   snapshot.Submitting,
		Banner:       newBannerView(snapshot.Banner),
		StreamPath:   streamPath(snapshot.Restaurant.ID),
	}
}

func buildRegistration(snapshot usecase.RegistrationSnapshot, form domain.RestaurantForm) *registrationView {
	view := &registrationView{
		Form: formView{
			Name:       form.Name,
			City:       form.City,
			Area:       form.Area,
			Cuisine:    form.Cuisine,
			Rating:     form.Rating,
			CostForTwo: form.CostForTwo,
			IsVeg:      form.IsVeg,
		},
		Rows:             make([]rowView, 0, len(snapshot.Rows)),
		Banner:           newBannerView(snapshot.Banner),
		Submitting:       snapshot.Submitting,
		LastRegisteredID: snapshot.LastRegisteredID,
	}
	for i, row := range snapshot.Rows {
		view.Rows = append(view.Rows, rowView{Index: i, Date: row.Date, Hour: row.Hour, Capacity: row.Capacity})
	}
	return view
}

// refreshTimer tracks the earliest future deadline on the page.
type refreshTimer struct {
	now      time.Time
	earliest time.Time
}

func (r *refreshTimer) consider(at time.Time) {
	if at.IsZero() || !at.After(r.now) {
		return
	}
	if r.earliest.IsZero() || at.Before(r.earliest) {
		r.earliest = at
	}
}

func (r refreshTimer) millis() int64 {
	if r.earliest.IsZero() {
		return 0
	}
	return r.earliest.Sub(r.now).Milliseconds()
}
