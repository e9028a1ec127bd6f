package domain

import "time"

// BannerKind distinguishes confirmation from failure banners.
type BannerKind int

const (
	BannerNone BannerKind = iota
	BannerSuccess
	BannerError
)

func (k BannerKind) String() string {
	switch k {
	case BannerSuccess:
		return "success"
	case BannerError:
		return "error"
	default:
		return "none"
	}
}

// Banner is a transient message with an explicit expiry. A zero ExpiresAt means the banner
// stays until replaced. Views ask Visible(now) instead of relying on timers.
type Banner struct {
	Kind      BannerKind
	Messages  []string
	ExpiresAt time.Time
}

// NewBanner creates a banner that expires ttl after now; ttl <= 0 makes it sticky.
func NewBanner(kind BannerKind, now time.Time, ttl time.Duration, messages ...string) Banner {
	banner := Banner{Kind: kind, Messages: append([]string(nil), messages...)}
	if ttl > 0 {
		banner.ExpiresAt = now.Add(ttl)
	}
	return banner
}

// Visible reports whether the banner should be rendered at now.
func (b Banner) Visible(now time.Time) bool {
	if b.Kind == BannerNone || len(b.Messages) == 0 {
		return false
	}
	return b.ExpiresAt.IsZero() || now.Before(b.ExpiresAt)
}

// At returns the banner as observed at now: itself while visible, the zero banner after.
func (b Banner) At(now time.Time) Banner {
	if b.Visible(now) {
		return b
	}
	return Banner{}
}

// First returns the leading message or "".
func (b Banner) First() string {
	if len(b.Messages) == 0 {
		return ""
	}
	return b.Messages[0]
}
