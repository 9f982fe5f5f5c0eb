package domain

// SelectionStatus is the state of a FeatureSelectionController.
type SelectionStatus string

const (
	SelectionClosed SelectionStatus = "closed"
	SelectionOpen   SelectionStatus = "open"
)

// ActionKind identifies a detail-view action.
type ActionKind string

const (
	ActionDetails ActionKind = "details"
	ActionBooking ActionKind = "booking"
	ActionPhone   ActionKind = "phone"
	ActionDismiss ActionKind = "dismiss"
)

// Action is one button of the detail view.
type Action struct {
	Kind    ActionKind `json:"kind"`
	Title   string     `json:"title"`
	URL     string     `json:"url,omitempty"`
	Primary bool       `json:"primary"`
}

// Chip is a short meta fact (capacity, price, distance).
type Chip struct {
	Kind string `json:"kind"`
	Icon string `json:"icon"`
	Text string `json:"text"`
}

// Media describes the detail-view photo slot.
type Media struct {
	PhotoURL string `json:"photo_url,omitempty"`
	Alt      string `json:"alt,omitempty"`
	// Placeholder is shown when there is no photo.
	Placeholder string `json:"placeholder,omitempty"`
	// BrokenText is shown by the view when the photo fails to load.
	BrokenText string `json:"broken_text,omitempty"`
}

// DetailView is the merged feature + catalog view model.
type DetailView struct {
	FeatureKey  string   `json:"feature_key"`
	FeatureID   string   `json:"feature_id,omitempty"`
	Badge       string   `json:"badge"`
	Title       string   `json:"title"`
	Subtitle    string   `json:"subtitle"`
	Description string   `json:"description"`
	Meta        []Chip   `json:"meta"`
	Tags        []string `json:"tags"`
	Media       Media    `json:"media"`
	Actions     []Action `json:"actions"`
}

// SelectionState is at most one open feature + catalog pairing.
type SelectionState struct {
	Status  SelectionStatus `json:"status"`
	Feature *Feature        `json:"feature,omitempty"`
	Record  *CatalogRecord  `json:"record,omitempty"`
	View    *DetailView     `json:"view,omitempty"`
}

// IsOpen reports whether a feature is currently open.
func (s SelectionState) IsOpen() bool { return s.Status == SelectionOpen }

// Labels is the text table used for detail-view fallbacks and actions.
type Labels struct {
	TypeBadges          map[string]string `mapstructure:"type_badges"`
	DefaultBadge        string            `mapstructure:"default_badge"`
	TitlePlaceholder    string            `mapstructure:"title_placeholder"`
	SubtitleFallback    string            `mapstructure:"subtitle_fallback"`
	DescriptionFallback string            `mapstructure:"description_fallback"`
	PhotoPlaceholder    string            `mapstructure:"photo_placeholder"`
	PhotoBroken         string            `mapstructure:"photo_broken"`
	ActionDetails       string            `mapstructure:"action_details"`
	ActionBooking       string            `mapstructure:"action_booking"`
	ActionPhone         string            `mapstructure:"action_phone"`
	ActionDismiss       string            `mapstructure:"action_dismiss"`
	UserMarker          string            `mapstructure:"user_marker"`
}

// DefaultLabels returns the built-in English text table.
func DefaultLabels() Labels {
	return Labels{
		TypeBadges: map[string]string{
			TypeCabin: "Cabin",
			TypePOI:   "Point",
			TypeZone:  "Zone",
			TypePath:  "Path",
		},
		DefaultBadge:        "Object",
		TitlePlaceholder:    "Object",
		SubtitleFallback:    "No details yet",
		DescriptionFallback: "No description available",
		PhotoPlaceholder:    "Photo coming soon",
		PhotoBroken:         "Photo not found",
		ActionDetails:       "Details",
		ActionBooking:       "Book",
		ActionPhone:         "Call",
		ActionDismiss:       "Ok",
		UserMarker:          "You are here",
	}
}

// Merge fills every empty field of l from def.
func (l Labels) Merge(def Labels) Labels {
	pick := func(v, d string) string {
		if v == "" {
			return d
		}
		return v
	}
	badges := make(map[string]string, len(def.TypeBadges))
	for k, v := range def.TypeBadges {
		badges[k] = v
	}
	for k, v := range l.TypeBadges {
		if v != "" {
			badges[k] = v
		}
	}
	return Labels{
		TypeBadges:          badges,
		DefaultBadge:        pick(l.DefaultBadge, def.DefaultBadge),
		TitlePlaceholder:    pick(l.TitlePlaceholder, def.TitlePlaceholder),
		SubtitleFallback:    pick(l.SubtitleFallback, def.SubtitleFallback),
		DescriptionFallback: pick(l.DescriptionFallback, def.DescriptionFallback),
		PhotoPlaceholder:    pick(l.PhotoPlaceholder, def.PhotoPlaceholder),
		PhotoBroken:         pick(l.PhotoBroken, def.PhotoBroken),
		ActionDetails:       pick(l.ActionDetails, def.ActionDetails),
		ActionBooking:       pick(l.ActionBooking, def.ActionBooking),
		ActionPhone:         pick(l.ActionPhone, def.ActionPhone),
		ActionDismiss:       pick(l.ActionDismiss, def.ActionDismiss),
		UserMarker:          pick(l.UserMarker, def.UserMarker),
	}
}
