package usecases

import (
	"github.com/samirrijal/territorymap/internal/core/domain"
)

// BuildDetailView merges a feature with its catalog record. Every absent value
// gets an explicit fallback so the view never renders blank slots.
func BuildDetailView(f domain.Feature, rec domain.CatalogRecord, labels domain.Labels) domain.DetailView {
	title := firstNonEmpty(rec.Title, f.Label, f.ID, labels.TitlePlaceholder)

	v := domain.DetailView{
		FeatureKey:  f.Key,
		FeatureID:   f.ID,
		Badge:       BadgeLabel(f.Type, labels),
		Title:       title,
		Subtitle:    firstNonEmpty(rec.Subtitle, labels.SubtitleFallback),
		Description: firstNonEmpty(rec.Description, labels.DescriptionFallback),
		Meta:        metaChips(rec),
		Tags:        append([]string{}, rec.Tags...),
		Actions:     DeriveActions(rec.Links, labels),
	}

	if rec.Photo != "" {
		v.Media = domain.Media{PhotoURL: rec.Photo, Alt: title, BrokenText: labels.PhotoBroken}
	} else {
		v.Media = domain.Media{Placeholder: labels.PhotoPlaceholder}
	}
	return v
}

// BadgeLabel maps a feature type to its badge, with a default for unknown types.
func BadgeLabel(featureType string, labels domain.Labels) string {
	if l, ok := labels.TypeBadges[featureType]; ok && l != "" {
		return l
	}
	return labels.DefaultBadge
}

// DeriveActions returns details, booking and phone actions in that order, each
// only when its link is present. With no links a single dismiss action is
// returned so the view always has an exit.
func DeriveActions(links domain.CatalogLinks, labels domain.Labels) []domain.Action {
	var actions []domain.Action
	if links.DetailsURL != "" {
		actions = append(actions, domain.Action{Kind: domain.ActionDetails, Title: labels.ActionDetails, URL: links.DetailsURL})
	}
	if links.BookingURL != "" {
		actions = append(actions, domain.Action{Kind: domain.ActionBooking, Title: labels.ActionBooking, URL: links.BookingURL, Primary: true})
	}
	if links.Phone != "" {
		actions = append(actions, domain.Action{Kind: domain.ActionPhone, Title: labels.ActionPhone, URL: "tel:" + links.Phone})
	}
	if len(actions) == 0 {
		actions = []domain.Action{{Kind: domain.ActionDismiss, Title: labels.ActionDismiss}}
	}
	return actions
}

func metaChips(rec domain.CatalogRecord) []domain.Chip {
	chips := []domain.Chip{}
	if rec.Capacity != "" {
		chips = append(chips, domain.Chip{Kind: "capacity", Icon: "👥", Text: string(rec.Capacity)})
	}
	if rec.Price != "" {
		chips = append(chips, domain.Chip{Kind: "price", Icon: "💳", Text: string(rec.Price)})
	}
	if rec.Distance != "" {
		chips = append(chips, domain.Chip{Kind: "distance", Icon: "📍", Text: string(rec.Distance)})
	}
	return chips
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
