package usecases_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/territorymap/internal/core/domain"
	"github.com/samirrijal/territorymap/internal/core/usecases"
)

var testCatalog = domain.Catalog{
	"cabin-7": {
		Title:    "Forest Cabin",
		Subtitle: "Near the lake",
		Capacity: "4",
		Price:    "120 EUR",
		Photo:    "/assets/cabin-7.jpg",
		Tags:     []string{"sauna", "wifi"},
		Links: domain.CatalogLinks{
			DetailsURL: "https://example.com/cabin-7",
			BookingURL: "https://example.com/book/cabin-7",
			Phone:      "+34000000",
		},
	},
}

func TestSelectionController_InitiallyClosed(t *testing.T) {
	c := usecases.NewSelectionController(testCatalog, domain.DefaultLabels())

	st := c.State()
	assert.Equal(t, domain.SelectionClosed, st.Status)
	assert.Nil(t, st.Feature)
	assert.Nil(t, st.View)
}

func TestSelectionController_SelectKnown(t *testing.T) {
	c := usecases.NewSelectionController(testCatalog, domain.DefaultLabels())

	st := c.Select(domain.Feature{Key: "cabins/0", ID: "cabin-7", Type: domain.TypeCabin, Label: "Cabin 7"})

	require.True(t, st.IsOpen())
	require.NotNil(t, st.View)
	assert.Equal(t, "Forest Cabin", st.View.Title)
	assert.Equal(t, "Cabin", st.View.Badge)
	assert.Equal(t, "cabin-7", st.Feature.ID)
	assert.Equal(t, "Forest Cabin", st.Record.Title)
	assert.Equal(t, st, c.State())
}

func TestSelectionController_SelectMissingRecordUsesLabel(t *testing.T) {
	c := usecases.NewSelectionController(testCatalog, domain.DefaultLabels())

	st := c.Select(domain.Feature{Key: "cabins/1", ID: "cabin-99", Type: domain.TypeCabin, Label: "Cabin 99"})

	require.True(t, st.IsOpen())
	assert.Equal(t, "Cabin 99", st.View.Title)
	assert.Equal(t, domain.CatalogRecord{}, *st.Record)
}

func TestLiveSelectionController_ReadsCatalogPerSelect(t *testing.T) {
	cat := domain.Catalog{}
	c := usecases.NewLiveSelectionController(func() domain.Catalog { return cat }, domain.DefaultLabels())
	f := domain.Feature{Key: "cabins/0", ID: "cabin-7", Type: domain.TypeCabin, Label: "Cabin 7"}

	assert.Equal(t, "Cabin 7", c.Select(f).View.Title)

	cat = testCatalog
	assert.Equal(t, "Forest Cabin", c.Select(f).View.Title)
}

func TestSelectionController_LastSelectWins(t *testing.T) {
	c := usecases.NewSelectionController(testCatalog, domain.DefaultLabels())

	c.Select(domain.Feature{Key: "cabins/0", ID: "cabin-7"})
	st := c.Select(domain.Feature{Key: "poi/0", ID: "well", Type: domain.TypePOI})

	assert.Equal(t, "poi/0", st.Feature.Key)
	assert.Equal(t, "poi/0", c.State().View.FeatureKey)
	assert.Empty(t, c.State().Record.Title)
}

func TestSelectionController_CloseIsIdempotent(t *testing.T) {
	c := usecases.NewSelectionController(nil, domain.DefaultLabels())

	st, changed := c.Close()
	assert.False(t, changed)
	assert.Equal(t, domain.SelectionClosed, st.Status)

	c.Select(domain.Feature{Key: "zones/0"})
	st, changed = c.Close()
	assert.True(t, changed)
	assert.Equal(t, domain.SelectionClosed, st.Status)
	assert.Nil(t, st.View)

	_, changed = c.Close()
	assert.False(t, changed)
}

func TestBuildDetailView_TitleFallbacks(t *testing.T) {
	labels := domain.DefaultLabels()
	tests := []struct {
		name string
		f    domain.Feature
		rec  domain.CatalogRecord
		want string
	}{
		{"catalog title", domain.Feature{ID: "a", Label: "L"}, domain.CatalogRecord{Title: "T"}, "T"},
		{"label", domain.Feature{ID: "a", Label: "L"}, domain.CatalogRecord{}, "L"},
		{"id", domain.Feature{ID: "a"}, domain.CatalogRecord{}, "a"},
		{"placeholder", domain.Feature{}, domain.CatalogRecord{}, labels.TitlePlaceholder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := usecases.BuildDetailView(tt.f, tt.rec, labels)
			assert.Equal(t, tt.want, v.Title)
		})
	}
}

func TestBuildDetailView_EmptyRecordFallbacks(t *testing.T) {
	labels := domain.DefaultLabels()

	v := usecases.BuildDetailView(domain.Feature{Key: "k", Type: "gazebo"}, domain.CatalogRecord{}, labels)

	assert.Equal(t, labels.DefaultBadge, v.Badge)
	assert.Equal(t, labels.SubtitleFallback, v.Subtitle)
	assert.Equal(t, labels.DescriptionFallback, v.Description)
	assert.Equal(t, labels.PhotoPlaceholder, v.Media.Placeholder)
	assert.Empty(t, v.Media.PhotoURL)
	assert.Empty(t, v.Meta)
	assert.Empty(t, v.Tags)
}

func TestBuildDetailView_FullRecord(t *testing.T) {
	labels := domain.DefaultLabels()

	v := usecases.BuildDetailView(domain.Feature{ID: "cabin-7", Type: domain.TypeCabin}, testCatalog["cabin-7"], labels)

	require.Len(t, v.Meta, 2)
	assert.Equal(t, "capacity", v.Meta[0].Kind)
	assert.Equal(t, "4", v.Meta[0].Text)
	assert.Equal(t, "price", v.Meta[1].Kind)
	assert.Equal(t, "/assets/cabin-7.jpg", v.Media.PhotoURL)
	assert.Equal(t, "Forest Cabin", v.Media.Alt)
	assert.Equal(t, labels.PhotoBroken, v.Media.BrokenText)
	assert.Equal(t, []string{"sauna", "wifi"}, v.Tags)
}

func TestBadgeLabel(t *testing.T) {
	labels := domain.DefaultLabels()
	assert.Equal(t, "Cabin", usecases.BadgeLabel(domain.TypeCabin, labels))
	assert.Equal(t, "Point", usecases.BadgeLabel(domain.TypePOI, labels))
	assert.Equal(t, "Zone", usecases.BadgeLabel(domain.TypeZone, labels))
	assert.Equal(t, "Path", usecases.BadgeLabel(domain.TypePath, labels))
	assert.Equal(t, "Object", usecases.BadgeLabel("", labels))
}

func TestDeriveActions_NoLinks(t *testing.T) {
	actions := usecases.DeriveActions(domain.CatalogLinks{}, domain.DefaultLabels())

	require.Len(t, actions, 1)
	assert.Equal(t, domain.ActionDismiss, actions[0].Kind)
	assert.Equal(t, "Ok", actions[0].Title)
}

func TestDeriveActions_AllLinks(t *testing.T) {
	actions := usecases.DeriveActions(testCatalog["cabin-7"].Links, domain.DefaultLabels())

	require.Len(t, actions, 3)
	assert.Equal(t, domain.ActionDetails, actions[0].Kind)
	assert.Equal(t, domain.ActionBooking, actions[1].Kind)
	assert.True(t, actions[1].Primary)
	assert.Equal(t, domain.ActionPhone, actions[2].Kind)
	assert.Equal(t, "tel:+34000000", actions[2].URL)
	assert.False(t, actions[0].Primary)
}

func TestDeriveActions_PartialLinksKeepOrder(t *testing.T) {
	actions := usecases.DeriveActions(domain.CatalogLinks{Phone: "1", DetailsURL: "d"}, domain.DefaultLabels())

	require.Len(t, actions, 2)
	assert.Equal(t, domain.ActionDetails, actions[0].Kind)
	assert.Equal(t, domain.ActionPhone, actions[1].Kind)
}

func TestLabels_Merge(t *testing.T) {
	custom := domain.Labels{ActionDismiss: "Close", TypeBadges: map[string]string{domain.TypeCabin: "Domik"}}

	merged := custom.Merge(domain.DefaultLabels())

	assert.Equal(t, "Close", merged.ActionDismiss)
	assert.Equal(t, "Domik", merged.TypeBadges[domain.TypeCabin])
	assert.Equal(t, "Zone", merged.TypeBadges[domain.TypeZone])
	assert.Equal(t, "Book", merged.ActionBooking)
}
