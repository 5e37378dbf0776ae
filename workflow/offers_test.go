package workflow

import (
	"context"
	"testing"

	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"

	"github.com/parksmart/parkctl/parksmart"
)

func newTestClient(t *testing.T) *parksmart.Client {
	t.Helper()
	c, err := parksmart.New(&parksmart.Config{})
	assert.Nil(t, err)
	return c
}

func TestOfferSearcher_Fetch(t *testing.T) {
	defer gock.Off()
	gock.New(parksmart.DefaultBackend).
		Get("/offers/search").
		Reply(200).
		File("../resources/offers-search.json")
	gock.New(parksmart.DefaultBackend).
		Get("/inventory/lots").
		Reply(200).
		File("../resources/lots.json")

	s := NewOfferSearcher(newTestClient(t), NewMemoryCache(0), SearchParams{})
	offers, err := s.Fetch(context.Background())
	assert.Nil(t, err)
	assert.Equal(t, 2, len(offers))
	assert.Equal(t, "S1", offers[0].ID)

	cached, _, ok := s.Offers()
	assert.True(t, ok)
	assert.Equal(t, offers, cached)
}

func TestOfferSearcher_Fetch_LotFailureTolerated(t *testing.T) {
	defer gock.Off()
	gock.New(parksmart.DefaultBackend).
		Get("/offers/search").
		Reply(200).
		File("../resources/offers-search.json")
	gock.New(parksmart.DefaultBackend).
		Get("/inventory/lots").
		Reply(500)

	s := NewOfferSearcher(newTestClient(t), NewMemoryCache(0), SearchParams{})
	offers, err := s.Fetch(context.Background())
	assert.Nil(t, err)
	assert.Equal(t, 2, len(offers))
	// without lot coordinates the display location falls back
	assert.Equal(t, FallbackLat, offers[0].Location.Lat)
}

func TestOfferSearcher_FallbackFromSlots(t *testing.T) {
	defer gock.Off()
	gock.New(parksmart.DefaultBackend).
		Get("/offers/search").
		Reply(200).
		File("../resources/offers-search-empty.json")
	gock.New(parksmart.DefaultBackend).
		Get("/inventory/lots").
		Reply(200).
		File("../resources/lots.json")
	gock.New(parksmart.DefaultBackend).
		Get("/inventory/lots/L1").
		Reply(200).
		File("../resources/lot-detail.json")
	gock.New(parksmart.DefaultBackend).
		Get("/inventory/lots/L2").
		Reply(200).
		BodyString(`{"id":"L2","name":"Brigade Towers Basement","slots":[]}`)

	s := NewOfferSearcher(newTestClient(t), NewMemoryCache(0), SearchParams{})
	offers, err := s.Fetch(context.Background())
	assert.Nil(t, err)
	// at most two slots per lot; L2 has none
	assert.Equal(t, 2, len(offers))
	assert.Equal(t, "L1-A1", offers[0].ID)
	assert.Equal(t, "L1-A2", offers[1].ID)
	assert.Equal(t, "MG Road Parking Complex", offers[0].Name)
}

func TestOfferSearcher_FallbackLotFilter(t *testing.T) {
	defer gock.Off()
	gock.New(parksmart.DefaultBackend).
		Get("/offers/search").
		Reply(200).
		File("../resources/offers-search-empty.json")
	gock.New(parksmart.DefaultBackend).
		Get("/inventory/lots").
		Reply(200).
		File("../resources/lots.json")
	gock.New(parksmart.DefaultBackend).
		Get("/inventory/lots/L1").
		Reply(200).
		File("../resources/lot-detail.json")

	s := NewOfferSearcher(newTestClient(t), NewMemoryCache(0), SearchParams{LotID: "L1"})
	offers, err := s.Fetch(context.Background())
	assert.Nil(t, err)
	assert.Equal(t, 2, len(offers))
	for _, o := range offers {
		assert.Equal(t, "MG Road Parking Complex", o.Name)
	}
}

func TestOfferSearcher_FallbackDegradedLots(t *testing.T) {
	defer gock.Off()
	gock.New(parksmart.DefaultBackend).
		Get("/offers/search").
		Reply(200).
		File("../resources/offers-search-empty.json")
	gock.New(parksmart.DefaultBackend).
		Get("/inventory/lots").
		Reply(200).
		File("../resources/lots.json")
	gock.New(parksmart.DefaultBackend).
		Get("/inventory/lots/L1").
		Reply(500)
	gock.New(parksmart.DefaultBackend).
		Get("/inventory/lots/L2").
		Reply(500)

	s := NewOfferSearcher(newTestClient(t), NewMemoryCache(0), SearchParams{})
	offers, err := s.Fetch(context.Background())
	assert.Nil(t, err)
	// lot ids stand in for slot ids in the last resort
	assert.Equal(t, 2, len(offers))
	assert.Equal(t, "L1", offers[0].ID)
	assert.Equal(t, 5, offers[0].Availability.Confidence)
}

func TestOfferSearcher_FetchError_KeepsStaleCache(t *testing.T) {
	defer gock.Off()
	gock.New(parksmart.DefaultBackend).
		Get("/offers/search").
		Reply(200).
		File("../resources/offers-search.json")
	gock.New(parksmart.DefaultBackend).
		Get("/inventory/lots").
		Reply(200).
		File("../resources/lots.json")
	gock.New(parksmart.DefaultBackend).
		Get("/offers/search").
		Reply(500)

	s := NewOfferSearcher(newTestClient(t), NewMemoryCache(0), SearchParams{})
	_, err := s.Fetch(context.Background())
	assert.Nil(t, err)

	_, err = s.Fetch(context.Background())
	assert.NotNil(t, err)
	assert.NotNil(t, s.LastError())

	offers, _, ok := s.Offers()
	assert.True(t, ok)
	assert.Equal(t, 2, len(offers))
}

func TestOfferSearcher_TickSkippedWhenHidden(t *testing.T) {
	defer gock.Off()
	gock.New(parksmart.DefaultBackend).
		Get("/offers/search").
		Reply(200).
		File("../resources/offers-search.json")
	gock.New(parksmart.DefaultBackend).
		Get("/inventory/lots").
		Reply(200).
		File("../resources/lots.json")

	s := NewOfferSearcher(newTestClient(t), NewMemoryCache(0), SearchParams{})

	s.SetVisible(false)
	assert.False(t, s.tick(context.Background()))
	assert.False(t, gock.IsDone())

	s.SetVisible(true)
	assert.True(t, s.tick(context.Background()))
	assert.True(t, gock.IsDone())
}
