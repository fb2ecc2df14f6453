package inventory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"eventdesk/internal/models"
)

func sampleEvent(id int64, total, sold int) models.Event {
	return models.Event{
		ID:           id,
		Title:        "Sample Event",
		TotalTickets: total,
		TicketsSold:  sold,
	}
}

func TestProjectDerivesRemaining(t *testing.T) {
	e := sampleEvent(1, 100, 37)

	avail := Project(&e)
	assert.Equal(t, 63, avail.Remaining)
	assert.False(t, avail.SoldOut)

	// Pure: same input, same output.
	again := Project(&e)
	assert.Equal(t, avail, again)
}

func TestProjectSoldOut(t *testing.T) {
	e := sampleEvent(1, 50, 50)

	avail := Project(&e)
	assert.Equal(t, 0, avail.Remaining)
	assert.True(t, avail.SoldOut)
}

func TestApplyBooking(t *testing.T) {
	p := NewProjection()
	p.Load([]models.Event{sampleEvent(1, 100, 95)})

	err := p.ApplyBooking(1, 3)
	assert.NoError(t, err)

	avail, ok := p.Availability(1)
	assert.True(t, ok)
	assert.Equal(t, 2, avail.Remaining)
	assert.False(t, avail.SoldOut)
}

func TestApplyBookingToSoldOut(t *testing.T) {
	p := NewProjection()
	p.Load([]models.Event{sampleEvent(1, 100, 98)})

	err := p.ApplyBooking(1, 2)
	assert.NoError(t, err)

	avail, _ := p.Availability(1)
	assert.Equal(t, 0, avail.Remaining)
	assert.True(t, avail.SoldOut)
}

func TestApplyBookingRefusesOversell(t *testing.T) {
	p := NewProjection()
	p.Load([]models.Event{sampleEvent(1, 10, 9)})

	err := p.ApplyBooking(1, 2)
	assert.Error(t, err)

	// Refused patch leaves the cache untouched.
	avail, _ := p.Availability(1)
	assert.Equal(t, 1, avail.Remaining)
}

func TestApplyCancellationRestoresCapacity(t *testing.T) {
	p := NewProjection()
	p.Load([]models.Event{sampleEvent(1, 100, 100)})

	avail, _ := p.Availability(1)
	assert.True(t, avail.SoldOut)

	err := p.ApplyCancellation(1, 4)
	assert.NoError(t, err)

	avail, _ = p.Availability(1)
	assert.Equal(t, 4, avail.Remaining)
	assert.False(t, avail.SoldOut)
}

func TestApplyCancellationRefusesNegativeSold(t *testing.T) {
	p := NewProjection()
	p.Load([]models.Event{sampleEvent(1, 100, 2)})

	err := p.ApplyCancellation(1, 3)
	assert.Error(t, err)

	e, _ := p.Get(1)
	assert.Equal(t, 2, e.TicketsSold)
}

func TestPatchUnknownEvent(t *testing.T) {
	p := NewProjection()
	assert.Error(t, p.ApplyBooking(42, 1))
}

func TestLoadReplacesCache(t *testing.T) {
	p := NewProjection()
	p.Load([]models.Event{sampleEvent(1, 10, 0), sampleEvent(2, 20, 0)})
	p.Load([]models.Event{sampleEvent(3, 30, 0)})

	_, ok := p.Get(1)
	assert.False(t, ok)
	_, ok = p.Get(3)
	assert.True(t, ok)
}

func TestEventsOrderedByID(t *testing.T) {
	p := NewProjection()
	p.Load([]models.Event{sampleEvent(3, 1, 0), sampleEvent(1, 1, 0), sampleEvent(2, 1, 0)})

	events := p.Events()
	assert.Len(t, events, 3)
	assert.Equal(t, int64(1), events[0].ID)
	assert.Equal(t, int64(2), events[1].ID)
	assert.Equal(t, int64(3), events[2].ID)
}

func TestConcurrentPatchesStayConsistent(t *testing.T) {
	p := NewProjection()
	p.Load([]models.Event{sampleEvent(1, 1000, 0)})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = p.ApplyBooking(1, 1)
		}()
	}
	wg.Wait()

	e, _ := p.Get(1)
	assert.Equal(t, 100, e.TicketsSold)
}
