package metrics

import (
	"github.com/san-kum/rigidsim/internal/physics"
	"github.com/san-kum/rigidsim/internal/scenario"
)

// SleepFraction is the share of rigid bodies asleep in the last frame.
type SleepFraction struct {
	value float64
}

func NewSleepFraction() *SleepFraction { return &SleepFraction{} }

func (s *SleepFraction) Name() string { return "sleeping" }

func (s *SleepFraction) Observe(f scenario.Frame) {
	rigid, asleep := 0, 0
	for _, b := range f.Bodies {
		if b.Mode != physics.BodyModeRigid && b.Mode != physics.BodyModeCharacter {
			continue
		}
		rigid++
		if b.Sleeping {
			asleep++
		}
	}
	s.value = 0
	if rigid > 0 {
		s.value = float64(asleep) / float64(rigid)
	}
}

func (s *SleepFraction) Value() float64 { return s.value }
func (s *SleepFraction) Reset()         { s.value = 0 }

// Islands is the largest island count seen.
type Islands struct {
	max int
}

func NewIslands() *Islands { return &Islands{} }

func (i *Islands) Name() string { return "islands" }

func (i *Islands) Observe(f scenario.Frame) {
	if f.Islands > i.max {
		i.max = f.Islands
	}
}

func (i *Islands) Value() float64 { return float64(i.max) }
func (i *Islands) Reset()         { i.max = 0 }

// Contacts is the mean number of reported contacts per frame.
type Contacts struct {
	sum     int
	samples int
}

func NewContacts() *Contacts { return &Contacts{} }

func (c *Contacts) Name() string { return "contacts" }

func (c *Contacts) Observe(f scenario.Frame) {
	for _, b := range f.Bodies {
		c.sum += b.Contacts
	}
	c.samples++
}

func (c *Contacts) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return float64(c.sum) / float64(c.samples)
}

func (c *Contacts) Reset() {
	c.sum = 0
	c.samples = 0
}
