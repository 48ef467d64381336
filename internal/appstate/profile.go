package appstate

import (
	"context"
	"fmt"
	"sync"

	"github.com/2beens/fittrack/internal/profile"
	"github.com/2beens/fittrack/internal/sdk"
)

//go:generate mockgen -source=$GOFILE -destination=profile_mocks_test.go -package=appstate_test

type profileStore interface {
	GetProfile(ctx context.Context) (*profile.Profile, error)
	SaveProfile(ctx context.Context, p profile.Profile) (*profile.Profile, error)
}

// Profile is fetched once, edited locally and saved as a whole.
type Profile struct {
	store profileStore

	mu      sync.Mutex
	profile profile.Profile
	loading bool
	mounted bool
	stored  bool

	listeners listeners[profile.Profile]
}

func NewProfile(store profileStore) *Profile {
	return &Profile{
		store:   store,
		profile: profile.Profile{Units: profile.UnitsMetric},
	}
}

// Mount fetches the profile the first time it is called. A user without a
// stored profile starts from a blank metric one.
func (p *Profile) Mount(ctx context.Context) error {
	p.mu.Lock()
	if p.mounted || p.loading {
		p.mu.Unlock()
		return nil
	}
	p.loading = true
	p.mu.Unlock()

	fetched, err := p.store.GetProfile(ctx)
	if err != nil && !sdk.IsNotFound(err) {
		p.mu.Lock()
		p.loading = false
		p.mu.Unlock()
		return fmt.Errorf("get profile: %w", err)
	}

	p.mu.Lock()
	p.loading = false
	p.mounted = true
	if fetched != nil {
		p.profile = cloneProfile(*fetched)
		p.stored = true
	}
	current := cloneProfile(p.profile)
	p.mu.Unlock()

	p.listeners.notify(current)
	return nil
}

// Loading is true while the first fetch runs.
func (p *Profile) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// Stored reports whether the profile exists on the backend.
func (p *Profile) Stored() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stored
}

func (p *Profile) Profile() profile.Profile {
	p.mu.Lock()
	defer p.mu.Unlock()
	return cloneProfile(p.profile)
}

// Update applies fn to a copy of the profile and keeps the result locally.
func (p *Profile) Update(fn func(*profile.Profile)) {
	p.mu.Lock()
	updated := cloneProfile(p.profile)
	fn(&updated)
	p.profile = updated
	current := cloneProfile(updated)
	p.mu.Unlock()

	p.listeners.notify(current)
}

// Save persists the whole profile and keeps what the backend stored.
func (p *Profile) Save(ctx context.Context) error {
	toSave := p.Profile().Normalize()
	if err := toSave.Validate(); err != nil {
		return err
	}

	saved, err := p.store.SaveProfile(ctx, toSave)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}

	p.mu.Lock()
	p.profile = cloneProfile(*saved)
	p.stored = true
	current := cloneProfile(p.profile)
	p.mu.Unlock()

	p.listeners.notify(current)
	return nil
}

func (p *Profile) Subscribe(fn func(profile.Profile)) func() {
	return p.listeners.add(fn)
}

func cloneProfile(p profile.Profile) profile.Profile {
	if p.Age != nil {
		age := *p.Age
		p.Age = &age
	}
	if p.Weight != nil {
		weight := *p.Weight
		p.Weight = &weight
	}
	if p.Height.CM != nil {
		cm := *p.Height.CM
		p.Height.CM = &cm
	}
	if p.Height.Feet != nil {
		feet := *p.Height.Feet
		p.Height.Feet = &feet
	}
	if p.Height.Inches != nil {
		inches := *p.Height.Inches
		p.Height.Inches = &inches
	}
	if p.Goals != nil {
		p.Goals = append(profile.Goals(nil), p.Goals...)
	}
	return p
}
