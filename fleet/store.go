// Package fleet holds the single-writer state container for the simulated
// constellation: satellites, missions, the operator's selection and the
// latest analytics result.
package fleet

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/signalsfoundry/mission-control/internal/logging"
	"github.com/signalsfoundry/mission-control/model"
)

var (
	// ErrSatelliteExists indicates a satellite ID is already in the fleet.
	ErrSatelliteExists = errors.New("satellite already exists")
	// ErrSatelliteNotFound indicates no satellite matches the requested ID.
	ErrSatelliteNotFound = errors.New("satellite not found")
	// ErrInvalidSatellite indicates a satellite failed validation.
	ErrInvalidSatellite = errors.New("invalid satellite")
	// ErrMissionExists indicates a mission ID is already registered.
	ErrMissionExists = errors.New("mission already exists")
	// ErrMissionNotFound indicates no mission matches the requested ID.
	ErrMissionNotFound = errors.New("mission not found")
	// ErrInvalidMission indicates a mission failed validation.
	ErrInvalidMission = errors.New("invalid mission")
	// ErrInvalidTransition indicates a forbidden status change.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// EventType indicates what kind of change happened in the store.
type EventType int

const (
	EventSatelliteUpdated EventType = iota
	EventSatelliteRemoved
	EventMissionUpdated
	EventSelectionChanged
	EventAnalyticsUpdated
)

func (t EventType) String() string {
	switch t {
	case EventSatelliteUpdated:
		return "satellite_updated"
	case EventSatelliteRemoved:
		return "satellite_removed"
	case EventMissionUpdated:
		return "mission_updated"
	case EventSelectionChanged:
		return "selection_changed"
	case EventAnalyticsUpdated:
		return "analytics_updated"
	}
	return "unknown"
}

// Event is emitted to subscribers after a mutation. Payload fields are
// copies; only the one matching Type is populated.
type Event struct {
	Type      EventType
	Satellite model.Satellite
	Mission   model.Mission
	Analytics model.Analytics
}

// Store is an in-memory, thread-safe fleet container. Satellites and
// missions keep insertion order.
type Store struct {
	mu sync.RWMutex

	satellites map[string]*model.Satellite
	satOrder   []string
	missions   map[string]*model.Mission
	misOrder   []string

	selected  string
	analytics *model.Analytics

	subs    map[int]func(Event)
	nextSub int

	focus func(model.Satellite)
	now   func() time.Time
	log   logging.Logger
}

// Option customises Store construction.
type Option func(*Store)

// WithLogger attaches a structured logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithFocusHook registers the camera collaborator invoked by FocusOn.
func WithFocusHook(fn func(model.Satellite)) Option {
	return func(s *Store) { s.focus = fn }
}

// WithClock overrides the wall clock used to stamp lastContact.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore constructs an empty fleet.
func NewStore(opts ...Option) *Store {
	s := &Store{
		satellites: make(map[string]*model.Satellite),
		missions:   make(map[string]*model.Mission),
		subs:       make(map[int]func(Event)),
		now:        time.Now,
		log:        logging.Noop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// ---- satellites ----

// AddSatellite inserts sat after normalising it. The ID must be unique.
func (s *Store) AddSatellite(sat model.Satellite) error {
	sat = sat.Clone()
	if sat.Status == "" {
		sat.Status = model.StatusActive
	}
	if err := validateSatellite(&sat); err != nil {
		return err
	}
	if sat.LastContact.IsZero() {
		sat.LastContact = s.now()
	}

	s.mu.Lock()
	if _, exists := s.satellites[sat.ID]; exists {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrSatelliteExists, sat.ID)
	}
	s.satellites[sat.ID] = &sat
	s.satOrder = append(s.satOrder, sat.ID)
	subs := s.subscribersLocked()
	s.mu.Unlock()

	s.log.Debug(context.Background(), "satellite added",
		logging.String("satellite_id", sat.ID),
		logging.String("type", string(sat.Type)),
	)
	notify(subs, Event{Type: EventSatelliteUpdated, Satellite: sat.Clone()})
	return nil
}

// DeployRequest describes a satellite launched from the console. Zero
// fields take the dashboard defaults.
type DeployRequest struct {
	ID       string
	Name     string
	Type     model.SatelliteType
	Position *model.Position
	Velocity float64
	DataRate float64
}

// Deploy adds a new satellite in the deploying state.
func (s *Store) Deploy(req DeployRequest) (model.Satellite, error) {
	now := s.now()
	sat := model.Satellite{
		ID:          req.ID,
		Name:        req.Name,
		Type:        req.Type,
		Position:    model.Position{Latitude: 0, Longitude: 0, Altitude: 400},
		Velocity:    req.Velocity,
		Health:      100,
		Power:       95,
		BatteryLife: 24,
		DataRate:    req.DataRate,
		Status:      model.StatusDeploying,
		LastContact: now,
		DeployedAt:  now,
	}
	if sat.ID == "" {
		sat.ID = fmt.Sprintf("SAT_%d", now.UnixMilli())
	}
	if sat.Name == "" {
		sat.Name = fmt.Sprintf("Satellite %d", now.UnixMilli())
	}
	if sat.Type == "" {
		sat.Type = model.SatelliteCustom
	}
	if req.Position != nil {
		sat.Position = *req.Position
	}
	if sat.Velocity == 0 {
		sat.Velocity = 27600
	}
	if sat.DataRate == 0 {
		sat.DataRate = 100
	}
	if err := s.AddSatellite(sat); err != nil {
		return model.Satellite{}, err
	}
	return s.Satellite(sat.ID)
}

// CompleteDeployment moves a deploying satellite to active.
func (s *Store) CompleteDeployment(id string) error {
	return s.setStatus(id, model.StatusActive)
}

// Deactivate moves any satellite to inactive.
func (s *Store) Deactivate(id string) error {
	return s.setStatus(id, model.StatusInactive)
}

func (s *Store) setStatus(id string, next model.SatelliteStatus) error {
	return s.UpdateSatellite(id, func(sat *model.Satellite) {
		sat.Status = next
	})
}

// UpdateSatellite applies fn to a copy of the satellite, re-applies the
// fleet invariants and stores the result. lastContact is stamped with the
// store clock unless fn set it.
func (s *Store) UpdateSatellite(id string, fn func(*model.Satellite)) error {
	s.mu.Lock()
	cur, ok := s.satellites[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrSatelliteNotFound, id)
	}

	next := cur.Clone()
	if fn != nil {
		fn(&next)
	}
	next.ID = cur.ID

	if !cur.Status.CanTransitionTo(next.Status) {
		s.mu.Unlock()
		return fmt.Errorf("%w: satellite %q %s -> %s", ErrInvalidTransition, id, cur.Status, next.Status)
	}
	if err := validateSatellite(&next); err != nil {
		s.mu.Unlock()
		return err
	}
	if next.LastContact.Equal(cur.LastContact) {
		next.LastContact = s.now()
	}

	*cur = next
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs, Event{Type: EventSatelliteUpdated, Satellite: next.Clone()})
	return nil
}

// RemoveSatellite deletes a satellite and clears the selection if it
// pointed at it. Missions referencing it are kept for the record.
func (s *Store) RemoveSatellite(id string) error {
	s.mu.Lock()
	sat, ok := s.satellites[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrSatelliteNotFound, id)
	}
	removed := sat.Clone()
	delete(s.satellites, id)
	s.satOrder = removeID(s.satOrder, id)
	clearedSelection := s.selected == id
	if clearedSelection {
		s.selected = ""
	}
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs, Event{Type: EventSatelliteRemoved, Satellite: removed})
	if clearedSelection {
		notify(subs, Event{Type: EventSelectionChanged})
	}
	return nil
}

// Satellite returns a copy of the satellite with the given ID.
func (s *Store) Satellite(id string) (model.Satellite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sat, ok := s.satellites[id]
	if !ok {
		return model.Satellite{}, fmt.Errorf("%w: %q", ErrSatelliteNotFound, id)
	}
	return sat.Clone(), nil
}

// Satellites returns a snapshot of the fleet in insertion order.
func (s *Store) Satellites() []model.Satellite {
	return s.filterSatellites(nil)
}

// SatellitesByType returns the satellites of type t.
func (s *Store) SatellitesByType(t model.SatelliteType) []model.Satellite {
	return s.filterSatellites(func(sat *model.Satellite) bool { return sat.Type == t })
}

// ActiveSatellites returns the satellites whose status is active.
func (s *Store) ActiveSatellites() []model.Satellite {
	return s.filterSatellites(func(sat *model.Satellite) bool { return sat.Status == model.StatusActive })
}

func (s *Store) filterSatellites(keep func(*model.Satellite) bool) []model.Satellite {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]model.Satellite, 0, len(s.satOrder))
	for _, id := range s.satOrder {
		sat := s.satellites[id]
		if keep == nil || keep(sat) {
			res = append(res, sat.Clone())
		}
	}
	return res
}

// ---- missions ----

// AddMission registers a mission against an existing satellite.
func (s *Store) AddMission(m model.Mission) error {
	m = m.Clone()
	if m.ID == "" {
		return fmt.Errorf("%w: empty mission ID", ErrInvalidMission)
	}
	if m.Status == "" {
		m.Status = model.MissionExecuting
	}
	if !m.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidMission, m.Status)
	}
	m.Progress = clamp(m.Progress, 0, 100)

	s.mu.Lock()
	if _, exists := s.missions[m.ID]; exists {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrMissionExists, m.ID)
	}
	if _, ok := s.satellites[m.Satellite]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: mission %q references %q", ErrSatelliteNotFound, m.ID, m.Satellite)
	}
	s.missions[m.ID] = &m
	s.misOrder = append(s.misOrder, m.ID)
	subs := s.subscribersLocked()
	s.mu.Unlock()

	s.log.Debug(context.Background(), "mission added",
		logging.String("mission_id", m.ID),
		logging.String("satellite_id", m.Satellite),
	)
	notify(subs, Event{Type: EventMissionUpdated, Mission: m.Clone()})
	return nil
}

// Missions returns a snapshot of all missions in insertion order.
func (s *Store) Missions() []model.Mission {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]model.Mission, 0, len(s.misOrder))
	for _, id := range s.misOrder {
		res = append(res, s.missions[id].Clone())
	}
	return res
}

// Mission returns a copy of the mission with the given ID.
func (s *Store) Mission(id string) (model.Mission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.missions[id]
	if !ok {
		return model.Mission{}, fmt.Errorf("%w: %q", ErrMissionNotFound, id)
	}
	return m.Clone(), nil
}

// SetMissionProgress records progress for a non-terminal mission. Reaching
// 100 completes the mission.
func (s *Store) SetMissionProgress(id string, progress float64) error {
	return s.updateMission(id, func(m *model.Mission) error {
		m.Progress = clamp(progress, 0, 100)
		if m.Progress >= 100 {
			m.Status = model.MissionCompleted
		}
		return nil
	})
}

// SetMissionStatus moves a mission to status. Completed and failed are
// final.
func (s *Store) SetMissionStatus(id string, status model.MissionStatus) error {
	return s.updateMission(id, func(m *model.Mission) error {
		if !status.Valid() {
			return fmt.Errorf("%w: unknown status %q", ErrInvalidMission, status)
		}
		m.Status = status
		return nil
	})
}

func (s *Store) updateMission(id string, fn func(*model.Mission) error) error {
	s.mu.Lock()
	cur, ok := s.missions[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrMissionNotFound, id)
	}
	if cur.Status.Terminal() {
		s.mu.Unlock()
		return fmt.Errorf("%w: mission %q is %s", ErrInvalidTransition, id, cur.Status)
	}
	next := cur.Clone()
	if err := fn(&next); err != nil {
		s.mu.Unlock()
		return err
	}
	*cur = next
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs, Event{Type: EventMissionUpdated, Mission: next.Clone()})
	return nil
}

// ---- selection, camera and analytics ----

// SelectSatellite marks the satellite as the operator's focus.
func (s *Store) SelectSatellite(id string) error {
	s.mu.Lock()
	sat, ok := s.satellites[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrSatelliteNotFound, id)
	}
	s.selected = id
	snapshot := sat.Clone()
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs, Event{Type: EventSelectionChanged, Satellite: snapshot})
	return nil
}

// Selected returns the focused satellite, if any.
func (s *Store) Selected() (model.Satellite, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sat, ok := s.satellites[s.selected]
	if !ok {
		return model.Satellite{}, false
	}
	return sat.Clone(), true
}

// FocusOn forwards sat to the camera hook, if one is registered.
func (s *Store) FocusOn(sat model.Satellite) {
	s.mu.RLock()
	focus := s.focus
	s.mu.RUnlock()
	if focus != nil {
		focus(sat.Clone())
	}
}

// SetAnalytics replaces the latest analytics result.
func (s *Store) SetAnalytics(a model.Analytics) {
	s.mu.Lock()
	s.analytics = &a
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs, Event{Type: EventAnalyticsUpdated, Analytics: a})
}

// Analytics returns the latest analytics result.
func (s *Store) Analytics() (model.Analytics, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.analytics == nil {
		return model.Analytics{}, false
	}
	return *s.analytics, true
}

// ---- subscriptions ----

// Subscribe registers a callback for store events. It returns an
// unsubscribe function. Callbacks run outside the store lock.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) subscribersLocked() []func(Event) {
	if len(s.subs) == 0 {
		return nil
	}
	out := make([]func(Event), 0, len(s.subs))
	for i := 0; i < s.nextSub; i++ {
		if fn, ok := s.subs[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func notify(subs []func(Event), e Event) {
	for _, fn := range subs {
		fn(e)
	}
}

// ---- invariants ----

func validateSatellite(sat *model.Satellite) error {
	if sat.ID == "" {
		return fmt.Errorf("%w: empty ID", ErrInvalidSatellite)
	}
	if !sat.Type.Valid() {
		return fmt.Errorf("%w: %q has unknown type %q", ErrInvalidSatellite, sat.ID, sat.Type)
	}
	if !sat.Status.Valid() {
		return fmt.Errorf("%w: %q has unknown status %q", ErrInvalidSatellite, sat.ID, sat.Status)
	}
	p := sat.Position
	for _, v := range []float64{p.Latitude, p.Longitude, p.Altitude, sat.Power, sat.Health, sat.Velocity, sat.DataRate} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %q has non-finite state", ErrInvalidSatellite, sat.ID)
		}
	}
	if p.Altitude <= 0 {
		return fmt.Errorf("%w: %q altitude %.1f km must be positive", ErrInvalidSatellite, sat.ID, p.Altitude)
	}
	if p.Latitude < -90 || p.Latitude > 90 {
		return fmt.Errorf("%w: %q latitude %.3f out of range", ErrInvalidSatellite, sat.ID, p.Latitude)
	}

	sat.Power = clamp(sat.Power, 0, 100)
	sat.Health = clamp(sat.Health, 0, 100)
	sat.Position.Longitude = normalizeLongitude(p.Longitude)
	return nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// normalizeLongitude maps lon into (-180, 180].
func normalizeLongitude(lon float64) float64 {
	m := math.Mod(lon+180, 360)
	if m <= 0 {
		m += 360
	}
	return m - 180
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}
	return ids
}
