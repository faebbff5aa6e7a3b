// Package handlers implements the engine's command layer. Each incoming
// envelope type maps to one Service method; the Service owns the live
// scenario, its recorder, and the playback state.
package handlers

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/opsim/engine/internal/cache"
	"github.com/opsim/engine/internal/classdb"
	"github.com/opsim/engine/internal/dispatcher"
	"github.com/opsim/engine/internal/influx"
	"github.com/opsim/engine/internal/logging"
	"github.com/opsim/engine/internal/model/core"
	"github.com/opsim/engine/internal/recorder"
	"github.com/opsim/engine/internal/sim/mission"
	"github.com/opsim/engine/internal/sim/scenario"
	"github.com/opsim/engine/internal/storage"
	"github.com/opsim/engine/pkg/streaming"
)

// ErrNoScenario is returned when a command needs a loaded scenario.
var ErrNoScenario = errors.New("no scenario loaded")

// ErrNoPlayback is returned when a playback command arrives before any
// recording has been loaded into the player.
var ErrNoPlayback = errors.New("no recording loaded for playback")

// maxTicksPerStep bounds a single step command so one request cannot
// monopolize the engine.
const maxTicksPerStep = 10_000

// ScenarioContext holds the live scenario and its recording state.
type ScenarioContext struct {
	mu       sync.RWMutex
	Scenario *scenario.Scenario
	Recorder *recorder.Recorder
	Player   *recorder.Player
}

// NewScenarioContext creates an empty scenario context.
func NewScenarioContext() *ScenarioContext {
	return &ScenarioContext{}
}

// Get returns the current scenario, or nil when none is loaded.
func (sc *ScenarioContext) Get() *scenario.Scenario {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.Scenario
}

// WithLive runs fn on the live scenario under the context's write lock.
// Every command that mutates scenario state goes through here, so
// synchronous commands from the transport read loop are serialized
// against the buffered step worker.
func (sc *ScenarioContext) WithLive(fn func(*scenario.Scenario) error) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.Scenario == nil {
		return ErrNoScenario
	}
	return fn(sc.Scenario)
}

// Set installs a freshly loaded scenario and its recorder.
func (sc *ScenarioContext) Set(s *scenario.Scenario, r *recorder.Recorder) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.Scenario = s
	sc.Recorder = r
}

// Broadcaster fans engine output out to connected frontends.
type Broadcaster interface {
	BroadcastStep(step core.Step) error
	BroadcastLogEntries(entries []core.LogEntry) error
}

// Dependencies holds everything the handler service needs.
type Dependencies struct {
	LogManager       *logging.SlogManager
	Backend          storage.Backend
	Broadcaster      Broadcaster
	Influx           *influx.Manager // nil when telemetry is disabled
	ClassDB          *classdb.DB     // nil when no class table is configured
	DoctrineDefaults core.Doctrine
	ExportDir        string // recordings written here on end-scenario; empty disables
}

// Service provides handler methods for processing engine commands.
type Service struct {
	deps    Dependencies
	ctx     *ScenarioContext
	players *cache.PlayerCache
}

// NewService creates a new handler service.
func NewService(deps Dependencies, ctx *ScenarioContext) *Service {
	return &Service{deps: deps, ctx: ctx, players: cache.NewPlayerCache()}
}

// Context returns the scenario context.
func (s *Service) Context() *ScenarioContext {
	return s.ctx
}

func (s *Service) writeLog(functionName, data, level string) {
	if s.deps.LogManager != nil {
		s.deps.LogManager.WriteLog(functionName, data, level)
	}
}

// Register wires every command onto the dispatcher. Step commands are
// buffered so a burst of tick requests from the frontend is serialized
// through one worker.
func (s *Service) Register(d *dispatcher.Dispatcher) {
	d.Register(streaming.TypeLoadScenario, s.HandleLoadScenario, dispatcher.Logged())
	d.Register(streaming.TypeStepScenario, s.HandleStepScenario, dispatcher.Buffered(64), dispatcher.Blocking())
	d.Register(streaming.TypeLaunchAircraft, s.HandleLaunchAircraft, dispatcher.Logged())
	d.Register(streaming.TypeDeleteUnit, s.HandleDeleteUnit)
	d.Register(streaming.TypeCreateMission, s.HandleCreateMission, dispatcher.Logged())
	d.Register(streaming.TypeAssignUnit, s.HandleAssignUnit)
	d.Register(streaming.TypeSetDoctrine, s.HandleSetDoctrine)
	d.Register(streaming.TypeSetRelations, s.HandleSetRelations)
	d.Register(streaming.TypeLoadRecording, s.HandleLoadRecording, dispatcher.Logged())
	d.Register(streaming.TypeSeekRecording, s.HandleSeekRecording)
}

// HandleLoadScenario parses a scenario document, builds the live
// scenario, and opens a recording for it.
func (s *Service) HandleLoadScenario(e dispatcher.Event) (any, error) {
	functionName := ":LOAD:SCENARIO:"

	var doc scenario.Document
	if err := json.Unmarshal(e.Payload, &doc); err != nil {
		return nil, fmt.Errorf("parsing scenario document: %w", err)
	}

	s.applyClassDefaults(&doc)

	scn, err := scenario.Load(doc, s.deps.DoctrineDefaults)
	if err != nil {
		s.writeLog(functionName, fmt.Sprintf("Error loading scenario: %v", err), "ERROR")
		return nil, err
	}

	info := core.RecordingInfo{
		Name:         fmt.Sprintf("%s_%s", doc.ID, time.Now().UTC().Format("20060102_150405")),
		ScenarioID:   doc.ID,
		ScenarioName: doc.Name,
		StartTime:    doc.CurrentTime,
	}
	rec := recorder.New(info)

	if s.deps.Backend != nil {
		if err := s.deps.Backend.StartRecording(info); err != nil {
			s.writeLog(functionName, fmt.Sprintf("Error starting recording: %v", err), "ERROR")
			return nil, err
		}
	}

	s.ctx.Set(scn, rec)
	s.writeLog(functionName, fmt.Sprintf("Loaded scenario '%s' with %d sides", doc.Name, len(doc.Sides)), "INFO")

	// Send the initial state so clients render before the first tick.
	if s.deps.Broadcaster != nil {
		_ = s.deps.Broadcaster.BroadcastStep(scn.Snapshot())
	}

	return info.Name, nil
}

// applyClassDefaults fills zero-valued performance fields from the class
// table. Document values always win over class values.
func (s *Service) applyClassDefaults(doc *scenario.Document) {
	if s.deps.ClassDB == nil {
		return
	}

	fillKinematics := func(className string, k *core.Kinematics) {
		c, err := s.deps.ClassDB.Get(className)
		if err != nil {
			return
		}
		if k.SpeedKnots == 0 {
			k.SpeedKnots = c.SpeedKnots
		}
		if k.MaxFuel == 0 {
			k.MaxFuel = c.MaxFuel
		}
		if k.CurrentFuel == 0 {
			k.CurrentFuel = k.MaxFuel
		}
		if k.FuelRate == 0 {
			k.FuelRate = c.FuelRate
		}
		if k.DetectionRangeNm == 0 {
			k.DetectionRangeNm = c.DetectionRangeNm
		}
		if k.EngagementRangeNm == 0 {
			k.EngagementRangeNm = c.EngagementRangeNm
		}
	}
	fillWeapons := func(weapons []*core.Weapon) {
		for _, w := range weapons {
			c, err := s.deps.ClassDB.Get(w.ClassName)
			if err != nil {
				continue
			}
			if w.Lethality == 0 {
				w.Lethality = c.Lethality
			}
			if w.MaxQuantity == 0 {
				w.MaxQuantity = c.MaxQuantity
			}
			if w.CurrentQuantity == 0 {
				w.CurrentQuantity = w.MaxQuantity
			}
			fillKinematics(w.ClassName, &w.Kinematics)
		}
	}

	for i := range doc.Aircraft {
		fillKinematics(doc.Aircraft[i].ClassName, &doc.Aircraft[i].Kinematics)
		fillWeapons(doc.Aircraft[i].Weapons)
	}
	for i := range doc.Ships {
		fillKinematics(doc.Ships[i].ClassName, &doc.Ships[i].Kinematics)
		fillWeapons(doc.Ships[i].Weapons)
	}
	for i := range doc.Facilities {
		f := &doc.Facilities[i]
		if c, err := s.deps.ClassDB.Get(f.ClassName); err == nil {
			if f.DetectionRangeNm == 0 {
				f.DetectionRangeNm = c.DetectionRangeNm
			}
			if f.EngagementRangeNm == 0 {
				f.EngagementRangeNm = c.EngagementRangeNm
			}
		}
		fillWeapons(f.Weapons)
	}
	for i := range doc.Airbases {
		for _, a := range doc.Airbases[i].Aircraft {
			fillKinematics(a.ClassName, &a.Kinematics)
			fillWeapons(a.Weapons)
		}
	}
}

// HandleStepScenario advances the scenario the requested number of ticks,
// capturing, persisting and broadcasting each one.
func (s *Service) HandleStepScenario(e dispatcher.Event) (any, error) {
	var payload streaming.StepScenarioPayload
	if len(e.Payload) > 0 {
		if err := json.Unmarshal(e.Payload, &payload); err != nil {
			return nil, fmt.Errorf("parsing step payload: %w", err)
		}
	}
	ticks := payload.Ticks
	if ticks <= 0 {
		ticks = 1
	}
	if ticks > maxTicksPerStep {
		ticks = maxTicksPerStep
	}

	for i := 0; i < ticks; i++ {
		if err := s.stepOnce(); err != nil {
			return nil, err
		}
	}
	return ticks, nil
}

func (s *Service) stepOnce() error {
	// The tick itself runs under the context lock; persistence and
	// broadcast work from the snapshot copy outside it.
	s.ctx.mu.Lock()
	scn := s.ctx.Scenario
	if scn == nil {
		s.ctx.mu.Unlock()
		return ErrNoScenario
	}

	start := time.Now()
	entries := scn.Step()
	step := scn.Snapshot()
	scenarioID := scn.ID
	simTime := scn.CurrentTime
	if s.ctx.Recorder != nil {
		s.ctx.Recorder.Capture(step)
	}
	s.ctx.mu.Unlock()

	if s.deps.Backend != nil {
		if err := s.deps.Backend.RecordStep(step); err != nil {
			s.writeLog(":STEP:", fmt.Sprintf("Error persisting step: %v", err), "ERROR")
		}
		if err := s.deps.Backend.RecordLogEntries(entries); err != nil {
			s.writeLog(":STEP:", fmt.Sprintf("Error persisting log entries: %v", err), "ERROR")
		}
	}
	if s.deps.Broadcaster != nil {
		_ = s.deps.Broadcaster.BroadcastStep(step)
		_ = s.deps.Broadcaster.BroadcastLogEntries(entries)
	}
	if s.deps.Influx != nil {
		unitCount := len(step.Aircraft) + len(step.Ships) + len(step.Facilities) + len(step.Airbases) + len(step.Weapons)
		if err := s.deps.Influx.WriteTick(context.Background(), scenarioID, simTime, time.Since(start), unitCount, len(entries)); err != nil {
			s.writeLog(":STEP:", fmt.Sprintf("Error writing telemetry: %v", err), "DEBUG")
		}
	}
	return nil
}

// HandleLaunchAircraft moves an airframe from a base's inventory into
// the airborne collection.
func (s *Service) HandleLaunchAircraft(e dispatcher.Event) (any, error) {
	var payload streaming.LaunchAircraftPayload
	if err := json.Unmarshal(e.Payload, &payload); err != nil {
		return nil, fmt.Errorf("parsing launch payload: %w", err)
	}
	err := s.ctx.WithLive(func(scn *scenario.Scenario) error {
		return scn.LaunchAircraft(payload.AirbaseID, payload.AircraftID)
	})
	if err != nil {
		return nil, err
	}
	return payload.AircraftID, nil
}

// HandleDeleteUnit queues a unit removal for the next tick boundary.
func (s *Service) HandleDeleteUnit(e dispatcher.Event) (any, error) {
	var payload streaming.DeleteUnitPayload
	if err := json.Unmarshal(e.Payload, &payload); err != nil {
		return nil, fmt.Errorf("parsing delete payload: %w", err)
	}
	err := s.ctx.WithLive(func(scn *scenario.Scenario) error {
		scn.DeleteUnit(payload.UnitID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payload.UnitID, nil
}

// HandleCreateMission creates a patrol, strike, or refueling mission.
func (s *Service) HandleCreateMission(e dispatcher.Event) (any, error) {
	var payload streaming.CreateMissionPayload
	if err := json.Unmarshal(e.Payload, &payload); err != nil {
		return nil, fmt.Errorf("parsing mission payload: %w", err)
	}

	points := make([]core.ReferencePoint, 0, len(payload.Points))
	for _, p := range payload.Points {
		rp := core.ReferencePoint{}
		rp.Latitude = p.Latitude
		rp.Longitude = p.Longitude
		points = append(points, rp)
	}

	err := s.ctx.WithLive(func(scn *scenario.Scenario) error {
		var err error
		switch mission.Kind(payload.Kind) {
		case mission.KindPatrol:
			_, err = scn.Missions.CreatePatrol(payload.ID, payload.Name, payload.SideID, points, payload.Active)
		case mission.KindStrike:
			_, err = scn.Missions.CreateStrike(payload.ID, payload.Name, payload.SideID, payload.TargetIDs, payload.Active)
		case mission.KindAerialRefueling:
			_, err = scn.Missions.CreateAerialRefueling(payload.ID, payload.Name, payload.SideID, points, payload.Active)
		default:
			err = fmt.Errorf("unknown mission kind: %s", payload.Kind)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return payload.ID, nil
}

// HandleAssignUnit moves a unit onto a mission.
func (s *Service) HandleAssignUnit(e dispatcher.Event) (any, error) {
	var payload streaming.AssignUnitPayload
	if err := json.Unmarshal(e.Payload, &payload); err != nil {
		return nil, fmt.Errorf("parsing assign payload: %w", err)
	}
	err := s.ctx.WithLive(func(scn *scenario.Scenario) error {
		return scn.Missions.AssignUnit(payload.MissionID, payload.UnitID)
	})
	if err != nil {
		return nil, err
	}
	return payload.UnitID, nil
}

// HandleSetDoctrine replaces one side's doctrine record.
func (s *Service) HandleSetDoctrine(e dispatcher.Event) (any, error) {
	var payload streaming.SetDoctrinePayload
	if err := json.Unmarshal(e.Payload, &payload); err != nil {
		return nil, fmt.Errorf("parsing doctrine payload: %w", err)
	}
	err := s.ctx.WithLive(func(scn *scenario.Scenario) error {
		scn.Doctrines.Set(payload.SideID, payload.Doctrine)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payload.SideID, nil
}

// HandleSetRelations replaces one side's relationship sets.
func (s *Service) HandleSetRelations(e dispatcher.Event) (any, error) {
	var payload streaming.SetRelationsPayload
	if err := json.Unmarshal(e.Payload, &payload); err != nil {
		return nil, fmt.Errorf("parsing relations payload: %w", err)
	}
	err := s.ctx.WithLive(func(scn *scenario.Scenario) error {
		scn.Relations.Update(payload.SideID, payload.Hostiles, payload.Allies)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payload.SideID, nil
}

// HandleLoadRecording opens a stored recording for playback. Players are
// cached per name so switching between recordings is cheap.
func (s *Service) HandleLoadRecording(e dispatcher.Event) (any, error) {
	var payload streaming.LoadRecordingPayload
	if err := json.Unmarshal(e.Payload, &payload); err != nil {
		return nil, fmt.Errorf("parsing load recording payload: %w", err)
	}
	if payload.Name == "" {
		return nil, errors.New("recording name is required")
	}

	player, ok := s.players.Get(payload.Name)
	if !ok {
		loadable, isLoadable := s.deps.Backend.(storage.Loadable)
		if !isLoadable {
			return nil, errors.New("storage backend cannot load recordings")
		}
		rec, err := loadable.LoadRecording(payload.Name)
		if err != nil {
			return nil, err
		}
		player, err = recorder.NewPlayer(*rec)
		if err != nil {
			return nil, err
		}
		s.players.Set(payload.Name, player)
	}

	s.ctx.mu.Lock()
	s.ctx.Player = player
	s.ctx.mu.Unlock()

	if s.deps.Broadcaster != nil {
		_ = s.deps.Broadcaster.BroadcastStep(player.CurrentStep())
	}
	return player.EndStepIndex(), nil
}

// HandleSeekRecording positions playback and broadcasts the step at the
// resulting index.
func (s *Service) HandleSeekRecording(e dispatcher.Event) (any, error) {
	s.ctx.mu.RLock()
	player := s.ctx.Player
	s.ctx.mu.RUnlock()

	if player == nil {
		return nil, ErrNoPlayback
	}

	var payload streaming.SeekRecordingPayload
	if err := json.Unmarshal(e.Payload, &payload); err != nil {
		return nil, fmt.Errorf("parsing seek payload: %w", err)
	}

	index := player.Seek(payload.Index)
	if s.deps.Broadcaster != nil {
		_ = s.deps.Broadcaster.BroadcastStep(player.CurrentStep())
	}
	return index, nil
}

// SimTime reports the loaded scenario's current simulation time.
func (s *Service) SimTime() int64 {
	s.ctx.mu.RLock()
	defer s.ctx.mu.RUnlock()
	if s.ctx.Scenario == nil {
		return 0
	}
	return s.ctx.Scenario.CurrentTime
}

// StepCount reports the number of steps captured so far.
func (s *Service) StepCount() int {
	s.ctx.mu.RLock()
	defer s.ctx.mu.RUnlock()
	if s.ctx.Recorder == nil {
		return 0
	}
	return s.ctx.Recorder.Len()
}

// LoadPlayback installs a serialized recording into the player.
func (s *Service) LoadPlayback(data []byte) error {
	player, err := recorder.Load(data)
	if err != nil {
		return err
	}
	s.ctx.mu.Lock()
	s.ctx.Player = player
	s.ctx.mu.Unlock()
	return nil
}

// EndScenario closes the open recording, writes the export document for
// backends that can produce one, and clears the live scenario.
func (s *Service) EndScenario() error {
	s.ctx.mu.Lock()
	rec := s.ctx.Recorder
	s.ctx.Scenario = nil
	s.ctx.Recorder = nil
	s.ctx.mu.Unlock()

	if s.deps.Backend == nil {
		return nil
	}
	err := s.deps.Backend.EndRecording()

	if exp, ok := s.deps.Backend.(storage.Exportable); ok && s.deps.ExportDir != "" && rec != nil {
		name := rec.Recording().Info.Name
		if exportErr := s.exportRecording(exp, name); exportErr != nil {
			s.writeLog(":END:", fmt.Sprintf("Error exporting recording %q: %v", name, exportErr), "ERROR")
		}
	}
	return err
}

// exportRecording writes the backend's export document as a gzipped JSON
// file named after the recording.
func (s *Service) exportRecording(exp storage.Exportable, name string) error {
	data, err := exp.Export()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.deps.ExportDir, 0755); err != nil {
		return err
	}
	path := filepath.Join(s.deps.ExportDir, name+".json.gz")
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	gz := gzip.NewWriter(file)
	if _, err := gz.Write(data); err != nil {
		file.Close()
		return err
	}
	if err := gz.Close(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
