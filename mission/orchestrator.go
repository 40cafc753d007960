// Package mission drives an alert through its dispatch lifecycle:
// plan, dispatch, both route legs, optional care protocol, resolution.
// Each mission runs in its own goroutine; the alert document is the
// durable record, the hub stream is best-effort observability.
package mission

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"go-medalert/dispatch"
	"go-medalert/geo"
	"go-medalert/hub"
	"go-medalert/protocol"
	"go-medalert/store"
	"go-medalert/types"
)

const (
	defaultStride = 3
	defaultPace   = 600 * time.Millisecond
)

// Publisher receives mission events for live subscribers.
type Publisher interface {
	Publish(update hub.Update)
}

// ProtocolGenerator produces the optional care protocol after pickup.
type ProtocolGenerator interface {
	Generate(ctx context.Context, age int, symptoms string, severity types.Severity) (*protocol.CareProtocol, error)
}

// Intake is everything the orchestrator needs to run one mission.
type Intake struct {
	AlertID     string
	PatientName string
	Age         int
	Symptoms    string
	Severity    types.Severity
	Location    types.ResolvedLocation
}

// Orchestrator executes missions. Safe for concurrent use; each Run
// call owns its alert document.
type Orchestrator struct {
	store     store.Store
	planner   *dispatch.Planner
	protocols ProtocolGenerator // nil disables protocol generation
	publisher Publisher         // nil disables the live stream
	stride    int
	pace      time.Duration
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithProtocolGenerator enables care-protocol generation after pickup.
func WithProtocolGenerator(g ProtocolGenerator) Option {
	return func(o *Orchestrator) { o.protocols = g }
}

// WithPublisher streams mission events to a hub.
func WithPublisher(p Publisher) Option {
	return func(o *Orchestrator) { o.publisher = p }
}

// WithDrivePace sets the stride and pause between simulated position
// updates. Tests pass a zero pace to run missions instantly.
func WithDrivePace(stride int, pace time.Duration) Option {
	return func(o *Orchestrator) {
		if stride >= 1 {
			o.stride = stride
		}
		o.pace = pace
	}
}

// NewOrchestrator wires an orchestrator from its collaborators.
func NewOrchestrator(st store.Store, planner *dispatch.Planner, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:   st,
		planner: planner,
		stride:  defaultStride,
		pace:    defaultPace,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Create records the alert in its initial phase. The boundary calls
// this before scheduling Run, so the alert is queryable the moment the
// intake response goes out.
func (o *Orchestrator) Create(ctx context.Context, in Intake) error {
	now := time.Now().UTC()
	doc := store.Document{
		"id":           in.AlertID,
		"phase":        string(types.PhaseCreated),
		"patient_name": in.PatientName,
		"age":          in.Age,
		"symptoms":     in.Symptoms,
		"severity":     int(in.Severity),
		"location":     coordDoc(in.Location.Coordinate),
		"address":      in.Location.Address,
		"logs":         []interface{}{fmt.Sprintf("Alert received (severity %d).", in.Severity)},
		"created_at":   now,
		"updated_at":   now,
	}
	if err := o.store.Set(ctx, store.CollectionAlerts, in.AlertID, doc); err != nil {
		return fmt.Errorf("recording alert %s: %w", in.AlertID, err)
	}
	o.publish(hub.Update{AlertID: in.AlertID, Phase: types.PhaseCreated})
	return nil
}

// Run executes the full mission workflow for an already-created alert.
// Errors never escape: any failure, including a panic in a
// collaborator, lands the mission in the error phase.
func (o *Orchestrator) Run(ctx context.Context, in Intake) {
	phase := types.PhaseCreated
	defer func() {
		if r := recover(); r != nil {
			log.Printf("mission %s: panic: %v", in.AlertID, r)
			o.fail(in.AlertID, phase, fmt.Errorf("internal failure: %v", r))
		}
	}()

	plan, err := o.planner.Plan(ctx, in.Location, in.Severity, in.Age, in.Symptoms)
	if err != nil {
		o.fail(in.AlertID, phase, err)
		return
	}

	if err := o.dispatchUnit(ctx, in.AlertID, plan); err != nil {
		o.fail(in.AlertID, phase, err)
		return
	}
	phase = types.PhaseDispatched

	if err := o.driveLeg(ctx, in.AlertID, &phase, types.PhaseEnRouteToPatient, plan.FleetUnit.ID, plan.LegToPatient,
		fmt.Sprintf("Unit %s en route to patient.", plan.FleetUnit.Name)); err != nil {
		o.fail(in.AlertID, phase, err)
		return
	}

	if err := o.transition(ctx, in.AlertID, &phase, types.PhasePatientPickup, nil,
		"Arrived on scene. Patient pickup in progress."); err != nil {
		o.fail(in.AlertID, phase, err)
		return
	}

	o.generateProtocol(ctx, in, &phase)

	if err := o.store.Update(ctx, store.CollectionAmbulances, plan.FleetUnit.ID, store.Document{
		"status": string(types.StatusEnRoute),
	}); err != nil {
		o.fail(in.AlertID, phase, err)
		return
	}
	if err := o.driveLeg(ctx, in.AlertID, &phase, types.PhaseEnRouteToFacility, plan.FleetUnit.ID, plan.LegToFacility,
		fmt.Sprintf("Transporting patient to %s.", plan.Facility.Name)); err != nil {
		o.fail(in.AlertID, phase, err)
		return
	}

	if err := o.resolve(ctx, in.AlertID, &phase, plan); err != nil {
		o.fail(in.AlertID, phase, err)
	}
}

// dispatchUnit persists the plan on the alert and marks the unit
// assigned.
func (o *Orchestrator) dispatchUnit(ctx context.Context, alertID string, plan types.DispatchPlan) error {
	planDoc, err := store.EncodeDoc(plan)
	if err != nil {
		return fmt.Errorf("encoding plan: %w", err)
	}
	fields := store.Document{
		"phase":             string(types.PhaseDispatched),
		"plan":              map[string]interface{}(planDoc),
		"selected_facility": plan.Facility.Name,
		"fleet_unit":        plan.FleetUnit.Name,
		"dist_leg1_km":      plan.LegToPatient.DistanceKm,
		"dist_leg2_km":      plan.LegToFacility.DistanceKm,
		"total_distance_km": plan.TotalKm,
		"eta_minutes":       plan.TotalEtaMin,
		"updated_at":        time.Now().UTC(),
	}
	if err := o.store.Update(ctx, store.CollectionAlerts, alertID, fields); err != nil {
		return fmt.Errorf("persisting dispatch: %w", err)
	}
	logLine := fmt.Sprintf("Unit %s dispatched to %s (%.1f km, ETA %.0f min).",
		plan.FleetUnit.Name, plan.Facility.Name, plan.TotalKm, plan.TotalEtaMin)
	if err := o.store.Append(ctx, store.CollectionAlerts, alertID, "logs", logLine); err != nil {
		return fmt.Errorf("appending dispatch log: %w", err)
	}

	if err := o.store.Update(ctx, store.CollectionAmbulances, plan.FleetUnit.ID, store.Document{
		"status":           string(types.StatusAssigned),
		"current_alert_id": alertID,
	}); err != nil {
		return fmt.Errorf("assigning unit %s: %w", plan.FleetUnit.ID, err)
	}

	o.publish(hub.Update{AlertID: alertID, Phase: types.PhaseDispatched, Log: logLine})
	return nil
}

// driveLeg advances the mission into a driving phase and replays the
// leg geometry as position updates.
func (o *Orchestrator) driveLeg(ctx context.Context, alertID string, phase *types.Phase, next types.Phase, unitID string, leg types.RouteLeg, logLine string) error {
	if err := o.transition(ctx, alertID, phase, next, nil, logLine); err != nil {
		return err
	}

	sampler := geo.NewPathSampler(leg.Geometry, o.stride)
	for {
		point, ok := sampler.Next()
		if !ok {
			return nil
		}
		if err := o.recordPosition(ctx, alertID, unitID, next, point); err != nil {
			return err
		}
		if err := o.pause(ctx); err != nil {
			return err
		}
	}
}

func (o *Orchestrator) recordPosition(ctx context.Context, alertID, unitID string, phase types.Phase, point types.Coordinate) error {
	pos := coordDoc(point)
	if err := o.store.Update(ctx, store.CollectionAmbulances, unitID, store.Document{
		"current_position": pos,
	}); err != nil {
		return fmt.Errorf("updating unit position: %w", err)
	}
	if err := o.store.Update(ctx, store.CollectionAlerts, alertID, store.Document{
		"ambulance_position": pos,
		"updated_at":         time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("updating mission position: %w", err)
	}
	o.publish(hub.Update{AlertID: alertID, Phase: phase, Position: &point})
	return nil
}

func (o *Orchestrator) pause(ctx context.Context) error {
	if o.pace <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(o.pace):
		return nil
	}
}

// generateProtocol asks the model for a care protocol. Failure is
// logged and skipped: the mission proceeds without one.
func (o *Orchestrator) generateProtocol(ctx context.Context, in Intake, phase *types.Phase) {
	if o.protocols == nil {
		return
	}
	cp, err := o.protocols.Generate(ctx, in.Age, in.Symptoms, in.Severity)
	if err != nil {
		log.Printf("mission %s: protocol generation failed, continuing without: %v", in.AlertID, err)
		return
	}
	protoDoc, err := store.EncodeDoc(cp)
	if err != nil {
		log.Printf("mission %s: encoding protocol failed, continuing without: %v", in.AlertID, err)
		return
	}
	logLine := fmt.Sprintf("Care protocol ready. Suspected: %s. Checklist: %s.",
		cp.SuspectedDiagnosis, strings.Join(cp.ArrivalChecklist, "; "))
	if err := o.transition(ctx, in.AlertID, phase, types.PhaseProtocolGenerated, store.Document{
		"medical_protocol": map[string]interface{}(protoDoc),
	}, logLine); err != nil {
		log.Printf("mission %s: persisting protocol failed, continuing without: %v", in.AlertID, err)
	}
}

func (o *Orchestrator) resolve(ctx context.Context, alertID string, phase *types.Phase, plan types.DispatchPlan) error {
	now := time.Now().UTC()
	if err := o.transition(ctx, alertID, phase, types.PhaseResolved, store.Document{
		"completed_at":      now,
		"total_distance_km": plan.TotalKm,
		"eta_minutes":       plan.TotalEtaMin,
	}, fmt.Sprintf("Patient admitted at %s. Mission complete.", plan.Facility.Name)); err != nil {
		return err
	}
	if err := o.store.Update(ctx, store.CollectionAmbulances, plan.FleetUnit.ID, store.Document{
		"status":           string(types.StatusAvailable),
		"current_alert_id": "",
	}); err != nil {
		return fmt.Errorf("releasing unit %s: %w", plan.FleetUnit.ID, err)
	}
	return nil
}

// transition validates and persists a phase change, appending the log
// line and merging any extra fields.
func (o *Orchestrator) transition(ctx context.Context, alertID string, phase *types.Phase, next types.Phase, extra store.Document, logLine string) error {
	if !phase.CanAdvanceTo(next) {
		return fmt.Errorf("illegal transition %s -> %s", *phase, next)
	}
	fields := store.Document{
		"phase":      string(next),
		"updated_at": time.Now().UTC(),
	}
	for k, v := range extra {
		fields[k] = v
	}
	if err := o.store.Update(ctx, store.CollectionAlerts, alertID, fields); err != nil {
		return fmt.Errorf("advancing to %s: %w", next, err)
	}
	if logLine != "" {
		if err := o.store.Append(ctx, store.CollectionAlerts, alertID, "logs", logLine); err != nil {
			return fmt.Errorf("appending log for %s: %w", next, err)
		}
	}
	*phase = next
	o.publish(hub.Update{AlertID: alertID, Phase: next, Log: logLine})
	return nil
}

// fail moves a mission to the error phase. Best-effort: the mission is
// already lost, so persistence errors are only logged.
func (o *Orchestrator) fail(alertID string, phase types.Phase, cause error) {
	log.Printf("mission %s: failed in %s: %v", alertID, phase, cause)
	if phase.Terminal() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := o.store.Update(ctx, store.CollectionAlerts, alertID, store.Document{
		"phase":      string(types.PhaseError),
		"error":      cause.Error(),
		"updated_at": time.Now().UTC(),
	}); err != nil {
		log.Printf("mission %s: persisting error phase failed: %v", alertID, err)
	}
	if err := o.store.Append(context.Background(), store.CollectionAlerts, alertID, "logs",
		fmt.Sprintf("Mission failed: %v", cause)); err != nil {
		log.Printf("mission %s: appending error log failed: %v", alertID, err)
	}
	o.publish(hub.Update{AlertID: alertID, Phase: types.PhaseError, Log: cause.Error()})
}

func (o *Orchestrator) publish(update hub.Update) {
	if o.publisher != nil {
		o.publisher.Publish(update)
	}
}

func coordDoc(c types.Coordinate) map[string]interface{} {
	return map[string]interface{}{"lat": c.Lat, "lng": c.Lng}
}
