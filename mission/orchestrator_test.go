package mission

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-medalert/dispatch"
	"go-medalert/hub"
	"go-medalert/protocol"
	"go-medalert/routing"
	"go-medalert/store"
	"go-medalert/types"
)

var (
	patientPos  = types.Coordinate{Lat: 33.5731, Lng: -7.5898}
	facilityPos = types.Coordinate{Lat: 33.5892, Lng: -7.6031}
)

type straightLineRouter struct{}

func (straightLineRouter) Route(_ context.Context, start, end types.Coordinate) types.RouteLeg {
	return routing.StraightLineLeg(start, end)
}

type capturePublisher struct {
	mu      sync.Mutex
	updates []hub.Update
}

func (p *capturePublisher) Publish(u hub.Update) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = append(p.updates, u)
}

func (p *capturePublisher) phases() []types.Phase {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []types.Phase
	for _, u := range p.updates {
		if len(out) == 0 || out[len(out)-1] != u.Phase {
			out = append(out, u.Phase)
		}
	}
	return out
}

type stubProtocols struct {
	result *protocol.CareProtocol
	err    error
}

func (s *stubProtocols) Generate(_ context.Context, _ int, _ string, _ types.Severity) (*protocol.CareProtocol, error) {
	return s.result, s.err
}

func seedWorld(t *testing.T, withFleet bool) *store.Memory {
	t.Helper()
	m := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, store.CollectionHospitals, "chu", store.Document{
		"name":        "CHU Ibn Rochd",
		"coordinates": map[string]interface{}{"lat": facilityPos.Lat, "lng": facilityPos.Lng},
		"specialties": []interface{}{"urgences"},
	}))
	if withFleet {
		require.NoError(t, m.Set(ctx, store.CollectionAmbulances, "amb", store.Document{
			"name":             "Ambulance 1",
			"class":            "standard",
			"status":           "available",
			"current_position": map[string]interface{}{"lat": 33.5950, "lng": -7.6190},
		}))
	}
	return m
}

func newTestOrchestrator(m *store.Memory, opts ...Option) *Orchestrator {
	router := straightLineRouter{}
	planner := dispatch.NewPlanner(
		dispatch.NewFacilitySelector(m, router),
		dispatch.NewFleetSelector(m),
		router,
	)
	opts = append([]Option{WithDrivePace(1, 0)}, opts...)
	return NewOrchestrator(m, planner, opts...)
}

func testIntake() Intake {
	return Intake{
		AlertID:     "alert-1",
		PatientName: "test patient",
		Age:         40,
		Symptoms:    "chest pain",
		Severity:    types.SeverityModerate,
		Location:    types.ResolvedLocation{Coordinate: patientPos, Source: types.SourceGPS},
	}
}

func getAlert(t *testing.T, m *store.Memory, id string) store.Document {
	t.Helper()
	doc, err := m.GetByID(context.Background(), store.CollectionAlerts, id)
	require.NoError(t, err)
	return doc
}

func TestCreate(t *testing.T) {
	m := seedWorld(t, true)
	o := newTestOrchestrator(m)
	require.NoError(t, o.Create(context.Background(), testIntake()))

	doc := getAlert(t, m, "alert-1")
	assert.Equal(t, string(types.PhaseCreated), doc["phase"])
	assert.Equal(t, 2, doc["severity"])
	assert.NotEmpty(t, doc["logs"])
	assert.Nil(t, doc["completed_at"])
}

func TestRunHappyPath(t *testing.T) {
	m := seedWorld(t, true)
	pub := &capturePublisher{}
	o := newTestOrchestrator(m, WithPublisher(pub))
	in := testIntake()
	ctx := context.Background()

	require.NoError(t, o.Create(ctx, in))
	o.Run(ctx, in)

	doc := getAlert(t, m, in.AlertID)
	assert.Equal(t, string(types.PhaseResolved), doc["phase"])
	assert.NotNil(t, doc["completed_at"])
	assert.Equal(t, "CHU Ibn Rochd", doc["selected_facility"])
	assert.Equal(t, "Ambulance 1", doc["fleet_unit"])
	assert.Greater(t, doc["total_distance_km"].(float64), 0.0)
	assert.Greater(t, doc["eta_minutes"].(float64), 0.0)

	logs, ok := doc["logs"].([]interface{})
	require.True(t, ok)
	assert.GreaterOrEqual(t, len(logs), 5)

	// unit is released at the end of the mission
	amb, err := m.GetByID(ctx, store.CollectionAmbulances, "amb")
	require.NoError(t, err)
	assert.Equal(t, string(types.StatusAvailable), amb["status"])
	assert.Equal(t, "", amb["current_alert_id"])

	// final unit position is the facility
	pos, ok := amb["current_position"].(map[string]interface{})
	require.True(t, ok)
	assert.InDelta(t, facilityPos.Lat, pos["lat"].(float64), 1e-9)
	assert.InDelta(t, facilityPos.Lng, pos["lng"].(float64), 1e-9)

	assert.Equal(t, []types.Phase{
		types.PhaseCreated,
		types.PhaseDispatched,
		types.PhaseEnRouteToPatient,
		types.PhasePatientPickup,
		types.PhaseEnRouteToFacility,
		types.PhaseResolved,
	}, pub.phases())
}

func TestRunWithProtocol(t *testing.T) {
	t.Run("success adds the protocol phase", func(t *testing.T) {
		m := seedWorld(t, true)
		pub := &capturePublisher{}
		o := newTestOrchestrator(m, WithPublisher(pub), WithProtocolGenerator(&stubProtocols{
			result: &protocol.CareProtocol{
				SuspectedDiagnosis: "Acute Coronary Syndrome",
				TransportProtocol:  "monitor and oxygen",
				ArrivalChecklist:   []string{"ECG on arrival"},
			},
		}))
		in := testIntake()
		ctx := context.Background()

		require.NoError(t, o.Create(ctx, in))
		o.Run(ctx, in)

		doc := getAlert(t, m, in.AlertID)
		assert.Equal(t, string(types.PhaseResolved), doc["phase"])
		proto, ok := doc["medical_protocol"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "Acute Coronary Syndrome", proto["suspected_diagnosis"])
		assert.Contains(t, pub.phases(), types.PhaseProtocolGenerated)
	})

	t.Run("failure skips the phase but resolves", func(t *testing.T) {
		m := seedWorld(t, true)
		pub := &capturePublisher{}
		o := newTestOrchestrator(m, WithPublisher(pub), WithProtocolGenerator(&stubProtocols{
			err: errors.New("model unavailable"),
		}))
		in := testIntake()
		ctx := context.Background()

		require.NoError(t, o.Create(ctx, in))
		o.Run(ctx, in)

		doc := getAlert(t, m, in.AlertID)
		assert.Equal(t, string(types.PhaseResolved), doc["phase"])
		assert.Nil(t, doc["medical_protocol"])
		assert.NotContains(t, pub.phases(), types.PhaseProtocolGenerated)
	})
}

func TestRunFailsWithoutFleet(t *testing.T) {
	m := seedWorld(t, false)
	pub := &capturePublisher{}
	o := newTestOrchestrator(m, WithPublisher(pub))
	in := testIntake()
	ctx := context.Background()

	require.NoError(t, o.Create(ctx, in))
	o.Run(ctx, in)

	doc := getAlert(t, m, in.AlertID)
	assert.Equal(t, string(types.PhaseError), doc["phase"])
	assert.Contains(t, doc["error"], "no available fleet")
	assert.Nil(t, doc["completed_at"])
	assert.Contains(t, pub.phases(), types.PhaseError)
}

func TestRunnerWait(t *testing.T) {
	r := NewRunner()
	var mu sync.Mutex
	done := 0
	for i := 0; i < 8; i++ {
		r.Go(func() {
			mu.Lock()
			done++
			mu.Unlock()
		})
	}
	r.Wait()
	assert.Equal(t, 8, done)
}
