package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"go-medalert/locate"
	"go-medalert/mission"
	"go-medalert/store"
	"go-medalert/types"
)

// AlertRequest is the intake payload. The three location signals are
// all optional: the resolver merges whatever is present and falls back
// to the coverage-area default.
type AlertRequest struct {
	PatientName    string            `json:"patient_name"`
	Age            int               `json:"age"`
	Symptoms       string            `json:"symptoms"`
	Severity       int               `json:"severity" binding:"required"`
	Position       *types.Coordinate `json:"position"`
	Accuracy       string            `json:"accuracy"`
	ManualPosition *types.Coordinate `json:"manual_position"`
	Address        string            `json:"address"`
}

// CreateAlert validates the intake, resolves the patient location and
// schedules the mission in the background. Returns 202 immediately; the
// caller polls the alert or subscribes to the stream for progress.
func CreateAlert(c *gin.Context, resolver *locate.Resolver, ipLocator *locate.IPLocator, orch *mission.Orchestrator, runner *mission.Runner) {
	var req AlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert payload: " + err.Error()})
		return
	}

	severity, err := types.ParseSeverity(req.Severity)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var gps *types.Signal
	if req.Position != nil {
		gps = &types.Signal{Coordinate: req.Position, Accuracy: req.Accuracy}
	}
	var manual *types.Signal
	if req.ManualPosition != nil || req.Address != "" {
		manual = &types.Signal{Coordinate: req.ManualPosition, Address: req.Address}
	}
	var ip *types.Signal
	if gps == nil && manual == nil && ipLocator != nil {
		ip = ipLocator.Lookup(c.Request.Context(), c.ClientIP())
	}

	location := resolver.Merge(c.Request.Context(), gps, manual, ip)

	intake := mission.Intake{
		AlertID:     uuid.New().String(),
		PatientName: req.PatientName,
		Age:         req.Age,
		Symptoms:    req.Symptoms,
		Severity:    severity,
		Location:    location,
	}

	if err := orch.Create(c.Request.Context(), intake); err != nil {
		log.Printf("alert intake: create failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not record alert"})
		return
	}

	// Mission outlives the request; it runs on its own context.
	runner.Go(func() {
		orch.Run(context.Background(), intake)
	})

	c.JSON(http.StatusAccepted, gin.H{
		"alert_id": intake.AlertID,
		"phase":    types.PhaseCreated,
		"location": location,
	})
}

// GetAlert returns the persisted mission record for one alert.
func GetAlert(c *gin.Context, st store.Store) {
	id := c.Param("id")
	doc, err := st.GetByID(c.Request.Context(), store.CollectionAlerts, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
			return
		}
		log.Printf("alert lookup %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load alert"})
		return
	}
	c.JSON(http.StatusOK, doc)
}
