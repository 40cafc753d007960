package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-medalert/store"
	"go-medalert/types"
)

// ListFacilities returns every registered facility.
func ListFacilities(c *gin.Context, st store.Store) {
	docs, err := st.GetAll(c.Request.Context(), store.CollectionHospitals)
	if err != nil {
		log.Printf("listing facilities: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load facilities"})
		return
	}

	facilities := make([]types.Facility, 0, len(docs))
	for _, doc := range docs {
		f, err := store.DecodeFacility(doc)
		if err != nil {
			log.Printf("skipping malformed facility: %v", err)
			continue
		}
		facilities = append(facilities, f)
	}
	c.JSON(http.StatusOK, gin.H{"facilities": facilities, "count": len(facilities)})
}

// ListFleet returns every registered unit with its live status.
func ListFleet(c *gin.Context, st store.Store) {
	docs, err := st.GetAll(c.Request.Context(), store.CollectionAmbulances)
	if err != nil {
		log.Printf("listing fleet: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load fleet"})
		return
	}

	units := make([]types.FleetUnit, 0, len(docs))
	for _, doc := range docs {
		u, err := store.DecodeFleetUnit(doc)
		if err != nil {
			log.Printf("skipping malformed fleet unit: %v", err)
			continue
		}
		units = append(units, u)
	}
	c.JSON(http.StatusOK, gin.H{"fleet": units, "count": len(units)})
}
