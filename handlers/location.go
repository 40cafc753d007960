package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-medalert/locate"
)

type geocodeRequest struct {
	Address string `json:"address" binding:"required"`
}

// Geocode resolves a free-text address through the provider cascade.
func Geocode(c *gin.Context, resolver *locate.Resolver) {
	var req geocodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address is required"})
		return
	}

	resolved := resolver.GeocodeAddress(c.Request.Context(), req.Address)
	if resolved == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no match for address"})
		return
	}
	c.JSON(http.StatusOK, resolved)
}

// DetectIP estimates the caller's position from their IP address.
// Coarse by nature; the result is tagged accordingly.
func DetectIP(c *gin.Context, ipLocator *locate.IPLocator) {
	if ipLocator == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ip geolocation not configured"})
		return
	}
	signal := ipLocator.Lookup(c.Request.Context(), c.ClientIP())
	if signal == nil || signal.Coordinate == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "could not locate ip"})
		return
	}
	c.JSON(http.StatusOK, signal)
}
