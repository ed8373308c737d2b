package server

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vallois/aquawatt/internal/catalog"
	"github.com/vallois/aquawatt/internal/simulation"
)

type registerSensorRequest struct {
	SensorID  string `json:"sensor_id" binding:"required"`
	Equipment string `json:"type_equipement" binding:"required"`
	Location  string `json:"location"`
}

type setActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

func handleListSensors(c *gin.Context, deps Dependencies) {
	c.JSON(http.StatusOK, gin.H{"sensors": deps.Manager.List()})
}

func handleRegisterSensor(c *gin.Context, deps Dependencies) {
	var req registerSensorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	typ, err := simulation.ParseEquipmentType(req.Equipment)
	if err != nil {
		abortWithError(c, err)
		return
	}
	sensor, err := simulation.NewSensor(req.SensorID, typ, req.Location)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if err := deps.Manager.Add(sensor); err != nil {
		abortWithError(c, err)
		return
	}

	// Keep the MySQL catalog in sync when it is configured; the in-memory
	// fleet stays authoritative either way.
	if deps.Catalog != nil {
		input := catalog.UpsertInput{
			SensorID:  req.SensorID,
			Equipment: req.Equipment,
			Location:  req.Location,
			Active:    true,
		}
		if err := deps.Catalog.UpsertSensor(c.Request.Context(), input); err != nil {
			log.Printf("catalog upsert %s failed: %v", req.SensorID, err)
		}
	}

	c.JSON(http.StatusCreated, sensor.Info())
}

func handleRemoveSensor(c *gin.Context, deps Dependencies) {
	id := c.Param("id")
	if err := deps.Manager.Remove(id); err != nil {
		abortWithError(c, err)
		return
	}
	if deps.Catalog != nil {
		if err := deps.Catalog.Delete(c.Request.Context(), id); err != nil {
			log.Printf("catalog delete %s failed: %v", id, err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"removed": id})
}

func handleSetSensorActive(c *gin.Context, deps Dependencies) {
	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	id := c.Param("id")
	if err := deps.Manager.SetActive(id, *req.Active); err != nil {
		abortWithError(c, err)
		return
	}
	if deps.Catalog != nil {
		if err := deps.Catalog.SetActive(c.Request.Context(), id, *req.Active); err != nil {
			log.Printf("catalog set active %s failed: %v", id, err)
		}
	}

	info, err := deps.Manager.Describe(id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func handleReadOne(c *gin.Context, deps Dependencies) {
	reading, err := deps.Manager.ReadOne(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, reading)
}
