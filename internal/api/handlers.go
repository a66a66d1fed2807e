package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"runlog/internal/types"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, types.HealthResponse{Status: "ok"})
}

func (s *Server) listActivities(c *gin.Context) {
	activities, err := s.activities.List(c.Request.Context(), c.Query("type"))
	if err != nil {
		writeError(c, err, http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, activities)
}

func (s *Server) countActivities(c *gin.Context) {
	n, err := s.activities.Count(c.Request.Context())
	if err != nil {
		writeError(c, err, http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, types.CountResponse{Count: n})
}

func (s *Server) tokenStatus(c *gin.Context) {
	st, err := s.activities.TokenStatus(c.Request.Context())
	if err != nil {
		writeError(c, err, http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, st)
}

// refetch runs to completion even if the caller goes away
func (s *Server) refetch(c *gin.Context) {
	ctx := context.WithoutCancel(c.Request.Context())
	result, err := s.syncer.FetchAndPersist(ctx, nil)
	if err != nil {
		writeError(c, err, http.StatusBadGateway)
		return
	}
	total, err := s.activities.Count(ctx)
	if err != nil {
		writeError(c, err, http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, types.RefetchResponse{Success: true, Fetched: result.Fetched, Total: total})
}

func (s *Server) updateActivity(c *gin.Context) {
	var req types.UpdateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	if err := s.activities.Rename(c.Request.Context(), c.Param("id"), req.Name); err != nil {
		writeError(c, err, http.StatusBadGateway)
		return
	}
	c.JSON(http.StatusOK, types.MessageResponse{Success: true, Message: "Activity updated"})
}

func (s *Server) listWeeks(c *gin.Context) {
	weeks, err := s.weeks.Available(c.Request.Context())
	if err != nil {
		writeError(c, err, http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, weeks)
}

func (s *Server) weekSummaries(c *gin.Context) {
	summaries, err := s.weeks.Summaries(c.Request.Context())
	if err != nil {
		writeError(c, err, http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

func (s *Server) getWeek(c *gin.Context) {
	week, err := s.weeks.Week(c.Request.Context(), c.Param("weekStart"))
	if err != nil {
		writeError(c, err, http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, week)
}

func (s *Server) listTrainingBlocks(c *gin.Context) {
	blocks, err := s.blocks.List(c.Request.Context())
	if err != nil {
		writeError(c, err, http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, blocks)
}

func (s *Server) createTrainingBlock(c *gin.Context) {
	var req types.CreateTrainingBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	block, err := s.blocks.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err, http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusCreated, block)
}

func (s *Server) getTrainingBlock(c *gin.Context) {
	block, err := s.blocks.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, block)
}

func (s *Server) updateTrainingBlock(c *gin.Context) {
	var req types.UpdateTrainingBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	block, err := s.blocks.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err, http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, block)
}

func (s *Server) deleteTrainingBlock(c *gin.Context) {
	if err := s.blocks.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err, http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, types.MessageResponse{Success: true, Message: "Training block deleted"})
}

func (s *Server) trainingBlockWeeks(c *gin.Context) {
	weeks, err := s.blocks.Weeks(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, weeks)
}
