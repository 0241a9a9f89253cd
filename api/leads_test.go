package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"backend_pitstop/models"
	"backend_pitstop/services"
	"backend_pitstop/testutils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupLeadRouter(t *testing.T) (*gin.Engine, *gorm.DB, *models.Organization, []models.PipelineStage) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := testutils.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { testutils.CleanupTestDB(db) })

	org := testutils.CreateTestOrganization(db)
	stages := testutils.CreateTestPipeline(db, org.ID)

	pipeline := services.NewPipelineService(db)
	kanban := services.NewKanbanService(db, pipeline)
	leadAPI := NewLeadAPI(db, pipeline, kanban)

	r := gin.New()
	// Simula o middleware de autenticação
	r.Use(func(c *gin.Context) {
		c.Set("organization_id", org.ID)
		c.Set("user_id", uint(1))
		c.Next()
	})

	r.GET("/api/leads", leadAPI.GetLeads)
	r.POST("/api/leads", leadAPI.CreateLead)
	r.GET("/api/leads/:id", leadAPI.GetLead)
	r.PUT("/api/leads/:id", leadAPI.UpdateLead)
	r.DELETE("/api/leads/:id", leadAPI.DeleteLead)
	r.PUT("/api/leads/:id/move", leadAPI.MoveLead)
	r.GET("/api/leads/:id/history", leadAPI.GetLeadHistory)

	return r, db, org, stages
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLeadAPI_CreateLead(t *testing.T) {
	r, db, _, stages := setupLeadRouter(t)

	t.Run("lead novo entra na etapa Prospecto com histórico de criação", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/leads", gin.H{
			"name":      "João Silva",
			"phone":     "(11) 98888-0000",
			"car_model": "Gol 2018",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var resp struct {
			Data models.Lead `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, stages[0].ID, resp.Data.PipelineStageID)

		var history []models.LeadHistory
		require.NoError(t, db.Where("lead_id = ?", resp.Data.ID).Find(&history).Error)
		require.Len(t, history, 1)
		assert.Equal(t, models.HistoryCreation, history[0].Type)
	})

	t.Run("nome é obrigatório", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/leads", gin.H{"phone": "123"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLeadAPI_GetLeads(t *testing.T) {
	r, db, org, stages := setupLeadRouter(t)

	testutils.CreateTestLead(db, org.ID, stages[0].ID)
	second := testutils.CreateTestLead(db, org.ID, stages[3].ID)

	t.Run("lista todos", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/api/leads", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data []models.Lead `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Data, 2)
	})

	t.Run("filtro por etapa", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, fmt.Sprintf("/api/leads?stage_id=%d", stages[3].ID), nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data []models.Lead `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 1)
		assert.Equal(t, second.ID, resp.Data[0].ID)
	})
}

func TestLeadAPI_MoveLead(t *testing.T) {
	r, db, org, stages := setupLeadRouter(t)
	lead := testutils.CreateTestLead(db, org.ID, stages[0].ID)

	t.Run("move para outra etapa", func(t *testing.T) {
		w := doJSON(r, http.MethodPut, fmt.Sprintf("/api/leads/%d/move", lead.ID),
			gin.H{"stage_id": stages[6].ID})
		require.Equal(t, http.StatusOK, w.Code)

		var updated models.Lead
		require.NoError(t, db.First(&updated, lead.ID).Error)
		assert.Equal(t, stages[6].ID, updated.PipelineStageID)
	})

	t.Run("etapa inexistente", func(t *testing.T) {
		w := doJSON(r, http.MethodPut, fmt.Sprintf("/api/leads/%d/move", lead.ID),
			gin.H{"stage_id": 9999})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestLeadAPI_DeleteLead(t *testing.T) {
	r, db, org, stages := setupLeadRouter(t)
	lead := testutils.CreateTestLead(db, org.ID, stages[0].ID)

	t.Run("sem confirm=true a exclusão é recusada", func(t *testing.T) {
		w := doJSON(r, http.MethodDelete, fmt.Sprintf("/api/leads/%d", lead.ID), nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var count int64
		db.Model(&models.Lead{}).Where("id = ?", lead.ID).Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("com confirm=true o lead e o histórico são removidos", func(t *testing.T) {
		w := doJSON(r, http.MethodDelete, fmt.Sprintf("/api/leads/%d?confirm=true", lead.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)

		var histCount int64
		db.Model(&models.LeadHistory{}).Where("lead_id = ?", lead.ID).Count(&histCount)
		assert.Zero(t, histCount)
	})

	t.Run("lead inexistente", func(t *testing.T) {
		w := doJSON(r, http.MethodDelete, "/api/leads/9999?confirm=true", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
