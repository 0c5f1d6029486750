package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
	"github.com/wrenhollis/newsletter-digest-backend/internal/models"
	"github.com/wrenhollis/newsletter-digest-backend/internal/repository"
)

type ConfigHandlerTestSuite struct {
	suite.Suite
	echo    *echo.Echo
	handler *ConfigHandler
}

func (s *ConfigHandlerTestSuite) SetupTest() {
	s.echo = echo.New()
	s.handler = NewConfigHandler(repository.NewConfigRepository(setupTestDB(s.T())))
}

func TestConfigHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ConfigHandlerTestSuite))
}

func (s *ConfigHandlerTestSuite) TestGet_ReturnsDefaults() {
	c, rec := newContext(s.echo, http.MethodGet, "/api/digests/config", "")

	s.Require().NoError(s.handler.Get(c))
	s.Equal(http.StatusOK, rec.Code)

	var resp struct {
		Data models.DigestConfig `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal(models.ScheduleManual, resp.Data.Schedule)
	s.Equal(models.DefaultMaxPerDigest, resp.Data.MaxPerDigest)
	s.False(resp.Data.AutoGenerate)
}

func (s *ConfigHandlerTestSuite) TestUpdate_PartialFields() {
	c, rec := newContext(s.echo, http.MethodPut, "/api/digests/config",
		`{"schedule": "weekly"}`)

	s.Require().NoError(s.handler.Update(c))
	s.Equal(http.StatusOK, rec.Code)

	var resp struct {
		Data models.DigestConfig `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal(models.ScheduleWeekly, resp.Data.Schedule)
	// Unspecified fields keep their values
	s.Equal(models.DefaultMaxPerDigest, resp.Data.MaxPerDigest)
}

func (s *ConfigHandlerTestSuite) TestUpdate_AllFields() {
	c, rec := newContext(s.echo, http.MethodPut, "/api/digests/config",
		`{"schedule": "daily", "max_per_digest": 5, "auto_generate": true}`)

	s.Require().NoError(s.handler.Update(c))
	s.Equal(http.StatusOK, rec.Code)

	var resp struct {
		Data models.DigestConfig `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal(models.ScheduleDaily, resp.Data.Schedule)
	s.Equal(5, resp.Data.MaxPerDigest)
	s.True(resp.Data.AutoGenerate)
}

func (s *ConfigHandlerTestSuite) TestUpdate_InvalidSchedule() {
	c, rec := newContext(s.echo, http.MethodPut, "/api/digests/config",
		`{"schedule": "hourly"}`)

	s.Require().NoError(s.handler.Update(c))
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(rec.Body.String(), "INVALID_CONFIG")
}

func (s *ConfigHandlerTestSuite) TestUpdate_InvalidMaxPerDigest() {
	c, rec := newContext(s.echo, http.MethodPut, "/api/digests/config",
		`{"max_per_digest": 0}`)

	s.Require().NoError(s.handler.Update(c))
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(rec.Body.String(), "INVALID_CONFIG")
}
