package test

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/2beens/fittrack/internal/dashboard"
	"github.com/2beens/fittrack/internal/tracker"
)

func (s *IntegrationTestSuite) TestLoginRateLimited() {
	for i := 0; i < 5; i++ {
		s.login()
	}
	status, _ := s.do("POST", "/session/login", map[string]string{"email": "runner@fit.app"})
	s.Equal(http.StatusTooManyRequests, status)
}

func (s *IntegrationTestSuite) TestDashboardPersistsInRedis() {
	status, _ := s.do("GET", "/dashboard", nil)
	s.Require().Equal(http.StatusUnauthorized, status)

	s.login()

	status, body := s.do("POST", "/dashboard/workouts", tracker.NewWorkout{Type: "Running", Duration: 30, Calories: 320})
	s.Require().Equal(http.StatusCreated, status, string(body))
	status, body = s.do("POST", "/dashboard/steps", map[string]int{"steps": 6500})
	s.Require().Equal(http.StatusOK, status, string(body))

	status, body = s.do("GET", "/dashboard", nil)
	s.Require().Equal(http.StatusOK, status, string(body))
	var overview dashboard.Overview
	s.Require().NoError(json.Unmarshal(body, &overview))
	s.Equal(6500, overview.Steps.Value)
	s.Equal(320, overview.Calories.Value)
	s.Equal(1, overview.Streak)
	s.Require().Len(overview.RecentWorkouts, 1)

	ctx := context.Background()
	steps, err := s.redisClient.Get(ctx, "fittrack-test:fittrack_steps").Result()
	s.Require().NoError(err)
	s.Equal("6500", steps)

	weekStart, err := s.redisClient.Get(ctx, "fittrack-test:fittrack_week_start").Result()
	s.Require().NoError(err)
	s.NotEmpty(weekStart)
}
