package service

import (
	"door_controller/internal/models"
	"door_controller/internal/status"
)

// MonitoringService adapts the status reporter to the portal contract.
type MonitoringService struct {
	reporter *status.Reporter
}

func NewMonitoringService(reporter *status.Reporter) *MonitoringService {
	return &MonitoringService{reporter: reporter}
}

func (s *MonitoringService) Snapshot() models.StatusSnapshot {
	return s.reporter.Snapshot()
}

func (s *MonitoringService) Detailed() string {
	return s.reporter.Detailed()
}
