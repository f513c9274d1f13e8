package web

import (
	"log"
	"time"
)

// StartSessionCleanup starts a background goroutine to clean up expired sessions
func (s *WebServer) StartSessionCleanup() {
	go func() {
		ticker := time.NewTicker(15 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-s.DB.StopChan:
				return
			case <-ticker.C:
				if err := s.DB.CleanupExpiredSessions(); err != nil {
					log.Printf("Error cleaning up expired sessions: %v", err)
				}
			}
		}
	}()

	log.Println("Started session cleanup background task")
}
