package api

import "github.com/julienschmidt/httprouter"

func (s *Server) Routes() *httprouter.Router {
	router := httprouter.New()

	router.POST("/login", s.HandleLogin())
	router.POST("/transcribe", s.Validate(s.HandleTranscribeRequest()))
	router.GET("/scores/:id", s.Validate(s.HandleScoreDownload()))

	return router
}
