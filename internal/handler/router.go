package handler

import (
	"net/http"

	"file-conversion-server/internal/domain"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(ops *OperationHandler, rates *RatesHandler, logger domain.Logger, allowedOrigins []string) http.Handler {
	router := mux.NewRouter()
	router.Use(RequestID, RequestLogger(logger))

	router.HandleFunc("/health", Health).Methods(http.MethodGet)
	router.HandleFunc("/currency-rates", rates.GetRates).Methods(http.MethodGet)

	// File transformation routes
	router.HandleFunc("/convert-pdf-to-word", ops.Handle(domain.OperationConvertToWord)).Methods(http.MethodPost)
	router.HandleFunc("/compress-pdf", ops.Handle(domain.OperationCompress)).Methods(http.MethodPost)
	router.HandleFunc("/merge-pdfs", ops.Handle(domain.OperationMerge)).Methods(http.MethodPost)
	router.HandleFunc("/split-pdf", ops.Handle(domain.OperationSplit)).Methods(http.MethodPost)
	router.HandleFunc("/lock-pdf", ops.Handle(domain.OperationLock)).Methods(http.MethodPost)
	router.HandleFunc("/unlock-pdf", ops.Handle(domain.OperationUnlock)).Methods(http.MethodPost)
	router.HandleFunc("/esign-pdf", ops.Handle(domain.OperationSign)).Methods(http.MethodPost)
	router.HandleFunc("/convert-format", ops.Handle(domain.OperationConvertFormat)).Methods(http.MethodPost)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Configure CORS
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			requestIDHeader,
		},
		ExposedHeaders: []string{
			"Content-Disposition",
			"X-Original-Size",
			"X-Compressed-Size",
			"X-Rates-Tier",
			requestIDHeader,
		},
		MaxAge: 300, // Maximum value not ignored by any of major browsers
	})

	return c.Handler(router)
}
