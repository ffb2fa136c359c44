package api

import "github.com/go-chi/cors"

// corsOptions allows the dashboard origins. A wildcard disables credentials,
// which browsers reject alongside "*".
func corsOptions(origins []string) cors.Options {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	allowCreds := true
	for _, o := range origins {
		if o == "*" {
			allowCreds = false
			break
		}
	}

	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: allowCreds,
		MaxAge:           300,
	}
}
