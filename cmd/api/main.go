// cmd/api/main.go
package main

import (
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
)

func main() {
	listingServiceURL, _ := url.Parse(getEnv("LISTING_SERVICE_URL", "http://localhost:8081"))
	claimServiceURL, _ := url.Parse(getEnv("CLAIM_SERVICE_URL", "http://localhost:8082"))
	accountServiceURL, _ := url.Parse(getEnv("ACCOUNT_SERVICE_URL", "http://localhost:8083"))
	wasteServiceURL, _ := url.Parse(getEnv("WASTE_SERVICE_URL", "http://localhost:8084"))

	listingProxy := httputil.NewSingleHostReverseProxy(listingServiceURL)
	claimProxy := httputil.NewSingleHostReverseProxy(claimServiceURL)
	accountProxy := httputil.NewSingleHostReverseProxy(accountServiceURL)
	wasteProxy := httputil.NewSingleHostReverseProxy(wasteServiceURL)

	http.Handle("/api/v1/listings", http.StripPrefix("/api/v1", listingProxy))
	http.Handle("/api/v1/listings/", http.StripPrefix("/api/v1", listingProxy))
	http.Handle("/api/v1/claims", http.StripPrefix("/api/v1", claimProxy))
	http.Handle("/api/v1/claims/", http.StripPrefix("/api/v1", claimProxy))
	http.Handle("/api/v1/accounts", http.StripPrefix("/api/v1", accountProxy))
	http.Handle("/api/v1/accounts/", http.StripPrefix("/api/v1", accountProxy))
	http.Handle("/api/v1/waste", http.StripPrefix("/api/v1", wasteProxy))
	http.Handle("/api/v1/waste/", http.StripPrefix("/api/v1", wasteProxy))

	port := getEnv("PORT", "8080")
	log.Printf("API Gateway listening on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, nil))
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
