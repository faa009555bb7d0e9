package main

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultPort         = "8081"
	defaultClientID     = "talentgate"
	defaultClientSecret = "talent-registry-secret"
	defaultTokenTTL     = "300"
	defaultLatencyMs    = "50"
)

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type AthleteRecord struct {
	SubjectID    string         `json:"subjectId"`
	Name         string         `json:"name"`
	Age          int            `json:"age"`
	Region       string         `json:"region"`
	Sports       []string       `json:"sports"`
	Scores       map[string]int `json:"scores"`
	OverallScore int            `json:"overallScore"`
}

type SubmitResponse struct {
	RegistryID string `json:"registry_id"`
	Status     string `json:"status"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

var (
	clientID     = getEnv("CLIENT_ID", defaultClientID)
	clientSecret = getEnv("CLIENT_SECRET", defaultClientSecret)
	tokenTTL     = getEnvInt("TOKEN_TTL_SECONDS", defaultTokenTTL)
	latencyMs    = getEnvInt("LATENCY_MS", defaultLatencyMs)
	signingKey   = []byte(getEnv("SIGNING_KEY", "talent-registry-signing-key"))

	mu         sync.Mutex
	registered = map[string]string{}
)

func main() {
	port := getEnv("PORT", defaultPort)

	http.HandleFunc("/health", handleHealth)
	http.HandleFunc("/oauth/token", handleToken)
	http.HandleFunc("/api/v1/athletes", handleSubmit)

	log.Printf("Mock talent registry starting on port %s", port)
	log.Printf("Token TTL: %ds, simulated latency: %dms", tokenTTL, latencyMs)

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatal(err)
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "talent-registry",
	})
}

func handleToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		sendError(w, "Invalid form body", http.StatusBadRequest)
		return
	}
	if r.PostForm.Get("grant_type") != "client_credentials" {
		sendError(w, "Unsupported grant type", http.StatusBadRequest)
		return
	}
	if r.PostForm.Get("client_id") != clientID || r.PostForm.Get("client_secret") != clientSecret {
		sendError(w, "Invalid client credentials", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{
		AccessToken: mintToken(time.Now().Add(time.Duration(tokenTTL) * time.Second)),
		TokenType:   "Bearer",
		ExpiresIn:   tokenTTL,
	})
}

// Subject ids starting with OUTAGE get a 503 and REJECT a 422, so callers
// can exercise their fallback and error paths.
func handleSubmit(w http.ResponseWriter, r *http.Request) {
	time.Sleep(time.Duration(latencyMs) * time.Millisecond)
	log.Printf("Incoming request: %s %s from %s", r.Method, r.URL.Path, r.RemoteAddr)

	if r.Method != http.MethodPost {
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || !verifyToken(token, time.Now()) {
		sendError(w, "Invalid or expired token", http.StatusUnauthorized)
		return
	}

	var rec AthleteRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		sendError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	switch {
	case rec.SubjectID == "":
		sendError(w, "subjectId is required", http.StatusBadRequest)
		return
	case strings.HasPrefix(rec.SubjectID, "OUTAGE"):
		sendError(w, "Registry temporarily unavailable", http.StatusServiceUnavailable)
		return
	case strings.HasPrefix(rec.SubjectID, "REJECT"):
		sendError(w, "Record rejected", http.StatusUnprocessableEntity)
		return
	}

	mu.Lock()
	id, exists := registered[rec.SubjectID]
	if !exists {
		sum := sha256.Sum256([]byte(rec.SubjectID))
		id = "SAI-" + strings.ToUpper(hex.EncodeToString(sum[:6]))
		registered[rec.SubjectID] = id
	}
	mu.Unlock()

	status := "registered"
	if exists {
		status = "updated"
	}
	writeJSON(w, http.StatusOK, SubmitResponse{RegistryID: id, Status: status})
	log.Printf("Athlete %s -> %s (%s, overall=%d)", rec.SubjectID, id, status, rec.OverallScore)
}

func mintToken(exp time.Time) string {
	header := b64(`{"alg":"HS256","typ":"JWT"}`)
	claims, _ := json.Marshal(map[string]any{
		"sub": clientID,
		"iat": time.Now().Unix(),
		"exp": exp.Unix(),
	})
	payload := header + "." + b64(string(claims))
	return payload + "." + sign(payload)
}

func verifyToken(token string, now time.Time) bool {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return false
	}
	if !hmac.Equal([]byte(sign(parts[0]+"."+parts[1])), []byte(parts[2])) {
		return false
	}
	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}
	var claims struct {
		Exp int64 `json:"exp"`
	}
	if err := json.Unmarshal(raw, &claims); err != nil {
		return false
	}
	return now.Unix() < claims.Exp
}

func sign(payload string) string {
	mac := hmac.New(sha256.New, signingKey)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func b64(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func sendError(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: message,
		Code:    code,
	})
	log.Printf("Error response: %d - %s", code, message)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key, defaultValue string) int {
	value := getEnv(key, defaultValue)
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %s", key, defaultValue)
		intValue, _ = strconv.Atoi(defaultValue)
	}
	return intValue
}
