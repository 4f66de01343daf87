// Package sheetstest provides an in-memory stand-in for the token endpoint
// and the spreadsheet values API.
package sheetstest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/gorilla/mux"
)

// AccessToken is the token handed out by the fake token endpoint.
const AccessToken = "ya29.test-access-token"

// Server records the calls it receives and serves rows from memory.
type Server struct {
	*httptest.Server

	mu sync.Mutex

	rows [][]interface{}

	tokenCalls  int
	readCalls   int
	appendCalls int

	assertions        []string
	valueInputOptions []string

	tokenStatus int
	tokenBody   string
	sheetStatus int
	sheetBody   string
}

// NewServer starts a fake server serving rows.
func NewServer(rows ...[]interface{}) *Server {
	s := &Server{
		rows: rows,
	}

	router := mux.NewRouter()
	router.Path("/token").Methods(http.MethodPost).HandlerFunc(s.token)
	router.Path("/v4/spreadsheets/{spreadsheetId}/values/{range}:append").Methods(http.MethodPost).HandlerFunc(s.append)
	router.Path("/v4/spreadsheets/{spreadsheetId}/values/{range}").Methods(http.MethodGet).HandlerFunc(s.get)

	s.Server = httptest.NewServer(router)

	return s
}

// TokenEndpoint returns the URL of the fake token endpoint.
func (s *Server) TokenEndpoint() string {
	return s.URL + "/token"
}

// Endpoint returns the base URL of the fake spreadsheet API.
func (s *Server) Endpoint() string {
	return s.URL + "/"
}

// FailToken makes the token endpoint answer with status and body.
func (s *Server) FailToken(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokenStatus = status
	s.tokenBody = body
}

// FailSheet makes the spreadsheet API answer with status and body.
func (s *Server) FailSheet(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sheetStatus = status
	s.sheetBody = body
}

// Rows returns a copy of the stored rows.
func (s *Server) Rows() [][]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([][]interface{}, len(s.rows))
	copy(rows, s.rows)

	return rows
}

// Calls returns the number of token, read and append calls received.
func (s *Server) Calls() (tokens int, reads int, appends int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tokenCalls, s.readCalls, s.appendCalls
}

// TotalCalls returns the number of requests received.
func (s *Server) TotalCalls() int {
	tokens, reads, appends := s.Calls()

	return tokens + reads + appends
}

// Assertions returns the assertions posted to the token endpoint.
func (s *Server) Assertions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.assertions...)
}

// ValueInputOptions returns the value input options of the append calls.
func (s *Server) ValueInputOptions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.valueInputOptions...)
}

func (s *Server) token(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokenCalls++

	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.assertions = append(s.assertions, r.PostForm.Get("assertion"))

	if s.tokenStatus != 0 {
		w.WriteHeader(s.tokenStatus)
		_, _ = w.Write([]byte(s.tokenBody))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"access_token": AccessToken,
		"token_type":   "Bearer",
		"expires_in":   3599,
	})
}

func (s *Server) authorized(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("Authorization") != "Bearer "+AccessToken {
		writeError(w, http.StatusUnauthorized, "Request had invalid authentication credentials.")
		return false
	}

	if s.sheetStatus != 0 {
		w.WriteHeader(s.sheetStatus)
		_, _ = w.Write([]byte(s.sheetBody))
		return false
	}

	return true
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.readCalls++

	if !s.authorized(w, r) {
		return
	}

	vars := mux.Vars(r)

	response := map[string]interface{}{
		"range":          vars["range"],
		"majorDimension": "ROWS",
	}
	if len(s.rows) > 0 {
		response["values"] = s.rows
	}

	writeJSON(w, http.StatusOK, response)
}

func (s *Server) append(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.appendCalls++

	if !s.authorized(w, r) {
		return
	}

	s.valueInputOptions = append(s.valueInputOptions, r.URL.Query().Get("valueInputOption"))

	var body struct {
		Values [][]interface{} `json:"values"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	first := len(s.rows) + 1
	s.rows = append(s.rows, body.Values...)

	vars := mux.Vars(r)
	updatedRange := fmt.Sprintf("Links!A%d:B%d", first, len(s.rows))

	response := map[string]interface{}{
		"spreadsheetId": vars["spreadsheetId"],
		"updates": map[string]interface{}{
			"spreadsheetId":  vars["spreadsheetId"],
			"updatedRange":   updatedRange,
			"updatedRows":    len(body.Values),
			"updatedColumns": 2,
			"updatedCells":   2 * len(body.Values),
		},
	}
	if first > 1 {
		response["tableRange"] = fmt.Sprintf("Links!A1:B%d", first-1)
	}

	writeJSON(w, http.StatusOK, response)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"code":    status,
			"message": message,
		},
	})
}
